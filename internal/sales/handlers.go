package sales

import (
	"errors"
	"time"

	"dealerstock-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

type saleBody struct {
	CustomerID        *uint    `json:"customer_id"`
	CustomerName      *string  `json:"customer_name"`
	CustomerPhone     *string  `json:"customer_phone"`
	CustomerLocation  *string  `json:"customer_location"`
	VehicleStockID    uint     `json:"vehicle_stock_id"`
	PaymentMode       string   `json:"payment_mode"`
	Bank              *string  `json:"bank"`
	PaymentDate       *string  `json:"payment_date"`
	AmountReceived    float64  `json:"amount_received"`
	IsPaymentReceived bool     `json:"is_payment_received"`
}

// POST /api/v1/sales
func (h *Handlers) CreateSale(c *fiber.Ctx) error {
	var body saleBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if body.VehicleStockID == 0 || body.PaymentMode == "" {
		return response.Error(c, "vehicle_stock_id and payment_mode are required", fiber.StatusBadRequest, nil)
	}

	paymentDate, err := parseDate(body.PaymentDate)
	if err != nil {
		return response.Error(c, "payment_date must be YYYY-MM-DD", fiber.StatusBadRequest, nil)
	}

	sale, err := h.Service.CreateSale(c.Context(), CreateSaleInput{
		CustomerID:        body.CustomerID,
		CustomerName:      body.CustomerName,
		CustomerPhone:     body.CustomerPhone,
		CustomerLocation:  body.CustomerLocation,
		VehicleStockID:    body.VehicleStockID,
		PaymentMode:       body.PaymentMode,
		Bank:              body.Bank,
		PaymentDate:       paymentDate,
		AmountReceived:    body.AmountReceived,
		IsPaymentReceived: body.IsPaymentReceived,
	})
	if err != nil {
		var syncErr *SyncFailure
		if errors.As(err, &syncErr) {
			return response.SuccessCreated(c, "Sale created", sale, fiber.Map{"sync_warning": syncErr.Error()})
		}
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.SuccessCreated(c, "Sale created", sale, nil)
}

// GET /api/v1/sales
func (h *Handlers) ListSales(c *fiber.Ctx) error {
	filter := ListFilter{
		Location:    c.Query("location"),
		PaymentMode: c.Query("payment_mode"),
		Offset:      c.QueryInt("skip", 0),
		Limit:       c.QueryInt("limit", 100),
	}
	if from, err := parseDate(queryPtr(c, "from_date")); err == nil {
		filter.FromDate = from
	}
	if to, err := parseDate(queryPtr(c, "to_date")); err == nil {
		filter.ToDate = to
	}
	if id := c.QueryInt("executive_id"); id > 0 {
		executiveID := uint(id)
		filter.ExecutiveID = &executiveID
	}

	sales, err := h.Service.ListSales(c.Context(), filter)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Sales fetched", sales, nil)
}

// GET /api/v1/sales/:id
func (h *Handlers) GetSale(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid sale id", fiber.StatusBadRequest, nil)
	}
	sale, err := h.Service.GetSale(c.Context(), uint(id))
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	}
	return response.Success(c, "Sale fetched", sale, nil)
}

// PATCH /api/v1/sales/:id
func (h *Handlers) UpdateSale(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid sale id", fiber.StatusBadRequest, nil)
	}

	var body struct {
		PaymentMode       *string  `json:"payment_mode"`
		Bank              *string  `json:"bank"`
		PaymentDate       *string  `json:"payment_date"`
		AmountReceived    *float64 `json:"amount_received"`
		IsPaymentReceived *bool    `json:"is_payment_received"`
		Location          *string  `json:"location"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	paymentDate, err := parseDate(body.PaymentDate)
	if err != nil {
		return response.Error(c, "payment_date must be YYYY-MM-DD", fiber.StatusBadRequest, nil)
	}

	sale, err := h.Service.UpdateSale(c.Context(), uint(id), UpdateSaleInput{
		PaymentMode:       body.PaymentMode,
		Bank:              body.Bank,
		PaymentDate:       paymentDate,
		AmountReceived:    body.AmountReceived,
		IsPaymentReceived: body.IsPaymentReceived,
		Location:          body.Location,
	})
	if err != nil {
		var syncErr *SyncFailure
		if errors.As(err, &syncErr) {
			return response.Success(c, "Sale updated", sale, fiber.Map{"sync_warning": syncErr.Error()})
		}
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.Success(c, "Sale updated", sale, nil)
}

// DELETE /api/v1/sales/:id
func (h *Handlers) DeleteSale(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid sale id", fiber.StatusBadRequest, nil)
	}

	if err := h.Service.DeleteSale(c.Context(), uint(id)); err != nil {
		var syncErr *SyncFailure
		if errors.As(err, &syncErr) {
			return response.Success(c, "Sale deleted", nil, fiber.Map{"sync_warning": syncErr.Error()})
		}
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.Success(c, "Sale deleted", nil, nil)
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func queryPtr(c *fiber.Ctx, key string) *string {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	return &v
}
