package stock

import (
	"path/filepath"

	"dealerstock-backend/internal/models"
	"dealerstock-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service        *Service
	ExportDir      string
	ExportFilename string
}

// GET /api/v1/vehicle-stock
func (h *Handlers) ListStock(c *fiber.Ctx) error {
	stocks, err := h.Service.ListStock(c.Context(), ListFilter{
		ModelName:   c.Query("model_name"),
		BranchCode:  c.Query("branch_code"),
		City:        c.Query("city"),
		InStockOnly: c.QueryBool("in_stock_only", false),
	})
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Vehicle stock fetched", stocks, nil)
}

// POST /api/v1/vehicle-stock
func (h *Handlers) CreateStock(c *fiber.Ctx) error {
	var body models.VehicleStock
	if err := c.BodyParser(&body); err != nil || body.ModelName == "" {
		return response.Error(c, "model_name is required", fiber.StatusBadRequest, nil)
	}
	stock, err := h.Service.CreateStock(c.Context(), &body)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.SuccessCreated(c, "Vehicle stock created", stock, nil)
}

// GET /api/v1/vehicle-stock/:id
func (h *Handlers) GetStock(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid stock id", fiber.StatusBadRequest, nil)
	}
	stock, err := h.Service.GetStock(c.Context(), uint(id))
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	}
	return response.Success(c, "Vehicle stock fetched", stock, nil)
}

// PATCH /api/v1/vehicle-stock/:id
func (h *Handlers) UpdateStock(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid stock id", fiber.StatusBadRequest, nil)
	}

	var body struct {
		ModelCode *string `json:"model_code"`
		ModelName *string `json:"model_name"`
		Variant   *string `json:"variant"`
		Color     *string `json:"color"`
		Quantity  *int    `json:"quantity"`
		Reserved  *int    `json:"reserved"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	stock, err := h.Service.UpdateStock(c.Context(), uint(id), UpdateStockInput{
		ModelCode: body.ModelCode,
		ModelName: body.ModelName,
		Variant:   body.Variant,
		Color:     body.Color,
		Quantity:  body.Quantity,
		Reserved:  body.Reserved,
	})
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.Success(c, "Vehicle stock updated", stock, nil)
}

// POST /api/v1/vehicle-stock/:id/adjust
func (h *Handlers) AdjustStock(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid stock id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		Adjustment int `json:"adjustment"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	stock, err := h.Service.AdjustStock(c.Context(), uint(id), body.Adjustment)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.Success(c, "Vehicle stock adjusted", stock, nil)
}

// DELETE /api/v1/vehicle-stock/:id
func (h *Handlers) DeleteStock(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid stock id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.DeleteStock(c.Context(), uint(id)); err != nil {
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	}
	return response.Success(c, "Vehicle stock deleted", nil, nil)
}

// POST /api/v1/vehicle-stock/import — full import from the canonical workbook.
func (h *Handlers) ImportStock(c *fiber.Ctx) error {
	summary, err := h.Service.Sync.ImportInventory(c.Context())
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadGateway, nil)
	}
	return response.Success(c, "Workbook imported", summary, fiber.Map{
		"workbook": filepath.Base(h.Service.Sync.WorkbookPath),
	})
}

// GET /api/v1/vehicle-stock/export — download a fresh snapshot workbook.
func (h *Handlers) ExportStock(c *fiber.Ctx) error {
	exportPath := filepath.Join(h.ExportDir, h.ExportFilename)
	path, err := h.Service.Sync.ExportSnapshot(c.Context(), exportPath)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadGateway, nil)
	}
	return c.Download(path, h.ExportFilename)
}
