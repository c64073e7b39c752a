package transfers

import (
	"dealerstock-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

// POST /api/v1/transfers
func (h *Handlers) CreateTransfer(c *fiber.Ctx) error {
	var body struct {
		SourceBranchID      uint `json:"source_branch_id"`
		DestinationBranchID uint `json:"destination_branch_id"`
		ModelID             uint `json:"model_id"`
		Quantity            int  `json:"quantity"`
	}
	if err := c.BodyParser(&body); err != nil || body.SourceBranchID == 0 || body.DestinationBranchID == 0 || body.ModelID == 0 {
		return response.Error(c, "source_branch_id, destination_branch_id and model_id are required", fiber.StatusBadRequest, nil)
	}

	transfer, err := h.Service.Create(c.Context(), CreateTransferInput{
		SourceBranchID:      body.SourceBranchID,
		DestinationBranchID: body.DestinationBranchID,
		ModelID:             body.ModelID,
		Quantity:            body.Quantity,
	})
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.SuccessCreated(c, "Transfer requested", transfer, nil)
}

// GET /api/v1/transfers/open
func (h *Handlers) ListOpen(c *fiber.Ctx) error {
	transfers, err := h.Service.ListOpen(c.Context())
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Open transfers fetched", transfers, nil)
}

// PATCH /api/v1/transfers/:id/status
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid transfer id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil || body.Status == "" {
		return response.Error(c, "status is required", fiber.StatusBadRequest, nil)
	}

	transfer, err := h.Service.UpdateStatus(c.Context(), uint(id), body.Status)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	}
	return response.Success(c, "Transfer updated", transfer, nil)
}
