package inventory

import (
	"dealerstock-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

// GET /api/v1/inventory/branches/:branch_id
func (h *Handlers) ListBranchInventory(c *fiber.Ctx) error {
	branchID, err := c.ParamsInt("branch_id")
	if err != nil || branchID <= 0 {
		return response.Error(c, "branch_id must be a positive number", fiber.StatusBadRequest, nil)
	}
	records, err := h.Service.ListByBranch(c.Context(), uint(branchID))
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Inventory fetched", records, nil)
}

// POST /api/v1/inventory
func (h *Handlers) Upsert(c *fiber.Ctx) error {
	var body struct {
		BranchID uint `json:"branch_id"`
		ModelID  uint `json:"model_id"`
		Quantity int  `json:"quantity"`
		Reserved int  `json:"reserved"`
	}
	if err := c.BodyParser(&body); err != nil || body.BranchID == 0 || body.ModelID == 0 {
		return response.Error(c, "branch_id and model_id are required", fiber.StatusBadRequest, nil)
	}
	record, err := h.Service.Upsert(c.Context(), body.BranchID, body.ModelID, body.Quantity, body.Reserved)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.Success(c, "Inventory upserted", record, nil)
}

// GET /api/v1/inventory/nearest?source_branch_id=&model_id=
func (h *Handlers) Nearest(c *fiber.Ctx) error {
	sourceBranchID := c.QueryInt("source_branch_id")
	modelID := c.QueryInt("model_id")
	if sourceBranchID <= 0 || modelID <= 0 {
		return response.Error(c, "source_branch_id and model_id are required", fiber.StatusBadRequest, nil)
	}

	nearest, err := h.Service.NearestWithStock(c.Context(), uint(sourceBranchID), uint(modelID))
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	if nearest == nil {
		return response.Error(c, "No nearby branches with inventory found", fiber.StatusNotFound, nil)
	}
	return response.Success(c, "Nearest inventory found", nearest, nil)
}
