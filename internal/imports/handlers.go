package imports

import (
	"io"
	"strconv"
	"strings"

	"dealerstock-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

// POST /api/v1/imports/upload (multipart: file, optional branch_id, sheet_name)
func (h *Handlers) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, "File is required", fiber.StatusBadRequest, nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, "Unable to read uploaded file", fiber.StatusBadRequest, nil)
	}
	defer file.Close()
	contents, err := io.ReadAll(file)
	if err != nil {
		return response.Error(c, "Unable to read uploaded file", fiber.StatusBadRequest, nil)
	}
	if len(contents) == 0 {
		return response.Error(c, "Uploaded file is empty", fiber.StatusBadRequest, nil)
	}

	in := QueueImportInput{
		SourceFilename: fileHeader.Filename,
		Contents:       contents,
	}
	if v := strings.TrimSpace(c.FormValue("sheet_name")); v != "" {
		in.SheetName = &v
	}
	if v := strings.TrimSpace(c.FormValue("branch_id")); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return response.Error(c, "branch_id must be a number", fiber.StatusBadRequest, nil)
		}
		branchID := uint(id)
		in.BranchID = &branchID
	}

	job, err := h.Service.QueueImport(c.Context(), in)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.SuccessCreated(c, "Import processed", job, nil)
}

// GET /api/v1/imports/jobs
func (h *Handlers) ListJobs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 25)
	jobs, err := h.Service.ListRecent(c.Context(), limit)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Import jobs fetched", jobs, nil)
}
