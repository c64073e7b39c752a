package imports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dealerstock-backend/internal/excelsync"
	"dealerstock-backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RowError is one per-row failure collected during a batch. Row-level
// failures never abort the batch.
type RowError struct {
	Row    int    `json:"row"`
	Detail string `json:"detail"`
}

// BatchSummary accumulates counts for one bulk-import pass.
type BatchSummary struct {
	ProcessedRows   int        `json:"processed_rows"`
	Created         int        `json:"created_inventory"`
	Updated         int        `json:"updated_inventory"`
	BranchesCreated int        `json:"branches_created"`
	BranchesUpdated int        `json:"branches_updated"`
	Errors          []RowError `json:"errors"`
}

// Service ingests bulk CSV/XLSX uploads into the coarse (branch x model)
// inventory ledger, auto-creating branches and models as rows reference them.
type Service struct {
	DB         *gorm.DB
	StorageDir string
}

// QueueImportInput describes one uploaded file.
type QueueImportInput struct {
	SourceFilename string
	SheetName      *string
	BranchID       *uint
	UploadedByID   *uint
	Contents       []byte
}

// QueueImport stores the uploaded file, applies its rows to the inventory
// ledger and records an ImportJob with the full summary. A batch with some
// invalid rows still commits the valid ones.
func (s *Service) QueueImport(ctx context.Context, in QueueImportInput) (*models.ImportJob, error) {
	if len(in.Contents) == 0 {
		return nil, errors.New("Uploaded file is empty")
	}

	storedPath, err := s.persistFile(in.SourceFilename, in.Contents)
	if err != nil {
		return nil, err
	}

	rows, err := loadRows(in.SourceFilename, in.Contents, in.SheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("Uploaded file does not contain any data rows")
	}

	summary, err := s.applyInventoryUpdates(ctx, rows)
	if err != nil {
		return nil, err
	}

	status := models.ImportJobCompleted
	if len(summary.Errors) > 0 {
		status = models.ImportJobCompletedWithIssues
	}

	summaryJSON, err := json.Marshal(map[string]interface{}{
		"stored_path":       storedPath,
		"processed_rows":    summary.ProcessedRows,
		"total_rows":        summary.ProcessedRows,
		"created_inventory": summary.Created,
		"updated_inventory": summary.Updated,
		"branches_created":  summary.BranchesCreated,
		"branches_updated":  summary.BranchesUpdated,
		"error_count":       len(summary.Errors),
		"errors":            summary.Errors,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &models.ImportJob{
		BranchID:       in.BranchID,
		UploadedByID:   in.UploadedByID,
		SourceFilename: in.SourceFilename,
		SheetName:      in.SheetName,
		Status:         status,
		Summary:        datatypes.JSON(summaryJSON),
		ExecutedAt:     &now,
	}
	if err := s.DB.WithContext(ctx).Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

// ListRecent returns the most recent import jobs, newest first.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]models.ImportJob, error) {
	if limit <= 0 {
		limit = 25
	}
	var jobs []models.ImportJob
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// applyInventoryUpdates runs the batch in one transaction. Every valid row
// replaces its (branch, model) inventory counters wholesale; invalid rows
// are recorded and skipped.
func (s *Service) applyInventoryUpdates(ctx context.Context, rows []map[string]string) (*BatchSummary, error) {
	summary := &BatchSummary{Errors: []RowError{}}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		branchMap, err := loadBranchMap(tx)
		if err != nil {
			return err
		}
		modelCodeMap, modelNameMap, err := loadModelMaps(tx)
		if err != nil {
			return err
		}

		createdBranches := map[string]bool{}
		updatedBranches := map[string]bool{}
		missingCoordinates := map[string]bool{}

		for idx, row := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			rowNum := idx + 1
			summary.ProcessedRows++

			branchCode := strings.TrimSpace(row["branch_code"])
			if branchCode == "" {
				summary.Errors = append(summary.Errors, RowError{Row: rowNum, Detail: "Missing required column 'branch_code'"})
				continue
			}
			modelCode := strings.TrimSpace(row["model_code"])
			if modelCode == "" {
				summary.Errors = append(summary.Errors, RowError{Row: rowNum, Detail: "Missing required column 'model_code'"})
				continue
			}

			branch, rowErr, err := resolveBranch(tx, branchMap, branchCode, row, rowNum, createdBranches, updatedBranches, summary)
			if err != nil {
				return err
			}
			if rowErr != nil {
				summary.Errors = append(summary.Errors, *rowErr)
				continue
			}

			// Non-fatal: the row still imports, but nearest-stock resolution
			// silently excludes branches without coordinates.
			if !branch.HasCoordinates() && !missingCoordinates[branchCode] {
				missingCoordinates[branchCode] = true
				summary.Errors = append(summary.Errors, RowError{
					Row:    rowNum,
					Detail: fmt.Sprintf("Branch '%s' is missing latitude/longitude. Nearest showroom calculations require coordinates.", branchCode),
				})
			}

			quantity, okQ := excelsync.SafeInt(row["quantity"], 0)
			reserved, okR := excelsync.SafeInt(row["reserved"], 0)
			if !okQ || !okR || strings.TrimSpace(row["quantity"]) == "" {
				summary.Errors = append(summary.Errors, RowError{Row: rowNum, Detail: "Quantity or reserved value is not a number"})
				continue
			}
			if quantity < 0 || reserved < 0 {
				summary.Errors = append(summary.Errors, RowError{Row: rowNum, Detail: "Quantity and reserved must be non-negative"})
				continue
			}

			model, err := resolveModel(tx, modelCodeMap, modelNameMap, modelCode, row)
			if err != nil {
				return err
			}

			var inventory models.Inventory
			res := tx.Where("branch_id = ? AND model_id = ?", branch.ID, model.ID).First(&inventory)
			if res.Error == gorm.ErrRecordNotFound {
				inventory = models.Inventory{BranchID: branch.ID, ModelID: model.ID, Quantity: quantity, Reserved: reserved}
				if err := tx.Create(&inventory).Error; err != nil {
					return err
				}
				summary.Created++
			} else if res.Error != nil {
				return res.Error
			} else {
				inventory.Quantity = quantity
				inventory.Reserved = reserved
				if err := tx.Save(&inventory).Error; err != nil {
					return err
				}
				summary.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// resolveBranch finds, patches or creates the branch for one row. Out-of-range
// coordinates are a row error, not silently clamped.
func resolveBranch(
	tx *gorm.DB,
	branchMap map[string]*models.Branch,
	branchCode string,
	row map[string]string,
	rowNum int,
	createdBranches, updatedBranches map[string]bool,
	summary *BatchSummary,
) (*models.Branch, *RowError, error) {
	latitude := excelsync.SafeFloat(row["latitude"])
	longitude := excelsync.SafeFloat(row["longitude"])
	if latitude != nil && (*latitude < -90 || *latitude > 90) {
		return nil, &RowError{Row: rowNum, Detail: fmt.Sprintf("Latitude %v out of range (-90 to 90)", *latitude)}, nil
	}
	if longitude != nil && (*longitude < -180 || *longitude > 180) {
		return nil, &RowError{Row: rowNum, Detail: fmt.Sprintf("Longitude %v out of range (-180 to 180)", *longitude)}, nil
	}

	branchName := excelsync.SafeString(row["branch_name"])
	branchCity := excelsync.SafeString(row["city"])

	branch, ok := branchMap[branchCode]
	if !ok {
		if branchName == nil || branchCity == nil {
			return nil, &RowError{
				Row:    rowNum,
				Detail: fmt.Sprintf("Unknown branch code '%s'. Provide branch_name and city (plus latitude/longitude for nearest calculation).", branchCode),
			}, nil
		}
		branch = &models.Branch{
			Code:      branchCode,
			Name:      *branchName,
			City:      *branchCity,
			Latitude:  latitude,
			Longitude: longitude,
		}
		if err := tx.Create(branch).Error; err != nil {
			return nil, nil, err
		}
		branchMap[branchCode] = branch
		if !createdBranches[branchCode] {
			createdBranches[branchCode] = true
			summary.BranchesCreated++
		}
		return branch, nil, nil
	}

	changed := false
	if latitude != nil && (branch.Latitude == nil || *branch.Latitude != *latitude) {
		branch.Latitude = latitude
		changed = true
	}
	if longitude != nil && (branch.Longitude == nil || *branch.Longitude != *longitude) {
		branch.Longitude = longitude
		changed = true
	}
	if branchName != nil && branch.Name != *branchName {
		branch.Name = *branchName
		changed = true
	}
	if branchCity != nil && branch.City != *branchCity {
		branch.City = *branchCity
		changed = true
	}
	if changed {
		if err := tx.Save(branch).Error; err != nil {
			return nil, nil, err
		}
		if !updatedBranches[branchCode] {
			updatedBranches[branchCode] = true
			summary.BranchesUpdated++
		}
	}
	return branch, nil, nil
}

// resolveModel looks a model up by external code, falling back to name.
// A name match missing an external code gets the newly seen code attached.
func resolveModel(
	tx *gorm.DB,
	modelCodeMap, modelNameMap map[string]*models.VehicleModel,
	modelCode string,
	row map[string]string,
) (*models.VehicleModel, error) {
	if model, ok := modelCodeMap[modelCode]; ok {
		return model, nil
	}

	modelName := strings.TrimSpace(row["model_name"])
	if modelName == "" {
		modelName = strings.TrimSpace(row["model"])
	}
	if modelName == "" {
		modelName = modelCode
	}
	nameKey := strings.ToLower(modelName)

	model, ok := modelNameMap[nameKey]
	if !ok {
		model = &models.VehicleModel{Name: modelName, ExternalCode: &modelCode}
		if err := tx.Create(model).Error; err != nil {
			return nil, err
		}
	} else if model.ExternalCode == nil {
		model.ExternalCode = &modelCode
		if err := tx.Save(model).Error; err != nil {
			return nil, err
		}
	}

	modelCodeMap[modelCode] = model
	modelNameMap[nameKey] = model
	return model, nil
}

func loadBranchMap(tx *gorm.DB) (map[string]*models.Branch, error) {
	var branches []models.Branch
	if err := tx.Find(&branches).Error; err != nil {
		return nil, err
	}
	branchMap := make(map[string]*models.Branch, len(branches))
	for i := range branches {
		branchMap[branches[i].Code] = &branches[i]
	}
	return branchMap, nil
}

func loadModelMaps(tx *gorm.DB) (map[string]*models.VehicleModel, map[string]*models.VehicleModel, error) {
	var vehicleModels []models.VehicleModel
	if err := tx.Find(&vehicleModels).Error; err != nil {
		return nil, nil, err
	}
	codeMap := map[string]*models.VehicleModel{}
	nameMap := map[string]*models.VehicleModel{}
	for i := range vehicleModels {
		m := &vehicleModels[i]
		if m.ExternalCode != nil {
			codeMap[*m.ExternalCode] = m
		}
		nameMap[strings.ToLower(strings.TrimSpace(m.Name))] = m
	}
	return codeMap, nameMap, nil
}

// persistFile keeps the raw upload for audit, deduplicating filenames.
func (s *Service) persistFile(filename string, contents []byte) (string, error) {
	baseDir := s.StorageDir
	if baseDir == "" {
		baseDir = filepath.Join("storage", "imports")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", err
	}

	safeName := strings.NewReplacer("/", "_", "\\", "_").Replace(filename)
	targetPath := filepath.Join(baseDir, safeName)
	stem := strings.TrimSuffix(safeName, filepath.Ext(safeName))
	suffix := filepath.Ext(safeName)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(targetPath); os.IsNotExist(err) {
			break
		}
		targetPath = filepath.Join(baseDir, fmt.Sprintf("%s_%d%s", stem, counter, suffix))
	}

	if err := os.WriteFile(targetPath, contents, 0o644); err != nil {
		return "", err
	}
	return targetPath, nil
}
