package excelsync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dealerstock-backend/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ImportSummary is the result of one full import pass.
type ImportSummary struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Removed   int `json:"removed"`
}

// Service synchronizes the vehicle stock ledger with the canonical workbook.
// The database is the source of truth; the workbook is a best-effort mirror.
type Service struct {
	DB           *gorm.DB
	WorkbookPath string
}

// ImportInventory loads or refreshes stock entries from the workbook's first
// sheet. Rows are keyed by their 1-based row index; entries whose row no
// longer exists in the workbook are evicted. The whole pass commits as one
// transaction.
func (s *Service) ImportInventory(ctx context.Context) (*ImportSummary, error) {
	mu := lockPath(s.WorkbookPath)
	defer mu.Unlock()

	f, err := openWorkbook(s.WorkbookPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read workbook %s: %w", s.WorkbookPath, err)
	}
	if len(rows) == 0 {
		return &ImportSummary{}, nil
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = NormalizeHeader(cell)
	}

	summary := &ImportSummary{}
	seenRows := []int{}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for offset, row := range rows[1:] {
			if err := ctx.Err(); err != nil {
				return err
			}
			if blankRow(row) {
				continue
			}
			rowNumber := offset + 2

			summary.Processed++
			record := map[string]string{}
			for i, cell := range row {
				if i < len(header) && header[i] != "" {
					record[header[i]] = cell
				}
			}
			seenRows = append(seenRows, rowNumber)

			payload := payloadFromRow(record, rowNumber)
			branch, err := ensureBranch(tx, record)
			if err != nil {
				return err
			}

			var stock models.VehicleStock
			res := tx.Where("excel_row_number = ?", rowNumber).First(&stock)
			if res.Error == gorm.ErrRecordNotFound {
				stock = payload
				applyBranch(&stock, branch)
				if err := tx.Create(&stock).Error; err != nil {
					return err
				}
				summary.Created++
			} else if res.Error != nil {
				return res.Error
			} else {
				payload.ID = stock.ID
				applyBranch(&payload, branch)
				if err := tx.Model(&stock).Select("*").Omit("id", "created_at").Updates(&payload).Error; err != nil {
					return err
				}
				summary.Updated++
			}
		}

		// Remove stale stock entries that no longer exist in the workbook.
		if len(seenRows) > 0 {
			res := tx.Where("excel_row_number NOT IN ?", seenRows).Delete(&models.VehicleStock{})
			if res.Error != nil {
				return res.Error
			}
			summary.Removed = int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// PushStockUpdate writes the latest quantity/reserved/branch_name/city values
// for one stock entry back into its workbook row. No-op for entries without a
// row number.
func (s *Service) PushStockUpdate(ctx context.Context, stock *models.VehicleStock) error {
	if stock.ExcelRowNumber == nil {
		return nil
	}

	mu := lockPath(s.WorkbookPath)
	defer mu.Unlock()

	f, err := openWorkbook(s.WorkbookPath)
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	row := *stock.ExcelRowNumber
	cells := map[string]interface{}{
		"quantity":    stock.Quantity,
		"reserved":    stock.Reserved,
		"branch_name": strValue(stock.BranchName),
		"city":        strValue(stock.City),
	}
	for name, value := range cells {
		cell, err := excelize.CoordinatesToCellName(headerColumn(name), row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook %s: %w", s.WorkbookPath, err)
	}
	return nil
}

// ExportSnapshot builds a fresh workbook from the current ledger, one row per
// entry ordered by branch and model, and writes it to targetPath (the
// canonical path when empty). Returns the path written.
func (s *Service) ExportSnapshot(ctx context.Context, targetPath string) (string, error) {
	exportPath := targetPath
	if exportPath == "" {
		exportPath = s.WorkbookPath
	}

	var stocks []models.VehicleStock
	if err := s.DB.WithContext(ctx).
		Order("branch_code, model_name").
		Find(&stocks).Error; err != nil {
		return "", err
	}

	mu := lockPath(exportPath)
	defer mu.Unlock()

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), sheetTitle); err != nil {
		return "", err
	}
	if err := writeHeaderRow(f, sheetTitle); err != nil {
		return "", err
	}

	widths := make([]int, len(ExcelHeaders))
	for i, h := range ExcelHeaders {
		widths[i] = len(h)
	}
	for i, stock := range stocks {
		values := []interface{}{
			strValue(stock.BranchCode),
			strValue(stock.BranchName),
			strValue(stock.City),
			RoundCoordinate(stock.Latitude),
			RoundCoordinate(stock.Longitude),
			strValue(stock.ModelCode),
			stock.ModelName,
			strValue(stock.Variant),
			strValue(stock.Color),
			stock.Quantity,
			stock.Reserved,
		}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, i+2)
			if err != nil {
				return "", err
			}
			if err := f.SetCellValue(sheetTitle, cell, v); err != nil {
				return "", err
			}
			if n := len(fmt.Sprint(v)); n > widths[c] {
				widths[c] = n
			}
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return "", err
		}
		width := float64(w + 2)
		if width < 12 {
			width = 12
		}
		if err := f.SetColWidth(sheetTitle, col, col, width); err != nil {
			return "", err
		}
	}
	if err := f.SetPanes(sheetTitle, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return "", err
	}

	if err := f.SaveAs(exportPath); err != nil {
		return "", fmt.Errorf("save workbook %s: %w", exportPath, err)
	}
	return exportPath, nil
}

// SyncStock stamps last_synced_at and mirrors the entry into the workbook.
// A push failure is logged and returned but never reverses the database
// write that triggered it.
func (s *Service) SyncStock(ctx context.Context, stock *models.VehicleStock) error {
	now := time.Now().UTC()
	stock.LastSyncedAt = &now
	if err := s.DB.WithContext(ctx).Model(stock).Update("last_synced_at", now).Error; err != nil {
		return err
	}
	if err := s.PushStockUpdate(ctx, stock); err != nil {
		log.Warn().Err(err).Uint("stock_id", stock.ID).Msg("Workbook push failed; ledger remains authoritative")
		return err
	}
	return nil
}

func payloadFromRow(record map[string]string, rowNumber int) models.VehicleStock {
	modelName := "Unknown Model"
	if v := SafeString(record["model_name"]); v != nil {
		modelName = *v
	}
	quantity, _ := SafeInt(record["quantity"], 0)
	reserved, _ := SafeInt(record["reserved"], 0)
	now := time.Now().UTC()
	return models.VehicleStock{
		ExcelRowNumber: &rowNumber,
		BranchCode:     SafeString(record["branch_code"]),
		BranchName:     SafeString(record["branch_name"]),
		City:           SafeString(record["city"]),
		Latitude:       SafeFloat(record["latitude"]),
		Longitude:      SafeFloat(record["longitude"]),
		ModelCode:      SafeString(record["model_code"]),
		ModelName:      modelName,
		Variant:        SafeString(record["variant"]),
		Color:          SafeString(record["color"]),
		Quantity:       quantity,
		Reserved:       reserved,
		LastSyncedAt:   &now,
	}
}

// ensureBranch resolves or creates the branch referenced by a workbook row.
// Creation requires code, name and city; an existing branch is patched only
// where the incoming value differs and is non-null.
func ensureBranch(tx *gorm.DB, record map[string]string) (*models.Branch, error) {
	code := SafeString(record["branch_code"])
	name := SafeString(record["branch_name"])
	city := SafeString(record["city"])
	if code == nil {
		return nil, nil
	}

	var branch models.Branch
	err := tx.Where("code = ?", *code).First(&branch).Error
	if err == gorm.ErrRecordNotFound {
		if name == nil || city == nil {
			return nil, nil
		}
		branch = models.Branch{
			Code:      *code,
			Name:      *name,
			City:      *city,
			Latitude:  SafeFloat(record["latitude"]),
			Longitude: SafeFloat(record["longitude"]),
		}
		if err := tx.Create(&branch).Error; err != nil {
			return nil, err
		}
		return &branch, nil
	}
	if err != nil {
		return nil, err
	}

	updated := false
	if lat := SafeFloat(record["latitude"]); lat != nil && (branch.Latitude == nil || *branch.Latitude != *lat) {
		branch.Latitude = lat
		updated = true
	}
	if lon := SafeFloat(record["longitude"]); lon != nil && (branch.Longitude == nil || *branch.Longitude != *lon) {
		branch.Longitude = lon
		updated = true
	}
	if name != nil && branch.Name != *name {
		branch.Name = *name
		updated = true
	}
	if city != nil && branch.City != *city {
		branch.City = *city
		updated = true
	}
	if updated {
		if err := tx.Save(&branch).Error; err != nil {
			return nil, err
		}
	}
	return &branch, nil
}

func applyBranch(stock *models.VehicleStock, branch *models.Branch) {
	if branch == nil {
		return
	}
	stock.BranchCode = &branch.Code
	stock.BranchName = &branch.Name
	stock.City = &branch.City
	stock.Latitude = branch.Latitude
	stock.Longitude = branch.Longitude
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
