package excelsync

import (
	"context"
	"path/filepath"
	"testing"

	"dealerstock-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func setupSyncTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Branch{}, &models.VehicleStock{}))

	service := &Service{
		DB:           db,
		WorkbookPath: filepath.Join(t.TempDir(), "inventory.xlsx"),
	}
	return service, db
}

// writeWorkbook builds a workbook with the canonical header and the given
// data rows.
func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "Inventory"))
	require.NoError(t, writeHeaderRow(f, "Inventory"))
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Inventory", cell, v))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func sampleRows() [][]interface{} {
	return [][]interface{}{
		{"TVM", "Trivandrum Central", "Trivandrum", 8.524, 76.936, "CB350", "CB350 Classic", "DLX", "Red", 5, 1},
		{"EKM", "Kochi Motors", "Kochi", 9.97, 76.31, "ACT6G", "Activa 6G", "STD", "Black", 3, 0},
	}
}

func TestImportInventory_CreatesEntriesAndBranches(t *testing.T) {
	s, db := setupSyncTest(t)
	writeWorkbook(t, s.WorkbookPath, sampleRows())

	summary, err := s.ImportInventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Removed)

	var stock models.VehicleStock
	require.NoError(t, db.Where("excel_row_number = ?", 2).First(&stock).Error)
	assert.Equal(t, "CB350 Classic", stock.ModelName)
	assert.Equal(t, 5, stock.Quantity)
	assert.Equal(t, 1, stock.Reserved)
	require.NotNil(t, stock.BranchCode)
	assert.Equal(t, "TVM", *stock.BranchCode)
	require.NotNil(t, stock.LastSyncedAt)

	var branches int64
	require.NoError(t, db.Model(&models.Branch{}).Count(&branches).Error)
	assert.EqualValues(t, 2, branches)
}

func TestImportInventory_SecondPassUpdates(t *testing.T) {
	s, db := setupSyncTest(t)
	writeWorkbook(t, s.WorkbookPath, sampleRows())

	_, err := s.ImportInventory(context.Background())
	require.NoError(t, err)

	rows := sampleRows()
	rows[0][9] = 9 // quantity
	writeWorkbook(t, s.WorkbookPath, rows)

	summary, err := s.ImportInventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 2, summary.Updated)
	assert.Equal(t, 0, summary.Removed)

	var stock models.VehicleStock
	require.NoError(t, db.Where("excel_row_number = ?", 2).First(&stock).Error)
	assert.Equal(t, 9, stock.Quantity)

	var total int64
	require.NoError(t, db.Model(&models.VehicleStock{}).Count(&total).Error)
	assert.EqualValues(t, 2, total)
}

func TestImportInventory_EvictsStaleRows(t *testing.T) {
	s, db := setupSyncTest(t)
	writeWorkbook(t, s.WorkbookPath, sampleRows())
	_, err := s.ImportInventory(context.Background())
	require.NoError(t, err)

	// Rewrite the workbook with only the first row; the second entry must go.
	writeWorkbook(t, s.WorkbookPath, sampleRows()[:1])
	summary, err := s.ImportInventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Removed)

	var total int64
	require.NoError(t, db.Model(&models.VehicleStock{}).Count(&total).Error)
	assert.EqualValues(t, 1, total)
}

func TestImportInventory_DefaultsUnknownModel(t *testing.T) {
	s, db := setupSyncTest(t)
	writeWorkbook(t, s.WorkbookPath, [][]interface{}{
		{"TVM", "Trivandrum Central", "Trivandrum", 8.524, 76.936, "", "", "", "", 2, 0},
	})

	_, err := s.ImportInventory(context.Background())
	require.NoError(t, err)

	var stock models.VehicleStock
	require.NoError(t, db.First(&stock).Error)
	assert.Equal(t, "Unknown Model", stock.ModelName)
}

func TestPushStockUpdate_WritesCells(t *testing.T) {
	s, db := setupSyncTest(t)
	writeWorkbook(t, s.WorkbookPath, sampleRows())
	_, err := s.ImportInventory(context.Background())
	require.NoError(t, err)

	var stock models.VehicleStock
	require.NoError(t, db.Where("excel_row_number = ?", 2).First(&stock).Error)
	stock.Quantity = 4
	stock.Reserved = 2
	require.NoError(t, db.Save(&stock).Error)

	require.NoError(t, s.PushStockUpdate(context.Background(), &stock))

	f, err := excelize.OpenFile(s.WorkbookPath)
	require.NoError(t, err)
	defer f.Close()
	quantity, err := f.GetCellValue("Inventory", "J2")
	require.NoError(t, err)
	assert.Equal(t, "4", quantity)
	reserved, err := f.GetCellValue("Inventory", "K2")
	require.NoError(t, err)
	assert.Equal(t, "2", reserved)
}

// The first push to a missing workbook creates it with the header row.
func TestPushStockUpdate_CreatesWorkbook(t *testing.T) {
	s, db := setupSyncTest(t)

	rowNumber := 2
	stock := &models.VehicleStock{
		ExcelRowNumber: &rowNumber,
		ModelName:      "CB350 Classic",
		Quantity:       6,
	}
	require.NoError(t, db.Create(stock).Error)

	require.NoError(t, s.PushStockUpdate(context.Background(), stock))
	assert.FileExists(t, s.WorkbookPath)

	f, err := excelize.OpenFile(s.WorkbookPath)
	require.NoError(t, err)
	defer f.Close()
	header, err := f.GetCellValue("Inventory", "A1")
	require.NoError(t, err)
	assert.Equal(t, "branch_code", header)
	quantity, err := f.GetCellValue("Inventory", "J2")
	require.NoError(t, err)
	assert.Equal(t, "6", quantity)
}

func TestPushStockUpdate_NoRowNumberIsNoop(t *testing.T) {
	s, _ := setupSyncTest(t)
	stock := &models.VehicleStock{ModelName: "CB350 Classic", Quantity: 1}
	require.NoError(t, s.PushStockUpdate(context.Background(), stock))
	assert.NoFileExists(t, s.WorkbookPath)
}

func TestExportSnapshot_OrdersAndWritesHeader(t *testing.T) {
	s, db := setupSyncTest(t)

	rowB, rowA := 2, 3
	codeB, codeA := "EKM", "TVM"
	require.NoError(t, db.Create(&models.VehicleStock{
		ExcelRowNumber: &rowA, BranchCode: &codeA, ModelName: "CB350 Classic", Quantity: 5,
	}).Error)
	require.NoError(t, db.Create(&models.VehicleStock{
		ExcelRowNumber: &rowB, BranchCode: &codeB, ModelName: "Activa 6G", Quantity: 3,
	}).Error)

	target := filepath.Join(t.TempDir(), "snapshot.xlsx")
	path, err := s.ExportSnapshot(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, target, path)

	f, err := excelize.OpenFile(target)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Inventory", "A1")
	require.NoError(t, err)
	assert.Equal(t, "branch_code", header)

	// Ordered by branch_code: EKM before TVM.
	first, err := f.GetCellValue("Inventory", "A2")
	require.NoError(t, err)
	assert.Equal(t, "EKM", first)
	second, err := f.GetCellValue("Inventory", "A3")
	require.NoError(t, err)
	assert.Equal(t, "TVM", second)
}

func TestSyncStock_StampsLastSyncedAt(t *testing.T) {
	s, db := setupSyncTest(t)
	stock := &models.VehicleStock{ModelName: "CB350 Classic", Quantity: 2}
	require.NoError(t, db.Create(stock).Error)

	require.NoError(t, s.SyncStock(context.Background(), stock))

	var reloaded models.VehicleStock
	require.NoError(t, db.First(&reloaded, stock.ID).Error)
	require.NotNil(t, reloaded.LastSyncedAt)
}
