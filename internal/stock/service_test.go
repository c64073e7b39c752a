package stock

import (
	"context"
	"path/filepath"
	"testing"

	"dealerstock-backend/internal/excelsync"
	"dealerstock-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupStockTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Branch{}, &models.VehicleStock{}))

	sync := &excelsync.Service{
		DB:           db,
		WorkbookPath: filepath.Join(t.TempDir(), "inventory.xlsx"),
	}
	return &Service{DB: db, Sync: sync}, db
}

func seedEntries(t *testing.T, db *gorm.DB) {
	tvm, ekm := "TVM", "EKM"
	for _, stock := range []models.VehicleStock{
		{ModelName: "CB350 Classic", BranchCode: &tvm, Quantity: 5},
		{ModelName: "Activa 6G", BranchCode: &tvm, Quantity: 0},
		{ModelName: "Shine 125", BranchCode: &ekm, Quantity: 2},
	} {
		require.NoError(t, db.Create(&stock).Error)
	}
}

func TestListStock_Filters(t *testing.T) {
	s, db := setupStockTest(t)
	seedEntries(t, db)

	all, err := s.ListStock(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	tvm, err := s.ListStock(context.Background(), ListFilter{BranchCode: "TVM"})
	require.NoError(t, err)
	assert.Len(t, tvm, 2)

	inStock, err := s.ListStock(context.Background(), ListFilter{InStockOnly: true})
	require.NoError(t, err)
	assert.Len(t, inStock, 2)

	named, err := s.ListStock(context.Background(), ListFilter{ModelName: "Shine 125"})
	require.NoError(t, err)
	require.Len(t, named, 1)
	assert.Equal(t, "Shine 125", named[0].ModelName)
}

func TestCreateStock_RejectsNegativeCounters(t *testing.T) {
	s, _ := setupStockTest(t)
	_, err := s.CreateStock(context.Background(), &models.VehicleStock{ModelName: "CB350 Classic", Quantity: -1})
	require.Error(t, err)
}

func TestUpdateStock_PatchesOnlyProvidedFields(t *testing.T) {
	s, db := setupStockTest(t)
	stock := &models.VehicleStock{ModelName: "CB350 Classic", Quantity: 5, Reserved: 1}
	require.NoError(t, db.Create(stock).Error)

	quantity := 7
	variant := "DLX"
	updated, err := s.UpdateStock(context.Background(), stock.ID, UpdateStockInput{
		Quantity: &quantity,
		Variant:  &variant,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Quantity)
	assert.Equal(t, 1, updated.Reserved)
	require.NotNil(t, updated.Variant)
	assert.Equal(t, "DLX", *updated.Variant)
	assert.Equal(t, "CB350 Classic", updated.ModelName)
}

func TestUpdateStock_RejectsNegativeQuantity(t *testing.T) {
	s, db := setupStockTest(t)
	stock := &models.VehicleStock{ModelName: "CB350 Classic", Quantity: 5}
	require.NoError(t, db.Create(stock).Error)

	negative := -2
	_, err := s.UpdateStock(context.Background(), stock.ID, UpdateStockInput{Quantity: &negative})
	require.Error(t, err)
}

func TestAdjustStock_AppliesDelta(t *testing.T) {
	s, db := setupStockTest(t)
	stock := &models.VehicleStock{ModelName: "CB350 Classic", Quantity: 5}
	require.NoError(t, db.Create(stock).Error)

	updated, err := s.AdjustStock(context.Background(), stock.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Quantity)
}

func TestAdjustStock_RejectsNegativeResult(t *testing.T) {
	s, db := setupStockTest(t)
	stock := &models.VehicleStock{ModelName: "CB350 Classic", Quantity: 2}
	require.NoError(t, db.Create(stock).Error)

	_, err := s.AdjustStock(context.Background(), stock.ID, -5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative stock")

	var reloaded models.VehicleStock
	require.NoError(t, db.First(&reloaded, stock.ID).Error)
	assert.Equal(t, 2, reloaded.Quantity)
}

func TestDeleteStock(t *testing.T) {
	s, db := setupStockTest(t)
	stock := &models.VehicleStock{ModelName: "CB350 Classic", Quantity: 2}
	require.NoError(t, db.Create(stock).Error)

	require.NoError(t, s.DeleteStock(context.Background(), stock.ID))

	var count int64
	require.NoError(t, db.Model(&models.VehicleStock{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	err := s.DeleteStock(context.Background(), stock.ID)
	require.Error(t, err)
}
