package inventory

import (
	"context"
	"testing"

	"dealerstock-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupInventoryTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Branch{}, &models.VehicleModel{}, &models.Inventory{}))
	return &Service{DB: db}, db
}

func ptr(f float64) *float64 { return &f }

func seedBranch(t *testing.T, db *gorm.DB, code, city string, lat, lon *float64) *models.Branch {
	branch := &models.Branch{Code: code, Name: code + " Motors", City: city, Latitude: lat, Longitude: lon}
	require.NoError(t, db.Create(branch).Error)
	return branch
}

func seedModel(t *testing.T, db *gorm.DB, name string) *models.VehicleModel {
	model := &models.VehicleModel{Name: name}
	require.NoError(t, db.Create(model).Error)
	return model
}

func TestUpsert_CreatesThenReplaces(t *testing.T) {
	s, db := setupInventoryTest(t)
	branch := seedBranch(t, db, "TVM", "Trivandrum", ptr(8.524), ptr(76.936))
	model := seedModel(t, db, "CB350 Classic")

	record, err := s.Upsert(context.Background(), branch.ID, model.ID, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, record.Quantity)

	record, err = s.Upsert(context.Background(), branch.ID, model.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, record.Quantity)
	assert.Equal(t, 0, record.Reserved)

	var count int64
	require.NoError(t, db.Model(&models.Inventory{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsert_RejectsNegativeCounters(t *testing.T) {
	s, db := setupInventoryTest(t)
	branch := seedBranch(t, db, "TVM", "Trivandrum", nil, nil)
	model := seedModel(t, db, "CB350 Classic")

	_, err := s.Upsert(context.Background(), branch.ID, model.ID, -1, 0)
	require.Error(t, err)
}

func TestAdjustStock_FloorsAtZero(t *testing.T) {
	s, db := setupInventoryTest(t)
	branch := seedBranch(t, db, "TVM", "Trivandrum", nil, nil)
	model := seedModel(t, db, "CB350 Classic")

	record, err := s.AdjustStock(context.Background(), branch.ID, model.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, record.Quantity)

	record, err = s.AdjustStock(context.Background(), branch.ID, model.ID, -10)
	require.NoError(t, err)
	assert.Equal(t, 0, record.Quantity)
}

func TestNearestWithStock_PicksClosestAvailable(t *testing.T) {
	s, db := setupInventoryTest(t)
	source := seedBranch(t, db, "TVM", "Trivandrum", ptr(8.524), ptr(76.936))
	kochi := seedBranch(t, db, "EKM", "Kochi", ptr(9.97), ptr(76.31))
	bangalore := seedBranch(t, db, "BLR", "Bangalore", ptr(12.97), ptr(77.59))
	model := seedModel(t, db, "CB350 Classic")

	// Source branch has stock of its own; it must never be its own answer.
	require.NoError(t, db.Create(&models.Inventory{BranchID: source.ID, ModelID: model.ID, Quantity: 1}).Error)
	require.NoError(t, db.Create(&models.Inventory{BranchID: kochi.ID, ModelID: model.ID, Quantity: 5, Reserved: 2}).Error)
	require.NoError(t, db.Create(&models.Inventory{BranchID: bangalore.ID, ModelID: model.ID, Quantity: 4}).Error)

	nearest, err := s.NearestWithStock(context.Background(), source.ID, model.ID)
	require.NoError(t, err)
	require.NotNil(t, nearest)
	assert.Equal(t, "EKM", nearest.Branch.Code)
	assert.Equal(t, 3, nearest.AvailableQuantity)
	assert.InDelta(t, 175, nearest.DistanceKm, 10)
}

func TestNearestWithStock_SkipsFullyReservedBranches(t *testing.T) {
	s, db := setupInventoryTest(t)
	source := seedBranch(t, db, "TVM", "Trivandrum", ptr(8.524), ptr(76.936))
	kochi := seedBranch(t, db, "EKM", "Kochi", ptr(9.97), ptr(76.31))
	bangalore := seedBranch(t, db, "BLR", "Bangalore", ptr(12.97), ptr(77.59))
	model := seedModel(t, db, "CB350 Classic")

	// Kochi is closer but everything there is reserved.
	require.NoError(t, db.Create(&models.Inventory{BranchID: kochi.ID, ModelID: model.ID, Quantity: 2, Reserved: 2}).Error)
	require.NoError(t, db.Create(&models.Inventory{BranchID: bangalore.ID, ModelID: model.ID, Quantity: 4, Reserved: 1}).Error)

	nearest, err := s.NearestWithStock(context.Background(), source.ID, model.ID)
	require.NoError(t, err)
	require.NotNil(t, nearest)
	assert.Equal(t, "BLR", nearest.Branch.Code)
	assert.Equal(t, 3, nearest.AvailableQuantity)
}

func TestNearestWithStock_SourceWithoutCoordinates(t *testing.T) {
	s, db := setupInventoryTest(t)
	source := seedBranch(t, db, "TVM", "Trivandrum", nil, nil)
	kochi := seedBranch(t, db, "EKM", "Kochi", ptr(9.97), ptr(76.31))
	model := seedModel(t, db, "CB350 Classic")
	require.NoError(t, db.Create(&models.Inventory{BranchID: kochi.ID, ModelID: model.ID, Quantity: 5}).Error)

	nearest, err := s.NearestWithStock(context.Background(), source.ID, model.ID)
	require.NoError(t, err)
	assert.Nil(t, nearest)
}

func TestNearestWithStock_IgnoresCandidatesWithoutCoordinates(t *testing.T) {
	s, db := setupInventoryTest(t)
	source := seedBranch(t, db, "TVM", "Trivandrum", ptr(8.524), ptr(76.936))
	blind := seedBranch(t, db, "XXX", "Nowhere", nil, nil)
	model := seedModel(t, db, "CB350 Classic")
	require.NoError(t, db.Create(&models.Inventory{BranchID: blind.ID, ModelID: model.ID, Quantity: 5}).Error)

	nearest, err := s.NearestWithStock(context.Background(), source.ID, model.ID)
	require.NoError(t, err)
	assert.Nil(t, nearest)
}

func TestListByBranch_PreloadsModel(t *testing.T) {
	s, db := setupInventoryTest(t)
	branch := seedBranch(t, db, "TVM", "Trivandrum", nil, nil)
	model := seedModel(t, db, "CB350 Classic")
	require.NoError(t, db.Create(&models.Inventory{BranchID: branch.ID, ModelID: model.ID, Quantity: 5}).Error)

	records, err := s.ListByBranch(context.Background(), branch.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Model)
	assert.Equal(t, "CB350 Classic", records[0].Model.Name)
}
