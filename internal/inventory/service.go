package inventory

import (
	"context"
	"errors"
	"math"

	"dealerstock-backend/internal/models"

	"gorm.io/gorm"
)

const earthRadiusKm = 6371.0

// Service operates on the coarse (branch x model) inventory ledger.
type Service struct {
	DB *gorm.DB
}

// NearestResult is the resolver output: the closest other branch holding
// available units of the model.
type NearestResult struct {
	Branch            models.Branch       `json:"branch"`
	Model             models.VehicleModel `json:"model"`
	AvailableQuantity int                 `json:"available_quantity"`
	DistanceKm        float64             `json:"distance_km"`
}

// ListByBranch returns the coarse inventory rows for a branch with their
// models preloaded.
func (s *Service) ListByBranch(ctx context.Context, branchID uint) ([]models.Inventory, error) {
	var records []models.Inventory
	if err := s.DB.WithContext(ctx).
		Preload("Model").
		Where("branch_id = ?", branchID).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Upsert replaces the quantity/reserved counters for a (branch, model) pair,
// creating the row if it does not exist.
func (s *Service) Upsert(ctx context.Context, branchID, modelID uint, quantity, reserved int) (*models.Inventory, error) {
	if quantity < 0 || reserved < 0 {
		return nil, errors.New("Quantity and reserved must be non-negative")
	}

	var instance models.Inventory
	err := s.DB.WithContext(ctx).
		Where("branch_id = ? AND model_id = ?", branchID, modelID).
		First(&instance).Error
	if err == gorm.ErrRecordNotFound {
		instance = models.Inventory{BranchID: branchID, ModelID: modelID, Quantity: quantity, Reserved: reserved}
		if err := s.DB.WithContext(ctx).Create(&instance).Error; err != nil {
			return nil, err
		}
		return &instance, nil
	}
	if err != nil {
		return nil, err
	}

	instance.Quantity = quantity
	instance.Reserved = reserved
	if err := s.DB.WithContext(ctx).Save(&instance).Error; err != nil {
		return nil, err
	}
	return &instance, nil
}

// AdjustStock applies a delta to the quantity counter, flooring at zero,
// creating the row on first touch.
func (s *Service) AdjustStock(ctx context.Context, branchID, modelID uint, delta int) (*models.Inventory, error) {
	var instance models.Inventory
	err := s.DB.WithContext(ctx).
		Where("branch_id = ? AND model_id = ?", branchID, modelID).
		First(&instance).Error
	if err == gorm.ErrRecordNotFound {
		instance = models.Inventory{BranchID: branchID, ModelID: modelID}
	} else if err != nil {
		return nil, err
	}

	newQuantity := instance.Quantity + delta
	if newQuantity < 0 {
		newQuantity = 0
	}
	instance.Quantity = newQuantity
	if err := s.DB.WithContext(ctx).Save(&instance).Error; err != nil {
		return nil, err
	}
	return &instance, nil
}

// NearestWithStock finds the geographically closest other branch with
// available (non-reserved) stock of the model. Returns nil, without error,
// when the source branch lacks coordinates or no candidate qualifies.
// Candidates are scanned in branch-id order, so a distance tie goes to the
// lower branch id.
func (s *Service) NearestWithStock(ctx context.Context, sourceBranchID, modelID uint) (*NearestResult, error) {
	var source models.Branch
	if err := s.DB.WithContext(ctx).First(&source, sourceBranchID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	if !source.HasCoordinates() {
		return nil, nil
	}

	var candidates []models.Inventory
	if err := s.DB.WithContext(ctx).
		Preload("Branch").
		Preload("Model").
		Joins("JOIN branches ON branches.id = inventories.branch_id").
		Where("inventories.model_id = ?", modelID).
		Where("inventories.branch_id <> ?", sourceBranchID).
		Where("inventories.quantity - inventories.reserved > 0").
		Where("branches.latitude IS NOT NULL AND branches.longitude IS NOT NULL").
		Order("inventories.branch_id").
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	var nearest *NearestResult
	for _, candidate := range candidates {
		available := candidate.Available()
		if available <= 0 || candidate.Branch == nil || candidate.Model == nil {
			continue
		}
		distance := haversine(*source.Latitude, *source.Longitude, *candidate.Branch.Latitude, *candidate.Branch.Longitude)
		if nearest == nil || distance < nearest.DistanceKm {
			nearest = &NearestResult{
				Branch:            *candidate.Branch,
				Model:             *candidate.Model,
				AvailableQuantity: available,
				DistanceKm:        distance,
			}
		}
	}
	return nearest, nil
}

// haversine computes the great-circle distance in kilometers.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Min(1.0, math.Sqrt(a)))
	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
