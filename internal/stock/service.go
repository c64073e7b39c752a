package stock

import (
	"context"
	"errors"
	"fmt"

	"dealerstock-backend/internal/excelsync"
	"dealerstock-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service administers the row-identified stock ledger. Every mutation is
// mirrored into the canonical workbook; a failed push is logged and surfaced
// without reversing the database write.
type Service struct {
	DB   *gorm.DB
	Sync *excelsync.Service
}

// ListFilter narrows the stock listing.
type ListFilter struct {
	ModelName   string
	BranchCode  string
	City        string
	InStockOnly bool
}

type UpdateStockInput struct {
	ModelCode *string
	ModelName *string
	Variant   *string
	Color     *string
	Quantity  *int
	Reserved  *int
}

// ListStock returns stock entries matching the filter, ordered by branch,
// model, variant and color.
func (s *Service) ListStock(ctx context.Context, filter ListFilter) ([]models.VehicleStock, error) {
	query := s.DB.WithContext(ctx).Model(&models.VehicleStock{})
	if filter.ModelName != "" {
		query = query.Where("model_name = ?", filter.ModelName)
	}
	if filter.BranchCode != "" {
		query = query.Where("branch_code = ?", filter.BranchCode)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.InStockOnly {
		query = query.Where("quantity > 0")
	}

	var stocks []models.VehicleStock
	if err := query.Order("branch_code, model_name, variant, color").Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// GetStock returns one stock entry.
func (s *Service) GetStock(ctx context.Context, stockID uint) (*models.VehicleStock, error) {
	var stock models.VehicleStock
	if err := s.DB.WithContext(ctx).First(&stock, stockID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("Vehicle stock not found")
		}
		return nil, err
	}
	return &stock, nil
}

// CreateStock inserts a new stock entry and mirrors it to the workbook.
func (s *Service) CreateStock(ctx context.Context, stock *models.VehicleStock) (*models.VehicleStock, error) {
	if stock.Quantity < 0 || stock.Reserved < 0 {
		return nil, errors.New("Quantity and reserved must be non-negative")
	}
	if err := s.DB.WithContext(ctx).Create(stock).Error; err != nil {
		return nil, err
	}
	s.pushBestEffort(ctx, stock)
	return stock, nil
}

// UpdateStock patches the descriptive fields and counters of an entry.
func (s *Service) UpdateStock(ctx context.Context, stockID uint, in UpdateStockInput) (*models.VehicleStock, error) {
	stock, err := s.GetStock(ctx, stockID)
	if err != nil {
		return nil, err
	}

	if in.ModelCode != nil {
		stock.ModelCode = in.ModelCode
	}
	if in.ModelName != nil {
		stock.ModelName = *in.ModelName
	}
	if in.Variant != nil {
		stock.Variant = in.Variant
	}
	if in.Color != nil {
		stock.Color = in.Color
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, errors.New("Quantity must be non-negative")
		}
		stock.Quantity = *in.Quantity
	}
	if in.Reserved != nil {
		if *in.Reserved < 0 {
			return nil, errors.New("Reserved must be non-negative")
		}
		stock.Reserved = *in.Reserved
	}

	if err := s.DB.WithContext(ctx).Save(stock).Error; err != nil {
		return nil, err
	}
	s.pushBestEffort(ctx, stock)
	return stock, nil
}

// AdjustStock applies a delta to the quantity counter. A negative result is
// rejected before mutation, never clamped.
func (s *Service) AdjustStock(ctx context.Context, stockID uint, delta int) (*models.VehicleStock, error) {
	stock, err := s.GetStock(ctx, stockID)
	if err != nil {
		return nil, err
	}

	newQuantity := stock.Quantity + delta
	if newQuantity < 0 {
		return nil, fmt.Errorf("Adjustment would result in negative stock (%d)", newQuantity)
	}

	stock.Quantity = newQuantity
	if err := s.DB.WithContext(ctx).Save(stock).Error; err != nil {
		return nil, err
	}
	s.pushBestEffort(ctx, stock)
	return stock, nil
}

// DeleteStock removes a stock entry. The workbook row is left for the next
// full import or export to reconcile.
func (s *Service) DeleteStock(ctx context.Context, stockID uint) error {
	stock, err := s.GetStock(ctx, stockID)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(stock).Error
}

func (s *Service) pushBestEffort(ctx context.Context, stock *models.VehicleStock) {
	if err := s.Sync.SyncStock(ctx, stock); err != nil {
		log.Warn().Err(err).Uint("stock_id", stock.ID).Msg("Workbook push failed after stock mutation")
	}
}
