package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dealerstock-backend/internal/excelsync"
	"dealerstock-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SyncFailure wraps a workbook push error that happened after the database
// transaction already committed. The ledger write stands; the caller is told
// the mirror lagged so the push can be retried.
type SyncFailure struct {
	Err error
}

func (e *SyncFailure) Error() string {
	return fmt.Sprintf("stock updated but workbook sync failed: %v", e.Err)
}

func (e *SyncFailure) Unwrap() error { return e.Err }

// Service is the reservation state machine around sales records. Every sale
// lifecycle event mutates the referenced VehicleStock counters in the same
// transaction, keeping reserved equal to the number of unpaid, undeleted
// sales per stock entry.
type Service struct {
	DB          *gorm.DB
	Sync        *excelsync.Service
	PurgeWindow time.Duration // unpaid sales older than this are swept
}

type CreateSaleInput struct {
	CustomerID        *uint
	CustomerName      *string
	CustomerPhone     *string
	CustomerLocation  *string
	VehicleStockID    uint
	ExecutiveID       *uint
	PaymentMode       string
	Bank              *string
	PaymentDate       *time.Time
	AmountReceived    float64
	IsPaymentReceived bool
}

type UpdateSaleInput struct {
	PaymentMode       *string
	Bank              *string
	PaymentDate       *time.Time
	AmountReceived    *float64
	IsPaymentReceived *bool
	Location          *string
}

// ListFilter narrows the sales listing.
type ListFilter struct {
	Location    string
	PaymentMode string
	FromDate    *time.Time
	ToDate      *time.Time
	ExecutiveID *uint
	Offset      int
	Limit       int
}

// CreateSale consumes one unit of stock and, while the payment is pending,
// reserves it. Refused before any mutation when no physical unit is left.
func (s *Service) CreateSale(ctx context.Context, in CreateSaleInput) (*models.SalesRecord, error) {
	var sale *models.SalesRecord
	var stock models.VehicleStock

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customerID, err := resolveCustomer(tx, in)
		if err != nil {
			return err
		}

		if err := tx.Where("id = ?", in.VehicleStockID).First(&stock).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New("Vehicle stock not found")
			}
			return err
		}

		if stock.Quantity < 1 {
			return fmt.Errorf("Vehicle out of stock (%s %s %s)",
				stock.ModelName, orDash(stock.Variant), orDash(stock.Color))
		}

		stock.Quantity--
		if !in.IsPaymentReceived {
			stock.Reserved++
		}
		if err := tx.Save(&stock).Error; err != nil {
			return err
		}

		location := in.CustomerLocation
		if location == nil {
			location = stock.City
		}
		sale = &models.SalesRecord{
			CustomerID:        customerID,
			VehicleStockID:    stock.ID,
			ExecutiveID:       in.ExecutiveID,
			VehicleName:       stock.ModelName,
			Variant:           orDefault(stock.Variant, "STANDARD"),
			Color:             orDefault(stock.Color, "DEFAULT"),
			PaymentMode:       in.PaymentMode,
			Bank:              in.Bank,
			PaymentDate:       in.PaymentDate,
			AmountReceived:    in.AmountReceived,
			IsPaymentReceived: in.IsPaymentReceived,
			Location:          location,
			BranchCode:        stock.BranchCode,
			BranchName:        stock.BranchName,
		}
		return tx.Create(sale).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.Sync.SyncStock(ctx, &stock); err != nil {
		return sale, &SyncFailure{Err: err}
	}
	return sale, nil
}

// GetSale returns one sales record with its customer.
func (s *Service) GetSale(ctx context.Context, saleID uint) (*models.SalesRecord, error) {
	var sale models.SalesRecord
	if err := s.DB.WithContext(ctx).Preload("Customer").First(&sale, saleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("Sale not found")
		}
		return nil, err
	}
	return &sale, nil
}

// UpdateSale patches a sales record. A payment-state flip moves the
// reservation on the referenced stock entry in the same transaction.
func (s *Service) UpdateSale(ctx context.Context, saleID uint, in UpdateSaleInput) (*models.SalesRecord, error) {
	var sale models.SalesRecord
	var stock *models.VehicleStock

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sale, saleID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New("Sale not found")
			}
			return err
		}

		if in.IsPaymentReceived != nil && *in.IsPaymentReceived != sale.IsPaymentReceived {
			var st models.VehicleStock
			if err := tx.First(&st, sale.VehicleStockID).Error; err == nil {
				if *in.IsPaymentReceived {
					releaseReservation(&st)
				} else {
					st.Reserved++
				}
				if err := tx.Save(&st).Error; err != nil {
					return err
				}
				stock = &st
			} else if err != gorm.ErrRecordNotFound {
				return err
			}
			sale.IsPaymentReceived = *in.IsPaymentReceived
		}

		if in.PaymentMode != nil {
			sale.PaymentMode = *in.PaymentMode
		}
		if in.Bank != nil {
			sale.Bank = in.Bank
		}
		if in.PaymentDate != nil {
			sale.PaymentDate = in.PaymentDate
		}
		if in.AmountReceived != nil {
			sale.AmountReceived = *in.AmountReceived
		}
		if in.Location != nil {
			sale.Location = in.Location
		}
		return tx.Save(&sale).Error
	})
	if err != nil {
		return nil, err
	}

	if stock != nil {
		if err := s.Sync.SyncStock(ctx, stock); err != nil {
			return &sale, &SyncFailure{Err: err}
		}
	}
	return &sale, nil
}

// DeleteSale removes a sale and restores the stock unit it consumed; an
// unpaid sale also releases its reservation.
func (s *Service) DeleteSale(ctx context.Context, saleID uint) error {
	var stock *models.VehicleStock

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale models.SalesRecord
		if err := tx.First(&sale, saleID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New("Sale not found")
			}
			return err
		}

		var st models.VehicleStock
		err := tx.First(&st, sale.VehicleStockID).Error
		if err == nil {
			st.Quantity++
			if !sale.IsPaymentReceived {
				releaseReservation(&st)
			}
			if err := tx.Save(&st).Error; err != nil {
				return err
			}
			stock = &st
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		return tx.Delete(&sale).Error
	})
	if err != nil {
		return err
	}

	if stock != nil {
		if err := s.Sync.SyncStock(ctx, stock); err != nil {
			return &SyncFailure{Err: err}
		}
	}
	return nil
}

// ListSales sweeps overdue unpaid sales first, then returns records matching
// the filter, newest first.
func (s *Service) ListSales(ctx context.Context, filter ListFilter) ([]models.SalesRecord, error) {
	if _, err := s.PurgeOverdueUnpaidSales(ctx); err != nil {
		return nil, err
	}

	query := s.DB.WithContext(ctx).Model(&models.SalesRecord{}).Preload("Customer")
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}
	if filter.PaymentMode != "" {
		query = query.Where("payment_mode = ?", filter.PaymentMode)
	}
	if filter.FromDate != nil {
		query = query.Where("payment_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("payment_date <= ?", *filter.ToDate)
	}
	if filter.ExecutiveID != nil {
		query = query.Where("executive_id = ?", *filter.ExecutiveID)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var sales []models.SalesRecord
	if err := query.Order("created_at DESC").Offset(filter.Offset).Limit(limit).Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// PurgeOverdueUnpaidSales deletes unpaid sales older than the purge window,
// restoring their stock unit and releasing their reservation. The sweep is
// one transaction; affected stock entries are pushed to the workbook after
// commit. Returns the number of purged sales.
func (s *Service) PurgeOverdueUnpaidSales(ctx context.Context) (int, error) {
	threshold := time.Now().UTC().Add(-s.PurgeWindow)

	affected := map[uint]bool{}
	purged := 0

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var overdue []models.SalesRecord
		if err := tx.Where("is_payment_received = ? AND created_at < ?", false, threshold).
			Find(&overdue).Error; err != nil {
			return err
		}
		for _, sale := range overdue {
			if err := ctx.Err(); err != nil {
				return err
			}
			var stock models.VehicleStock
			err := tx.First(&stock, sale.VehicleStockID).Error
			if err == nil {
				stock.Quantity++
				releaseReservation(&stock)
				if err := tx.Save(&stock).Error; err != nil {
					return err
				}
				affected[stock.ID] = true
			} else if err != gorm.ErrRecordNotFound {
				return err
			}
			if err := tx.Delete(&sale).Error; err != nil {
				return err
			}
			purged++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if purged > 0 {
		log.Info().Int("purged", purged).Msg("Swept overdue unpaid sales")
	}
	for stockID := range affected {
		var stock models.VehicleStock
		if err := s.DB.WithContext(ctx).First(&stock, stockID).Error; err != nil {
			continue
		}
		if err := s.Sync.SyncStock(ctx, &stock); err != nil {
			log.Warn().Err(err).Uint("stock_id", stockID).Msg("Workbook push failed after purge")
		}
	}
	return purged, nil
}

// releaseReservation decrements reserved with a floor of zero. Hitting the
// floor means reserved already disagreed with the open unpaid sales, so it
// is logged rather than silently absorbed.
func releaseReservation(stock *models.VehicleStock) {
	if stock.Reserved > 0 {
		stock.Reserved--
		return
	}
	log.Warn().Uint("stock_id", stock.ID).Msg("Reserved counter already zero on release; possible accounting drift")
}

func resolveCustomer(tx *gorm.DB, in CreateSaleInput) (uint, error) {
	if in.CustomerID != nil {
		return *in.CustomerID, nil
	}
	if in.CustomerName == nil {
		return 0, errors.New("Either customer_id or customer_name must be provided")
	}
	customer := models.Customer{
		Name:     *in.CustomerName,
		Phone:    in.CustomerPhone,
		Location: in.CustomerLocation,
	}
	if err := tx.Create(&customer).Error; err != nil {
		return 0, err
	}
	return customer.ID, nil
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func orDefault(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}
