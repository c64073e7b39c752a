package transfers

import (
	"context"
	"errors"
	"time"

	"dealerstock-backend/internal/models"

	"gorm.io/gorm"
)

var openStatuses = []string{models.TransferRequested, models.TransferApproved, models.TransferInTransit}

// Service tracks inter-branch stock transfer requests.
type Service struct {
	DB *gorm.DB
}

type CreateTransferInput struct {
	SourceBranchID      uint
	DestinationBranchID uint
	ModelID             uint
	Quantity            int
}

// Create records a new transfer request in the requested state.
func (s *Service) Create(ctx context.Context, in CreateTransferInput) (*models.Transfer, error) {
	if in.SourceBranchID == in.DestinationBranchID {
		return nil, errors.New("Source and destination branch must differ")
	}
	if in.Quantity < 1 {
		return nil, errors.New("Quantity must be at least 1")
	}

	transfer := &models.Transfer{
		SourceBranchID:      in.SourceBranchID,
		DestinationBranchID: in.DestinationBranchID,
		ModelID:             in.ModelID,
		Quantity:            in.Quantity,
		Status:              models.TransferRequested,
	}
	if err := s.DB.WithContext(ctx).Create(transfer).Error; err != nil {
		return nil, err
	}
	return transfer, nil
}

// ListOpen returns transfers that are still in flight, newest first.
func (s *Service) ListOpen(ctx context.Context) ([]models.Transfer, error) {
	var transfers []models.Transfer
	if err := s.DB.WithContext(ctx).
		Where("status IN ?", openStatuses).
		Order("requested_at DESC").
		Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// UpdateStatus moves a transfer through its lifecycle, stamping or clearing
// completed_at as it crosses the completed boundary.
func (s *Service) UpdateStatus(ctx context.Context, transferID uint, status string) (*models.Transfer, error) {
	var transfer models.Transfer
	if err := s.DB.WithContext(ctx).First(&transfer, transferID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("Transfer not found")
		}
		return nil, err
	}

	transfer.Status = status
	if status == models.TransferCompleted {
		now := time.Now().UTC()
		transfer.CompletedAt = &now
	} else if isOpen(status) {
		transfer.CompletedAt = nil
	}
	if err := s.DB.WithContext(ctx).Save(&transfer).Error; err != nil {
		return nil, err
	}
	return &transfer, nil
}

func isOpen(status string) bool {
	for _, s := range openStatuses {
		if s == status {
			return true
		}
	}
	return false
}
