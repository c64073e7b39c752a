package transfers

import (
	"context"
	"testing"

	"dealerstock-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTransferTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Transfer{}))
	return &Service{DB: db}, db
}

func TestCreate_RejectsSameBranch(t *testing.T) {
	s, _ := setupTransferTest(t)
	_, err := s.Create(context.Background(), CreateTransferInput{
		SourceBranchID: 1, DestinationBranchID: 1, ModelID: 2, Quantity: 1,
	})
	require.Error(t, err)
}

func TestCreate_RejectsZeroQuantity(t *testing.T) {
	s, _ := setupTransferTest(t)
	_, err := s.Create(context.Background(), CreateTransferInput{
		SourceBranchID: 1, DestinationBranchID: 2, ModelID: 2, Quantity: 0,
	})
	require.Error(t, err)
}

func TestCreate_StartsRequested(t *testing.T) {
	s, _ := setupTransferTest(t)
	transfer, err := s.Create(context.Background(), CreateTransferInput{
		SourceBranchID: 1, DestinationBranchID: 2, ModelID: 3, Quantity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransferRequested, transfer.Status)
	assert.Nil(t, transfer.CompletedAt)
}

func TestUpdateStatus_CompletedStampsTimestamp(t *testing.T) {
	s, _ := setupTransferTest(t)
	transfer, err := s.Create(context.Background(), CreateTransferInput{
		SourceBranchID: 1, DestinationBranchID: 2, ModelID: 3, Quantity: 2,
	})
	require.NoError(t, err)

	updated, err := s.UpdateStatus(context.Background(), transfer.ID, models.TransferCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.TransferCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)

	// Reopening clears the completion stamp.
	reopened, err := s.UpdateStatus(context.Background(), transfer.ID, models.TransferInTransit)
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt)
}

func TestListOpen_ExcludesClosedTransfers(t *testing.T) {
	s, _ := setupTransferTest(t)

	open, err := s.Create(context.Background(), CreateTransferInput{
		SourceBranchID: 1, DestinationBranchID: 2, ModelID: 3, Quantity: 2,
	})
	require.NoError(t, err)
	done, err := s.Create(context.Background(), CreateTransferInput{
		SourceBranchID: 2, DestinationBranchID: 3, ModelID: 3, Quantity: 1,
	})
	require.NoError(t, err)
	_, err = s.UpdateStatus(context.Background(), done.ID, models.TransferCompleted)
	require.NoError(t, err)

	transfers, err := s.ListOpen(context.Background())
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, open.ID, transfers[0].ID)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	s, _ := setupTransferTest(t)
	_, err := s.UpdateStatus(context.Background(), 999, models.TransferApproved)
	require.Error(t, err)
}
