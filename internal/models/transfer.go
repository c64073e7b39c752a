package models

import "time"

// Transfer statuses. Requested/approved/in_transit count as open.
const (
	TransferRequested = "requested"
	TransferApproved  = "approved"
	TransferInTransit = "in_transit"
	TransferCompleted = "completed"
	TransferCancelled = "cancelled"
)

// Transfer is an inter-branch stock movement request for a model.
type Transfer struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	SourceBranchID      uint       `gorm:"column:source_branch_id;not null;index" json:"source_branch_id"`
	DestinationBranchID uint       `gorm:"column:destination_branch_id;not null;index" json:"destination_branch_id"`
	ModelID             uint       `gorm:"column:model_id;not null" json:"model_id"`
	Quantity            int        `gorm:"column:quantity;not null" json:"quantity"`
	Status              string     `gorm:"column:status;size:30;not null;default:requested" json:"status"`
	RequestedAt         time.Time  `gorm:"column:requested_at;autoCreateTime" json:"requested_at"`
	CompletedAt         *time.Time `gorm:"column:completed_at" json:"completed_at"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (Transfer) TableName() string {
	return "transfers"
}
