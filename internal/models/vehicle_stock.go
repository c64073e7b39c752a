package models

import "time"

// VehicleStock is the row-identified stock ledger bound to the canonical
// workbook. ExcelRowNumber is the join key with the spreadsheet row and must
// never be reassigned to a different logical stock item.
type VehicleStock struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	ExcelRowNumber *int    `gorm:"column:excel_row_number;uniqueIndex" json:"excel_row_number"`
	ModelCode      *string `gorm:"column:model_code;size:50;index" json:"model_code"`
	ModelName      string  `gorm:"column:model_name;not null;index" json:"model_name"`
	Variant        *string `gorm:"column:variant" json:"variant"`
	Color          *string `gorm:"column:color" json:"color"`
	Quantity       int     `gorm:"column:quantity;not null;default:0" json:"quantity"`
	Reserved       int     `gorm:"column:reserved;not null;default:0" json:"reserved"`

	// Branch fields denormalized from the directory at sync time.
	BranchCode   *string    `gorm:"column:branch_code;size:20;index" json:"branch_code"`
	BranchName   *string    `gorm:"column:branch_name;size:150" json:"branch_name"`
	City         *string    `gorm:"column:city;size:120" json:"city"`
	Latitude     *float64   `gorm:"column:latitude" json:"latitude"`
	Longitude    *float64   `gorm:"column:longitude" json:"longitude"`
	LastSyncedAt *time.Time `gorm:"column:last_synced_at" json:"last_synced_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (VehicleStock) TableName() string {
	return "vehicle_stock"
}
