package models

import "time"

// Inventory is the coarse (branch x model) stock ledger fed by bulk uploads.
// At most one row per pair; imports replace quantity/reserved wholesale.
type Inventory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BranchID  uint      `gorm:"column:branch_id;index;not null" json:"branch_id"`
	ModelID   uint      `gorm:"column:model_id;index;not null" json:"model_id"`
	Quantity  int       `gorm:"column:quantity;not null;default:0" json:"quantity"`
	Reserved  int       `gorm:"column:reserved;not null;default:0" json:"reserved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Branch *Branch       `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Model  *VehicleModel `gorm:"foreignKey:ModelID" json:"model,omitempty"`
}

func (Inventory) TableName() string {
	return "inventories"
}

// Available is the stock not earmarked for an unpaid sale.
func (i *Inventory) Available() int {
	return i.Quantity - i.Reserved
}
