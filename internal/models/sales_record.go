package models

import "time"

// Payment modes accepted on a sales record.
const (
	PaymentModeCash    = "CASH"
	PaymentModeIP      = "IP" // installment plan
	PaymentModeFinance = "FINANCE"
)

// SalesRecord links a customer to one VehicleStock unit. While
// IsPaymentReceived is false the unit counts against the stock entry's
// reserved counter; the reservation state machine in internal/sales keeps
// that counter equal to the number of unpaid, undeleted sales per entry.
type SalesRecord struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	CustomerID     uint `gorm:"column:customer_id;not null" json:"customer_id"`
	VehicleStockID uint `gorm:"column:vehicle_stock_id;not null" json:"vehicle_stock_id"`
	ExecutiveID    *uint `gorm:"column:executive_id" json:"executive_id"`

	// Vehicle details denormalized for quick access.
	VehicleName string `gorm:"column:vehicle_name;not null" json:"vehicle_name"`
	Variant     string `gorm:"column:variant;not null" json:"variant"`
	Color       string `gorm:"column:color;not null" json:"color"`

	PaymentMode       string     `gorm:"column:payment_mode;size:20;not null" json:"payment_mode"`
	Bank              *string    `gorm:"column:bank" json:"bank"`
	PaymentDate       *time.Time `gorm:"column:payment_date" json:"payment_date"`
	AmountReceived    float64    `gorm:"column:amount_received;type:decimal(10,2);not null" json:"amount_received"`
	IsPaymentReceived bool       `gorm:"column:is_payment_received;not null;default:false" json:"is_payment_received"`

	Location   *string `gorm:"column:location;index" json:"location"`
	BranchCode *string `gorm:"column:branch_code;size:20;index" json:"branch_code"`
	BranchName *string `gorm:"column:branch_name;size:150" json:"branch_name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

func (SalesRecord) TableName() string {
	return "sales_records"
}
