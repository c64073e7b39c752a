package models

import "time"

// Customer is the buyer on a sales record. May be created inline during sale
// creation when only a name/phone/location is supplied.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;index" json:"name"`
	Phone     *string   `gorm:"column:phone" json:"phone"`
	Email     *string   `gorm:"column:email" json:"email"`
	Location  *string   `gorm:"column:location;index" json:"location"`
	Address   *string   `gorm:"column:address" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}
