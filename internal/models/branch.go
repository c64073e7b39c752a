package models

import (
	"time"

	"gorm.io/gorm"
)

// Branch is a geocoded dealership location. Rows are created or patched as a
// byproduct of workbook/bulk reconciliation, never deleted by it.
type Branch struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Code      string         `gorm:"column:code;size:20;uniqueIndex;not null" json:"code"`
	Name      string         `gorm:"column:name;size:150;uniqueIndex;not null" json:"name"`
	City      string         `gorm:"column:city;size:120;not null" json:"city"`
	Latitude  *float64       `gorm:"column:latitude" json:"latitude"`
	Longitude *float64       `gorm:"column:longitude" json:"longitude"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Branch) TableName() string {
	return "branches"
}

// HasCoordinates reports whether the branch can participate in
// nearest-stock resolution.
func (b *Branch) HasCoordinates() bool {
	return b.Latitude != nil && b.Longitude != nil
}
