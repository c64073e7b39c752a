package models

import "time"

// VehicleModel is reference data for a sellable model. Auto-created by the
// bulk importer when an unseen code or name shows up; ExternalCode is
// back-filled onto a name match that previously lacked one.
type VehicleModel struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ExternalCode *string   `gorm:"column:external_code;size:50;uniqueIndex" json:"external_code"`
	Name         string    `gorm:"column:name;size:120;uniqueIndex;not null" json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (VehicleModel) TableName() string {
	return "vehicle_models"
}
