package models

import (
	"time"

	"gorm.io/datatypes"
)

// Import job statuses.
const (
	ImportJobCompleted           = "completed"
	ImportJobCompletedWithIssues = "completed_with_issues"
)

// ImportJob records one bulk upload pass with its JSON summary
// (counts plus the per-row error list).
type ImportJob struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	BranchID       *uint          `gorm:"column:branch_id" json:"branch_id"`
	UploadedByID   *uint          `gorm:"column:uploaded_by_id" json:"uploaded_by_id"`
	SourceFilename string         `gorm:"column:source_filename;size:255;not null" json:"source_filename"`
	SheetName      *string        `gorm:"column:sheet_name;size:120" json:"sheet_name"`
	Status         string         `gorm:"column:status;size:30;not null;default:pending" json:"status"`
	Summary        datatypes.JSON `gorm:"column:summary" json:"summary"`
	ExecutedAt     *time.Time     `gorm:"column:executed_at" json:"executed_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (ImportJob) TableName() string {
	return "import_jobs"
}
