package models

import (
	"time"

	"gorm.io/datatypes"
)

// ModuleResult tracks a user's attempt at a course module round. One row
// exists per (user, course, round); the evaluation column carries the full
// snapshot history as JSON.
type ModuleResult struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;uniqueIndex:idx_module_result_key" json:"user_id"`
	CourseID    uint           `gorm:"not null;uniqueIndex:idx_module_result_key" json:"course_id"`
	Round       int            `gorm:"not null;uniqueIndex:idx_module_result_key" json:"round"`
	Watched     bool           `gorm:"not null;default:false" json:"watched"`
	Submitted   bool           `gorm:"not null;default:false" json:"submitted"`
	Contents    datatypes.JSON `gorm:"type:json" json:"contents"`
	Evaluation  datatypes.JSON `gorm:"type:json" json:"evaluation"`
	SubmittedAt *time.Time     `json:"submitted_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// EmptyContents is the contents column value for a row created outside the
// submission path.
func EmptyContents() datatypes.JSON {
	return datatypes.JSON([]byte("{}"))
}

// EmptyEvaluation is the evaluation column value with no history entries.
func EmptyEvaluation() datatypes.JSON {
	return datatypes.JSON([]byte(`{"history":[]}`))
}
