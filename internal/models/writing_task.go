package models

import (
	"time"

	"gorm.io/datatypes"
)

// TaskTypeWriting is currently the only supported task type.
const TaskTypeWriting = "WRITING"

// WritingTask is an authored exercise presented inside a course module.
type WritingTask struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Position  int            `gorm:"not null;default:0" json:"position"`
	Type      string         `gorm:"size:32;not null" json:"type"`
	Config    datatypes.JSON `gorm:"type:json" json:"config"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
