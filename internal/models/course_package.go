package models

import "time"

// CoursePackage bundles several courses under a single price.
type CoursePackage struct {
	ID          uint                  `gorm:"primaryKey" json:"id"`
	Title       string                `gorm:"size:255;not null" json:"title"`
	Description string                `gorm:"type:text" json:"description"`
	MediaURL    string                `gorm:"size:512" json:"media_url"`
	Price       float64               `gorm:"not null;default:0" json:"price"`
	Courses     []CoursePackageCourse `gorm:"constraint:OnDelete:CASCADE" json:"courses"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// CoursePackageCourse links a package to one of its member courses.
type CoursePackageCourse struct {
	ID              uint `gorm:"primaryKey" json:"id"`
	CoursePackageID uint `gorm:"not null;index" json:"course_package_id"`
	CourseID        uint `gorm:"not null;index" json:"course_id"`
}
