package models

import "time"

// CoursePurchase records a completed course purchase for a user.
type CoursePurchase struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	CourseID        uint      `gorm:"not null;index" json:"course_id"`
	PricePaid       float64   `gorm:"not null" json:"price_paid"`
	DiscountApplied int       `gorm:"not null;default:0" json:"discount_applied"`
	CouponID        *string   `gorm:"size:36" json:"coupon_id"`
	PurchasedAt     time.Time `json:"purchased_at"`
	Course          Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
	User            User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// PackagePurchase records a completed course-package purchase for a user.
type PackagePurchase struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	UserID      uint          `gorm:"not null;index" json:"user_id"`
	PackageID   uint          `gorm:"not null;index" json:"package_id"`
	PricePaid   float64       `gorm:"not null" json:"price_paid"`
	PurchasedAt time.Time     `json:"purchased_at"`
	Package     CoursePackage `gorm:"foreignKey:PackageID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"package"`
}
