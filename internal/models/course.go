package models

import "time"

// Course is a purchasable writing course in the catalog.
type Course struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	Title             string      `gorm:"size:255;not null" json:"title"`
	Description       string      `gorm:"type:text" json:"description"`
	MediaURL          string      `gorm:"size:512" json:"media_url"`
	CourseCode        string      `gorm:"size:16;uniqueIndex;not null" json:"course_code"`
	Slug              string      `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Price             float64     `gorm:"not null;default:0" json:"price"`
	Discount          *int        `json:"discount"`
	DiscountExpiresAt *time.Time  `json:"discount_expires_at"`
	Tags              []CourseTag `gorm:"constraint:OnDelete:CASCADE" json:"tags"`
	Coupons           []Coupon    `gorm:"constraint:OnDelete:CASCADE" json:"coupons"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// HasActiveDiscount reports whether the course-wide discount applies at the given time.
func (c Course) HasActiveDiscount(now time.Time) bool {
	if c.Discount == nil || *c.Discount <= 0 {
		return false
	}
	return c.DiscountExpiresAt == nil || c.DiscountExpiresAt.After(now)
}

// DiscountedPrice returns the effective price after the course discount, if active.
func (c Course) DiscountedPrice(now time.Time) float64 {
	if !c.HasActiveDiscount(now) {
		return c.Price
	}
	return roundCents(c.Price * (1 - float64(*c.Discount)/100))
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// Tag labels courses for filtering in the catalog.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CourseTag is the pivot between courses and tags.
type CourseTag struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	CourseID uint `gorm:"not null;index" json:"course_id"`
	TagID    uint `gorm:"not null;index" json:"tag_id"`
	Tag      Tag  `gorm:"constraint:OnDelete:CASCADE" json:"tag"`
}

// Coupon grants a one-time percentage discount on a course.
type Coupon struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	Code            string     `gorm:"size:64;uniqueIndex;not null" json:"code"`
	CourseID        uint       `gorm:"not null;index" json:"course_id"`
	DiscountPercent int        `gorm:"not null" json:"discount_percent"`
	Redeemed        bool       `gorm:"not null;default:false" json:"redeemed"`
	ValidFrom       time.Time  `json:"valid_from"`
	ValidTo         *time.Time `json:"valid_to"`
	CreatedAt       time.Time  `json:"created_at"`
}

// IsValid reports whether the coupon can still be redeemed at the given time.
func (c Coupon) IsValid(now time.Time) bool {
	if c.Redeemed || c.ValidFrom.After(now) {
		return false
	}
	return c.ValidTo == nil || !c.ValidTo.Before(now)
}
