package dto

import (
	"time"

	"github.com/schreiber-platform/schreiber-api/internal/models"
)

// CoursePurchaseRequest carries the payload for buying a single course.
type CoursePurchaseRequest struct {
	CourseID   uint   `json:"courseId" validate:"required,gt=0"`
	CouponCode string `json:"couponCode"`
}

// PackagePurchaseRequest carries the payload for buying a course package.
type PackagePurchaseRequest struct {
	PackageID uint `json:"packageId" validate:"required,gt=0"`
}

// PurchaseResponse is the receipt returned for both purchase kinds.
type PurchaseResponse struct {
	ID              uint      `json:"id"`
	PricePaid       float64   `json:"price_paid"`
	DiscountApplied int       `json:"discount_applied"`
	PurchasedAt     time.Time `json:"purchased_at"`
}

// OwnedCourseResponse is an entry in the "my courses" listing.
type OwnedCourseResponse struct {
	CourseResponse
	PurchasedAt     time.Time `json:"purchased_at"`
	PricePaid       float64   `json:"price_paid"`
	DiscountApplied int       `json:"discount_applied"`
}

// EnrollmentResponse mirrors the combined package/course enrollment view.
type EnrollmentResponse struct {
	Packages []PackageCourseLink   `json:"packages"`
	Courses  []OwnedCourseResponse `json:"courses"`
}

// PackageCourseLink exposes which courses a purchased package unlocks.
type PackageCourseLink struct {
	CoursePackageID uint `json:"course_package_id"`
	CourseID        uint `json:"course_id"`
}

// ParticipantResponse is one purchaser in a course participant listing.
type ParticipantResponse struct {
	UserID      uint      `json:"user_id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// NewOwnedCourseResponse converts a purchase with its course into a DTO.
func NewOwnedCourseResponse(purchase models.CoursePurchase, now time.Time) OwnedCourseResponse {
	return OwnedCourseResponse{
		CourseResponse:  NewCourseResponse(purchase.Course, now),
		PurchasedAt:     purchase.PurchasedAt,
		PricePaid:       purchase.PricePaid,
		DiscountApplied: purchase.DiscountApplied,
	}
}
