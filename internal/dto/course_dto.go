package dto

import (
	"time"

	"github.com/schreiber-platform/schreiber-api/internal/models"
)

// CourseCreateRequest carries the payload for admin course creation.
type CourseCreateRequest struct {
	Title             string     `json:"title" validate:"required"`
	Description       string     `json:"description"`
	MediaURL          string     `json:"mediaUrl" validate:"omitempty,url"`
	Price             *float64   `json:"price" validate:"omitempty,gte=0"`
	Discount          *int       `json:"discount"`
	DiscountExpiresAt *time.Time `json:"discountExpiresAt"`
	Slug              string     `json:"slug"`
	Tags              []string   `json:"tags"`
}

// CourseUpdateRequest carries the payload for admin course updates.
type CourseUpdateRequest struct {
	Title             string     `json:"title" validate:"required"`
	Description       *string    `json:"description"`
	MediaURL          *string    `json:"mediaUrl" validate:"omitempty,url"`
	Price             *float64   `json:"price" validate:"omitempty,gte=0"`
	Discount          *int       `json:"discount"`
	DiscountExpiresAt *time.Time `json:"discountExpiresAt"`
	Slug              string     `json:"slug"`
	Tags              *[]string  `json:"tags"`
}

// CouponResponse serializes a coupon attached to a course.
type CouponResponse struct {
	ID              string     `json:"id"`
	Code            string     `json:"code"`
	DiscountPercent int        `json:"discount_percent"`
	Redeemed        bool       `json:"redeemed"`
	ValidFrom       time.Time  `json:"valid_from"`
	ValidTo         *time.Time `json:"valid_to"`
}

// CourseResponse is the catalog projection of a course.
type CourseResponse struct {
	ID                uint             `json:"id"`
	Code              string           `json:"code"`
	Slug              string           `json:"slug"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	MediaURL          string           `json:"media_url"`
	Price             float64          `json:"price"`
	IsDiscounted      bool             `json:"is_discounted"`
	DiscountPercent   *int             `json:"discount_percent"`
	DiscountExpiresAt *time.Time       `json:"discount_expires_at"`
	Tags              []string         `json:"tags"`
	Coupons           []CouponResponse `json:"coupons"`
	CreatedAt         time.Time        `json:"created_at"`
}

// NewCourseResponse converts a Course model into a DTO.
func NewCourseResponse(model models.Course, now time.Time) CourseResponse {
	response := CourseResponse{
		ID:                model.ID,
		Code:              model.CourseCode,
		Slug:              model.Slug,
		Title:             model.Title,
		Description:       model.Description,
		MediaURL:          model.MediaURL,
		Price:             model.Price,
		IsDiscounted:      model.HasActiveDiscount(now),
		DiscountExpiresAt: model.DiscountExpiresAt,
		Tags:              make([]string, 0, len(model.Tags)),
		Coupons:           make([]CouponResponse, 0, len(model.Coupons)),
		CreatedAt:         model.CreatedAt,
	}

	if response.IsDiscounted {
		response.DiscountPercent = model.Discount
	}

	for _, link := range model.Tags {
		if link.Tag.Name != "" {
			response.Tags = append(response.Tags, link.Tag.Name)
		}
	}

	for _, coupon := range model.Coupons {
		response.Coupons = append(response.Coupons, CouponResponse{
			ID:              coupon.ID,
			Code:            coupon.Code,
			DiscountPercent: coupon.DiscountPercent,
			Redeemed:        coupon.Redeemed,
			ValidFrom:       coupon.ValidFrom,
			ValidTo:         coupon.ValidTo,
		})
	}

	return response
}

// NewCourseResponseSlice converts course models into DTOs.
func NewCourseResponseSlice(courses []models.Course, now time.Time) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course, now))
	}

	return responses
}
