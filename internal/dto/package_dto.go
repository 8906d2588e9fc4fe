package dto

import (
	"time"

	"github.com/schreiber-platform/schreiber-api/internal/models"
)

// PackageCreateRequest carries the payload for admin package creation.
type PackageCreateRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	MediaURL    string   `json:"mediaUrl" validate:"omitempty,url"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	CourseIDs   []uint   `json:"courseIds"`
}

// PackageUpdateRequest carries the payload for admin package updates.
type PackageUpdateRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description *string  `json:"description"`
	MediaURL    *string  `json:"mediaUrl" validate:"omitempty,url"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	CourseIDs   *[]uint  `json:"courseIds"`
}

// PackageResponse is the catalog projection of a course package.
type PackageResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	MediaURL    string    `json:"media_url"`
	Price       float64   `json:"price"`
	CourseIDs   []uint    `json:"course_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewPackageResponse converts a CoursePackage model into a DTO.
func NewPackageResponse(model models.CoursePackage) PackageResponse {
	response := PackageResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		MediaURL:    model.MediaURL,
		Price:       model.Price,
		CourseIDs:   make([]uint, 0, len(model.Courses)),
		CreatedAt:   model.CreatedAt,
	}

	for _, link := range model.Courses {
		response.CourseIDs = append(response.CourseIDs, link.CourseID)
	}

	return response
}

// NewPackageResponseSlice converts package models into DTOs.
func NewPackageResponseSlice(packages []models.CoursePackage) []PackageResponse {
	responses := make([]PackageResponse, 0, len(packages))
	for _, pkg := range packages {
		responses = append(responses, NewPackageResponse(pkg))
	}

	return responses
}
