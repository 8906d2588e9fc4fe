package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/schreiber-platform/schreiber-api/internal/dto"
	"github.com/schreiber-platform/schreiber-api/internal/models"
	"github.com/schreiber-platform/schreiber-api/internal/repository"
)

// ErrPackageNotFound indicates the referenced package does not exist.
var ErrPackageNotFound = errors.New("package not found")

// PackageService manages course packages.
type PackageService interface {
	List(ctx context.Context) ([]dto.PackageResponse, error)
	Create(ctx context.Context, payload dto.PackageCreateRequest) (dto.PackageResponse, error)
	Update(ctx context.Context, id uint, payload dto.PackageUpdateRequest) (dto.PackageResponse, error)
	Delete(ctx context.Context, id uint) error
}

type packageService struct {
	packages  repository.PackageRepository
	courses   repository.CourseRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewPackageService constructs a PackageService instance.
func NewPackageService(packages repository.PackageRepository, courses repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) PackageService {
	return &packageService{
		packages:  packages,
		courses:   courses,
		validator: validate,
		logger:    logger.With().Str("component", "package_service").Logger(),
	}
}

func (s *packageService) List(ctx context.Context) ([]dto.PackageResponse, error) {
	packages, err := s.packages.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewPackageResponseSlice(packages), nil
}

func (s *packageService) Create(ctx context.Context, payload dto.PackageCreateRequest) (dto.PackageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PackageResponse{}, err
	}

	if err := s.verifyCourses(ctx, payload.CourseIDs); err != nil {
		return dto.PackageResponse{}, err
	}

	pkg := models.CoursePackage{
		Title:       payload.Title,
		Description: payload.Description,
		MediaURL:    payload.MediaURL,
	}
	if payload.Price != nil {
		pkg.Price = *payload.Price
	}

	if err := s.packages.Create(ctx, &pkg, payload.CourseIDs); err != nil {
		return dto.PackageResponse{}, err
	}

	created, err := s.packages.GetByID(ctx, pkg.ID)
	if err != nil {
		return dto.PackageResponse{}, err
	}

	s.logger.Info().Uint("package_id", created.ID).Msg("package created")

	return dto.NewPackageResponse(created), nil
}

func (s *packageService) Update(ctx context.Context, id uint, payload dto.PackageUpdateRequest) (dto.PackageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PackageResponse{}, err
	}

	pkg, err := s.packages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PackageResponse{}, ErrPackageNotFound
		}
		return dto.PackageResponse{}, err
	}

	pkg.Title = payload.Title
	if payload.Description != nil {
		pkg.Description = *payload.Description
	}
	if payload.MediaURL != nil {
		pkg.MediaURL = *payload.MediaURL
	}
	if payload.Price != nil {
		pkg.Price = *payload.Price
	}

	if payload.CourseIDs != nil {
		if err := s.verifyCourses(ctx, *payload.CourseIDs); err != nil {
			return dto.PackageResponse{}, err
		}
	}

	pkg.Courses = nil

	if err := s.packages.Update(ctx, &pkg, payload.CourseIDs); err != nil {
		return dto.PackageResponse{}, err
	}

	updated, err := s.packages.GetByID(ctx, pkg.ID)
	if err != nil {
		return dto.PackageResponse{}, err
	}

	s.logger.Info().Uint("package_id", updated.ID).Msg("package updated")

	return dto.NewPackageResponse(updated), nil
}

func (s *packageService) Delete(ctx context.Context, id uint) error {
	if _, err := s.packages.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPackageNotFound
		}
		return err
	}

	if err := s.packages.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("package_id", id).Msg("package deleted")

	return nil
}

func (s *packageService) verifyCourses(ctx context.Context, courseIDs []uint) error {
	for _, courseID := range courseIDs {
		if _, err := s.courses.GetByID(ctx, courseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}
	}

	return nil
}
