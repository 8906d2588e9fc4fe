package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/schreiber-platform/schreiber-api/internal/dto"
	"github.com/schreiber-platform/schreiber-api/internal/models"
	"github.com/schreiber-platform/schreiber-api/internal/repository"
)

// ErrCourseNotFound indicates the referenced course does not exist.
var ErrCourseNotFound = errors.New("course not found")

const catalogCacheKey = "catalog:courses"

// CourseService manages the course catalog.
type CourseService interface {
	ListCatalog(ctx context.Context) ([]dto.CourseResponse, error)
	Create(ctx context.Context, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	Update(ctx context.Context, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error)
	Delete(ctx context.Context, id uint) error
}

type courseService struct {
	courses   repository.CourseRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(courses repository.CourseRepository, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:   courses,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger.With().Str("component", "course_service").Logger(),
		now:       time.Now,
	}
}

func (s *courseService) ListCatalog(ctx context.Context) ([]dto.CourseResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, catalogCacheKey).Result(); err == nil {
			var responses []dto.CourseResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &responses); unmarshalErr == nil {
				s.logger.Debug().Msg("catalog cache hit")
				return responses, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read catalog cache")
		}
	}

	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := dto.NewCourseResponseSlice(courses, s.now())

	if s.cache != nil {
		if payload, err := json.Marshal(responses); err == nil {
			if err := s.cache.Set(ctx, catalogCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store catalog cache")
			}
		}
	}

	return responses, nil
}

func (s *courseService) Create(ctx context.Context, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Title:       payload.Title,
		Description: payload.Description,
		MediaURL:    payload.MediaURL,
		CourseCode:  generateCourseCode(8),
		Slug:        orSlugified(payload.Slug, payload.Title),
	}

	if payload.Price != nil {
		course.Price = *payload.Price
	}
	course.Discount = clampDiscount(payload.Discount)
	course.DiscountExpiresAt = payload.DiscountExpiresAt

	if err := s.courses.Create(ctx, &course, payload.Tags); err != nil {
		return dto.CourseResponse{}, err
	}

	created, err := s.courses.GetByID(ctx, course.ID)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	s.invalidateCatalog(ctx)
	s.logger.Info().Uint("course_id", created.ID).Str("slug", created.Slug).Msg("course created")

	return dto.NewCourseResponse(created, s.now()), nil
}

func (s *courseService) Update(ctx context.Context, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	course.Title = payload.Title
	course.Slug = orSlugified(payload.Slug, payload.Title)
	if payload.Description != nil {
		course.Description = *payload.Description
	}
	if payload.MediaURL != nil {
		course.MediaURL = *payload.MediaURL
	}
	if payload.Price != nil {
		course.Price = *payload.Price
	}
	if payload.Discount != nil {
		course.Discount = clampDiscount(payload.Discount)
	}
	if payload.DiscountExpiresAt != nil {
		course.DiscountExpiresAt = payload.DiscountExpiresAt
	}

	// Associations are replaced through the tag list, not Save.
	course.Tags = nil
	course.Coupons = nil

	if err := s.courses.Update(ctx, &course, payload.Tags); err != nil {
		return dto.CourseResponse{}, err
	}

	updated, err := s.courses.GetByID(ctx, course.ID)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	s.invalidateCatalog(ctx)
	s.logger.Info().Uint("course_id", updated.ID).Msg("course updated")

	return dto.NewCourseResponse(updated, s.now()), nil
}

func (s *courseService) Delete(ctx context.Context, id uint) error {
	if _, err := s.courses.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateCatalog(ctx)
	s.logger.Info().Uint("course_id", id).Msg("course deleted")

	return nil
}

func (s *courseService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, catalogCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate catalog cache")
	}
}

func clampDiscount(discount *int) *int {
	if discount == nil {
		return nil
	}

	value := *discount
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}

	return &value
}

var slugCleaner = regexp.MustCompile(`[^\w\-]+`)
var slugDashes = regexp.MustCompile(`-{2,}`)

func orSlugified(slug, title string) string {
	if slug != "" {
		return slug
	}
	return slugify(title)
}

func slugify(text string) string {
	slug := strings.ToLower(strings.TrimSpace(text))
	slug = strings.Join(strings.Fields(slug), "-")
	slug = slugCleaner.ReplaceAllString(slug, "")
	slug = slugDashes.ReplaceAllString(slug, "-")

	return slug
}

const courseCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateCourseCode(length int) string {
	code := make([]byte, length)
	for i := range code {
		code[i] = courseCodeCharset[rand.Intn(len(courseCodeCharset))]
	}

	return string(code)
}
