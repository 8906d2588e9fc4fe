package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/schreiber-platform/schreiber-api/internal/models"
)

// CourseRepository defines data operations for the course catalog.
type CourseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
	// Create persists the course and attaches the named tags, creating any
	// tag that does not exist yet. The whole write runs in one transaction.
	Create(ctx context.Context, course *models.Course, tagNames []string) error
	// Update saves the course fields and, when tagNames is non-nil, replaces
	// the tag links with the given set.
	Update(ctx context.Context, course *models.Course, tagNames *[]string) error
	Delete(ctx context.Context, id uint) error
	FindValidCoupon(ctx context.Context, code string, now time.Time) (models.Coupon, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates the repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Course{}).
		Preload("Tags.Tag").
		Preload("Coupons")
}

func (r *courseRepository) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.baseQuery(ctx).Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.baseQuery(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course, tagNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(course).Error; err != nil {
			return err
		}

		return attachTags(tx, course.ID, tagNames)
	})
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course, tagNames *[]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(course).Error; err != nil {
			return err
		}

		if tagNames == nil {
			return nil
		}

		if err := tx.Where("course_id = ?", course.ID).Delete(&models.CourseTag{}).Error; err != nil {
			return err
		}

		return attachTags(tx, course.ID, *tagNames)
	})
}

func attachTags(tx *gorm.DB, courseID uint, tagNames []string) error {
	for _, name := range tagNames {
		if name == "" {
			continue
		}

		var tag models.Tag
		if err := tx.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return err
		}

		link := models.CourseTag{CourseID: courseID, TagID: tag.ID}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}

	return nil
}

func (r *courseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Course{}, id).Error
}

func (r *courseRepository) FindValidCoupon(ctx context.Context, code string, now time.Time) (models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		Where("redeemed = ?", false).
		Where("valid_from <= ?", now).
		Where("valid_to IS NULL OR valid_to >= ?", now).
		First(&coupon).Error
	if err != nil {
		return models.Coupon{}, err
	}

	return coupon, nil
}
