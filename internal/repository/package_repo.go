package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/schreiber-platform/schreiber-api/internal/models"
)

// PackageRepository defines data operations for course packages.
type PackageRepository interface {
	List(ctx context.Context) ([]models.CoursePackage, error)
	GetByID(ctx context.Context, id uint) (models.CoursePackage, error)
	// Create persists the package and its course links in one transaction.
	Create(ctx context.Context, pkg *models.CoursePackage, courseIDs []uint) error
	// Update saves the package fields and, when courseIDs is non-nil,
	// replaces the course links with the given set.
	Update(ctx context.Context, pkg *models.CoursePackage, courseIDs *[]uint) error
	Delete(ctx context.Context, id uint) error
	ListPackageCourses(ctx context.Context, packageIDs []uint) ([]models.CoursePackageCourse, error)
}

type packageRepository struct {
	db *gorm.DB
}

// NewPackageRepository instantiates the repository.
func NewPackageRepository(db *gorm.DB) PackageRepository {
	return &packageRepository{db: db}
}

func (r *packageRepository) List(ctx context.Context) ([]models.CoursePackage, error) {
	var packages []models.CoursePackage
	err := r.db.WithContext(ctx).
		Preload("Courses").
		Order("created_at DESC").
		Find(&packages).Error
	if err != nil {
		return nil, err
	}

	return packages, nil
}

func (r *packageRepository) GetByID(ctx context.Context, id uint) (models.CoursePackage, error) {
	var pkg models.CoursePackage
	if err := r.db.WithContext(ctx).Preload("Courses").First(&pkg, id).Error; err != nil {
		return models.CoursePackage{}, err
	}

	return pkg, nil
}

func (r *packageRepository) Create(ctx context.Context, pkg *models.CoursePackage, courseIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(pkg).Error; err != nil {
			return err
		}

		return linkCourses(tx, pkg.ID, courseIDs)
	})
}

func (r *packageRepository) Update(ctx context.Context, pkg *models.CoursePackage, courseIDs *[]uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(pkg).Error; err != nil {
			return err
		}

		if courseIDs == nil {
			return nil
		}

		if err := tx.Where("course_package_id = ?", pkg.ID).Delete(&models.CoursePackageCourse{}).Error; err != nil {
			return err
		}

		return linkCourses(tx, pkg.ID, *courseIDs)
	})
}

func linkCourses(tx *gorm.DB, packageID uint, courseIDs []uint) error {
	for _, courseID := range courseIDs {
		link := models.CoursePackageCourse{CoursePackageID: packageID, CourseID: courseID}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}

	return nil
}

func (r *packageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.CoursePackage{}, id).Error
}

func (r *packageRepository) ListPackageCourses(ctx context.Context, packageIDs []uint) ([]models.CoursePackageCourse, error) {
	if len(packageIDs) == 0 {
		return []models.CoursePackageCourse{}, nil
	}

	var links []models.CoursePackageCourse
	err := r.db.WithContext(ctx).
		Where("course_package_id IN ?", packageIDs).
		Find(&links).Error
	if err != nil {
		return nil, err
	}

	return links, nil
}
