package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/schreiber-platform/schreiber-api/internal/models"
)

// PurchaseRepository defines data operations for purchases and enrollments.
type PurchaseRepository interface {
	// CreateCoursePurchase records the purchase and, when the purchase
	// carries a coupon, marks the coupon redeemed in the same transaction.
	CreateCoursePurchase(ctx context.Context, purchase *models.CoursePurchase) error
	CreatePackagePurchase(ctx context.Context, purchase *models.PackagePurchase) error
	ListCoursePurchases(ctx context.Context, userID uint) ([]models.CoursePurchase, error)
	ListPackagePurchases(ctx context.Context, userID uint) ([]models.PackagePurchase, error)
	// ListCourseParticipants returns the course's purchases with their
	// purchasers preloaded, newest first.
	ListCourseParticipants(ctx context.Context, courseID uint) ([]models.CoursePurchase, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository instantiates the repository.
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) CreateCoursePurchase(ctx context.Context, purchase *models.CoursePurchase) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(purchase).Error; err != nil {
			return err
		}

		if purchase.CouponID == nil {
			return nil
		}

		return tx.Model(&models.Coupon{}).
			Where("id = ?", *purchase.CouponID).
			Update("redeemed", true).Error
	})
}

func (r *purchaseRepository) CreatePackagePurchase(ctx context.Context, purchase *models.PackagePurchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *purchaseRepository) ListCoursePurchases(ctx context.Context, userID uint) ([]models.CoursePurchase, error) {
	var purchases []models.CoursePurchase
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("purchased_at DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}

	return purchases, nil
}

func (r *purchaseRepository) ListCourseParticipants(ctx context.Context, courseID uint) ([]models.CoursePurchase, error) {
	var purchases []models.CoursePurchase
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("course_id = ?", courseID).
		Order("purchased_at DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}

	return purchases, nil
}

func (r *purchaseRepository) ListPackagePurchases(ctx context.Context, userID uint) ([]models.PackagePurchase, error) {
	var purchases []models.PackagePurchase
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("purchased_at DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}

	return purchases, nil
}
