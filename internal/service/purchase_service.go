package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/schreiber-platform/schreiber-api/internal/dto"
	"github.com/schreiber-platform/schreiber-api/internal/models"
	"github.com/schreiber-platform/schreiber-api/internal/observability"
	"github.com/schreiber-platform/schreiber-api/internal/repository"
)

// ErrInvalidCoupon indicates the coupon is unknown, redeemed or out of its
// validity window.
var ErrInvalidCoupon = errors.New("invalid or expired coupon")

// PurchaseService records purchases and answers enrollment queries.
type PurchaseService interface {
	PurchaseCourse(ctx context.Context, userID uint, payload dto.CoursePurchaseRequest) (dto.PurchaseResponse, error)
	PurchasePackage(ctx context.Context, userID uint, payload dto.PackagePurchaseRequest) (dto.PurchaseResponse, error)
	OwnedCourses(ctx context.Context, userID uint) ([]dto.OwnedCourseResponse, error)
	Enrollments(ctx context.Context, userID uint) (dto.EnrollmentResponse, error)
	// Participants lists the users who purchased the course, newest
	// purchase first; repeat purchases by the same user collapse to one entry.
	Participants(ctx context.Context, courseID uint) ([]dto.ParticipantResponse, error)
}

type purchaseService struct {
	purchases repository.PurchaseRepository
	courses   repository.CourseRepository
	packages  repository.PackageRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewPurchaseService constructs a PurchaseService instance.
func NewPurchaseService(purchases repository.PurchaseRepository, courses repository.CourseRepository, packages repository.PackageRepository, validate *validator.Validate, logger zerolog.Logger) PurchaseService {
	return &purchaseService{
		purchases: purchases,
		courses:   courses,
		packages:  packages,
		validator: validate,
		logger:    logger.With().Str("component", "purchase_service").Logger(),
		now:       time.Now,
	}
}

func (s *purchaseService) PurchaseCourse(ctx context.Context, userID uint, payload dto.CoursePurchaseRequest) (dto.PurchaseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PurchaseResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, payload.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PurchaseResponse{}, ErrCourseNotFound
		}
		return dto.PurchaseResponse{}, err
	}

	now := s.now()
	price := course.DiscountedPrice(now)
	discountApplied := 0
	if course.HasActiveDiscount(now) {
		discountApplied = *course.Discount
	}

	var couponID *string
	if payload.CouponCode != "" {
		coupon, err := s.courses.FindValidCoupon(ctx, payload.CouponCode, now)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.PurchaseResponse{}, ErrInvalidCoupon
			}
			return dto.PurchaseResponse{}, err
		}

		price = roundToCents(price * (1 - float64(coupon.DiscountPercent)/100))
		discountApplied += coupon.DiscountPercent
		couponID = &coupon.ID
	}

	purchase := models.CoursePurchase{
		UserID:          userID,
		CourseID:        course.ID,
		PricePaid:       price,
		DiscountApplied: discountApplied,
		CouponID:        couponID,
		PurchasedAt:     now,
	}

	if err := s.purchases.CreateCoursePurchase(ctx, &purchase); err != nil {
		return dto.PurchaseResponse{}, err
	}

	observability.Purchases().WithLabelValues("course").Inc()
	s.logger.Info().
		Uint("user_id", userID).
		Uint("course_id", course.ID).
		Float64("price_paid", price).
		Msg("course purchased")

	return dto.PurchaseResponse{
		ID:              purchase.ID,
		PricePaid:       purchase.PricePaid,
		DiscountApplied: purchase.DiscountApplied,
		PurchasedAt:     purchase.PurchasedAt,
	}, nil
}

func (s *purchaseService) PurchasePackage(ctx context.Context, userID uint, payload dto.PackagePurchaseRequest) (dto.PurchaseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PurchaseResponse{}, err
	}

	pkg, err := s.packages.GetByID(ctx, payload.PackageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PurchaseResponse{}, ErrPackageNotFound
		}
		return dto.PurchaseResponse{}, err
	}

	purchase := models.PackagePurchase{
		UserID:      userID,
		PackageID:   pkg.ID,
		PricePaid:   pkg.Price,
		PurchasedAt: s.now(),
	}

	if err := s.purchases.CreatePackagePurchase(ctx, &purchase); err != nil {
		return dto.PurchaseResponse{}, err
	}

	observability.Purchases().WithLabelValues("package").Inc()
	s.logger.Info().
		Uint("user_id", userID).
		Uint("package_id", pkg.ID).
		Msg("package purchased")

	return dto.PurchaseResponse{
		ID:          purchase.ID,
		PricePaid:   purchase.PricePaid,
		PurchasedAt: purchase.PurchasedAt,
	}, nil
}

func (s *purchaseService) OwnedCourses(ctx context.Context, userID uint) ([]dto.OwnedCourseResponse, error) {
	purchases, err := s.purchases.ListCoursePurchases(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	responses := make([]dto.OwnedCourseResponse, 0, len(purchases))
	for _, purchase := range purchases {
		responses = append(responses, dto.NewOwnedCourseResponse(purchase, now))
	}

	return responses, nil
}

func (s *purchaseService) Enrollments(ctx context.Context, userID uint) (dto.EnrollmentResponse, error) {
	packagePurchases, err := s.purchases.ListPackagePurchases(ctx, userID)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}

	packageIDs := make([]uint, 0, len(packagePurchases))
	for _, purchase := range packagePurchases {
		packageIDs = append(packageIDs, purchase.PackageID)
	}

	links, err := s.packages.ListPackageCourses(ctx, packageIDs)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}

	owned, err := s.OwnedCourses(ctx, userID)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}

	response := dto.EnrollmentResponse{
		Packages: make([]dto.PackageCourseLink, 0, len(links)),
		Courses:  owned,
	}

	for _, link := range links {
		response.Packages = append(response.Packages, dto.PackageCourseLink{
			CoursePackageID: link.CoursePackageID,
			CourseID:        link.CourseID,
		})
	}

	return response, nil
}

func (s *purchaseService) Participants(ctx context.Context, courseID uint) ([]dto.ParticipantResponse, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	purchases, err := s.purchases.ListCourseParticipants(ctx, courseID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(purchases))
	participants := make([]dto.ParticipantResponse, 0, len(purchases))
	for _, purchase := range purchases {
		if seen[purchase.UserID] {
			continue
		}
		seen[purchase.UserID] = true
		participants = append(participants, dto.ParticipantResponse{
			UserID:      purchase.UserID,
			Email:       purchase.User.Email,
			FirstName:   purchase.User.FirstName,
			LastName:    purchase.User.LastName,
			PurchasedAt: purchase.PurchasedAt,
		})
	}

	return participants, nil
}

func roundToCents(v float64) float64 {
	return math.Round(v*100) / 100
}
