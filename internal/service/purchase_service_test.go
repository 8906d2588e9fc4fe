package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/schreiber-platform/schreiber-api/internal/dto"
	"github.com/schreiber-platform/schreiber-api/internal/models"
	"github.com/schreiber-platform/schreiber-api/internal/repository"
)

type purchaseFixture struct {
	db       *gorm.DB
	svc      PurchaseService
	packages PackageService
}

func setupPurchaseFixture(t *testing.T) purchaseFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:purchasesvc?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Course{}, &models.Tag{}, &models.CourseTag{}, &models.Coupon{},
		&models.CoursePackage{}, &models.CoursePackageCourse{},
		&models.CoursePurchase{}, &models.PackagePurchase{},
	))
	for _, table := range []string{"course_purchases", "package_purchases", "course_package_courses", "course_packages", "course_tags", "coupons", "tags", "courses", "users"} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	courseRepo := repository.NewCourseRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)

	return purchaseFixture{
		db:       db,
		svc:      NewPurchaseService(purchaseRepo, courseRepo, packageRepo, validate, zerolog.Nop()),
		packages: NewPackageService(packageRepo, courseRepo, validate, zerolog.Nop()),
	}
}

func createCourse(t *testing.T, db *gorm.DB, price float64, discount *int, expiry *time.Time) models.Course {
	t.Helper()
	course := models.Course{
		Title:             "Course " + uuid.NewString()[:8],
		CourseCode:        uuid.NewString()[:8],
		Slug:              uuid.NewString(),
		Price:             price,
		Discount:          discount,
		DiscountExpiresAt: expiry,
	}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func TestPurchaseCourseFullPrice(t *testing.T) {
	fx := setupPurchaseFixture(t)
	course := createCourse(t, fx.db, 120, nil, nil)

	receipt, err := fx.svc.PurchaseCourse(context.Background(), 1, dto.CoursePurchaseRequest{CourseID: course.ID})
	require.NoError(t, err)
	require.Equal(t, float64(120), receipt.PricePaid)
	require.Equal(t, 0, receipt.DiscountApplied)
}

func TestPurchaseCourseWithDiscountAndCoupon(t *testing.T) {
	fx := setupPurchaseFixture(t)
	discount := 20
	expiry := time.Now().Add(time.Hour)
	course := createCourse(t, fx.db, 100, &discount, &expiry)

	coupon := models.Coupon{
		ID:              uuid.NewString(),
		CourseID:        course.ID,
		Code:            "WELCOME10",
		DiscountPercent: 10,
		ValidFrom:       time.Now().Add(-time.Hour),
	}
	require.NoError(t, fx.db.Create(&coupon).Error)

	receipt, err := fx.svc.PurchaseCourse(context.Background(), 2, dto.CoursePurchaseRequest{
		CourseID:   course.ID,
		CouponCode: "WELCOME10",
	})
	require.NoError(t, err)
	// 100 with 20% discount is 80, the 10% coupon takes it to 72.
	require.Equal(t, float64(72), receipt.PricePaid)
	require.Equal(t, 30, receipt.DiscountApplied)

	// The coupon is single-use.
	var stored models.Coupon
	require.NoError(t, fx.db.First(&stored, "id = ?", coupon.ID).Error)
	require.True(t, stored.Redeemed)

	_, err = fx.svc.PurchaseCourse(context.Background(), 3, dto.CoursePurchaseRequest{
		CourseID:   course.ID,
		CouponCode: "WELCOME10",
	})
	require.ErrorIs(t, err, ErrInvalidCoupon)
}

func TestPurchaseCourseInvalidCoupon(t *testing.T) {
	fx := setupPurchaseFixture(t)
	course := createCourse(t, fx.db, 50, nil, nil)

	_, err := fx.svc.PurchaseCourse(context.Background(), 1, dto.CoursePurchaseRequest{
		CourseID:   course.ID,
		CouponCode: "NO-SUCH-CODE",
	})
	require.ErrorIs(t, err, ErrInvalidCoupon)
}

func TestPurchaseCourseUnknownCourse(t *testing.T) {
	fx := setupPurchaseFixture(t)

	_, err := fx.svc.PurchaseCourse(context.Background(), 1, dto.CoursePurchaseRequest{CourseID: 9999})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestPurchasePackageAndEnrollments(t *testing.T) {
	fx := setupPurchaseFixture(t)
	ctx := context.Background()

	courseA := createCourse(t, fx.db, 30, nil, nil)
	courseB := createCourse(t, fx.db, 40, nil, nil)

	bundlePrice := 60.0
	pkg, err := fx.packages.Create(ctx, dto.PackageCreateRequest{
		Title:     "Bundle",
		Price:     &bundlePrice,
		CourseIDs: []uint{courseA.ID, courseB.ID},
	})
	require.NoError(t, err)

	receipt, err := fx.svc.PurchasePackage(ctx, 5, dto.PackagePurchaseRequest{PackageID: pkg.ID})
	require.NoError(t, err)
	require.Equal(t, float64(60), receipt.PricePaid)

	// A direct course purchase on top of the package.
	_, err = fx.svc.PurchaseCourse(ctx, 5, dto.CoursePurchaseRequest{CourseID: courseA.ID})
	require.NoError(t, err)

	enrollments, err := fx.svc.Enrollments(ctx, 5)
	require.NoError(t, err)
	require.Len(t, enrollments.Packages, 2)
	require.Len(t, enrollments.Courses, 1)
	require.Equal(t, courseA.ID, enrollments.Courses[0].ID)

	owned, err := fx.svc.OwnedCourses(ctx, 5)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	require.Equal(t, float64(30), owned[0].PricePaid)
}

func TestEnrollmentsEmpty(t *testing.T) {
	fx := setupPurchaseFixture(t)

	enrollments, err := fx.svc.Enrollments(context.Background(), 404)
	require.NoError(t, err)
	require.Empty(t, enrollments.Packages)
	require.Empty(t, enrollments.Courses)
}

func createPurchaser(t *testing.T, db *gorm.DB, email, first, last string) models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		PasswordHash: "irrelevant",
		FirstName:    first,
		LastName:     last,
		Role:         models.RoleUser,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestCourseParticipants(t *testing.T) {
	fx := setupPurchaseFixture(t)
	ctx := context.Background()
	course := createCourse(t, fx.db, 50, nil, nil)
	other := createCourse(t, fx.db, 50, nil, nil)

	anna := createPurchaser(t, fx.db, "anna@example.com", "Anna", "Muster")
	ben := createPurchaser(t, fx.db, "ben@example.com", "Ben", "Beispiel")

	_, err := fx.svc.PurchaseCourse(ctx, anna.ID, dto.CoursePurchaseRequest{CourseID: course.ID})
	require.NoError(t, err)
	_, err = fx.svc.PurchaseCourse(ctx, ben.ID, dto.CoursePurchaseRequest{CourseID: course.ID})
	require.NoError(t, err)
	// Purchases of other courses stay out of the listing.
	_, err = fx.svc.PurchaseCourse(ctx, anna.ID, dto.CoursePurchaseRequest{CourseID: other.ID})
	require.NoError(t, err)

	participants, err := fx.svc.Participants(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, participants, 2)

	emails := make([]string, 0, len(participants))
	for _, p := range participants {
		emails = append(emails, p.Email)
	}
	require.ElementsMatch(t, []string{"anna@example.com", "ben@example.com"}, emails)
	for _, p := range participants {
		if p.Email == "anna@example.com" {
			require.Equal(t, "Anna", p.FirstName)
			require.Equal(t, "Muster", p.LastName)
			require.Equal(t, anna.ID, p.UserID)
		}
	}
}

func TestCourseParticipantsCollapseRepeatPurchases(t *testing.T) {
	fx := setupPurchaseFixture(t)
	ctx := context.Background()
	course := createCourse(t, fx.db, 25, nil, nil)
	anna := createPurchaser(t, fx.db, "anna@example.com", "Anna", "Muster")

	for i := 0; i < 2; i++ {
		_, err := fx.svc.PurchaseCourse(ctx, anna.ID, dto.CoursePurchaseRequest{CourseID: course.ID})
		require.NoError(t, err)
	}

	participants, err := fx.svc.Participants(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	require.Equal(t, anna.ID, participants[0].UserID)
}

func TestCourseParticipantsUnknownCourse(t *testing.T) {
	fx := setupPurchaseFixture(t)

	_, err := fx.svc.Participants(context.Background(), 9999)
	require.ErrorIs(t, err, ErrCourseNotFound)
}
