package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/schreiber-platform/schreiber-api/internal/models"
)

// moduleResultKey names the composite unique index columns used as the
// conflict target for upserts.
var moduleResultKey = []clause.Column{
	{Name: "user_id"},
	{Name: "course_id"},
	{Name: "round"},
}

// ModuleResultRepository defines data operations for attempt tracking.
type ModuleResultRepository interface {
	// UpsertWatched atomically creates the row with empty contents and
	// history, or updates only the watched flag when the row exists.
	UpsertWatched(ctx context.Context, userID, courseID uint, round int, watched bool) error
	// UpsertSubmission atomically creates or replaces the submission fields
	// of the row identified by the composite key.
	UpsertSubmission(ctx context.Context, result *models.ModuleResult) error
	Get(ctx context.Context, userID, courseID uint, round int) (models.ModuleResult, error)
	ListByUser(ctx context.Context, userID uint) ([]models.ModuleResult, error)
	ListByUserAndCourse(ctx context.Context, userID, courseID uint) ([]models.ModuleResult, error)
}

type moduleResultRepository struct {
	db *gorm.DB
}

// NewModuleResultRepository instantiates the repository.
func NewModuleResultRepository(db *gorm.DB) ModuleResultRepository {
	return &moduleResultRepository{db: db}
}

func (r *moduleResultRepository) UpsertWatched(ctx context.Context, userID, courseID uint, round int, watched bool) error {
	result := models.ModuleResult{
		UserID:     userID,
		CourseID:   courseID,
		Round:      round,
		Watched:    watched,
		Contents:   models.EmptyContents(),
		Evaluation: models.EmptyEvaluation(),
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   moduleResultKey,
		DoUpdates: clause.AssignmentColumns([]string{"watched", "updated_at"}),
	}).Create(&result).Error
}

func (r *moduleResultRepository) UpsertSubmission(ctx context.Context, result *models.ModuleResult) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: moduleResultKey,
		DoUpdates: clause.AssignmentColumns([]string{
			"contents", "evaluation", "submitted", "submitted_at", "updated_at",
		}),
	}).Create(result).Error
}

func (r *moduleResultRepository) Get(ctx context.Context, userID, courseID uint, round int) (models.ModuleResult, error) {
	var result models.ModuleResult
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND round = ?", userID, courseID, round).
		First(&result).Error
	if err != nil {
		return models.ModuleResult{}, err
	}

	return result, nil
}

func (r *moduleResultRepository) ListByUser(ctx context.Context, userID uint) ([]models.ModuleResult, error) {
	var results []models.ModuleResult
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *moduleResultRepository) ListByUserAndCourse(ctx context.Context, userID, courseID uint) ([]models.ModuleResult, error) {
	var results []models.ModuleResult
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("submitted_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	return results, nil
}
