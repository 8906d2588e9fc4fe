package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/schreiber-platform/schreiber-api/internal/models"
)

// TaskRepository defines data operations for writing tasks.
type TaskRepository interface {
	// CreateBatch persists all tasks in one transaction; none are kept when
	// any create fails.
	CreateBatch(ctx context.Context, tasks []models.WritingTask) ([]models.WritingTask, error)
	List(ctx context.Context) ([]models.WritingTask, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository instantiates the repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) CreateBatch(ctx context.Context, tasks []models.WritingTask) ([]models.WritingTask, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range tasks {
			if err := tx.Create(&tasks[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskRepository) List(ctx context.Context) ([]models.WritingTask, error) {
	var tasks []models.WritingTask
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}
