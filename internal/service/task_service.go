package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"

	"github.com/schreiber-platform/schreiber-api/internal/dto"
	"github.com/schreiber-platform/schreiber-api/internal/models"
	"github.com/schreiber-platform/schreiber-api/internal/repository"
)

// ErrInvalidTaskConfig indicates a task config failed schema validation.
var ErrInvalidTaskConfig = errors.New("invalid task config")

// taskConfigSchema constrains the authored task config payload. Prompt and
// hints carry user-facing rich text; everything else is structural.
const taskConfigSchema = `{
	"type": "object",
	"properties": {
		"prompt": {"type": "string", "minLength": 1},
		"minWords": {"type": "integer", "minimum": 0},
		"maxWords": {"type": "integer", "minimum": 0},
		"textType": {"type": "string"},
		"hints": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["prompt"]
}`

// TaskService manages authored writing tasks.
type TaskService interface {
	CreateBatch(ctx context.Context, payload dto.TaskBatchRequest) ([]dto.TaskResponse, error)
	List(ctx context.Context) ([]dto.TaskResponse, error)
}

type taskService struct {
	tasks     repository.TaskRepository
	validator *validator.Validate
	schema    *jsonschema.Schema
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewTaskService constructs a TaskService instance.
func NewTaskService(tasks repository.TaskRepository, validate *validator.Validate, logger zerolog.Logger) TaskService {
	return &taskService{
		tasks:     tasks,
		validator: validate,
		schema:    jsonschema.MustCompileString("task_config.json", taskConfigSchema),
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "task_service").Logger(),
	}
}

func (s *taskService) CreateBatch(ctx context.Context, payload dto.TaskBatchRequest) ([]dto.TaskResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	tasks := make([]models.WritingTask, 0, len(payload.Tasks))
	for _, input := range payload.Tasks {
		config, err := s.sanitizeConfig(input.Config)
		if err != nil {
			return nil, err
		}

		tasks = append(tasks, models.WritingTask{
			Title:    s.sanitizer.Sanitize(input.Title),
			Position: input.Position,
			Type:     models.TaskTypeWriting,
			Config:   config,
		})
	}

	created, err := s.tasks.CreateBatch(ctx, tasks)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("count", len(created)).Msg("writing tasks created")

	return dto.NewTaskResponseSlice(created), nil
}

func (s *taskService) List(ctx context.Context) ([]dto.TaskResponse, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewTaskResponseSlice(tasks), nil
}

// sanitizeConfig validates the config against the schema and sanitizes its
// rich-text fields.
func (s *taskService) sanitizeConfig(raw json.RawMessage) (datatypes.JSON, error) {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTaskConfig, err)
	}

	if err := s.schema.Validate(decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTaskConfig, err)
	}

	config, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, ErrInvalidTaskConfig
	}

	if prompt, ok := config["prompt"].(string); ok {
		config["prompt"] = s.sanitizer.Sanitize(prompt)
	}
	if hints, ok := config["hints"].([]interface{}); ok {
		for i, hint := range hints {
			if text, ok := hint.(string); ok {
				hints[i] = s.sanitizer.Sanitize(text)
			}
		}
	}

	encoded, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to encode task config: %w", err)
	}

	return datatypes.JSON(encoded), nil
}
