package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/schreiber-platform/schreiber-api/internal/dto"
	"github.com/schreiber-platform/schreiber-api/internal/evaluation"
	"github.com/schreiber-platform/schreiber-api/internal/models"
	"github.com/schreiber-platform/schreiber-api/internal/repository"
)

// ErrResultNotFound indicates no module result exists for the requested key.
var ErrResultNotFound = errors.New("result not found")

// AttemptService orchestrates module attempt tracking: the watched flag,
// evaluation submissions and history reads.
type AttemptService interface {
	RecordWatched(ctx context.Context, userID uint, payload dto.WatchedRequest) error
	Submit(ctx context.Context, userID uint, payload dto.AttemptSubmitRequest) (dto.ModuleResultResponse, error)
	Get(ctx context.Context, userID, courseID uint, round int) (dto.ModuleResultResponse, error)
	ListByUser(ctx context.Context, userID uint) ([]dto.ModuleResultResponse, error)
	// CourseResults returns all module results of a user for a course,
	// newest first. With aggregate set, each result's history is replaced by
	// its single averaged snapshot.
	CourseResults(ctx context.Context, userID, courseID uint, aggregate bool) ([]dto.ModuleResultResponse, error)
}

type attemptService struct {
	results   repository.ModuleResultRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAttemptService constructs an AttemptService instance.
func NewAttemptService(results repository.ModuleResultRepository, validate *validator.Validate, logger zerolog.Logger) AttemptService {
	return &attemptService{
		results:   results,
		validator: validate,
		logger:    logger.With().Str("component", "attempt_service").Logger(),
		now:       time.Now,
	}
}

func (s *attemptService) RecordWatched(ctx context.Context, userID uint, payload dto.WatchedRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	if err := s.results.UpsertWatched(ctx, userID, payload.CourseID, payload.Round, payload.Watched); err != nil {
		return err
	}

	s.logger.Info().
		Uint("user_id", userID).
		Uint("course_id", payload.CourseID).
		Int("round", payload.Round).
		Msg("watched flag recorded")

	return nil
}

func (s *attemptService) Submit(ctx context.Context, userID uint, payload dto.AttemptSubmitRequest) (dto.ModuleResultResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ModuleResultResponse{}, err
	}

	submittedAt := s.now()
	snapshot := evaluation.Snapshot{
		Task:        payload.Task,
		Round:       payload.Round,
		SubmittedAt: &submittedAt,
		Total:       payload.Evaluation.Total,
		Grade:       payload.Evaluation.Grade,
		Sub:         payload.SubMetrics,
		Breakdown: map[string]evaluation.Criterion{
			"Aufbau":     payload.Evaluation.Aufbau,
			"Formales":   payload.Evaluation.Formales,
			"Inhalt":     payload.Evaluation.Inhalt,
			"Sprachstil": payload.Evaluation.Sprachstil,
		},
	}

	history := []evaluation.Snapshot{snapshot}
	contents := payload.Answers

	existing, err := s.results.Get(ctx, userID, payload.CourseID, payload.Round)
	switch {
	case err == nil:
		// Re-submitting a task replaces its previous snapshot; other tasks
		// keep their history entries.
		prior := decodeEvaluation(existing.Evaluation)
		kept := make([]evaluation.Snapshot, 0, len(prior.History)+1)
		for _, entry := range prior.History {
			if entry.Task != payload.Task {
				kept = append(kept, entry)
			}
		}
		history = append(kept, snapshot)

		merged := decodeContents(existing.Contents)
		for key, value := range payload.Answers {
			merged[key] = value
		}
		contents = merged
	case errors.Is(err, gorm.ErrRecordNotFound):
		// First submission for this key.
	default:
		return dto.ModuleResultResponse{}, err
	}

	evalJSON, err := json.Marshal(evaluation.Evaluation{History: history})
	if err != nil {
		return dto.ModuleResultResponse{}, fmt.Errorf("failed to encode evaluation: %w", err)
	}

	contentsJSON, err := json.Marshal(contents)
	if err != nil {
		return dto.ModuleResultResponse{}, fmt.Errorf("failed to encode contents: %w", err)
	}

	result := models.ModuleResult{
		UserID:      userID,
		CourseID:    payload.CourseID,
		Round:       payload.Round,
		Submitted:   true,
		Contents:    datatypes.JSON(contentsJSON),
		Evaluation:  datatypes.JSON(evalJSON),
		SubmittedAt: &submittedAt,
	}

	if err := s.results.UpsertSubmission(ctx, &result); err != nil {
		return dto.ModuleResultResponse{}, err
	}

	stored, err := s.results.Get(ctx, userID, payload.CourseID, payload.Round)
	if err != nil {
		return dto.ModuleResultResponse{}, err
	}

	s.logger.Info().
		Uint("user_id", userID).
		Uint("course_id", payload.CourseID).
		Int("round", payload.Round).
		Str("task", payload.Task).
		Int("history_len", len(history)).
		Msg("attempt submitted")

	return dto.NewModuleResultResponse(stored, decodeEvaluation(stored.Evaluation), decodeContents(stored.Contents)), nil
}

func (s *attemptService) Get(ctx context.Context, userID, courseID uint, round int) (dto.ModuleResultResponse, error) {
	result, err := s.results.Get(ctx, userID, courseID, round)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ModuleResultResponse{}, ErrResultNotFound
		}
		return dto.ModuleResultResponse{}, err
	}

	return dto.NewModuleResultResponse(result, decodeEvaluation(result.Evaluation), nil), nil
}

func (s *attemptService) ListByUser(ctx context.Context, userID uint) ([]dto.ModuleResultResponse, error) {
	results, err := s.results.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ModuleResultResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, dto.NewModuleResultResponse(result, decodeEvaluation(result.Evaluation), nil))
	}

	return responses, nil
}

func (s *attemptService) CourseResults(ctx context.Context, userID, courseID uint, aggregate bool) ([]dto.ModuleResultResponse, error) {
	results, err := s.results.ListByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ModuleResultResponse, 0, len(results))
	for _, result := range results {
		eval := decodeEvaluation(result.Evaluation)

		if aggregate {
			if averaged, ok := evaluation.AverageHistory(eval.History); ok {
				eval.History = []evaluation.Snapshot{averaged}
			}
		}

		responses = append(responses, dto.NewModuleResultResponse(result, eval, decodeContents(result.Contents)))
	}

	return responses, nil
}

// decodeEvaluation tolerates malformed or empty stored payloads by falling
// back to an empty history.
func decodeEvaluation(raw datatypes.JSON) evaluation.Evaluation {
	var eval evaluation.Evaluation
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &eval)
	}
	if eval.History == nil {
		eval.History = []evaluation.Snapshot{}
	}

	return eval
}

func decodeContents(raw datatypes.JSON) map[string]interface{} {
	contents := map[string]interface{}{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &contents)
	}

	return contents
}
