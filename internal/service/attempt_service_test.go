package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/schreiber-platform/schreiber-api/internal/dto"
	"github.com/schreiber-platform/schreiber-api/internal/evaluation"
	"github.com/schreiber-platform/schreiber-api/internal/models"
	"github.com/schreiber-platform/schreiber-api/internal/repository"
)

func setupAttemptService(t *testing.T) AttemptService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:attemptsvc?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ModuleResult{}))
	require.NoError(t, db.Exec("DELETE FROM module_results").Error)

	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAttemptService(repository.NewModuleResultRepository(db), validate, zerolog.Nop())
}

func submitPayload(courseID uint, round int, task string, total float64) dto.AttemptSubmitRequest {
	return dto.AttemptSubmitRequest{
		CourseID: courseID,
		Round:    round,
		Task:     task,
		Answers:  map[string]interface{}{task: "Mein Text zu " + task},
		Evaluation: &dto.EvaluationPayload{
			Total:      total,
			Grade:      "gut",
			Aufbau:     evaluation.Criterion{Points: 10},
			Formales:   evaluation.Criterion{Points: 11},
			Inhalt:     evaluation.Criterion{Points: 12},
			Sprachstil: evaluation.Criterion{Points: 13},
		},
		SubMetrics: map[string]map[string]float64{
			"grammar": {"spelling": total - 10},
		},
	}
}

func TestAttemptServiceWatchedCreatesEmptyResult(t *testing.T) {
	svc := setupAttemptService(t)
	ctx := context.Background()

	err := svc.RecordWatched(ctx, 1, dto.WatchedRequest{Watched: true, Round: 0, CourseID: 7})
	require.NoError(t, err)

	result, err := svc.Get(ctx, 1, 7, 0)
	require.NoError(t, err)
	require.True(t, result.Watched)
	require.False(t, result.Submitted)
	require.Empty(t, result.Evaluation.History)
}

func TestAttemptServiceWatchedRepeatLeavesRowUnchanged(t *testing.T) {
	svc := setupAttemptService(t)
	ctx := context.Background()
	payload := dto.WatchedRequest{Watched: true, Round: 2, CourseID: 3}

	require.NoError(t, svc.RecordWatched(ctx, 9, payload))
	first, err := svc.Get(ctx, 9, 3, 2)
	require.NoError(t, err)

	require.NoError(t, svc.RecordWatched(ctx, 9, payload))
	second, err := svc.Get(ctx, 9, 3, 2)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID, "repeat upsert must not create a second row")
	require.Equal(t, first, second)
}

func TestAttemptServiceWatchedRejectsFalse(t *testing.T) {
	svc := setupAttemptService(t)

	err := svc.RecordWatched(context.Background(), 1, dto.WatchedRequest{Watched: false, Round: 0, CourseID: 7})
	require.Error(t, err)
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}

func TestAttemptServiceWatchedKeepsSubmission(t *testing.T) {
	svc := setupAttemptService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, 2, submitPayload(7, 1, "brief", 80))
	require.NoError(t, err)

	require.NoError(t, svc.RecordWatched(ctx, 2, dto.WatchedRequest{Watched: true, Round: 1, CourseID: 7}))

	result, err := svc.Get(ctx, 2, 7, 1)
	require.NoError(t, err)
	require.True(t, result.Watched)
	require.True(t, result.Submitted)
	require.Len(t, result.Evaluation.History, 1, "watched update must not reset evaluation history")
}

func TestAttemptServiceSubmitReplacesSameTask(t *testing.T) {
	svc := setupAttemptService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, 3, submitPayload(9, 0, "brief", 60))
	require.NoError(t, err)
	require.Len(t, first.Evaluation.History, 1)
	require.NotNil(t, first.SubmittedAt)

	// A different task extends the history.
	second, err := svc.Submit(ctx, 3, submitPayload(9, 0, "bericht", 70))
	require.NoError(t, err)
	require.Len(t, second.Evaluation.History, 2)

	// Re-submitting an existing task replaces its snapshot.
	third, err := svc.Submit(ctx, 3, submitPayload(9, 0, "brief", 90))
	require.NoError(t, err)
	require.Len(t, third.Evaluation.History, 2)

	var briefTotal float64
	for _, entry := range third.Evaluation.History {
		if entry.Task == "brief" {
			briefTotal = entry.Total
		}
	}
	require.Equal(t, float64(90), briefTotal)

	// Answers accumulate across tasks.
	require.Contains(t, third.Contents, "brief")
	require.Contains(t, third.Contents, "bericht")
}

func TestAttemptServiceRoundsAreIsolated(t *testing.T) {
	svc := setupAttemptService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, 4, submitPayload(5, 0, "brief", 50))
	require.NoError(t, err)

	roundOne, err := svc.Submit(ctx, 4, submitPayload(5, 1, "brief", 95))
	require.NoError(t, err)
	require.Len(t, roundOne.Evaluation.History, 1, "a new round starts with an empty history")

	roundZero, err := svc.Get(ctx, 4, 5, 0)
	require.NoError(t, err)
	require.Len(t, roundZero.Evaluation.History, 1)
	require.Equal(t, float64(50), roundZero.Evaluation.History[0].Total)
}

func TestAttemptServiceGetMissing(t *testing.T) {
	svc := setupAttemptService(t)

	_, err := svc.Get(context.Background(), 42, 42, 0)
	require.ErrorIs(t, err, ErrResultNotFound)
}

func TestAttemptServiceCourseResultsAggregation(t *testing.T) {
	svc := setupAttemptService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, 6, submitPayload(11, 0, "brief", 80))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, 6, submitPayload(11, 0, "bericht", 90))
	require.NoError(t, err)

	plain, err := svc.CourseResults(ctx, 6, 11, false)
	require.NoError(t, err)
	require.Len(t, plain, 1)
	require.Len(t, plain[0].Evaluation.History, 2)

	aggregated, err := svc.CourseResults(ctx, 6, 11, true)
	require.NoError(t, err)
	require.Len(t, aggregated, 1)
	require.Len(t, aggregated[0].Evaluation.History, 1)
	require.Equal(t, float64(85), aggregated[0].Evaluation.History[0].Total)

	// Results of other courses are not included.
	other, err := svc.CourseResults(ctx, 6, 12, true)
	require.NoError(t, err)
	require.Empty(t, other)
}
