package dto

import (
	"time"

	"github.com/schreiber-platform/schreiber-api/internal/evaluation"
	"github.com/schreiber-platform/schreiber-api/internal/models"
)

// WatchedRequest marks a module round's video as watched. The required tag
// on a bool rejects false, matching the endpoint's truthy precondition: the
// flag can only ever be set, not cleared, through this path.
type WatchedRequest struct {
	Watched  bool `json:"watched" validate:"required"`
	Round    int  `json:"round" validate:"gte=0"`
	CourseID uint `json:"courseId" validate:"required,gt=0"`
}

// EvaluationPayload carries the client-side scoring of one submission.
type EvaluationPayload struct {
	Total      float64              `json:"total"`
	Grade      string               `json:"grade"`
	Aufbau     evaluation.Criterion `json:"Aufbau"`
	Formales   evaluation.Criterion `json:"Formales"`
	Inhalt     evaluation.Criterion `json:"Inhalt"`
	Sprachstil evaluation.Criterion `json:"Sprachstil"`
}

// AttemptSubmitRequest carries a scored writing-task submission.
type AttemptSubmitRequest struct {
	CourseID   uint                          `json:"courseId" validate:"required,gt=0"`
	Round      int                           `json:"round" validate:"gte=0"`
	Task       string                        `json:"task" validate:"required"`
	Answers    map[string]interface{}        `json:"answers" validate:"required"`
	Evaluation *EvaluationPayload            `json:"evaluation" validate:"required"`
	SubMetrics map[string]map[string]float64 `json:"subMetrics" validate:"required"`
}

// ModuleResultResponse is the projection returned by attempt reads.
type ModuleResultResponse struct {
	ID          uint                   `json:"id"`
	UserID      uint                   `json:"user_id"`
	CourseID    uint                   `json:"course_id"`
	Round       int                    `json:"round"`
	Watched     bool                   `json:"watched"`
	Submitted   bool                   `json:"submitted"`
	SubmittedAt *time.Time             `json:"submitted_at"`
	Evaluation  evaluation.Evaluation  `json:"evaluation"`
	Contents    map[string]interface{} `json:"contents,omitempty"`
}

// NewModuleResultResponse converts a ModuleResult into a DTO using the
// already-decoded evaluation and contents payloads.
func NewModuleResultResponse(model models.ModuleResult, eval evaluation.Evaluation, contents map[string]interface{}) ModuleResultResponse {
	return ModuleResultResponse{
		ID:          model.ID,
		UserID:      model.UserID,
		CourseID:    model.CourseID,
		Round:       model.Round,
		Watched:     model.Watched,
		Submitted:   model.Submitted,
		SubmittedAt: model.SubmittedAt,
		Evaluation:  eval,
		Contents:    contents,
	}
}
