package dto

import (
	"encoding/json"
	"time"

	"github.com/schreiber-platform/schreiber-api/internal/models"
)

// TaskInput is one task in an admin batch-create request.
type TaskInput struct {
	Title    string          `json:"title" validate:"required"`
	Position int             `json:"position" validate:"gte=0"`
	Config   json.RawMessage `json:"config" validate:"required"`
}

// TaskBatchRequest creates several writing tasks at once.
type TaskBatchRequest struct {
	Tasks []TaskInput `json:"tasks" validate:"required,min=1,dive"`
}

// TaskResponse serializes a writing task.
type TaskResponse struct {
	ID        uint            `json:"id"`
	Title     string          `json:"title"`
	Position  int             `json:"position"`
	Type      string          `json:"type"`
	Config    json.RawMessage `json:"config"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewTaskResponse converts a WritingTask model into a DTO.
func NewTaskResponse(model models.WritingTask) TaskResponse {
	return TaskResponse{
		ID:        model.ID,
		Title:     model.Title,
		Position:  model.Position,
		Type:      model.Type,
		Config:    json.RawMessage(model.Config),
		CreatedAt: model.CreatedAt,
	}
}

// NewTaskResponseSlice converts task models into DTOs.
func NewTaskResponseSlice(tasks []models.WritingTask) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, NewTaskResponse(task))
	}

	return responses
}
