package evaluation

import "time"

// Criterion is one scored breakdown entry of a snapshot.
type Criterion struct {
	Points float64 `json:"points"`
}

// Snapshot is a single scored evaluation of a writing-task submission.
// Sub maps a section name to its sub-metric scores; Breakdown maps a
// criterion name to its awarded points.
type Snapshot struct {
	Task        string                        `json:"task,omitempty"`
	Round       int                           `json:"round,omitempty"`
	SubmittedAt *time.Time                    `json:"submittedAt,omitempty"`
	Total       float64                       `json:"total"`
	Grade       string                        `json:"grade,omitempty"`
	Sub         map[string]map[string]float64 `json:"sub"`
	Breakdown   map[string]Criterion          `json:"breakdown"`
}

// Evaluation is the JSON payload stored on a module result.
type Evaluation struct {
	History []Snapshot `json:"history"`
}
