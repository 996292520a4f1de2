package domain

import (
	"errors"
	"time"
)

var (
	ErrEvaluationNotFound = errors.New("evaluation not found")
	ErrInvalidEvaluation  = errors.New("evaluation name is required")
)

// Evaluation is an evaluation model: a named, reusable questionnaire.
type Evaluation struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type NewEvaluation struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// EvaluationPatch edits a model. Nil fields are left unchanged; an empty
// description clears it.
type EvaluationPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}
