package models

import "time"

// Evaluation defines an admin assessment based on the 'evaluation' table.
// Score has no enforced range.
type Evaluation struct {
	ID            int64     `json:"id" db:"evaluation_id"`
	ApplicationID int64     `json:"applicationId" db:"application_id"`
	EvaluatorName string    `json:"evaluatorName" db:"evaluator_name"`
	Score         *float64  `json:"score,omitempty" db:"score"`
	Comments      string    `json:"comments" db:"comments"`
	DateEvaluated time.Time `json:"dateEvaluated" db:"date_evaluated"`
}
