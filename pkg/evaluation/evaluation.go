package evaluation

import (
	"net/http"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
)

// ============================================================================
// Evaluation Entity
// ============================================================================

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusOverdue    Status = "overdue"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

// Evaluation is one performance review record. The confidential payload uses
// nil-able fields so that a redacted record is distinguishable from a review
// that was genuinely left blank: absent means nil, empty means a non-nil zero
// value.
type Evaluation struct {
	ID              kernel.EvaluationID `db:"id" json:"id"`
	EvaluatedUserID kernel.UserID       `db:"evaluated_user_id" json:"evaluated_user_id"`
	EvaluatorID     kernel.UserID       `db:"evaluator_id" json:"evaluator_id"`
	PeriodID        string              `db:"period_id" json:"period_id"`
	Type            string              `db:"type" json:"type"`
	Status          Status              `db:"status" json:"status"`
	DueDate         time.Time           `db:"due_date" json:"due_date"`
	CompletedDate   *time.Time          `db:"completed_date" json:"completed_date,omitempty"`

	// Confidential payload. Stripped by the visibility engine for viewers
	// who are not the record's subject.
	OverallScore        *float64           `db:"overall_score" json:"overall_score,omitempty"`
	CriteriaScores      map[string]float64 `json:"criteria_scores,omitempty"`
	FeedbackText        *string            `db:"feedback_text" json:"feedback_text,omitempty"`
	Strengths           []string           `json:"strengths,omitempty"`
	ImprovementAreas    []string           `json:"improvement_areas,omitempty"`
	Achievements        []string           `json:"achievements,omitempty"`
	Challenges          []string           `json:"challenges,omitempty"`
	GoalsNextPeriod     *string            `db:"goals_next_period" json:"goals_next_period,omitempty"`
	RecommendedTraining *string            `db:"recommended_training" json:"recommended_training,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasPayload reports whether any confidential field is present
func (e *Evaluation) HasPayload() bool {
	return e.OverallScore != nil ||
		e.CriteriaScores != nil ||
		e.FeedbackText != nil ||
		e.Strengths != nil ||
		e.ImprovementAreas != nil ||
		e.Achievements != nil ||
		e.Challenges != nil ||
		e.GoalsNextPeriod != nil ||
		e.RecommendedTraining != nil
}

// StripPayload clears every confidential field (sets them absent, not empty)
func (e *Evaluation) StripPayload() {
	e.OverallScore = nil
	e.CriteriaScores = nil
	e.FeedbackText = nil
	e.Strengths = nil
	e.ImprovementAreas = nil
	e.Achievements = nil
	e.Challenges = nil
	e.GoalsNextPeriod = nil
	e.RecommendedTraining = nil
}

// IsOverdue reports whether a non-completed evaluation is past due
func (e *Evaluation) IsOverdue(now time.Time) bool {
	return e.Status != StatusCompleted && now.After(e.DueDate)
}

// Complete records the payload and flips status. The canonical invariant is
// payload iff completed.
func (e *Evaluation) Complete(payload Payload, completedAt time.Time) error {
	if e.Status == StatusCompleted {
		return ErrAlreadyCompleted().WithDetail("evaluation_id", e.ID.String())
	}
	e.Status = StatusCompleted
	e.CompletedDate = &completedAt
	e.OverallScore = payload.OverallScore
	e.CriteriaScores = payload.CriteriaScores
	e.FeedbackText = payload.FeedbackText
	e.Strengths = payload.Strengths
	e.ImprovementAreas = payload.ImprovementAreas
	e.Achievements = payload.Achievements
	e.Challenges = payload.Challenges
	e.GoalsNextPeriod = payload.GoalsNextPeriod
	e.RecommendedTraining = payload.RecommendedTraining
	e.UpdatedAt = completedAt
	return nil
}

// Payload groups the confidential fields for completion requests
type Payload struct {
	OverallScore        *float64           `json:"overall_score,omitempty"`
	CriteriaScores      map[string]float64 `json:"criteria_scores,omitempty"`
	FeedbackText        *string            `json:"feedback_text,omitempty"`
	Strengths           []string           `json:"strengths,omitempty"`
	ImprovementAreas    []string           `json:"improvement_areas,omitempty"`
	Achievements        []string           `json:"achievements,omitempty"`
	Challenges          []string           `json:"challenges,omitempty"`
	GoalsNextPeriod     *string            `json:"goals_next_period,omitempty"`
	RecommendedTraining *string            `json:"recommended_training,omitempty"`
}

// ============================================================================
// Service DTOs
// ============================================================================

// CreateEvaluationRequest schedules a review for a subject
type CreateEvaluationRequest struct {
	EvaluatedUserID string    `json:"evaluated_user_id" validate:"required"`
	EvaluatorID     string    `json:"evaluator_id" validate:"required"`
	PeriodID        string    `json:"period_id" validate:"required"`
	Type            string    `json:"type" validate:"required"`
	DueDate         time.Time `json:"due_date" validate:"required"`
}

// CompleteEvaluationRequest closes a review with its confidential payload
type CompleteEvaluationRequest struct {
	Payload Payload `json:"payload"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("EVALUATION")

var (
	CodeEvaluationNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Evaluation not found")
	CodeAlreadyCompleted   = ErrRegistry.Register("ALREADY_COMPLETED", errx.TypeBusiness, http.StatusUnprocessableEntity, "Evaluation is already completed")
	CodeInvalidStatus      = ErrRegistry.Register("INVALID_STATUS", errx.TypeValidation, http.StatusBadRequest, "Evaluation status is not recognized")
	CodeNotEvaluator       = ErrRegistry.Register("NOT_EVALUATOR", errx.TypeAuthorization, http.StatusForbidden, "Only the assigned evaluator or HR can complete this evaluation")
)

func ErrEvaluationNotFound() *errx.Error {
	return ErrRegistry.New(CodeEvaluationNotFound)
}

func ErrAlreadyCompleted() *errx.Error {
	return ErrRegistry.New(CodeAlreadyCompleted)
}

func ErrInvalidStatus() *errx.Error {
	return ErrRegistry.New(CodeInvalidStatus)
}

func ErrNotEvaluator() *errx.Error {
	return ErrRegistry.New(CodeNotEvaluator)
}
