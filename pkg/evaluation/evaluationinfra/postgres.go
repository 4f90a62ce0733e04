package evaluationinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/evaluation"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresEvaluationRepository is the PostgreSQL implementation of
// EvaluationRepository
type PostgresEvaluationRepository struct {
	db *sqlx.DB
}

// NewPostgresEvaluationRepository creates a new evaluation repository instance
func NewPostgresEvaluationRepository(db *sqlx.DB) evaluation.EvaluationRepository {
	return &PostgresEvaluationRepository{
		db: db,
	}
}

// evaluationRow maps the evaluations table. List fields use text[] columns and
// criteria scores live in a JSONB column; all payload columns are nullable so
// an absent payload round-trips as nil, never as an empty value.
type evaluationRow struct {
	ID              string     `db:"id"`
	EvaluatedUserID string     `db:"evaluated_user_id"`
	EvaluatorID     string     `db:"evaluator_id"`
	PeriodID        string     `db:"period_id"`
	Type            string     `db:"type"`
	Status          string     `db:"status"`
	DueDate         time.Time  `db:"due_date"`
	CompletedDate   *time.Time `db:"completed_date"`

	OverallScore        *float64       `db:"overall_score"`
	CriteriaScores      []byte         `db:"criteria_scores"`
	FeedbackText        *string        `db:"feedback_text"`
	Strengths           pq.StringArray `db:"strengths"`
	ImprovementAreas    pq.StringArray `db:"improvement_areas"`
	Achievements        pq.StringArray `db:"achievements"`
	Challenges          pq.StringArray `db:"challenges"`
	GoalsNextPeriod     *string        `db:"goals_next_period"`
	RecommendedTraining *string        `db:"recommended_training"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row evaluationRow) toEntity() (*evaluation.Evaluation, error) {
	var criteria map[string]float64
	if len(row.CriteriaScores) > 0 {
		if err := json.Unmarshal(row.CriteriaScores, &criteria); err != nil {
			return nil, errx.Wrap(err, "failed to decode criteria scores", errx.TypeInternal).
				WithDetail("evaluation_id", row.ID)
		}
	}

	return &evaluation.Evaluation{
		ID:              kernel.EvaluationID(row.ID),
		EvaluatedUserID: kernel.UserID(row.EvaluatedUserID),
		EvaluatorID:     kernel.UserID(row.EvaluatorID),
		PeriodID:        row.PeriodID,
		Type:            row.Type,
		Status:          evaluation.Status(row.Status),
		DueDate:         row.DueDate,
		CompletedDate:   row.CompletedDate,

		OverallScore:        row.OverallScore,
		CriteriaScores:      criteria,
		FeedbackText:        row.FeedbackText,
		Strengths:           nilableSlice(row.Strengths),
		ImprovementAreas:    nilableSlice(row.ImprovementAreas),
		Achievements:        nilableSlice(row.Achievements),
		Challenges:          nilableSlice(row.Challenges),
		GoalsNextPeriod:     row.GoalsNextPeriod,
		RecommendedTraining: row.RecommendedTraining,

		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// nilableSlice keeps a NULL column as nil while preserving empty arrays
func nilableSlice(arr pq.StringArray) []string {
	if arr == nil {
		return nil
	}
	return []string(arr)
}

func toRow(e evaluation.Evaluation) (evaluationRow, error) {
	var criteria []byte
	if e.CriteriaScores != nil {
		encoded, err := json.Marshal(e.CriteriaScores)
		if err != nil {
			return evaluationRow{}, errx.Wrap(err, "failed to encode criteria scores", errx.TypeInternal).
				WithDetail("evaluation_id", e.ID.String())
		}
		criteria = encoded
	}

	return evaluationRow{
		ID:              e.ID.String(),
		EvaluatedUserID: e.EvaluatedUserID.String(),
		EvaluatorID:     e.EvaluatorID.String(),
		PeriodID:        e.PeriodID,
		Type:            e.Type,
		Status:          string(e.Status),
		DueDate:         e.DueDate,
		CompletedDate:   e.CompletedDate,

		OverallScore:        e.OverallScore,
		CriteriaScores:      criteria,
		FeedbackText:        e.FeedbackText,
		Strengths:           pq.StringArray(e.Strengths),
		ImprovementAreas:    pq.StringArray(e.ImprovementAreas),
		Achievements:        pq.StringArray(e.Achievements),
		Challenges:          pq.StringArray(e.Challenges),
		GoalsNextPeriod:     e.GoalsNextPeriod,
		RecommendedTraining: e.RecommendedTraining,

		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}, nil
}

const evaluationColumns = `
	id, evaluated_user_id, evaluator_id, period_id, type, status,
	due_date, completed_date,
	overall_score, criteria_scores, feedback_text,
	strengths, improvement_areas, achievements, challenges,
	goals_next_period, recommended_training,
	created_at, updated_at`

// FindByID looks up an evaluation by id
func (r *PostgresEvaluationRepository) FindByID(ctx context.Context, id kernel.EvaluationID) (*evaluation.Evaluation, error) {
	query := `SELECT` + evaluationColumns + `
		FROM evaluations
		WHERE id = $1`

	var row evaluationRow
	err := r.db.GetContext(ctx, &row, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, evaluation.ErrEvaluationNotFound().WithDetail("evaluation_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find evaluation by id", errx.TypeInternal).
			WithDetail("evaluation_id", id.String())
	}

	return row.toEntity()
}

// FindAll lists every evaluation
func (r *PostgresEvaluationRepository) FindAll(ctx context.Context) ([]*evaluation.Evaluation, error) {
	query := `SELECT` + evaluationColumns + `
		FROM evaluations
		ORDER BY due_date ASC`

	var rows []evaluationRow
	err := r.db.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list evaluations", errx.TypeInternal)
	}

	result := make([]*evaluation.Evaluation, len(rows))
	for i := range rows {
		e, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		result[i] = e
	}

	return result, nil
}

// FindBySubject lists the evaluations whose subject is the given user
func (r *PostgresEvaluationRepository) FindBySubject(ctx context.Context, subjectID kernel.UserID) ([]*evaluation.Evaluation, error) {
	query := `SELECT` + evaluationColumns + `
		FROM evaluations
		WHERE evaluated_user_id = $1
		ORDER BY due_date ASC`

	var rows []evaluationRow
	err := r.db.SelectContext(ctx, &rows, query, subjectID.String())
	if err != nil {
		return nil, errx.Wrap(err, "failed to find evaluations by subject", errx.TypeInternal).
			WithDetail("subject_id", subjectID.String())
	}

	result := make([]*evaluation.Evaluation, len(rows))
	for i := range rows {
		e, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		result[i] = e
	}

	return result, nil
}

// Save inserts or updates an evaluation
func (r *PostgresEvaluationRepository) Save(ctx context.Context, e evaluation.Evaluation) error {
	row, err := toRow(e)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO evaluations (
			id, evaluated_user_id, evaluator_id, period_id, type, status,
			due_date, completed_date,
			overall_score, criteria_scores, feedback_text,
			strengths, improvement_areas, achievements, challenges,
			goals_next_period, recommended_training,
			created_at, updated_at
		) VALUES (
			:id, :evaluated_user_id, :evaluator_id, :period_id, :type, :status,
			:due_date, :completed_date,
			:overall_score, :criteria_scores, :feedback_text,
			:strengths, :improvement_areas, :achievements, :challenges,
			:goals_next_period, :recommended_training,
			:created_at, :updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			evaluated_user_id = EXCLUDED.evaluated_user_id,
			evaluator_id = EXCLUDED.evaluator_id,
			period_id = EXCLUDED.period_id,
			type = EXCLUDED.type,
			status = EXCLUDED.status,
			due_date = EXCLUDED.due_date,
			completed_date = EXCLUDED.completed_date,
			overall_score = EXCLUDED.overall_score,
			criteria_scores = EXCLUDED.criteria_scores,
			feedback_text = EXCLUDED.feedback_text,
			strengths = EXCLUDED.strengths,
			improvement_areas = EXCLUDED.improvement_areas,
			achievements = EXCLUDED.achievements,
			challenges = EXCLUDED.challenges,
			goals_next_period = EXCLUDED.goals_next_period,
			recommended_training = EXCLUDED.recommended_training,
			updated_at = EXCLUDED.updated_at`

	_, err = r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return errx.Wrap(err, "failed to save evaluation", errx.TypeInternal).
			WithDetail("evaluation_id", e.ID.String())
	}

	return nil
}

// Delete removes an evaluation
func (r *PostgresEvaluationRepository) Delete(ctx context.Context, id kernel.EvaluationID) error {
	query := `DELETE FROM evaluations WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return errx.Wrap(err, "failed to delete evaluation", errx.TypeInternal).
			WithDetail("evaluation_id", id.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}

	if rowsAffected == 0 {
		return evaluation.ErrEvaluationNotFound().WithDetail("evaluation_id", id.String())
	}

	return nil
}

// MarkOverdue flips every non-completed evaluation past its due date to
// overdue and returns how many rows changed
func (r *PostgresEvaluationRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE evaluations
		SET status = $1, updated_at = $2
		WHERE status IN ($3, $4) AND due_date < $2`

	result, err := r.db.ExecContext(ctx, query,
		string(evaluation.StatusOverdue), now,
		string(evaluation.StatusPending), string(evaluation.StatusInProgress))
	if err != nil {
		return 0, errx.Wrap(err, "failed to mark overdue evaluations", errx.TypeInternal)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}

	return rowsAffected, nil
}
