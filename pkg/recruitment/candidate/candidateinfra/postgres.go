package candidateinfra

import (
	"context"
	"database/sql"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/recruitment/candidate"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresCandidateRepository is the PostgreSQL implementation of
// CandidateRepository. It also implements StatusPersister: UpdateStatus is the
// durable write behind a pipeline stage transition.
type PostgresCandidateRepository struct {
	db *sqlx.DB
}

// NewPostgresCandidateRepository creates a new candidate repository instance
func NewPostgresCandidateRepository(db *sqlx.DB) *PostgresCandidateRepository {
	return &PostgresCandidateRepository{
		db: db,
	}
}

// candidateRow maps the candidates table. Document states are flattened into
// status/link column pairs; the to_do list lives in a text[] column.
type candidateRow struct {
	ID          string  `db:"id"`
	Name        string  `db:"name"`
	Email       string  `db:"email"`
	Phone       *string `db:"phone"`
	AppliedRole string  `db:"applied_role"`
	Team        string  `db:"team"`

	ApplicationStatus string `db:"application_status"`
	VolunteerType     string `db:"volunteer_type"`
	CPTOPTStatus      string `db:"cpt_opt_status"`

	HRInterviewDate *time.Time `db:"hr_interview_date"`
	PMInterviewDate *time.Time `db:"pm_interview_date"`
	StartDate       *time.Time `db:"start_date"`
	EndDate         *time.Time `db:"end_date"`

	OfferLetterStatus        string  `db:"offer_letter_status"`
	OfferLetterLink          *string `db:"offer_letter_link"`
	VolunteerAgreementStatus string  `db:"volunteer_agreement_status"`
	VolunteerAgreementLink   *string `db:"volunteer_agreement_link"`
	WelcomeLetterStatus      string  `db:"welcome_letter_status"`
	WelcomeLetterLink        *string `db:"welcome_letter_link"`

	Notes string         `db:"notes"`
	ToDo  pq.StringArray `db:"to_do"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row candidateRow) toEntity() *candidate.Candidate {
	return &candidate.Candidate{
		ID:          kernel.CandidateID(row.ID),
		Name:        row.Name,
		Email:       row.Email,
		Phone:       row.Phone,
		AppliedRole: row.AppliedRole,
		Team:        row.Team,

		ApplicationStatus: candidate.Stage(row.ApplicationStatus),
		VolunteerType:     candidate.VolunteerType(row.VolunteerType),
		CPTOPTStatus:      row.CPTOPTStatus,

		HRInterviewDate: row.HRInterviewDate,
		PMInterviewDate: row.PMInterviewDate,
		StartDate:       row.StartDate,
		EndDate:         row.EndDate,

		OfferLetter: candidate.DocumentState{
			Status: candidate.DocumentStatus(row.OfferLetterStatus),
			Link:   row.OfferLetterLink,
		},
		VolunteerAgreement: candidate.DocumentState{
			Status: candidate.DocumentStatus(row.VolunteerAgreementStatus),
			Link:   row.VolunteerAgreementLink,
		},
		WelcomeLetter: candidate.DocumentState{
			Status: candidate.DocumentStatus(row.WelcomeLetterStatus),
			Link:   row.WelcomeLetterLink,
		},

		Notes: row.Notes,
		ToDo:  []string(row.ToDo),

		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func toRow(c candidate.Candidate) candidateRow {
	return candidateRow{
		ID:          c.ID.String(),
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		AppliedRole: c.AppliedRole,
		Team:        c.Team,

		ApplicationStatus: c.ApplicationStatus.String(),
		VolunteerType:     string(c.VolunteerType),
		CPTOPTStatus:      c.CPTOPTStatus,

		HRInterviewDate: c.HRInterviewDate,
		PMInterviewDate: c.PMInterviewDate,
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,

		OfferLetterStatus:        string(c.OfferLetter.Status),
		OfferLetterLink:          c.OfferLetter.Link,
		VolunteerAgreementStatus: string(c.VolunteerAgreement.Status),
		VolunteerAgreementLink:   c.VolunteerAgreement.Link,
		WelcomeLetterStatus:      string(c.WelcomeLetter.Status),
		WelcomeLetterLink:        c.WelcomeLetter.Link,

		Notes: c.Notes,
		ToDo:  pq.StringArray(c.ToDo),

		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

const candidateColumns = `
	id, name, email, phone, applied_role, team,
	application_status, volunteer_type, cpt_opt_status,
	hr_interview_date, pm_interview_date, start_date, end_date,
	offer_letter_status, offer_letter_link,
	volunteer_agreement_status, volunteer_agreement_link,
	welcome_letter_status, welcome_letter_link,
	notes, to_do, created_at, updated_at`

// FindByID looks up a candidate by id
func (r *PostgresCandidateRepository) FindByID(ctx context.Context, id kernel.CandidateID) (*candidate.Candidate, error) {
	query := `SELECT` + candidateColumns + `
		FROM candidates
		WHERE id = $1`

	var row candidateRow
	err := r.db.GetContext(ctx, &row, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, candidate.ErrCandidateNotFound().WithDetail("candidate_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find candidate by id", errx.TypeInternal).
			WithDetail("candidate_id", id.String())
	}

	return row.toEntity(), nil
}

// FindAll lists every candidate in creation order. The pipeline board groups
// them into stage columns in memory.
func (r *PostgresCandidateRepository) FindAll(ctx context.Context) ([]*candidate.Candidate, error) {
	query := `SELECT` + candidateColumns + `
		FROM candidates
		ORDER BY created_at ASC`

	var rows []candidateRow
	err := r.db.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list candidates", errx.TypeInternal)
	}

	result := make([]*candidate.Candidate, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}

	return result, nil
}

// FindByStage lists the candidates occupying one pipeline column
func (r *PostgresCandidateRepository) FindByStage(ctx context.Context, stage candidate.Stage) ([]*candidate.Candidate, error) {
	query := `SELECT` + candidateColumns + `
		FROM candidates
		WHERE application_status = $1
		ORDER BY created_at ASC`

	var rows []candidateRow
	err := r.db.SelectContext(ctx, &rows, query, stage.String())
	if err != nil {
		return nil, errx.Wrap(err, "failed to find candidates by stage", errx.TypeInternal).
			WithDetail("stage", stage.String())
	}

	result := make([]*candidate.Candidate, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}

	return result, nil
}

// Save inserts or updates a candidate
func (r *PostgresCandidateRepository) Save(ctx context.Context, c candidate.Candidate) error {
	query := `
		INSERT INTO candidates (
			id, name, email, phone, applied_role, team,
			application_status, volunteer_type, cpt_opt_status,
			hr_interview_date, pm_interview_date, start_date, end_date,
			offer_letter_status, offer_letter_link,
			volunteer_agreement_status, volunteer_agreement_link,
			welcome_letter_status, welcome_letter_link,
			notes, to_do, created_at, updated_at
		) VALUES (
			:id, :name, :email, :phone, :applied_role, :team,
			:application_status, :volunteer_type, :cpt_opt_status,
			:hr_interview_date, :pm_interview_date, :start_date, :end_date,
			:offer_letter_status, :offer_letter_link,
			:volunteer_agreement_status, :volunteer_agreement_link,
			:welcome_letter_status, :welcome_letter_link,
			:notes, :to_do, :created_at, :updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			applied_role = EXCLUDED.applied_role,
			team = EXCLUDED.team,
			application_status = EXCLUDED.application_status,
			volunteer_type = EXCLUDED.volunteer_type,
			cpt_opt_status = EXCLUDED.cpt_opt_status,
			hr_interview_date = EXCLUDED.hr_interview_date,
			pm_interview_date = EXCLUDED.pm_interview_date,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			offer_letter_status = EXCLUDED.offer_letter_status,
			offer_letter_link = EXCLUDED.offer_letter_link,
			volunteer_agreement_status = EXCLUDED.volunteer_agreement_status,
			volunteer_agreement_link = EXCLUDED.volunteer_agreement_link,
			welcome_letter_status = EXCLUDED.welcome_letter_status,
			welcome_letter_link = EXCLUDED.welcome_letter_link,
			notes = EXCLUDED.notes,
			to_do = EXCLUDED.to_do,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, toRow(c))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "candidates_email_key" {
				return candidate.ErrCandidateAlreadyExists().WithDetail("email", c.Email)
			}
		}
		return errx.Wrap(err, "failed to save candidate", errx.TypeInternal).
			WithDetail("candidate_id", c.ID.String())
	}

	return nil
}

// Delete removes a candidate
func (r *PostgresCandidateRepository) Delete(ctx context.Context, id kernel.CandidateID) error {
	query := `DELETE FROM candidates WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return errx.Wrap(err, "failed to delete candidate", errx.TypeInternal).
			WithDetail("candidate_id", id.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}

	if rowsAffected == 0 {
		return candidate.ErrCandidateNotFound().WithDetail("candidate_id", id.String())
	}

	return nil
}

// ExistsByEmail checks whether a candidate with the given email exists
func (r *PostgresCandidateRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM candidates WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, errx.Wrap(err, "failed to check candidate existence by email", errx.TypeInternal).
			WithDetail("email", email)
	}

	return exists, nil
}

// UpdateStatus persists a stage transition for one candidate
func (r *PostgresCandidateRepository) UpdateStatus(ctx context.Context, id kernel.CandidateID, stage candidate.Stage) error {
	query := `
		UPDATE candidates
		SET application_status = $1, updated_at = NOW()
		WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, stage.String(), id.String())
	if err != nil {
		return errx.Wrap(err, "failed to update candidate status", errx.TypeInternal).
			WithDetail("candidate_id", id.String()).
			WithDetail("stage", stage.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}

	if rowsAffected == 0 {
		return candidate.ErrCandidateNotFound().WithDetail("candidate_id", id.String())
	}

	return nil
}

// PersistStatusChange satisfies the pipeline's StatusPersister port
func (r *PostgresCandidateRepository) PersistStatusChange(ctx context.Context, id kernel.CandidateID, newStage candidate.Stage) error {
	return r.UpdateStatus(ctx, id, newStage)
}
