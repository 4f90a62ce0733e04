package projectinfra

import (
	"context"
	"database/sql"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/project"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresProjectRepository is the PostgreSQL implementation of ProjectRepository
type PostgresProjectRepository struct {
	db *sqlx.DB
}

// NewPostgresProjectRepository creates a new project repository instance
func NewPostgresProjectRepository(db *sqlx.DB) project.ProjectRepository {
	return &PostgresProjectRepository{
		db: db,
	}
}

// projectRow maps the projects table; team members live in a text[] column.
type projectRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	LeadID      string         `db:"lead_id"`
	TeamMembers pq.StringArray `db:"team_members"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (row projectRow) toEntity() *project.Project {
	members := make([]kernel.UserID, len(row.TeamMembers))
	for i, m := range row.TeamMembers {
		members[i] = kernel.UserID(m)
	}

	return &project.Project{
		ID:          kernel.ProjectID(row.ID),
		Name:        row.Name,
		Description: row.Description,
		LeadID:      kernel.UserID(row.LeadID),
		TeamMembers: members,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func toRow(p project.Project) projectRow {
	members := make(pq.StringArray, len(p.TeamMembers))
	for i, m := range p.TeamMembers {
		members[i] = m.String()
	}

	return projectRow{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		LeadID:      p.LeadID.String(),
		TeamMembers: members,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

const projectColumns = `
	id, name, description, lead_id, team_members, created_at, updated_at`

// FindByID looks up a project by id
func (r *PostgresProjectRepository) FindByID(ctx context.Context, id kernel.ProjectID) (*project.Project, error) {
	query := `SELECT` + projectColumns + `
		FROM projects
		WHERE id = $1`

	var row projectRow
	err := r.db.GetContext(ctx, &row, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, project.ErrProjectNotFound().WithDetail("project_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find project by id", errx.TypeInternal).
			WithDetail("project_id", id.String())
	}

	return row.toEntity(), nil
}

// FindAll lists every project
func (r *PostgresProjectRepository) FindAll(ctx context.Context) ([]*project.Project, error) {
	query := `SELECT` + projectColumns + `
		FROM projects
		ORDER BY name ASC`

	var rows []projectRow
	err := r.db.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list projects", errx.TypeInternal)
	}

	result := make([]*project.Project, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}

	return result, nil
}

// FindByLead lists the projects a user leads
func (r *PostgresProjectRepository) FindByLead(ctx context.Context, leadID kernel.UserID) ([]*project.Project, error) {
	query := `SELECT` + projectColumns + `
		FROM projects
		WHERE lead_id = $1
		ORDER BY name ASC`

	var rows []projectRow
	err := r.db.SelectContext(ctx, &rows, query, leadID.String())
	if err != nil {
		return nil, errx.Wrap(err, "failed to find projects by lead", errx.TypeInternal).
			WithDetail("lead_id", leadID.String())
	}

	result := make([]*project.Project, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}

	return result, nil
}

// FindByMember lists the projects a user belongs to (lead or team member)
func (r *PostgresProjectRepository) FindByMember(ctx context.Context, memberID kernel.UserID) ([]*project.Project, error) {
	query := `SELECT` + projectColumns + `
		FROM projects
		WHERE lead_id = $1 OR $1 = ANY(team_members)
		ORDER BY name ASC`

	var rows []projectRow
	err := r.db.SelectContext(ctx, &rows, query, memberID.String())
	if err != nil {
		return nil, errx.Wrap(err, "failed to find projects by member", errx.TypeInternal).
			WithDetail("member_id", memberID.String())
	}

	result := make([]*project.Project, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}

	return result, nil
}

// Save inserts or updates a project
func (r *PostgresProjectRepository) Save(ctx context.Context, p project.Project) error {
	query := `
		INSERT INTO projects (
			id, name, description, lead_id, team_members, created_at, updated_at
		) VALUES (
			:id, :name, :description, :lead_id, :team_members, :created_at, :updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			lead_id = EXCLUDED.lead_id,
			team_members = EXCLUDED.team_members,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, toRow(p))
	if err != nil {
		return errx.Wrap(err, "failed to save project", errx.TypeInternal).
			WithDetail("project_id", p.ID.String())
	}

	return nil
}

// Delete removes a project
func (r *PostgresProjectRepository) Delete(ctx context.Context, id kernel.ProjectID) error {
	query := `DELETE FROM projects WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return errx.Wrap(err, "failed to delete project", errx.TypeInternal).
			WithDetail("project_id", id.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}

	if rowsAffected == 0 {
		return project.ErrProjectNotFound().WithDetail("project_id", id.String())
	}

	return nil
}
