package visibility

import (
	"testing"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/evaluation"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/roles"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/user"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/project"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/ptrx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser(id string, role roles.Role) *user.User {
	return &user.User{
		ID:     kernel.NewUserID(id),
		Email:  id + "@example.org",
		Name:   "User " + id,
		Role:   role,
		Status: user.UserStatusActive,
	}
}

func testViewer(id string, role roles.Role) *iam.AuthContext {
	return &iam.AuthContext{
		UserID: kernel.NewUserID(id),
		Role:   role,
		Email:  id + "@example.org",
		Name:   "User " + id,
	}
}

func fullRecord(id, subject string, status evaluation.Status, score float64) *evaluation.Evaluation {
	return &evaluation.Evaluation{
		ID:              kernel.NewEvaluationID(id),
		EvaluatedUserID: kernel.NewUserID(subject),
		EvaluatorID:     kernel.NewUserID("hr1"),
		PeriodID:        "2026-Q3",
		Type:            "quarterly",
		Status:          status,
		DueDate:         time.Now().Add(24 * time.Hour),

		OverallScore:        ptrx.Float64(score),
		CriteriaScores:      map[string]float64{"communication": score},
		FeedbackText:        ptrx.String("solid quarter"),
		Strengths:           []string{"ownership"},
		ImprovementAreas:    []string{"estimation"},
		Achievements:        []string{"shipped dashboard"},
		Challenges:          []string{"tight deadlines"},
		GoalsNextPeriod:     ptrx.String("lead a workstream"),
		RecommendedTraining: ptrx.String("SQL course"),
	}
}

func assertRedacted(t *testing.T, r evaluation.Evaluation) {
	t.Helper()
	assert.Nil(t, r.OverallScore)
	assert.Nil(t, r.CriteriaScores)
	assert.Nil(t, r.FeedbackText)
	assert.Nil(t, r.Strengths)
	assert.Nil(t, r.ImprovementAreas)
	assert.Nil(t, r.Achievements)
	assert.Nil(t, r.Challenges)
	assert.Nil(t, r.GoalsNextPeriod)
	assert.Nil(t, r.RecommendedTraining)
}

func TestResolveScope_NilViewerFailsClosed(t *testing.T) {
	records := []*evaluation.Evaluation{fullRecord("e1", "a", evaluation.StatusCompleted, 4)}

	view, err := ResolveScope(nil, records, nil, nil)
	require.Error(t, err)
	assert.Empty(t, view.Records)
	assert.Empty(t, view.Users)
	assert.Equal(t, 0, view.Metrics.Total)
}

func TestResolveScope_UnknownRoleFailsClosed(t *testing.T) {
	viewer := &iam.AuthContext{UserID: kernel.NewUserID("x"), Role: roles.Role("superadmin")}
	records := []*evaluation.Evaluation{fullRecord("e1", "a", evaluation.StatusCompleted, 4)}
	users := []*user.User{testUser("a", roles.RoleVolunteer)}

	view, err := ResolveScope(viewer, records, users, nil)
	require.Error(t, err)

	var e *errx.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, string(CodeUnknownViewerRole), e.Code)

	// The error view is empty, never global.
	assert.Empty(t, view.Records)
	assert.Empty(t, view.Users)
}

func TestResolveScope_VolunteerSelfScope(t *testing.T) {
	viewer := testViewer("a", roles.RoleVolunteer)
	records := []*evaluation.Evaluation{
		fullRecord("e1", "a", evaluation.StatusCompleted, 4),
		fullRecord("e2", "b", evaluation.StatusCompleted, 2),
	}
	users := []*user.User{testUser("a", roles.RoleVolunteer), testUser("b", roles.RoleVolunteer)}

	view, err := ResolveScope(viewer, records, users, nil)
	require.NoError(t, err)

	require.Len(t, view.Records, 1)
	assert.Equal(t, kernel.NewUserID("a"), view.Records[0].EvaluatedUserID)

	// Own record arrives in full.
	require.NotNil(t, view.Records[0].OverallScore)
	assert.Equal(t, 4.0, *view.Records[0].OverallScore)

	require.Len(t, view.Users, 1)
	assert.Equal(t, kernel.NewUserID("a"), view.Users[0].ID)

	// Metrics derive from the scoped set only.
	assert.Equal(t, 1, view.Metrics.Total)
	assert.Equal(t, 4.0, view.Metrics.AverageScore)
}

func TestResolveScope_LeadTeamScope(t *testing.T) {
	// Lead L leads a project with members A and B. Records: A completed with
	// score 4, B pending without score, out-of-team C completed with score 5.
	viewer := testViewer("L", roles.RoleLead)
	records := []*evaluation.Evaluation{
		fullRecord("e1", "A", evaluation.StatusCompleted, 4),
		{
			ID:              kernel.NewEvaluationID("e2"),
			EvaluatedUserID: kernel.NewUserID("B"),
			EvaluatorID:     kernel.NewUserID("hr1"),
			Status:          evaluation.StatusPending,
			DueDate:         time.Now().Add(24 * time.Hour),
		},
		fullRecord("e3", "C", evaluation.StatusCompleted, 5),
	}
	users := []*user.User{
		testUser("L", roles.RoleLead),
		testUser("A", roles.RoleVolunteer),
		testUser("B", roles.RoleVolunteer),
		testUser("C", roles.RoleVolunteer),
	}
	projects := []*project.Project{{
		ID:          kernel.NewProjectID("p1"),
		Name:        "Outreach",
		LeadID:      kernel.NewUserID("L"),
		TeamMembers: []kernel.UserID{"A", "B"},
	}}

	view, err := ResolveScope(viewer, records, users, projects)
	require.NoError(t, err)

	// C's record is out of scope entirely.
	require.Len(t, view.Records, 2)
	for _, r := range view.Records {
		assert.NotEqual(t, kernel.NewUserID("C"), r.EvaluatedUserID)
	}

	// Team members' records are fully redacted for the lead.
	for _, r := range view.Records {
		assertRedacted(t, r)
	}

	// Visible users are the team scope: L, A, B.
	assert.Len(t, view.Users, 3)

	// Metrics are computed over the scoped, sanitized set: scores were
	// stripped, so no average survives; status counts do.
	assert.Equal(t, 2, view.Metrics.Total)
	assert.Equal(t, 1, view.Metrics.Completed)
	assert.Equal(t, 1, view.Metrics.Pending)
	assert.Equal(t, 50.0, view.Metrics.CompletionRate)
	assert.Equal(t, 0.0, view.Metrics.AverageScore)
	assert.Equal(t, 1, view.Metrics.RiskEvaluations)
}

func TestResolveScope_LeadSeesOwnRecordUnredacted(t *testing.T) {
	viewer := testViewer("L", roles.RoleLead)
	records := []*evaluation.Evaluation{fullRecord("e1", "L", evaluation.StatusCompleted, 3)}
	users := []*user.User{testUser("L", roles.RoleLead)}

	view, err := ResolveScope(viewer, records, users, nil)
	require.NoError(t, err)

	require.Len(t, view.Records, 1)
	require.NotNil(t, view.Records[0].OverallScore)
	assert.Equal(t, 3.0, *view.Records[0].OverallScore)
}

func TestResolveScope_GlobalScope(t *testing.T) {
	records := []*evaluation.Evaluation{
		fullRecord("e1", "a", evaluation.StatusCompleted, 4),
		fullRecord("e2", "b", evaluation.StatusCompleted, 5),
	}
	users := []*user.User{testUser("a", roles.RoleVolunteer), testUser("b", roles.RoleVolunteer)}

	for _, role := range []roles.Role{roles.RoleAdmin, roles.RoleHR} {
		view, err := ResolveScope(testViewer("boss", role), records, users, nil)
		require.NoError(t, err)

		require.Len(t, view.Records, 2)
		for _, r := range view.Records {
			assert.NotNil(t, r.OverallScore, "global scope must not redact")
		}
		assert.Len(t, view.Users, 2)
		assert.Equal(t, 4.5, view.Metrics.AverageScore)
	}
}

func TestSanitize_DistinguishesAbsentFromEmpty(t *testing.T) {
	record := *fullRecord("e1", "a", evaluation.StatusCompleted, 4)
	record.Strengths = []string{}

	redacted := Sanitize(record, kernel.NewUserID("someone-else"))
	assert.Nil(t, redacted.Strengths, "redacted fields are nil, not empty")

	own := Sanitize(record, kernel.NewUserID("a"))
	require.NotNil(t, own.Strengths)
	assert.Empty(t, own.Strengths, "a genuinely empty list survives for the subject")
}

func TestSanitize_DoesNotMutateInput(t *testing.T) {
	record := *fullRecord("e1", "a", evaluation.StatusCompleted, 4)

	_ = Sanitize(record, kernel.NewUserID("other"))
	require.NotNil(t, record.OverallScore)
	assert.Equal(t, 4.0, *record.OverallScore)
}

func TestComputeMetrics_WorkedExample(t *testing.T) {
	// Three records: one completed with score 4, one pending and one overdue
	// without scores.
	records := []evaluation.Evaluation{
		*fullRecord("e1", "a", evaluation.StatusCompleted, 4),
		{Status: evaluation.StatusPending},
		{Status: evaluation.StatusOverdue},
	}

	m := ComputeMetrics(records)

	assert.Equal(t, 3, m.Total)
	assert.Equal(t, 1, m.Completed)
	assert.Equal(t, 1, m.Pending)
	assert.Equal(t, 1, m.Overdue)
	assert.InDelta(t, 33.33, m.CompletionRate, 0.01)
	assert.Equal(t, 4.0, m.AverageScore, "absent scores are excluded, not zero")
	assert.Equal(t, 2, m.RiskEvaluations)
}

func TestComputeMetrics_Empty(t *testing.T) {
	m := ComputeMetrics(nil)
	assert.Equal(t, Metrics{}, m)
}
