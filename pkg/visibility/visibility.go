// Package visibility computes, for a given viewer, which evaluation records
// they may see, which confidential fields must be stripped, and the aggregate
// metrics over that scoped set.
//
// Everything here is a pure function of (viewer, dataset). Results are never
// cached: a stale scope after a role or team-membership change is a security
// bug, not a performance problem.
package visibility

import (
	"net/http"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/evaluation"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/roles"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/user"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/project"
)

// ============================================================================
// Scoped View
// ============================================================================

// Metrics are the aggregate numbers a dashboard renders. They are always
// computed over the already-scoped, already-sanitized record set so they can
// never leak a number derived from out-of-scope data.
type Metrics struct {
	Total           int     `json:"total"`
	Completed       int     `json:"completed"`
	Pending         int     `json:"pending"`
	Overdue         int     `json:"overdue"`
	CompletionRate  float64 `json:"completion_rate"`
	AverageScore    float64 `json:"average_score"`
	RiskEvaluations int     `json:"risk_evaluations"`
}

// ScopedView is the subset of records and users a viewer may render
type ScopedView struct {
	Records []evaluation.Evaluation `json:"records"`
	Users   []user.UserDetailsDTO   `json:"users"`
	Metrics Metrics                 `json:"metrics"`
}

// ============================================================================
// ResolveScope
// ============================================================================

// ResolveScope applies the viewer's role policy:
//
//   - volunteer: self-scope — only records whose subject is the viewer, no
//     redaction (a subject always sees their own record in full);
//   - lead: team-scope — records whose subject belongs to a project the
//     viewer leads (viewer included), with every record except the viewer's
//     own sanitized;
//   - admin, hr: global scope, unmodified.
//
// A role outside the closed set fails closed: the error carries an empty
// view, never global access.
func ResolveScope(viewer *iam.AuthContext, records []*evaluation.Evaluation, users []*user.User, projects []*project.Project) (*ScopedView, error) {
	if viewer == nil || viewer.UserID.IsZero() {
		return emptyView(), iam.ErrUnauthorized()
	}

	switch viewer.Role {
	case roles.RoleVolunteer:
		return selfScope(viewer.UserID, records, users), nil
	case roles.RoleLead:
		return teamScope(viewer.UserID, records, users, projects), nil
	case roles.RoleAdmin, roles.RoleHR:
		return globalScope(records, users), nil
	default:
		return emptyView(), ErrUnknownViewerRole().WithDetail("role", viewer.Role.String())
	}
}

func emptyView() *ScopedView {
	return &ScopedView{
		Records: []evaluation.Evaluation{},
		Users:   []user.UserDetailsDTO{},
		Metrics: ComputeMetrics(nil),
	}
}

func selfScope(viewerID kernel.UserID, records []*evaluation.Evaluation, users []*user.User) *ScopedView {
	scoped := make([]evaluation.Evaluation, 0)
	for _, r := range records {
		if r != nil && r.EvaluatedUserID == viewerID {
			scoped = append(scoped, *r)
		}
	}

	scopedUsers := make([]user.UserDetailsDTO, 0, 1)
	for _, u := range users {
		if u != nil && u.ID == viewerID {
			scopedUsers = append(scopedUsers, u.ToDTO())
			break
		}
	}

	return &ScopedView{
		Records: scoped,
		Users:   scopedUsers,
		Metrics: ComputeMetrics(scoped),
	}
}

func teamScope(viewerID kernel.UserID, records []*evaluation.Evaluation, users []*user.User, projects []*project.Project) *ScopedView {
	led := make([]*project.Project, 0)
	for _, p := range projects {
		if p != nil && p.LeadID == viewerID {
			led = append(led, p)
		}
	}
	members := project.TeamScope(viewerID, led)

	scoped := make([]evaluation.Evaluation, 0)
	for _, r := range records {
		if r == nil {
			continue
		}
		if _, ok := members[r.EvaluatedUserID]; !ok {
			continue
		}
		scoped = append(scoped, Sanitize(*r, viewerID))
	}

	scopedUsers := make([]user.UserDetailsDTO, 0, len(members))
	for _, u := range users {
		if u == nil {
			continue
		}
		if _, ok := members[u.ID]; ok {
			scopedUsers = append(scopedUsers, u.ToDTO())
		}
	}

	return &ScopedView{
		Records: scoped,
		Users:   scopedUsers,
		Metrics: ComputeMetrics(scoped),
	}
}

func globalScope(records []*evaluation.Evaluation, users []*user.User) *ScopedView {
	scoped := make([]evaluation.Evaluation, 0, len(records))
	for _, r := range records {
		if r != nil {
			scoped = append(scoped, *r)
		}
	}

	scopedUsers := make([]user.UserDetailsDTO, 0, len(users))
	for _, u := range users {
		if u != nil {
			scopedUsers = append(scopedUsers, u.ToDTO())
		}
	}

	return &ScopedView{
		Records: scoped,
		Users:   scopedUsers,
		Metrics: ComputeMetrics(scoped),
	}
}

// ============================================================================
// Sanitize
// ============================================================================

// Sanitize returns the record unchanged when the viewer is its subject, and
// otherwise a copy with every confidential field absent. Absent means nil,
// not empty: a UI must be able to tell redaction apart from a genuinely
// blank review.
func Sanitize(record evaluation.Evaluation, viewerID kernel.UserID) evaluation.Evaluation {
	if record.EvaluatedUserID == viewerID {
		return record
	}
	record.StripPayload()
	return record
}

// ============================================================================
// ComputeMetrics
// ============================================================================

// ComputeMetrics aggregates a scoped record set. Absent scores are excluded
// from the average, not counted as zero.
func ComputeMetrics(records []evaluation.Evaluation) Metrics {
	m := Metrics{Total: len(records)}

	var scoreSum float64
	var scoreCount int

	for _, r := range records {
		switch r.Status {
		case evaluation.StatusCompleted:
			m.Completed++
		case evaluation.StatusPending:
			m.Pending++
		case evaluation.StatusOverdue:
			m.Overdue++
		}
		if r.OverallScore != nil {
			scoreSum += *r.OverallScore
			scoreCount++
		}
	}

	if m.Total > 0 {
		m.CompletionRate = float64(m.Completed) / float64(m.Total) * 100
	}
	if scoreCount > 0 {
		m.AverageScore = scoreSum / float64(scoreCount)
	}
	m.RiskEvaluations = m.Overdue + m.Pending

	return m
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("VISIBILITY")

var (
	CodeUnknownViewerRole = ErrRegistry.Register("UNKNOWN_VIEWER_ROLE", errx.TypeAuthorization, http.StatusForbidden, "Viewer role is not recognized; scope resolves to empty")
)

func ErrUnknownViewerRole() *errx.Error {
	return ErrRegistry.New(CodeUnknownViewerRole)
}
