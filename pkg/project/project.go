package project

import (
	"net/http"
	"slices"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
)

// ============================================================================
// Project Entity
// ============================================================================

// Project is a volunteer project. Its lead plus its team members define the
// project's team scope for visibility purposes.
type Project struct {
	ID          kernel.ProjectID `db:"id" json:"id"`
	Name        string           `db:"name" json:"name"`
	Description string           `db:"description" json:"description"`
	LeadID      kernel.UserID    `db:"lead_id" json:"lead_id"`
	TeamMembers []kernel.UserID  `json:"team_members"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// HasMember reports whether a user belongs to this project (lead included)
func (p *Project) HasMember(id kernel.UserID) bool {
	if p.LeadID == id {
		return true
	}
	return slices.Contains(p.TeamMembers, id)
}

// AddMember appends a user to the team (idempotent)
func (p *Project) AddMember(id kernel.UserID) {
	if !p.HasMember(id) {
		p.TeamMembers = append(p.TeamMembers, id)
		p.UpdatedAt = time.Now()
	}
}

// RemoveMember drops a user from the team
func (p *Project) RemoveMember(id kernel.UserID) {
	for i, m := range p.TeamMembers {
		if m == id {
			p.TeamMembers = append(p.TeamMembers[:i], p.TeamMembers[i+1:]...)
			p.UpdatedAt = time.Now()
			return
		}
	}
}

// TeamScope computes the set of user ids a lead is entitled to see: the lead
// itself plus every member of every project the lead leads.
func TeamScope(leadID kernel.UserID, ledProjects []*Project) map[kernel.UserID]struct{} {
	scope := map[kernel.UserID]struct{}{leadID: {}}
	for _, p := range ledProjects {
		if p == nil || p.LeadID != leadID {
			continue
		}
		for _, m := range p.TeamMembers {
			scope[m] = struct{}{}
		}
	}
	return scope
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("PROJECT")

var (
	CodeProjectNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Project not found")
)

func ErrProjectNotFound() *errx.Error {
	return ErrRegistry.New(CodeProjectNotFound)
}
