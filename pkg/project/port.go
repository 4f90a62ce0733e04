package project

import (
	"context"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
)

// ProjectRepository is the persistence contract for projects
type ProjectRepository interface {
	FindByID(ctx context.Context, id kernel.ProjectID) (*Project, error)
	FindAll(ctx context.Context) ([]*Project, error)
	// FindByLead lists the projects a user leads; the visibility engine
	// derives team scope from the result.
	FindByLead(ctx context.Context, leadID kernel.UserID) ([]*Project, error)
	FindByMember(ctx context.Context, memberID kernel.UserID) ([]*Project, error)
	Save(ctx context.Context, p Project) error
	Delete(ctx context.Context, id kernel.ProjectID) error
}
