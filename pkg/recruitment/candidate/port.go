package candidate

import (
	"context"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
)

// CandidateRepository is the persistence contract for candidates
type CandidateRepository interface {
	FindByID(ctx context.Context, id kernel.CandidateID) (*Candidate, error)
	FindAll(ctx context.Context) ([]*Candidate, error)
	FindByStage(ctx context.Context, stage Stage) ([]*Candidate, error)
	Save(ctx context.Context, c Candidate) error
	Delete(ctx context.Context, id kernel.CandidateID) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateStatus(ctx context.Context, id kernel.CandidateID, stage Stage) error
}

// StatusPersister is the outbound persistence call behind a stage transition.
// The pipeline engine applies moves optimistically and rolls back when this
// call fails.
type StatusPersister interface {
	PersistStatusChange(ctx context.Context, id kernel.CandidateID, newStage Stage) error
}
