package evaluation

import (
	"context"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
)

// EvaluationRepository is the persistence contract for evaluations
type EvaluationRepository interface {
	FindByID(ctx context.Context, id kernel.EvaluationID) (*Evaluation, error)
	FindAll(ctx context.Context) ([]*Evaluation, error)
	FindBySubject(ctx context.Context, subjectID kernel.UserID) ([]*Evaluation, error)
	Save(ctx context.Context, e Evaluation) error
	Delete(ctx context.Context, id kernel.EvaluationID) error
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}
