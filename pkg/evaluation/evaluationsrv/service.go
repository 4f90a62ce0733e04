package evaluationsrv

import (
	"context"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/evaluation"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/roles"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/user"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/logx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/project"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/visibility"
	"github.com/google/uuid"
)

// EvaluationService provides business operations for performance evaluations.
// Every read goes through the visibility engine; there is no unscoped path to
// evaluation data.
type EvaluationService struct {
	evaluationRepo evaluation.EvaluationRepository
	userRepo       user.UserRepository
	projectRepo    project.ProjectRepository
}

// NewEvaluationService creates a new evaluation service instance
func NewEvaluationService(
	evaluationRepo evaluation.EvaluationRepository,
	userRepo user.UserRepository,
	projectRepo project.ProjectRepository,
) *EvaluationService {
	return &EvaluationService{
		evaluationRepo: evaluationRepo,
		userRepo:       userRepo,
		projectRepo:    projectRepo,
	}
}

// ListForViewer resolves the viewer's scoped, sanitized view with metrics
func (s *EvaluationService) ListForViewer(ctx context.Context, viewer *iam.AuthContext) (*visibility.ScopedView, error) {
	records, users, projects, err := s.loadDataset(ctx)
	if err != nil {
		return nil, err
	}
	return visibility.ResolveScope(viewer, records, users, projects)
}

// GetForViewer returns one evaluation through the same scope policy as the
// list. An in-scope record arrives sanitized per the viewer; an out-of-scope
// record is indistinguishable from a missing one.
func (s *EvaluationService) GetForViewer(ctx context.Context, viewer *iam.AuthContext, id kernel.EvaluationID) (*evaluation.Evaluation, error) {
	record, err := s.evaluationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	view, err := visibility.ResolveScope(viewer, []*evaluation.Evaluation{record}, users, projects)
	if err != nil {
		return nil, err
	}
	if len(view.Records) == 0 {
		return nil, evaluation.ErrEvaluationNotFound().WithDetail("evaluation_id", id.String())
	}

	scoped := view.Records[0]
	return &scoped, nil
}

// CreateEvaluation schedules a review for a subject
func (s *EvaluationService) CreateEvaluation(ctx context.Context, viewer *iam.AuthContext, req evaluation.CreateEvaluationRequest) (*evaluation.Evaluation, error) {
	if err := roles.Require(viewer.Role, roles.CapCreate); err != nil {
		return nil, err
	}

	subjectID := kernel.NewUserID(req.EvaluatedUserID)
	if _, err := s.userRepo.FindByID(ctx, subjectID); err != nil {
		return nil, err
	}
	evaluatorID := kernel.NewUserID(req.EvaluatorID)
	if _, err := s.userRepo.FindByID(ctx, evaluatorID); err != nil {
		return nil, err
	}

	now := time.Now()
	e := &evaluation.Evaluation{
		ID:              kernel.NewEvaluationID(uuid.NewString()),
		EvaluatedUserID: subjectID,
		EvaluatorID:     evaluatorID,
		PeriodID:        req.PeriodID,
		Type:            req.Type,
		Status:          evaluation.StatusPending,
		DueDate:         req.DueDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.evaluationRepo.Save(ctx, *e); err != nil {
		return nil, err
	}

	return e, nil
}

// CompleteEvaluation closes a review with its confidential payload. Only the
// assigned evaluator or a globally scoped role may complete.
func (s *EvaluationService) CompleteEvaluation(ctx context.Context, viewer *iam.AuthContext, id kernel.EvaluationID, req evaluation.CompleteEvaluationRequest) (*evaluation.Evaluation, error) {
	e, err := s.evaluationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isGlobal := viewer.Role == roles.RoleAdmin || viewer.Role == roles.RoleHR
	if viewer.UserID != e.EvaluatorID && !isGlobal {
		return nil, evaluation.ErrNotEvaluator().
			WithDetail("evaluation_id", id.String()).
			WithDetail("evaluator_id", e.EvaluatorID.String())
	}

	if err := e.Complete(req.Payload, time.Now()); err != nil {
		return nil, err
	}

	if err := s.evaluationRepo.Save(ctx, *e); err != nil {
		return nil, err
	}

	return e, nil
}

// DeleteEvaluation removes an evaluation
func (s *EvaluationService) DeleteEvaluation(ctx context.Context, viewer *iam.AuthContext, id kernel.EvaluationID) error {
	if err := roles.Require(viewer.Role, roles.CapDelete); err != nil {
		return err
	}
	return s.evaluationRepo.Delete(ctx, id)
}

// SweepOverdue flips every evaluation past its due date to overdue. Runs on a
// background ticker; safe to call concurrently.
func (s *EvaluationService) SweepOverdue(ctx context.Context) (int64, error) {
	count, err := s.evaluationRepo.MarkOverdue(ctx, time.Now())
	if err != nil {
		return 0, errx.Wrap(err, "overdue sweep failed", errx.TypeInternal)
	}
	if count > 0 {
		logx.Infof("overdue sweep marked %d evaluations", count)
	}
	return count, nil
}

func (s *EvaluationService) loadDataset(ctx context.Context) ([]*evaluation.Evaluation, []*user.User, []*project.Project, error) {
	records, err := s.evaluationRepo.FindAll(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	projects, err := s.projectRepo.FindAll(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return records, users, projects, nil
}
