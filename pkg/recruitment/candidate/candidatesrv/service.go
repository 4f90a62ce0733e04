package candidatesrv

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/fsx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/roles"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/logx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/ptrx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/recruitment/candidate"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/recruitment/pipeline"
	"github.com/google/uuid"
)

// CandidateService provides business operations over the recruitment pipeline.
// Every mutating operation re-checks the viewer's capability against the
// permission table; route middleware is a shortcut, not the barrier.
type CandidateService struct {
	candidateRepo candidate.CandidateRepository
	board         *pipeline.Board
	fileSystem    fsx.FileSystem
}

// NewCandidateService creates a new candidate service instance
func NewCandidateService(
	candidateRepo candidate.CandidateRepository,
	board *pipeline.Board,
	fileSystem fsx.FileSystem,
) *CandidateService {
	return &CandidateService{
		candidateRepo: candidateRepo,
		board:         board,
		fileSystem:    fileSystem,
	}
}

// AddCandidate registers a new application at the head of the pipeline
func (s *CandidateService) AddCandidate(ctx context.Context, viewer *iam.AuthContext, req candidate.CreateCandidateRequest) (*candidate.Candidate, error) {
	if err := roles.Require(viewer.Role, roles.CapCreate); err != nil {
		return nil, err
	}

	volunteerType := candidate.VolunteerType(req.VolunteerType)
	if !volunteerType.Valid() {
		return nil, candidate.ErrInvalidVolunteerType().WithDetail("volunteer_type", req.VolunteerType)
	}

	exists, err := s.candidateRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, errx.Wrap(err, "failed to check candidate email", errx.TypeInternal)
	}
	if exists {
		return nil, candidate.ErrCandidateAlreadyExists().WithDetail("email", req.Email)
	}

	now := time.Now()
	c := &candidate.Candidate{
		ID:          kernel.NewCandidateID(uuid.NewString()),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		AppliedRole: req.AppliedRole,
		Team:        req.Team,

		ApplicationStatus: candidate.StageApplicationReceived,
		VolunteerType:     volunteerType,

		OfferLetter:        candidate.DocumentState{Status: candidate.DocumentStatusPending},
		VolunteerAgreement: candidate.DocumentState{Status: candidate.DocumentStatusPending},
		WelcomeLetter:      candidate.DocumentState{Status: candidate.DocumentStatusPending},

		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.NormalizeCPTOPT()
	c.RebuildToDo()

	if err := s.candidateRepo.Save(ctx, *c); err != nil {
		return nil, err
	}

	if err := s.board.Add(*c); err != nil {
		return nil, err
	}

	logx.Infof("candidate %s added to pipeline by %s", c.ID.String(), viewer.UserID.String())
	return c, nil
}

// GetCandidate returns one candidate from the board
func (s *CandidateService) GetCandidate(ctx context.Context, id kernel.CandidateID) (*candidate.Candidate, error) {
	if c, ok := s.board.Get(id); ok {
		return c, nil
	}
	return s.candidateRepo.FindByID(ctx, id)
}

// GetBoard returns the full pipeline grouped by stage in board order
func (s *CandidateService) GetBoard(ctx context.Context) (map[candidate.Stage][]candidate.Candidate, error) {
	return s.board.Snapshot(), nil
}

// ListCandidates returns every candidate
func (s *CandidateService) ListCandidates(ctx context.Context) (*candidate.CandidateListResponse, error) {
	candidates, err := s.candidateRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]candidate.Candidate, 0, len(candidates))
	for _, c := range candidates {
		list = append(list, *c)
	}

	return &candidate.CandidateListResponse{
		Candidates: list,
		Total:      len(list),
	}, nil
}

// MoveCandidate applies a drag-initiated stage transition through the board
func (s *CandidateService) MoveCandidate(ctx context.Context, viewer *iam.AuthContext, id kernel.CandidateID, req candidate.MoveRequest) (*candidate.Candidate, error) {
	if err := roles.Require(viewer.Role, roles.CapEdit); err != nil {
		return nil, err
	}

	fromStage, err := candidate.ParseStage(req.FromStage)
	if err != nil {
		return nil, err
	}
	toStage, err := candidate.ParseStage(req.ToStage)
	if err != nil {
		return nil, pipeline.ErrInvalidTransitionTarget().WithDetail("to_stage", req.ToStage)
	}

	moved, err := s.board.MoveCandidate(ctx, id, fromStage, toStage, req.TargetIndex)
	if err != nil {
		return nil, err
	}

	logx.Infof("candidate %s moved %s -> %s by %s", id.String(), fromStage.String(), toStage.String(), viewer.UserID.String())
	return moved, nil
}

// editableFields is the whitelist for single-field updates
var editableFields = map[string]struct{}{
	"name":              {},
	"email":             {},
	"phone":             {},
	"applied_role":      {},
	"team":              {},
	"volunteer_type":    {},
	"cpt_opt_status":    {},
	"hr_interview_date": {},
	"pm_interview_date": {},
	"start_date":        {},
	"end_date":          {},
	"notes":             {},
}

// UpdateCandidateField mutates one whitelisted field and rederives the
// dependent state (CPT/OPT status and the to-do list)
func (s *CandidateService) UpdateCandidateField(ctx context.Context, viewer *iam.AuthContext, id kernel.CandidateID, req candidate.UpdateFieldRequest) (*candidate.Candidate, error) {
	if err := roles.Require(viewer.Role, roles.CapEdit); err != nil {
		return nil, err
	}

	if _, ok := editableFields[req.Field]; !ok {
		return nil, candidate.ErrInvalidField().WithDetail("field", req.Field)
	}

	c, err := s.candidateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyField(c, req.Field, req.Value); err != nil {
		return nil, err
	}

	c.NormalizeCPTOPT()
	c.RebuildToDo()
	c.Touch()

	if err := s.candidateRepo.Save(ctx, *c); err != nil {
		return nil, err
	}

	if err := s.board.Update(*c); err != nil {
		return nil, err
	}

	return c, nil
}

// DeleteCandidate removes a candidate from the pipeline entirely
func (s *CandidateService) DeleteCandidate(ctx context.Context, viewer *iam.AuthContext, id kernel.CandidateID) error {
	if err := roles.Require(viewer.Role, roles.CapDelete); err != nil {
		return err
	}

	if err := s.candidateRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.board.Remove(id)
	logx.Infof("candidate %s deleted by %s", id.String(), viewer.UserID.String())
	return nil
}

// UploadDocument stores an onboarding document and marks it sent
func (s *CandidateService) UploadDocument(ctx context.Context, viewer *iam.AuthContext, id kernel.CandidateID, kind candidate.DocumentKind, filename string, data []byte) (*candidate.Candidate, error) {
	if err := roles.Require(viewer.Role, roles.CapUploadDocuments); err != nil {
		return nil, err
	}

	if !kind.Valid() {
		return nil, candidate.ErrInvalidDocumentKind().WithDetail("kind", string(kind))
	}

	c, err := s.candidateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("candidates/%s/%s%s", id.String(), string(kind), filepath.Ext(filename))
	if err := s.fileSystem.WriteFile(ctx, path, data); err != nil {
		return nil, err
	}

	doc := c.Document(kind)
	doc.Status = candidate.DocumentStatusSent
	doc.Link = ptrx.String(s.fileSystem.URL(path))

	c.RebuildToDo()
	c.Touch()

	if err := s.candidateRepo.Save(ctx, *c); err != nil {
		return nil, err
	}

	if err := s.board.Update(*c); err != nil {
		return nil, err
	}

	return c, nil
}

// MarkDocumentSigned flips a sent document to signed
func (s *CandidateService) MarkDocumentSigned(ctx context.Context, viewer *iam.AuthContext, id kernel.CandidateID, kind candidate.DocumentKind) (*candidate.Candidate, error) {
	if err := roles.Require(viewer.Role, roles.CapEdit); err != nil {
		return nil, err
	}

	if !kind.Valid() {
		return nil, candidate.ErrInvalidDocumentKind().WithDetail("kind", string(kind))
	}

	c, err := s.candidateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Document(kind).Status = candidate.DocumentStatusSigned
	c.RebuildToDo()
	c.Touch()

	if err := s.candidateRepo.Save(ctx, *c); err != nil {
		return nil, err
	}

	if err := s.board.Update(*c); err != nil {
		return nil, err
	}

	return c, nil
}

// applyField assigns a JSON value to one whitelisted field
func applyField(c *candidate.Candidate, field string, value any) error {
	asString := func() (string, error) {
		s, ok := value.(string)
		if !ok {
			return "", candidate.ErrInvalidField().
				WithDetail("field", field).
				WithDetail("reason", "expected a string value")
		}
		return s, nil
	}

	asTime := func() (*time.Time, error) {
		if value == nil {
			return nil, nil
		}
		s, err := asString()
		if err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, candidate.ErrInvalidField().
				WithDetail("field", field).
				WithDetail("reason", "expected an RFC3339 timestamp")
		}
		return &t, nil
	}

	switch field {
	case "name":
		s, err := asString()
		if err != nil {
			return err
		}
		c.Name = s
	case "email":
		s, err := asString()
		if err != nil {
			return err
		}
		c.Email = s
	case "phone":
		if value == nil {
			c.Phone = nil
			return nil
		}
		s, err := asString()
		if err != nil {
			return err
		}
		c.Phone = ptrx.String(s)
	case "applied_role":
		s, err := asString()
		if err != nil {
			return err
		}
		c.AppliedRole = s
	case "team":
		s, err := asString()
		if err != nil {
			return err
		}
		c.Team = s
	case "volunteer_type":
		s, err := asString()
		if err != nil {
			return err
		}
		vt := candidate.VolunteerType(s)
		if !vt.Valid() {
			return candidate.ErrInvalidVolunteerType().WithDetail("volunteer_type", s)
		}
		c.VolunteerType = vt
	case "cpt_opt_status":
		s, err := asString()
		if err != nil {
			return err
		}
		c.CPTOPTStatus = s
	case "hr_interview_date":
		t, err := asTime()
		if err != nil {
			return err
		}
		c.HRInterviewDate = t
	case "pm_interview_date":
		t, err := asTime()
		if err != nil {
			return err
		}
		c.PMInterviewDate = t
	case "start_date":
		t, err := asTime()
		if err != nil {
			return err
		}
		c.StartDate = t
	case "end_date":
		t, err := asTime()
		if err != nil {
			return err
		}
		c.EndDate = t
	case "notes":
		s, err := asString()
		if err != nil {
			return err
		}
		c.Notes = s
	}

	return nil
}
