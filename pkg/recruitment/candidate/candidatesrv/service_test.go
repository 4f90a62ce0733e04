package candidatesrv

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/roles"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/recruitment/candidate"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/recruitment/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCandidateRepo is an in-memory CandidateRepository and StatusPersister
type memoryCandidateRepo struct {
	byID map[kernel.CandidateID]candidate.Candidate
}

func newMemoryCandidateRepo() *memoryCandidateRepo {
	return &memoryCandidateRepo{byID: make(map[kernel.CandidateID]candidate.Candidate)}
}

func (m *memoryCandidateRepo) FindByID(ctx context.Context, id kernel.CandidateID) (*candidate.Candidate, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, candidate.ErrCandidateNotFound().WithDetail("candidate_id", id.String())
	}
	return &c, nil
}

func (m *memoryCandidateRepo) FindAll(ctx context.Context) ([]*candidate.Candidate, error) {
	out := make([]*candidate.Candidate, 0, len(m.byID))
	for id := range m.byID {
		c := m.byID[id]
		out = append(out, &c)
	}
	return out, nil
}

func (m *memoryCandidateRepo) FindByStage(ctx context.Context, stage candidate.Stage) ([]*candidate.Candidate, error) {
	out := []*candidate.Candidate{}
	for id := range m.byID {
		if m.byID[id].ApplicationStatus == stage {
			c := m.byID[id]
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memoryCandidateRepo) Save(ctx context.Context, c candidate.Candidate) error {
	m.byID[c.ID] = c
	return nil
}

func (m *memoryCandidateRepo) Delete(ctx context.Context, id kernel.CandidateID) error {
	if _, ok := m.byID[id]; !ok {
		return candidate.ErrCandidateNotFound().WithDetail("candidate_id", id.String())
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryCandidateRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, c := range m.byID {
		if c.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryCandidateRepo) UpdateStatus(ctx context.Context, id kernel.CandidateID, stage candidate.Stage) error {
	c, ok := m.byID[id]
	if !ok {
		return candidate.ErrCandidateNotFound().WithDetail("candidate_id", id.String())
	}
	c.ApplicationStatus = stage
	m.byID[id] = c
	return nil
}

func (m *memoryCandidateRepo) PersistStatusChange(ctx context.Context, id kernel.CandidateID, newStage candidate.Stage) error {
	return m.UpdateStatus(ctx, id, newStage)
}

// memoryFileSystem records writes in memory
type memoryFileSystem struct {
	files map[string][]byte
}

func newMemoryFileSystem() *memoryFileSystem {
	return &memoryFileSystem{files: make(map[string][]byte)}
}

func (m *memoryFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, errx.New("file not found", errx.TypeNotFound)
	}
	return data, nil
}

func (m *memoryFileSystem) ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error) {
	return nil, errx.New("streams not supported", errx.TypeInternal)
}

func (m *memoryFileSystem) WriteFile(ctx context.Context, path string, data []byte) error {
	m.files[path] = data
	return nil
}

func (m *memoryFileSystem) WriteFileStream(ctx context.Context, path string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.files[path] = data
	return nil
}

func (m *memoryFileSystem) DeleteFile(ctx context.Context, path string) error {
	delete(m.files, path)
	return nil
}

func (m *memoryFileSystem) Exists(ctx context.Context, path string) (bool, error) {
	_, ok := m.files[path]
	return ok, nil
}

func (m *memoryFileSystem) URL(path string) string {
	return "mem://" + path
}

func newTestService() (*CandidateService, *memoryCandidateRepo, *memoryFileSystem) {
	repo := newMemoryCandidateRepo()
	fs := newMemoryFileSystem()
	board := pipeline.NewBoard(repo, 2*time.Second, nil)
	return NewCandidateService(repo, board, fs), repo, fs
}

func hrViewer() *iam.AuthContext {
	return &iam.AuthContext{UserID: kernel.NewUserID("hr1"), Role: roles.RoleHR}
}

func volunteerViewer() *iam.AuthContext {
	return &iam.AuthContext{UserID: kernel.NewUserID("v1"), Role: roles.RoleVolunteer}
}

func TestAddCandidate(t *testing.T) {
	svc, repo, _ := newTestService()

	created, err := svc.AddCandidate(context.Background(), hrViewer(), candidate.CreateCandidateRequest{
		Name:          "Ana Torres",
		Email:         "ana@example.org",
		AppliedRole:   "Data Analyst",
		Team:          "Data Science",
		VolunteerType: "CPT",
	})
	require.NoError(t, err)

	assert.Equal(t, candidate.StageApplicationReceived, created.ApplicationStatus)
	assert.Equal(t, "Pending", created.CPTOPTStatus)
	assert.Equal(t, []string{"Review application"}, created.ToDo)
	assert.Equal(t, candidate.DocumentStatusPending, created.OfferLetter.Status)

	_, ok := repo.byID[created.ID]
	assert.True(t, ok)

	// Duplicate email is rejected.
	_, err = svc.AddCandidate(context.Background(), hrViewer(), candidate.CreateCandidateRequest{
		Name:          "Ana Clone",
		Email:         "ana@example.org",
		AppliedRole:   "Data Analyst",
		Team:          "Data Science",
		VolunteerType: "Regular",
	})
	assert.True(t, errx.IsType(err, errx.TypeConflict))
}

func TestAddCandidate_PermissionDenied(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.AddCandidate(context.Background(), volunteerViewer(), candidate.CreateCandidateRequest{
		Name:          "Ana Torres",
		Email:         "ana@example.org",
		AppliedRole:   "Data Analyst",
		Team:          "Data Science",
		VolunteerType: "Regular",
	})
	require.Error(t, err)

	var e *errx.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, string(roles.CodePermissionDenied), e.Code)
}

func TestAddCandidate_InvalidVolunteerType(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.AddCandidate(context.Background(), hrViewer(), candidate.CreateCandidateRequest{
		Name:          "Ana Torres",
		Email:         "ana@example.org",
		AppliedRole:   "Data Analyst",
		Team:          "Data Science",
		VolunteerType: "Contractor",
	})
	assert.True(t, errx.IsType(err, errx.TypeValidation))
}

func TestMoveCandidate_ThroughService(t *testing.T) {
	svc, repo, _ := newTestService()

	created, err := svc.AddCandidate(context.Background(), hrViewer(), candidate.CreateCandidateRequest{
		Name:          "Ana Torres",
		Email:         "ana@example.org",
		AppliedRole:   "Data Analyst",
		Team:          "Data Science",
		VolunteerType: "Regular",
	})
	require.NoError(t, err)

	moved, err := svc.MoveCandidate(context.Background(), hrViewer(), created.ID, candidate.MoveRequest{
		FromStage: "Application Received",
		ToStage:   "Application Accepted/HR Review",
	})
	require.NoError(t, err)
	assert.Equal(t, candidate.StageHRReview, moved.ApplicationStatus)

	// The transition reached durable storage.
	assert.Equal(t, candidate.StageHRReview, repo.byID[created.ID].ApplicationStatus)

	// A stale source stage is rejected.
	_, err = svc.MoveCandidate(context.Background(), hrViewer(), created.ID, candidate.MoveRequest{
		FromStage: "Application Received",
		ToStage:   "Accepted by HR",
	})
	assert.True(t, errx.IsType(err, errx.TypeConflict))

	// Volunteers cannot move candidates at all.
	_, err = svc.MoveCandidate(context.Background(), volunteerViewer(), created.ID, candidate.MoveRequest{
		FromStage: "Application Accepted/HR Review",
		ToStage:   "Accepted by HR",
	})
	assert.True(t, errx.IsType(err, errx.TypeAuthorization))
}

func TestUpdateCandidateField(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.AddCandidate(context.Background(), hrViewer(), candidate.CreateCandidateRequest{
		Name:          "Ana Torres",
		Email:         "ana@example.org",
		AppliedRole:   "Data Analyst",
		Team:          "Data Science",
		VolunteerType: "Regular",
	})
	require.NoError(t, err)

	// Whitelisted field.
	updated, err := svc.UpdateCandidateField(context.Background(), hrViewer(), created.ID, candidate.UpdateFieldRequest{
		Field: "notes",
		Value: "strong portfolio",
	})
	require.NoError(t, err)
	assert.Equal(t, "strong portfolio", updated.Notes)

	// Switching volunteer type rederives the CPT/OPT status.
	updated, err = svc.UpdateCandidateField(context.Background(), hrViewer(), created.ID, candidate.UpdateFieldRequest{
		Field: "volunteer_type",
		Value: "OPT",
	})
	require.NoError(t, err)
	assert.Equal(t, "Pending", updated.CPTOPTStatus)

	// Stage is not in the whitelist; moves go through MoveCandidate.
	_, err = svc.UpdateCandidateField(context.Background(), hrViewer(), created.ID, candidate.UpdateFieldRequest{
		Field: "application_status",
		Value: "Onboard",
	})
	assert.True(t, errx.IsType(err, errx.TypeValidation))

	// Wrong value type for a string field.
	_, err = svc.UpdateCandidateField(context.Background(), hrViewer(), created.ID, candidate.UpdateFieldRequest{
		Field: "name",
		Value: 42,
	})
	assert.True(t, errx.IsType(err, errx.TypeValidation))
}

func TestDeleteCandidate_RequiresAdmin(t *testing.T) {
	svc, repo, _ := newTestService()

	created, err := svc.AddCandidate(context.Background(), hrViewer(), candidate.CreateCandidateRequest{
		Name:          "Ana Torres",
		Email:         "ana@example.org",
		AppliedRole:   "Data Analyst",
		Team:          "Data Science",
		VolunteerType: "Regular",
	})
	require.NoError(t, err)

	// HR lacks the delete capability.
	err = svc.DeleteCandidate(context.Background(), hrViewer(), created.ID)
	assert.True(t, errx.IsType(err, errx.TypeAuthorization))

	admin := &iam.AuthContext{UserID: kernel.NewUserID("a1"), Role: roles.RoleAdmin}
	require.NoError(t, svc.DeleteCandidate(context.Background(), admin, created.ID))

	_, ok := repo.byID[created.ID]
	assert.False(t, ok)
}

func TestUploadDocument(t *testing.T) {
	svc, _, fs := newTestService()

	created, err := svc.AddCandidate(context.Background(), hrViewer(), candidate.CreateCandidateRequest{
		Name:          "Ana Torres",
		Email:         "ana@example.org",
		AppliedRole:   "Data Analyst",
		Team:          "Data Science",
		VolunteerType: "Regular",
	})
	require.NoError(t, err)

	updated, err := svc.UploadDocument(context.Background(), hrViewer(), created.ID,
		candidate.DocumentOfferLetter, "offer.pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)

	assert.Equal(t, candidate.DocumentStatusSent, updated.OfferLetter.Status)
	require.NotNil(t, updated.OfferLetter.Link)

	stored, err := fs.ReadFile(context.Background(), "candidates/"+created.ID.String()+"/offer_letter.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), stored)

	// Unknown document kind.
	_, err = svc.UploadDocument(context.Background(), hrViewer(), created.ID,
		candidate.DocumentKind("passport"), "p.pdf", nil)
	assert.True(t, errx.IsType(err, errx.TypeValidation))

	// Leads cannot upload documents.
	lead := &iam.AuthContext{UserID: kernel.NewUserID("l1"), Role: roles.RoleLead}
	_, err = svc.UploadDocument(context.Background(), lead, created.ID,
		candidate.DocumentOfferLetter, "offer.pdf", nil)
	assert.True(t, errx.IsType(err, errx.TypeAuthorization))
}
