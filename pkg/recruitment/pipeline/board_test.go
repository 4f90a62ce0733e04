package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/recruitment/candidate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePersister records persistence calls and can be told to fail
type fakePersister struct {
	calls []persistCall
	fail  error
}

type persistCall struct {
	id    kernel.CandidateID
	stage candidate.Stage
}

func (f *fakePersister) PersistStatusChange(ctx context.Context, id kernel.CandidateID, newStage candidate.Stage) error {
	f.calls = append(f.calls, persistCall{id: id, stage: newStage})
	return f.fail
}

func newTestCandidate(id string, stage candidate.Stage) *candidate.Candidate {
	c := &candidate.Candidate{
		ID:                kernel.NewCandidateID(id),
		Name:              "Candidate " + id,
		Email:             id + "@example.org",
		AppliedRole:       "Data Analyst",
		Team:              "Data Science",
		ApplicationStatus: stage,
		VolunteerType:     candidate.VolunteerTypeRegular,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	c.NormalizeCPTOPT()
	c.RebuildToDo()
	return c
}

func newTestBoard(persister candidate.StatusPersister, candidates ...*candidate.Candidate) *Board {
	return NewBoard(persister, 2*time.Second, candidates)
}

func TestMoveCandidate_CrossStage(t *testing.T) {
	persister := &fakePersister{}
	c := newTestCandidate("c1", candidate.StageApplicationReceived)
	board := newTestBoard(persister, c)

	moved, err := board.MoveCandidate(context.Background(), c.ID,
		candidate.StageApplicationReceived, candidate.StageHRReview, 0)
	require.NoError(t, err)

	assert.Equal(t, candidate.StageHRReview, moved.ApplicationStatus)
	assert.Equal(t, []string{"Schedule HR interview"}, moved.ToDo)

	// Persisted exactly once with the destination stage.
	require.Len(t, persister.calls, 1)
	assert.Equal(t, c.ID, persister.calls[0].id)
	assert.Equal(t, candidate.StageHRReview, persister.calls[0].stage)

	// The candidate occupies exactly one stage list.
	assert.Empty(t, board.StageList(candidate.StageApplicationReceived))
	assert.Equal(t, []kernel.CandidateID{c.ID}, board.StageList(candidate.StageHRReview))
}

func TestMoveCandidate_DragScenario(t *testing.T) {
	// Candidate in HR Interview Scheduled dragged to HR Interview Completed
	// at index 0, ahead of an existing occupant.
	persister := &fakePersister{}
	c1 := newTestCandidate("c1", candidate.StageHRInterviewScheduled)
	c2 := newTestCandidate("c2", candidate.StageHRInterviewCompleted)
	board := newTestBoard(persister, c1, c2)

	moved, err := board.MoveCandidate(context.Background(), c1.ID,
		candidate.StageHRInterviewScheduled, candidate.StageHRInterviewCompleted, 0)
	require.NoError(t, err)

	assert.Equal(t, candidate.StageHRInterviewCompleted, moved.ApplicationStatus)
	assert.Empty(t, board.StageList(candidate.StageHRInterviewScheduled))
	assert.Equal(t, []kernel.CandidateID{c1.ID, c2.ID},
		board.StageList(candidate.StageHRInterviewCompleted))
	require.Len(t, persister.calls, 1)
}

func TestMoveCandidate_SameStageSamePosition_NoOp(t *testing.T) {
	persister := &fakePersister{}
	c := newTestCandidate("c1", candidate.StageHRReview)
	board := newTestBoard(persister, c)

	before, _ := board.Get(c.ID)

	moved, err := board.MoveCandidate(context.Background(), c.ID,
		candidate.StageHRReview, candidate.StageHRReview, 0)
	require.NoError(t, err)

	assert.Equal(t, before.UpdatedAt, moved.UpdatedAt)
	assert.Empty(t, persister.calls, "no-op must not persist")
}

func TestMoveCandidate_SameStageReorder_NoPersistence(t *testing.T) {
	persister := &fakePersister{}
	c1 := newTestCandidate("c1", candidate.StageHRReview)
	c2 := newTestCandidate("c2", candidate.StageHRReview)
	c3 := newTestCandidate("c3", candidate.StageHRReview)
	board := newTestBoard(persister, c1, c2, c3)

	_, err := board.MoveCandidate(context.Background(), c3.ID,
		candidate.StageHRReview, candidate.StageHRReview, 0)
	require.NoError(t, err)

	assert.Equal(t, []kernel.CandidateID{c3.ID, c1.ID, c2.ID},
		board.StageList(candidate.StageHRReview))
	assert.Empty(t, persister.calls, "reorder within a stage must not persist")
}

func TestMoveCandidate_StaleSourceStage(t *testing.T) {
	persister := &fakePersister{}
	c := newTestCandidate("c1", candidate.StageAcceptedByHR)
	board := newTestBoard(persister, c)

	_, err := board.MoveCandidate(context.Background(), c.ID,
		candidate.StageHRReview, candidate.StagePMInterviewScheduled, 0)
	require.Error(t, err)

	var e *errx.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, string(CodeStaleSourceStage), e.Code)
	assert.Equal(t, "Accepted by HR", e.Details["current_stage"])
	assert.Empty(t, persister.calls)

	// Board unchanged.
	stage, _, ok := board.Position(c.ID)
	require.True(t, ok)
	assert.Equal(t, candidate.StageAcceptedByHR, stage)
}

func TestMoveCandidate_InvalidTargetStage(t *testing.T) {
	persister := &fakePersister{}
	c := newTestCandidate("c1", candidate.StageHRReview)
	board := newTestBoard(persister, c)

	_, err := board.MoveCandidate(context.Background(), c.ID,
		candidate.StageHRReview, candidate.Stage("Reviewing"), 0)
	require.Error(t, err)

	var e *errx.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, string(CodeInvalidTransitionTarget), e.Code)
	assert.Empty(t, persister.calls)
}

func TestMoveCandidate_UnknownCandidate(t *testing.T) {
	persister := &fakePersister{}
	board := newTestBoard(persister)

	_, err := board.MoveCandidate(context.Background(), kernel.NewCandidateID("ghost"),
		candidate.StageHRReview, candidate.StageAcceptedByHR, 0)
	require.Error(t, err)
	assert.True(t, errx.IsType(err, errx.TypeNotFound))
}

func TestMoveCandidate_RollbackOnPersistenceFailure(t *testing.T) {
	persister := &fakePersister{fail: errors.New("connection refused")}
	c1 := newTestCandidate("c1", candidate.StageHRReview)
	c2 := newTestCandidate("c2", candidate.StageHRReview)
	board := newTestBoard(persister, c1, c2)

	_, err := board.MoveCandidate(context.Background(), c2.ID,
		candidate.StageHRReview, candidate.StageAcceptedByHR, 0)
	require.Error(t, err)

	var e *errx.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, string(CodePersistenceFailed), e.Code)
	assert.EqualError(t, e.Err, "connection refused")

	// Candidate restored to its exact prior stage and index.
	stage, index, ok := board.Position(c2.ID)
	require.True(t, ok)
	assert.Equal(t, candidate.StageHRReview, stage)
	assert.Equal(t, 1, index)
	assert.Empty(t, board.StageList(candidate.StageAcceptedByHR))

	entry, _ := board.Get(c2.ID)
	assert.Equal(t, candidate.StageHRReview, entry.ApplicationStatus)
	assert.Equal(t, []string{"Schedule HR interview"}, entry.ToDo)
}

func TestMoveCandidate_TargetIndexClamped(t *testing.T) {
	persister := &fakePersister{}
	c1 := newTestCandidate("c1", candidate.StageHRReview)
	c2 := newTestCandidate("c2", candidate.StageOfferSent)
	board := newTestBoard(persister, c1, c2)

	_, err := board.MoveCandidate(context.Background(), c1.ID,
		candidate.StageHRReview, candidate.StageOfferSent, 99)
	require.NoError(t, err)

	assert.Equal(t, []kernel.CandidateID{c2.ID, c1.ID},
		board.StageList(candidate.StageOfferSent))

	_, err = board.MoveCandidate(context.Background(), c1.ID,
		candidate.StageOfferSent, candidate.StageOnboard, -5)
	require.NoError(t, err)
	assert.Equal(t, []kernel.CandidateID{c1.ID}, board.StageList(candidate.StageOnboard))
}

func TestBoard_AddRemoveUpdate(t *testing.T) {
	persister := &fakePersister{}
	board := newTestBoard(persister)

	c := newTestCandidate("c1", candidate.StageApplicationReceived)
	require.NoError(t, board.Add(*c))
	assert.Error(t, board.Add(*c), "duplicate add must fail")

	c.Notes = "updated"
	require.NoError(t, board.Update(*c))

	// Update must not smuggle a stage change past MoveCandidate.
	c.ApplicationStatus = candidate.StageOnboard
	err := board.Update(*c)
	require.Error(t, err)
	var e *errx.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, string(CodeStaleSourceStage), e.Code)

	board.Remove(kernel.NewCandidateID("c1"))
	_, _, ok := board.Position(kernel.NewCandidateID("c1"))
	assert.False(t, ok)
}

func TestBoard_SnapshotCopies(t *testing.T) {
	persister := &fakePersister{}
	c := newTestCandidate("c1", candidate.StageOnboard)
	board := newTestBoard(persister, c)

	snap := board.Snapshot()
	require.Len(t, snap[candidate.StageOnboard], 1)

	// Mutating the snapshot must not leak into the board.
	snap[candidate.StageOnboard][0].Notes = "mutated"
	entry, _ := board.Get(c.ID)
	assert.Empty(t, entry.Notes)
}
