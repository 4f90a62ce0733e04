package pipeline

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/recruitment/candidate"
)

// ============================================================================
// Pipeline Board
// ============================================================================

// Board owns the per-stage ordered candidate lists and the rule for moving a
// candidate between stages. A candidate id appears in exactly one stage list
// at any observable point; during an in-flight persistence call readers see
// the optimistic destination.
//
// The stage graph is totally permissive: any stage is reachable from any
// other via explicit user action. A forbidden-transition table is a product
// decision that has not been made.
type Board struct {
	mu             sync.Mutex
	lists          map[candidate.Stage][]kernel.CandidateID
	entries        map[kernel.CandidateID]*candidate.Candidate
	persister      candidate.StatusPersister
	persistTimeout time.Duration
}

// NewBoard builds a board from the current candidate set, grouping by
// ApplicationStatus and preserving the given order within each stage.
func NewBoard(persister candidate.StatusPersister, persistTimeout time.Duration, candidates []*candidate.Candidate) *Board {
	b := &Board{
		lists:          make(map[candidate.Stage][]kernel.CandidateID),
		entries:        make(map[kernel.CandidateID]*candidate.Candidate),
		persister:      persister,
		persistTimeout: persistTimeout,
	}
	for _, stage := range candidate.AllStages() {
		b.lists[stage] = []kernel.CandidateID{}
	}
	for _, c := range candidates {
		if c == nil || !c.ApplicationStatus.Valid() {
			continue
		}
		b.lists[c.ApplicationStatus] = append(b.lists[c.ApplicationStatus], c.ID)
		cc := *c
		b.entries[c.ID] = &cc
	}
	return b
}

// MoveCandidate applies a drag-initiated stage transition.
//
// The source stage must match the candidate's current stage (optimistic
// concurrency: a mismatch means the caller's board is stale). The move is
// applied in memory first; when the stage label changes, the status change is
// persisted under a bounded timeout, and on failure the candidate is restored
// to its exact prior stage and index before the error is returned.
func (b *Board) MoveCandidate(ctx context.Context, id kernel.CandidateID, fromStage, toStage candidate.Stage, targetIndex int) (*candidate.Candidate, error) {
	if !toStage.Valid() {
		return nil, ErrInvalidTransitionTarget().WithDetail("to_stage", toStage.String())
	}

	b.mu.Lock()

	entry, ok := b.entries[id]
	if !ok {
		b.mu.Unlock()
		return nil, candidate.ErrCandidateNotFound().WithDetail("candidate_id", id.String())
	}

	currentStage, currentIndex := b.locate(id)
	if fromStage != currentStage {
		b.mu.Unlock()
		return nil, ErrStaleSourceStage().
			WithDetail("candidate_id", id.String()).
			WithDetail("claimed_stage", fromStage.String()).
			WithDetail("current_stage", currentStage.String())
	}

	// Same stage, same position: nothing to do and no persistence call.
	if fromStage == toStage && targetIndex == currentIndex {
		snapshot := *entry
		b.mu.Unlock()
		return &snapshot, nil
	}

	// Reorder within a stage is a pure splice; the status label does not
	// change so nothing is persisted.
	if fromStage == toStage {
		b.splice(fromStage, toStage, currentIndex, targetIndex, id)
		entry.Touch()
		snapshot := *entry
		b.mu.Unlock()
		return &snapshot, nil
	}

	// Cross-stage move: apply optimistically, then persist.
	b.splice(fromStage, toStage, currentIndex, targetIndex, id)
	entry.ApplicationStatus = toStage
	entry.RebuildToDo()
	entry.Touch()
	snapshot := *entry
	b.mu.Unlock()

	persistCtx, cancel := context.WithTimeout(ctx, b.persistTimeout)
	defer cancel()

	if err := b.persister.PersistStatusChange(persistCtx, id, toStage); err != nil {
		b.rollback(id, fromStage, toStage, currentIndex)
		return nil, ErrPersistenceFailed().
			WithDetail("candidate_id", id.String()).
			WithDetail("to_stage", toStage.String()).
			WithError(err)
	}

	return &snapshot, nil
}

// locate returns the stage and index of a known candidate id.
// Callers hold b.mu.
func (b *Board) locate(id kernel.CandidateID) (candidate.Stage, int) {
	stage := b.entries[id].ApplicationStatus
	for i, cid := range b.lists[stage] {
		if cid == id {
			return stage, i
		}
	}
	return stage, -1
}

// splice removes id from the source list and inserts it into the destination
// list at the clamped target index. Callers hold b.mu.
func (b *Board) splice(from, to candidate.Stage, fromIndex, toIndex int, id kernel.CandidateID) {
	src := b.lists[from]
	b.lists[from] = append(src[:fromIndex], src[fromIndex+1:]...)

	dst := b.lists[to]
	if toIndex < 0 {
		toIndex = 0
	}
	if toIndex > len(dst) {
		toIndex = len(dst)
	}
	dst = append(dst, "")
	copy(dst[toIndex+1:], dst[toIndex:])
	dst[toIndex] = id
	b.lists[to] = dst
}

// rollback restores a candidate to its pre-move stage and index after a
// persistence failure
func (b *Board) rollback(id kernel.CandidateID, fromStage, toStage candidate.Stage, fromIndex int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.entries[id]
	if !ok || entry.ApplicationStatus != toStage {
		// The candidate moved again while persistence was in flight; the
		// later transition owns the state now.
		return
	}

	for i, cid := range b.lists[toStage] {
		if cid == id {
			b.splice(toStage, fromStage, i, fromIndex, id)
			break
		}
	}
	entry.ApplicationStatus = fromStage
	entry.RebuildToDo()
	entry.Touch()
}

// ============================================================================
// Accessors
// ============================================================================

// Position reports the stage and index a candidate currently occupies
func (b *Board) Position(id kernel.CandidateID) (candidate.Stage, int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.entries[id]; !ok {
		return "", 0, false
	}
	stage, index := b.locate(id)
	return stage, index, true
}

// StageList returns a copy of the ordered id list for one stage
func (b *Board) StageList(stage candidate.Stage) []kernel.CandidateID {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]kernel.CandidateID, len(b.lists[stage]))
	copy(out, b.lists[stage])
	return out
}

// Snapshot returns the full board as stage-ordered candidate copies
func (b *Board) Snapshot() map[candidate.Stage][]candidate.Candidate {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[candidate.Stage][]candidate.Candidate, len(b.lists))
	for stage, ids := range b.lists {
		col := make([]candidate.Candidate, 0, len(ids))
		for _, id := range ids {
			col = append(col, *b.entries[id])
		}
		out[stage] = col
	}
	return out
}

// Get returns a copy of one candidate
func (b *Board) Get(id kernel.CandidateID) (*candidate.Candidate, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.entries[id]
	if !ok {
		return nil, false
	}
	snapshot := *entry
	return &snapshot, true
}

// Add appends a candidate to the tail of its stage list
func (b *Board) Add(c candidate.Candidate) error {
	if !c.ApplicationStatus.Valid() {
		return ErrInvalidTransitionTarget().WithDetail("to_stage", c.ApplicationStatus.String())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.entries[c.ID]; exists {
		return candidate.ErrCandidateAlreadyExists().WithDetail("candidate_id", c.ID.String())
	}
	b.lists[c.ApplicationStatus] = append(b.lists[c.ApplicationStatus], c.ID)
	b.entries[c.ID] = &c
	return nil
}

// Remove drops a candidate from the board
func (b *Board) Remove(id kernel.CandidateID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.entries[id]
	if !ok {
		return
	}
	stage := entry.ApplicationStatus
	for i, cid := range b.lists[stage] {
		if cid == id {
			b.lists[stage] = append(b.lists[stage][:i], b.lists[stage][i+1:]...)
			break
		}
	}
	delete(b.entries, id)
}

// Update replaces the stored entry for a candidate without changing its
// stage position. Stage changes must go through MoveCandidate.
func (b *Board) Update(c candidate.Candidate) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.entries[c.ID]
	if !ok {
		return candidate.ErrCandidateNotFound().WithDetail("candidate_id", c.ID.String())
	}
	if entry.ApplicationStatus != c.ApplicationStatus {
		return ErrStaleSourceStage().
			WithDetail("candidate_id", c.ID.String()).
			WithDetail("claimed_stage", c.ApplicationStatus.String()).
			WithDetail("current_stage", entry.ApplicationStatus.String())
	}
	b.entries[c.ID] = &c
	return nil
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("PIPELINE")

var (
	CodeInvalidTransitionTarget = ErrRegistry.Register("INVALID_TRANSITION_TARGET", errx.TypeValidation, http.StatusBadRequest, "Destination stage is not a member of the pipeline")
	CodeStaleSourceStage        = ErrRegistry.Register("STALE_SOURCE_STAGE", errx.TypeConflict, http.StatusConflict, "Source stage does not match the candidate's current stage; refetch the board")
	CodePersistenceFailed       = ErrRegistry.Register("PERSISTENCE_FAILED", errx.TypeExternal, http.StatusBadGateway, "Stage change could not be persisted; the move was rolled back")
)

func ErrInvalidTransitionTarget() *errx.Error {
	return ErrRegistry.New(CodeInvalidTransitionTarget)
}

func ErrStaleSourceStage() *errx.Error {
	return ErrRegistry.New(CodeStaleSourceStage)
}

func ErrPersistenceFailed() *errx.Error {
	return ErrRegistry.New(CodePersistenceFailed)
}
