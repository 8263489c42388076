package merge

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/shelfhand/shelfhand/internal/event"
	"github.com/shelfhand/shelfhand/internal/shelfd"
)

// Phase is the merge dialog's position in its state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePreviewing
	PhaseReady
	PhaseApplying
	PhaseDone
)

// String names the phase for display.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePreviewing:
		return "previewing"
	case PhaseReady:
		return "ready"
	case PhaseApplying:
		return "applying"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Workflow orchestrates the two-phase consolidation of duplicate catalogue
// entries: preview (conflict detection, dependency accounting) then apply
// (irreversible). A failed preview or apply leaves the dialog open with a
// retryable error; the selection and resolution map survive until a
// confirmed success.
type Workflow struct {
	client shelfd.API
	bus    *event.Bus

	mu           sync.Mutex
	seq          uint64
	phase        Phase
	itemIDs      []string
	targetID     string
	preview      *shelfd.MergePreview
	conflicts    map[string]bool
	resolution   map[string]shelfd.FieldResolution
	acknowledged bool
	applyKey     string
	errMsg       string
}

// NewWorkflow builds an idle workflow.
func NewWorkflow(client shelfd.API, bus *event.Bus) *Workflow {
	return &Workflow{client: client, bus: bus}
}

// Phase returns the current state-machine phase.
func (w *Workflow) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// Err returns the current retryable error message, empty when none.
func (w *Workflow) Err() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errMsg
}

// Selection returns the selected item ids and the target.
func (w *Workflow) Selection() ([]string, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.itemIDs...), w.targetID
}

// Report returns the last preview, the derived conflict flags, and the
// working resolution map.
func (w *Workflow) Report() (*shelfd.MergePreview, map[string]bool, map[string]shelfd.FieldResolution) {
	w.mu.Lock()
	defer w.mu.Unlock()
	conflicts := make(map[string]bool, len(w.conflicts))
	for k, v := range w.conflicts {
		conflicts[k] = v
	}
	resolution := make(map[string]shelfd.FieldResolution, len(w.resolution))
	for k, v := range w.resolution {
		resolution[k] = v
	}
	return w.preview, conflicts, resolution
}

// Select stores the item set and target for a prospective merge. Fewer than
// two items can never initiate a merge.
func (w *Workflow) Select(itemIDs []string, targetID string) error {
	if len(itemIDs) < 2 {
		return fmt.Errorf("merge needs at least two items, got %d", len(itemIDs))
	}
	if !contains(itemIDs, targetID) {
		return fmt.Errorf("target %s is not among the selected items", targetID)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase == PhaseApplying {
		return fmt.Errorf("merge apply in flight; selection is locked")
	}
	w.seq++
	w.phase = PhaseIdle
	w.itemIDs = append([]string(nil), itemIDs...)
	w.targetID = targetID
	w.preview = nil
	w.conflicts = nil
	w.resolution = nil
	w.acknowledged = false
	w.applyKey = ""
	w.errMsg = ""
	return nil
}

// SetTarget switches the surviving entry. Prior preview results and
// resolutions are not assumed valid for a different target, so the workflow
// drops back to idle and a fresh preview is required.
func (w *Workflow) SetTarget(targetID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase == PhaseApplying {
		return fmt.Errorf("merge apply in flight; target is locked")
	}
	if !contains(w.itemIDs, targetID) {
		return fmt.Errorf("target %s is not among the selected items", targetID)
	}
	if targetID == w.targetID {
		return nil
	}
	w.seq++
	w.targetID = targetID
	w.phase = PhaseIdle
	w.preview = nil
	w.conflicts = nil
	w.resolution = nil
	w.acknowledged = false
	w.applyKey = ""
	w.errMsg = ""
	return nil
}

// Preview requests the conflict report and dependency tallies. On success the
// workflow is ready for resolution; on failure it returns to idle with a
// retryable error and the selection intact.
func (w *Workflow) Preview(ctx context.Context) error {
	w.mu.Lock()
	if len(w.itemIDs) < 2 {
		w.mu.Unlock()
		return fmt.Errorf("merge needs at least two items")
	}
	if w.phase == PhaseApplying {
		w.mu.Unlock()
		return fmt.Errorf("merge apply in flight")
	}
	seq := w.seq
	req := shelfd.MergeRequest{
		ItemIDs:      append([]string(nil), w.itemIDs...),
		TargetItemID: w.targetID,
	}
	w.phase = PhasePreviewing
	w.errMsg = ""
	w.mu.Unlock()

	preview, err := w.client.MergePreview(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seq != seq {
		// Selection or target changed while the preview was in flight;
		// this result belongs to an abandoned attempt.
		return nil
	}
	if err != nil {
		w.phase = PhaseIdle
		w.errMsg = shelfd.UserMessage(err, "Couldn't preview the merge.")
		return err
	}
	w.preview = preview
	w.conflicts = computeConflicts(preview.Items)
	w.resolution = map[string]shelfd.FieldResolution{
		// Combining all tags is the default even without a conflict.
		FieldTags: {CombineTags: true},
	}
	w.acknowledged = false
	w.applyKey = uuid.NewString()
	w.phase = PhaseReady
	return nil
}

// Resolve records the caller's choice for one field: keep a source's value,
// or combine tags. Non-conflicting fields accept an explicit override too.
func (w *Workflow) Resolve(field string, res shelfd.FieldResolution) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase != PhaseReady {
		return fmt.Errorf("no preview to resolve against")
	}
	if !contains(MergeableFields(), field) {
		return fmt.Errorf("unknown merge field %q", field)
	}
	if res.CombineTags && field != FieldTags {
		return fmt.Errorf("combine is only valid for tags")
	}
	if !res.CombineTags && !contains(w.itemIDs, res.FromItemID) {
		return fmt.Errorf("resolution source %s is not among the selected items", res.FromItemID)
	}
	w.resolution[field] = res
	return nil
}

// Unresolved lists conflicting fields that still lack a resolution.
func (w *Workflow) Unresolved() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var missing []string
	for _, field := range MergeableFields() {
		if !w.conflicts[field] {
			continue
		}
		if _, ok := w.resolution[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}

// Acknowledge records that the user has seen the irreversibility warning.
// Apply is unreachable without it.
func (w *Workflow) Acknowledge() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase == PhaseReady {
		w.acknowledged = true
	}
}

// Apply submits the irreversible consolidation. Source entries are deleted
// after their dependent records move to the target. A failed apply keeps the
// dialog open in the ready phase with the resolution map untouched; a retry
// reuses it (and the same idempotency key) without re-fetching preview.
func (w *Workflow) Apply(ctx context.Context) error {
	w.mu.Lock()
	if w.phase != PhaseReady {
		w.mu.Unlock()
		return fmt.Errorf("merge is not ready to apply (phase %s)", w.phase)
	}
	if !w.acknowledged {
		w.mu.Unlock()
		return fmt.Errorf("irreversibility warning not acknowledged")
	}
	if missing := unresolvedLocked(w); len(missing) > 0 {
		w.mu.Unlock()
		return fmt.Errorf("unresolved conflicts: %v", missing)
	}
	req := shelfd.MergeRequest{
		ItemIDs:         append([]string(nil), w.itemIDs...),
		TargetItemID:    w.targetID,
		FieldResolution: w.resolution,
	}
	key := w.applyKey
	targetID := w.targetID
	w.phase = PhaseApplying
	w.errMsg = ""
	w.mu.Unlock()

	err := w.client.MergeApply(ctx, req, key)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		// Never dismiss on failure; the user's selections must survive.
		w.phase = PhaseReady
		w.errMsg = shelfd.UserMessage(err, "Couldn't merge these entries.")
		return err
	}
	w.phase = PhaseDone
	w.bus.Publish(event.Event{Kind: event.LibraryChanged, ItemID: targetID})
	return nil
}

// Reset returns the workflow to idle, discarding any selection. It is a no-op
// while an apply is in flight.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase == PhaseApplying {
		return
	}
	w.seq++
	w.phase = PhaseIdle
	w.itemIDs = nil
	w.targetID = ""
	w.preview = nil
	w.conflicts = nil
	w.resolution = nil
	w.acknowledged = false
	w.applyKey = ""
	w.errMsg = ""
}

func unresolvedLocked(w *Workflow) []string {
	var missing []string
	for _, field := range MergeableFields() {
		if w.conflicts[field] {
			if _, ok := w.resolution[field]; !ok {
				missing = append(missing, field)
			}
		}
	}
	return missing
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
