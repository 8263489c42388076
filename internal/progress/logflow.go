package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shelfhand/shelfhand/internal/event"
	"github.com/shelfhand/shelfhand/internal/shelfd"
	"github.com/shelfhand/shelfhand/internal/state"
)

// Recorder turns a user's progress entry into the implicit two-step write:
// ensure an open reading cycle exists, then attach the log to it. Each
// prepared log carries its own idempotency keys so a retry after a transient
// failure can never create a duplicate cycle or a duplicate log.
type Recorder struct {
	client shelfd.API
	store  *state.Store
	bus    *event.Bus
}

// NewRecorder builds a recorder around the shared store and event bus.
func NewRecorder(client shelfd.API, store *state.Store, bus *event.Bus) *Recorder {
	return &Recorder{client: client, store: store, bus: bus}
}

// PendingLog is one progress entry on its way to the server. It may be
// blocked on a missing edition total; SaveTotals unblocks it, and Submit is
// retryable without side effects until it reports success.
type PendingLog struct {
	rec     *Recorder
	itemID  string
	edition shelfd.Edition
	entry   shelfd.ProgressEntry
	missing *ErrMissingTotal

	cycleKey string
	logKey   string
	cycle    *shelfd.ReadCycle
	created  bool
}

// Prepare stages a progress entry for the given item. When the entry's unit
// needs an edition total that is unknown, the returned log is blocked: the
// caller collects the total (pre-filled from SuggestedTotal), persists it
// with SaveTotals, and only then submits.
func (r *Recorder) Prepare(itemID string, entry shelfd.ProgressEntry) (*PendingLog, error) {
	item, ok := r.store.ItemByID(itemID)
	if !ok {
		return nil, fmt.Errorf("item %s is not in the library", itemID)
	}
	if item.Edition == nil {
		return nil, fmt.Errorf("item %s has no edition to log against", itemID)
	}
	pl := &PendingLog{
		rec:      r,
		itemID:   itemID,
		edition:  *item.Edition,
		entry:    entry,
		cycleKey: uuid.NewString(),
		logKey:   uuid.NewString(),
	}
	pl.missing = checkTotals(entry.Unit, pl.edition)
	return pl, nil
}

// MissingTotal returns the total blocking submission, nil when unblocked.
func (pl *PendingLog) MissingTotal() *ErrMissingTotal {
	return pl.missing
}

// Suggested returns the external suggestion for the blocked total, when the
// bibliographic provider supplied one.
func (pl *PendingLog) Suggested() *int {
	if pl.missing == nil {
		return nil
	}
	return SuggestedTotal(pl.missing.Unit, pl.edition)
}

// SaveTotals persists the supplied totals to the owning edition, merges the
// server's representation into shared state, and re-checks the original
// conversion. A failure keeps the pending log blocked with its input intact.
func (pl *PendingLog) SaveTotals(ctx context.Context, patch shelfd.TotalsPatch) error {
	edition, err := pl.rec.client.UpdateEditionTotals(ctx, pl.edition.ID, patch)
	if err != nil {
		return fmt.Errorf("saving edition totals: %w", err)
	}
	pl.rec.store.MergeEdition(*edition)
	pl.edition = *edition
	pl.missing = checkTotals(pl.entry.Unit, pl.edition)
	if pl.missing != nil {
		return pl.missing
	}
	return nil
}

// Percent reports the canonical percent the entry converts to under the
// currently known totals.
func (pl *PendingLog) Percent() (float64, error) {
	return ToPercent(pl.entry.Unit, pl.entry.Value, pl.edition)
}

// Submit ensures an open reading cycle and attaches the log. Both writes
// reuse the keys minted at Prepare time, so retrying a failed submit is
// safe. On success the new records land in shared state and a progress
// event is published for the statistics refresh.
func (pl *PendingLog) Submit(ctx context.Context) (*shelfd.ProgressLog, error) {
	if pl.missing != nil {
		return nil, pl.missing
	}
	if pl.cycle == nil {
		cycle, created, err := pl.ensureCycle(ctx)
		if err != nil {
			return nil, err
		}
		pl.cycle, pl.created = cycle, created
	}

	log, err := pl.rec.client.LogProgress(ctx, pl.cycle.ID, pl.entry, pl.logKey)
	if err != nil {
		return nil, fmt.Errorf("logging progress: %w", err)
	}

	if pl.created {
		pl.rec.store.AppendCycle(*pl.cycle)
	}
	pl.rec.store.AppendProgressLog(*log)
	pl.rec.bus.Publish(event.Event{Kind: event.ProgressLogged, ItemID: pl.itemID})
	return log, nil
}

// ensureCycle finds the item's open cycle, checking shared state before
// falling back to a fetch, and creates one when none is open. The snapshot
// is only authoritative when the cycles section settled cleanly; an errored
// or still-loading section holds an empty slice that says nothing about what
// exists server-side.
func (pl *PendingLog) ensureCycle(ctx context.Context) (*shelfd.ReadCycle, bool, error) {
	snap := pl.rec.store.Snapshot()
	cycles := snap.Detail.Cycles
	status := snap.Detail.Sections[state.SectionCycles]
	if snap.Detail.ItemID != pl.itemID || status.LoadedAt.IsZero() || status.Err != "" {
		fetched, err := pl.rec.client.FetchReadCycles(ctx, pl.itemID)
		if err != nil {
			return nil, false, fmt.Errorf("checking reading sessions: %w", err)
		}
		cycles = fetched
	}
	for i := range cycles {
		if cycles[i].Open() {
			return &cycles[i], false, nil
		}
	}
	cycle, err := pl.rec.client.CreateReadCycle(ctx, pl.itemID, pl.cycleKey)
	if err != nil {
		return nil, false, fmt.Errorf("starting a reading session: %w", err)
	}
	return cycle, true, nil
}

func checkTotals(unit shelfd.ProgressUnit, edition shelfd.Edition) *ErrMissingTotal {
	_, err := ToPercent(unit, 0, edition)
	var missing *ErrMissingTotal
	if errors.As(err, &missing) {
		return missing
	}
	return nil
}
