package library

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shelfhand/shelfhand/internal/event"
	"github.com/shelfhand/shelfhand/internal/shelfd"
	"github.com/shelfhand/shelfhand/internal/shelfd/shelfdtest"
	"github.com/shelfhand/shelfhand/internal/state"
)

func seedStore(items ...shelfd.LibraryItem) *state.Store {
	store := &state.Store{}
	store.SetList(shelfd.ItemPage{Items: items, Total: len(items)})
	return store
}

func TestMutator_SameValueIsNoOpWithoutRequest(t *testing.T) {
	requests := 0
	fake := &shelfdtest.Fake{
		PatchItemFunc: func(ctx context.Context, id string, patch shelfd.ItemPatch) (*shelfd.LibraryItem, error) {
			requests++
			return &shelfd.LibraryItem{ID: id}, nil
		},
	}
	store := seedStore(shelfd.LibraryItem{ID: "li_1", Status: shelfd.StatusReading})
	m := NewMutator(fake, store, event.NewBus())

	outcome := m.SetStatus(context.Background(), "li_1", shelfd.StatusReading)

	if !outcome.NoOp {
		t.Fatalf("outcome = %+v, want NoOp", outcome)
	}
	if requests != 0 {
		t.Fatalf("requests = %d, want 0", requests)
	}
	if store.Snapshot().FieldUpdating("li_1", FieldStatus) {
		t.Fatal("updating flag set for a no-op")
	}
}

func TestMutator_InvalidValueRejectedBeforeRequest(t *testing.T) {
	requests := 0
	fake := &shelfdtest.Fake{
		PatchItemFunc: func(ctx context.Context, id string, patch shelfd.ItemPatch) (*shelfd.LibraryItem, error) {
			requests++
			return &shelfd.LibraryItem{ID: id}, nil
		},
	}
	store := seedStore(shelfd.LibraryItem{ID: "li_1", Status: shelfd.StatusToRead})
	m := NewMutator(fake, store, event.NewBus())

	if outcome := m.SetStatus(context.Background(), "li_1", "devouring"); outcome.Err == "" {
		t.Fatal("invalid status accepted")
	}
	bad := 7.3
	if outcome := m.SetRating(context.Background(), "li_1", &bad); outcome.Err == "" {
		t.Fatal("off-scale rating accepted")
	}
	if requests != 0 {
		t.Fatalf("requests = %d, want 0 for rejected values", requests)
	}
}

func TestMutator_HalfPointRatingsAccepted(t *testing.T) {
	fake := &shelfdtest.Fake{
		PatchItemFunc: func(ctx context.Context, id string, patch shelfd.ItemPatch) (*shelfd.LibraryItem, error) {
			return &shelfd.LibraryItem{ID: id, Rating: patch.Rating}, nil
		},
	}
	store := seedStore(shelfd.LibraryItem{ID: "li_1"})
	m := NewMutator(fake, store, event.NewBus())

	for _, r := range []float64{0, 0.5, 7.5, 10} {
		rating := r
		if outcome := m.SetRating(context.Background(), "li_1", &rating); outcome.Err != "" {
			t.Fatalf("rating %v rejected: %q", r, outcome.Err)
		}
	}
}

func TestMutator_SuccessMergesServerRepresentation(t *testing.T) {
	serverRating := 8.5
	fake := &shelfdtest.Fake{
		PatchItemFunc: func(ctx context.Context, id string, patch shelfd.ItemPatch) (*shelfd.LibraryItem, error) {
			// The server recomputes derived fields alongside the patch.
			return &shelfd.LibraryItem{
				ID: id, Status: *patch.Status, Rating: &serverRating, Tags: []string{"classic"},
			}, nil
		},
	}
	store := seedStore(shelfd.LibraryItem{ID: "li_1", Status: shelfd.StatusToRead})
	m := NewMutator(fake, store, event.NewBus())

	outcome := m.SetStatus(context.Background(), "li_1", shelfd.StatusCompleted)
	if !outcome.Applied || outcome.Err != "" {
		t.Fatalf("outcome = %+v", outcome)
	}
	if !outcome.PromptReadingDates {
		t.Fatal("transition to completed should prompt for reading dates")
	}

	item := store.Snapshot().Items[0]
	if item.Status != shelfd.StatusCompleted || item.Rating == nil || *item.Rating != 8.5 {
		t.Fatalf("server representation not merged: %#v", item)
	}
	if store.Snapshot().FieldUpdating("li_1", FieldStatus) {
		t.Fatal("updating flag not cleared after success")
	}
}

func TestMutator_FailureRollsBackExactly(t *testing.T) {
	fake := &shelfdtest.Fake{
		PatchItemFunc: func(ctx context.Context, id string, patch shelfd.ItemPatch) (*shelfd.LibraryItem, error) {
			return nil, shelfdtest.ServerError("write refused")
		},
	}
	prevRating := 6.5
	store := seedStore(shelfd.LibraryItem{ID: "li_1", Rating: &prevRating})
	m := NewMutator(fake, store, event.NewBus())

	next := 9.0
	outcome := m.SetRating(context.Background(), "li_1", &next)

	if !outcome.RolledBack {
		t.Fatalf("outcome = %+v, want RolledBack", outcome)
	}
	if outcome.Err != "write refused" {
		t.Fatalf("Err = %q, want provider message", outcome.Err)
	}
	item := store.Snapshot().Items[0]
	if item.Rating == nil || *item.Rating != 6.5 {
		t.Fatalf("rating after rollback = %v, want 6.5", item.Rating)
	}
	if store.Snapshot().FieldUpdating("li_1", FieldRating) {
		t.Fatal("updating flag not cleared after rollback")
	}
}

func TestMutator_NotFoundKeepsOptimisticValueAndRefreshesOnce(t *testing.T) {
	fake := &shelfdtest.Fake{
		PatchItemFunc: func(ctx context.Context, id string, patch shelfd.ItemPatch) (*shelfd.LibraryItem, error) {
			return nil, shelfdtest.NotFound("already gone")
		},
	}
	store := seedStore(shelfd.LibraryItem{ID: "li_1", Status: shelfd.StatusToRead})
	bus := event.NewBus()
	events, cancel := bus.Subscribe()
	defer cancel()
	m := NewMutator(fake, store, bus)

	outcome := m.SetStatus(context.Background(), "li_1", shelfd.StatusAbandoned)

	if !outcome.NotFound || outcome.RolledBack {
		t.Fatalf("outcome = %+v", outcome)
	}
	// The optimistic value stays; the row is about to disappear anyway.
	if got := store.Snapshot().Items[0].Status; got != shelfd.StatusAbandoned {
		t.Fatalf("status = %q, want optimistic value kept", got)
	}

	refreshes := 0
	for {
		select {
		case ev := <-events:
			if ev.Kind == event.ItemRemoved {
				refreshes++
			}
			continue
		default:
		}
		break
	}
	if refreshes != 1 {
		t.Fatalf("refresh events = %d, want exactly 1", refreshes)
	}

	// The notice is informational, not an error.
	notices := store.Snapshot().Notices
	if len(notices) != 1 || !notices[0].Info {
		t.Fatalf("notices = %#v, want one info notice", notices)
	}
}

func TestMutator_ConcurrentSameFieldDroppedOtherFieldAllowed(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fake := &shelfdtest.Fake{
		PatchItemFunc: func(ctx context.Context, id string, patch shelfd.ItemPatch) (*shelfd.LibraryItem, error) {
			if patch.Status != nil {
				close(started)
				<-release
			}
			return &shelfd.LibraryItem{ID: id}, nil
		},
	}
	store := seedStore(shelfd.LibraryItem{ID: "li_1", Status: shelfd.StatusToRead, Visibility: shelfd.VisibilityPrivate})
	m := NewMutator(fake, store, event.NewBus())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.SetStatus(context.Background(), "li_1", shelfd.StatusReading)
	}()
	<-started

	// Same field: dropped, not queued.
	if outcome := m.SetStatus(context.Background(), "li_1", shelfd.StatusCompleted); !outcome.Dropped {
		t.Fatalf("second same-field mutation = %+v, want Dropped", outcome)
	}
	// Different field on the same item: allowed concurrently.
	if outcome := m.SetVisibility(context.Background(), "li_1", shelfd.VisibilityPublic); outcome.Dropped {
		t.Fatalf("different-field mutation dropped: %+v", outcome)
	}

	close(release)
	wg.Wait()
}

func TestMutator_ReadingDatesValidatedClientLocal(t *testing.T) {
	requests := 0
	fake := &shelfdtest.Fake{
		PatchItemFunc: func(ctx context.Context, id string, patch shelfd.ItemPatch) (*shelfd.LibraryItem, error) {
			requests++
			return &shelfd.LibraryItem{ID: id}, nil
		},
	}
	store := seedStore(shelfd.LibraryItem{ID: "li_1"})
	m := NewMutator(fake, store, event.NewBus())

	started := mustTime(t, "2026-03-10T09:00:00Z")
	finished := mustTime(t, "2026-03-01T09:00:00Z")
	outcome := m.SetReadingDates(context.Background(), "li_1", &started, &finished)

	if outcome.Err == "" {
		t.Fatal("finish-before-start accepted")
	}
	if requests != 0 {
		t.Fatalf("requests = %d, want 0", requests)
	}
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return parsed
}

func TestMutator_DeleteNoteTreats404AsSuccess(t *testing.T) {
	fake := &shelfdtest.Fake{
		DeleteNoteFunc: func(ctx context.Context, noteID string) error {
			return shelfdtest.NotFound("gone")
		},
	}
	store := &state.Store{}
	tok := store.BeginLoad("li_1")
	store.ResetDetail(tok, &shelfd.LibraryItem{ID: "li_1"})
	store.SetNotes(tok, []shelfd.Note{{ID: "n_1", ItemID: "li_1", Body: "first"}})
	m := NewMutator(fake, store, event.NewBus())

	outcome := m.DeleteNote(context.Background(), "n_1")

	if !outcome.Applied || outcome.Err != "" {
		t.Fatalf("outcome = %+v", outcome)
	}
	if len(store.Snapshot().Detail.Notes) != 0 {
		t.Fatal("note still present after idempotent delete")
	}
}

func TestMutator_EditNoteRollsBackOnFailure(t *testing.T) {
	fake := &shelfdtest.Fake{
		PatchNoteFunc: func(ctx context.Context, noteID string, patch shelfd.RecordPatch) (*shelfd.Note, error) {
			return nil, shelfdtest.ServerError("save failed")
		},
	}
	store := &state.Store{}
	tok := store.BeginLoad("li_1")
	store.ResetDetail(tok, &shelfd.LibraryItem{ID: "li_1"})
	store.SetNotes(tok, []shelfd.Note{{ID: "n_1", ItemID: "li_1", Body: "original"}})
	m := NewMutator(fake, store, event.NewBus())

	outcome := m.EditNote(context.Background(), "n_1", "rewritten")

	if !outcome.RolledBack {
		t.Fatalf("outcome = %+v", outcome)
	}
	notes := store.Snapshot().Detail.Notes
	if len(notes) != 1 || notes[0].Body != "original" {
		t.Fatalf("note after rollback = %#v", notes)
	}
}
