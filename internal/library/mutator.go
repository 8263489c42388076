package library

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shelfhand/shelfhand/internal/event"
	"github.com/shelfhand/shelfhand/internal/shelfd"
	"github.com/shelfhand/shelfhand/internal/state"
)

// Field names used for mutation slots and patch payloads.
const (
	FieldStatus           = "status"
	FieldVisibility       = "visibility"
	FieldRating           = "rating"
	FieldPreferredEdition = "preferred_edition"
	FieldTags             = "tags"
	FieldReadingDates     = "reading_dates"
)

// Outcome reports how a mutation ended. Exactly one of NoOp, Dropped,
// Applied is the headline; the remaining flags qualify Applied.
type Outcome struct {
	// Applied means the optimistic write happened and a request was issued.
	Applied bool
	// NoOp means the new value equalled the current one; nothing was sent.
	NoOp bool
	// Dropped means a mutation for the same (item, field) slot was already
	// in flight; the attempt was ignored, not queued.
	Dropped bool
	// NotFound means the backend reported the resource already gone. The
	// optimistic value is kept and a refresh has been requested.
	NotFound bool
	// RolledBack means the remote write failed and the previous value was
	// restored exactly.
	RolledBack bool
	// PromptReadingDates asks the UI to open the reading-date capture prompt
	// after a status transition into reading or completed.
	PromptReadingDates bool
	// Err carries the user-facing failure message, empty on success.
	Err string
}

// Mutator applies single-field edits optimistically: local write first,
// remote write second, reconcile or roll back third.
type Mutator struct {
	client   shelfd.API
	store    *state.Store
	bus      *event.Bus
	validate *validator.Validate
}

// NewMutator builds a Mutator publishing refresh requests on bus.
func NewMutator(client shelfd.API, store *state.Store, bus *event.Bus) *Mutator {
	return &Mutator{client: client, store: store, bus: bus, validate: newValidator()}
}

// SetStatus moves an item to a new reading status.
func (m *Mutator) SetStatus(ctx context.Context, itemID string, status shelfd.Status) Outcome {
	patch := shelfd.ItemPatch{Status: &status}
	outcome := m.patchItem(ctx, itemID, FieldStatus, patch,
		func(item shelfd.LibraryItem) bool { return item.Status == status },
		func(item *shelfd.LibraryItem) { item.Status = status },
		"Couldn't update status.",
	)
	if outcome.Applied && outcome.Err == "" && !outcome.NotFound {
		outcome.PromptReadingDates = status == shelfd.StatusReading || status == shelfd.StatusCompleted
	}
	return outcome
}

// SetVisibility flips an item between private and public.
func (m *Mutator) SetVisibility(ctx context.Context, itemID string, visibility shelfd.Visibility) Outcome {
	patch := shelfd.ItemPatch{Visibility: &visibility}
	return m.patchItem(ctx, itemID, FieldVisibility, patch,
		func(item shelfd.LibraryItem) bool { return item.Visibility == visibility },
		func(item *shelfd.LibraryItem) { item.Visibility = visibility },
		"Couldn't update visibility.",
	)
}

// SetRating sets or clears (nil) the 0-10 half-point rating.
func (m *Mutator) SetRating(ctx context.Context, itemID string, rating *float64) Outcome {
	patch := shelfd.ItemPatch{Rating: rating}
	return m.patchItem(ctx, itemID, FieldRating, patch,
		func(item shelfd.LibraryItem) bool { return floatPtrEqual(item.Rating, rating) },
		func(item *shelfd.LibraryItem) { item.Rating = cloneFloatPtr(rating) },
		"Couldn't update rating.",
	)
}

// SetPreferredEdition points the item at a preferred edition, or clears it.
func (m *Mutator) SetPreferredEdition(ctx context.Context, itemID string, editionID *string) Outcome {
	patch := shelfd.ItemPatch{PreferredEditionID: editionID}
	return m.patchItem(ctx, itemID, FieldPreferredEdition, patch,
		func(item shelfd.LibraryItem) bool { return strPtrEqual(item.PreferredEditionID, editionID) },
		func(item *shelfd.LibraryItem) { item.PreferredEditionID = cloneStrPtr(editionID) },
		"Couldn't update preferred edition.",
	)
}

// SetTags replaces the item's tag set.
func (m *Mutator) SetTags(ctx context.Context, itemID string, tags []string) Outcome {
	patch := shelfd.ItemPatch{Tags: tags}
	return m.patchItem(ctx, itemID, FieldTags, patch,
		func(item shelfd.LibraryItem) bool { return tagSetEqual(item.Tags, tags) },
		func(item *shelfd.LibraryItem) { item.Tags = append([]string(nil), tags...) },
		"Couldn't update tags.",
	)
}

// SetReadingDates records the started/finished timestamps captured by the
// date prompt. Comparisons are client-local; server clock skew is out of
// scope here.
func (m *Mutator) SetReadingDates(ctx context.Context, itemID string, started, finished *time.Time) Outcome {
	if started != nil && finished != nil && finished.Before(*started) {
		return Outcome{Err: "Finish date can't be before the start date."}
	}
	patch := shelfd.ItemPatch{StartedReadingAt: started, FinishedReadingAt: finished}
	return m.patchItem(ctx, itemID, FieldReadingDates, patch,
		func(shelfd.LibraryItem) bool { return false },
		func(item *shelfd.LibraryItem) {
			if finished != nil {
				v := *finished
				item.LastReadAt = &v
			}
		},
		"Couldn't save reading dates.",
	)
}

// RemoveItem deletes a catalogue entry. A 404 counts as success: the entry
// is already gone.
func (m *Mutator) RemoveItem(ctx context.Context, itemID string) Outcome {
	key := state.FieldKey{ItemID: itemID, Field: "remove"}
	if !m.store.BeginFieldUpdate(key) {
		return Outcome{Dropped: true}
	}
	defer m.store.EndFieldUpdate(key)

	err := m.client.DeleteItem(ctx, itemID)
	if err != nil && !shelfd.IsNotFound(err) {
		msg := shelfd.UserMessage(err, "Couldn't remove this book.")
		m.store.PushNotice(false, msg)
		return Outcome{Err: msg}
	}
	m.store.RemoveItem(itemID)
	m.bus.Publish(event.Event{Kind: event.LibraryChanged, ItemID: itemID})
	return Outcome{Applied: true}
}

// patchItem runs the optimistic mutation algorithm for one item field.
func (m *Mutator) patchItem(
	ctx context.Context,
	itemID, field string,
	patch shelfd.ItemPatch,
	equal func(shelfd.LibraryItem) bool,
	apply func(*shelfd.LibraryItem),
	fallback string,
) Outcome {
	prev, ok := m.store.ItemByID(itemID)
	if !ok {
		return Outcome{Err: "This book is no longer in view."}
	}
	if err := m.validate.Struct(patch); err != nil {
		return Outcome{Err: "Invalid value."}
	}
	if equal(prev) {
		return Outcome{NoOp: true}
	}

	key := state.FieldKey{ItemID: itemID, Field: field}
	if !m.store.BeginFieldUpdate(key) {
		return Outcome{Dropped: true}
	}

	m.store.MutateItem(itemID, apply)

	updated, err := m.client.PatchItem(ctx, itemID, patch)
	switch {
	case err == nil:
		// The server is authoritative for anything it computed.
		m.store.MergeItem(*updated)
		m.store.EndFieldUpdate(key)
		return Outcome{Applied: true}

	case shelfd.IsNotFound(err):
		// Eventual consistency: the item was removed elsewhere. Keep the
		// optimistic value (the row is about to vanish from view) and ask
		// for one full refresh.
		m.store.EndFieldUpdate(key)
		m.store.PushNotice(true, "This book was removed elsewhere; refreshing.")
		m.bus.Publish(event.Event{Kind: event.ItemRemoved, ItemID: itemID})
		return Outcome{Applied: true, NotFound: true}

	default:
		m.store.MutateItem(itemID, func(item *shelfd.LibraryItem) {
			restoreField(item, prev, field)
		})
		m.store.EndFieldUpdate(key)
		msg := shelfd.UserMessage(err, fallback)
		m.store.PushNotice(false, msg)
		return Outcome{Applied: true, RolledBack: true, Err: msg}
	}
}

// restoreField copies one field back from the pre-mutation snapshot. Only the
// mutated field is restored; concurrent edits to other fields survive.
func restoreField(item *shelfd.LibraryItem, prev shelfd.LibraryItem, field string) {
	switch field {
	case FieldStatus:
		item.Status = prev.Status
	case FieldVisibility:
		item.Visibility = prev.Visibility
	case FieldRating:
		item.Rating = cloneFloatPtr(prev.Rating)
	case FieldPreferredEdition:
		item.PreferredEditionID = cloneStrPtr(prev.PreferredEditionID)
	case FieldTags:
		item.Tags = append([]string(nil), prev.Tags...)
	case FieldReadingDates:
		if prev.LastReadAt != nil {
			v := *prev.LastReadAt
			item.LastReadAt = &v
		} else {
			item.LastReadAt = nil
		}
	}
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func tagSetEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, t := range a {
		seen[t]++
	}
	for _, t := range b {
		if seen[t] == 0 {
			return false
		}
		seen[t]--
	}
	return true
}
