package library

import (
	"context"

	"github.com/shelfhand/shelfhand/internal/shelfd"
	"github.com/shelfhand/shelfhand/internal/state"
)

// Dependent records go through the same optimistic pattern as item fields,
// keyed by record id instead of page epoch. A record that turns out to be
// already gone is dropped from view with an informational notice; there is
// nothing to roll back to.

// AddNote creates a note on an item. Creation is not optimistic: the record
// id comes from the server, so the note appears once the write confirms.
func (m *Mutator) AddNote(ctx context.Context, itemID, body string, visibility shelfd.Visibility) Outcome {
	note, err := m.client.CreateNote(ctx, itemID, body, visibility)
	if err != nil {
		msg := shelfd.UserMessage(err, "Couldn't add the note.")
		m.store.PushNotice(false, msg)
		return Outcome{Err: msg}
	}
	m.store.UpsertNote(*note)
	return Outcome{Applied: true}
}

// EditNote updates a note's body.
func (m *Mutator) EditNote(ctx context.Context, noteID, body string) Outcome {
	prev, ok := m.store.NoteByID(noteID)
	if !ok {
		return Outcome{Err: "This note is no longer in view."}
	}
	if prev.Body == body {
		return Outcome{NoOp: true}
	}
	key := state.FieldKey{ItemID: noteID, Field: "note_body"}
	if !m.store.BeginFieldUpdate(key) {
		return Outcome{Dropped: true}
	}

	optimistic := prev
	optimistic.Body = body
	m.store.UpsertNote(optimistic)

	updated, err := m.client.PatchNote(ctx, noteID, shelfd.RecordPatch{Body: &body})
	switch {
	case err == nil:
		m.store.UpsertNote(*updated)
		m.store.EndFieldUpdate(key)
		return Outcome{Applied: true}
	case shelfd.IsNotFound(err):
		m.store.EndFieldUpdate(key)
		m.store.RemoveNote(noteID)
		m.store.PushNotice(true, "This note was removed elsewhere.")
		return Outcome{Applied: true, NotFound: true}
	default:
		m.store.UpsertNote(prev)
		m.store.EndFieldUpdate(key)
		msg := shelfd.UserMessage(err, "Couldn't save the note.")
		m.store.PushNotice(false, msg)
		return Outcome{Applied: true, RolledBack: true, Err: msg}
	}
}

// SetNoteVisibility flips one note between private and public.
func (m *Mutator) SetNoteVisibility(ctx context.Context, noteID string, visibility shelfd.Visibility) Outcome {
	prev, ok := m.store.NoteByID(noteID)
	if !ok {
		return Outcome{Err: "This note is no longer in view."}
	}
	patch := shelfd.RecordPatch{Visibility: &visibility}
	if err := m.validate.Struct(patch); err != nil {
		return Outcome{Err: "Invalid value."}
	}
	if prev.Visibility == visibility {
		return Outcome{NoOp: true}
	}
	key := state.FieldKey{ItemID: noteID, Field: "note_visibility"}
	if !m.store.BeginFieldUpdate(key) {
		return Outcome{Dropped: true}
	}

	optimistic := prev
	optimistic.Visibility = visibility
	m.store.UpsertNote(optimistic)

	updated, err := m.client.PatchNote(ctx, noteID, patch)
	switch {
	case err == nil:
		m.store.UpsertNote(*updated)
		m.store.EndFieldUpdate(key)
		return Outcome{Applied: true}
	case shelfd.IsNotFound(err):
		m.store.EndFieldUpdate(key)
		m.store.RemoveNote(noteID)
		m.store.PushNotice(true, "This note was removed elsewhere.")
		return Outcome{Applied: true, NotFound: true}
	default:
		m.store.UpsertNote(prev)
		m.store.EndFieldUpdate(key)
		msg := shelfd.UserMessage(err, "Couldn't change note visibility.")
		m.store.PushNotice(false, msg)
		return Outcome{Applied: true, RolledBack: true, Err: msg}
	}
}

// DeleteNote removes a note. The removal is optimistic; failure restores it.
func (m *Mutator) DeleteNote(ctx context.Context, noteID string) Outcome {
	prev, ok := m.store.NoteByID(noteID)
	if !ok {
		return Outcome{NoOp: true}
	}
	key := state.FieldKey{ItemID: noteID, Field: "note_delete"}
	if !m.store.BeginFieldUpdate(key) {
		return Outcome{Dropped: true}
	}
	defer m.store.EndFieldUpdate(key)

	m.store.RemoveNote(noteID)
	err := m.client.DeleteNote(ctx, noteID)
	if err != nil && !shelfd.IsNotFound(err) {
		m.store.UpsertNote(prev)
		msg := shelfd.UserMessage(err, "Couldn't delete the note.")
		m.store.PushNotice(false, msg)
		return Outcome{Applied: true, RolledBack: true, Err: msg}
	}
	return Outcome{Applied: true}
}

// EditHighlight updates a highlight's text.
func (m *Mutator) EditHighlight(ctx context.Context, highlightID, text string) Outcome {
	prev, ok := m.store.HighlightByID(highlightID)
	if !ok {
		return Outcome{Err: "This highlight is no longer in view."}
	}
	if prev.Text == text {
		return Outcome{NoOp: true}
	}
	key := state.FieldKey{ItemID: highlightID, Field: "highlight_text"}
	if !m.store.BeginFieldUpdate(key) {
		return Outcome{Dropped: true}
	}

	optimistic := prev
	optimistic.Text = text
	m.store.UpsertHighlight(optimistic)

	updated, err := m.client.PatchHighlight(ctx, highlightID, shelfd.RecordPatch{Body: &text})
	switch {
	case err == nil:
		m.store.UpsertHighlight(*updated)
		m.store.EndFieldUpdate(key)
		return Outcome{Applied: true}
	case shelfd.IsNotFound(err):
		m.store.EndFieldUpdate(key)
		m.store.RemoveHighlight(highlightID)
		m.store.PushNotice(true, "This highlight was removed elsewhere.")
		return Outcome{Applied: true, NotFound: true}
	default:
		m.store.UpsertHighlight(prev)
		m.store.EndFieldUpdate(key)
		msg := shelfd.UserMessage(err, "Couldn't save the highlight.")
		m.store.PushNotice(false, msg)
		return Outcome{Applied: true, RolledBack: true, Err: msg}
	}
}

// DeleteHighlight removes a highlight, optimistically.
func (m *Mutator) DeleteHighlight(ctx context.Context, highlightID string) Outcome {
	prev, ok := m.store.HighlightByID(highlightID)
	if !ok {
		return Outcome{NoOp: true}
	}
	key := state.FieldKey{ItemID: highlightID, Field: "highlight_delete"}
	if !m.store.BeginFieldUpdate(key) {
		return Outcome{Dropped: true}
	}
	defer m.store.EndFieldUpdate(key)

	m.store.RemoveHighlight(highlightID)
	err := m.client.DeleteHighlight(ctx, highlightID)
	if err != nil && !shelfd.IsNotFound(err) {
		m.store.UpsertHighlight(prev)
		msg := shelfd.UserMessage(err, "Couldn't delete the highlight.")
		m.store.PushNotice(false, msg)
		return Outcome{Applied: true, RolledBack: true, Err: msg}
	}
	return Outcome{Applied: true}
}

// EditReview updates a review's body.
func (m *Mutator) EditReview(ctx context.Context, reviewID, body string) Outcome {
	prev, ok := m.store.ReviewByID(reviewID)
	if !ok {
		return Outcome{Err: "This review is no longer in view."}
	}
	if prev.Body == body {
		return Outcome{NoOp: true}
	}
	key := state.FieldKey{ItemID: reviewID, Field: "review_body"}
	if !m.store.BeginFieldUpdate(key) {
		return Outcome{Dropped: true}
	}

	optimistic := prev
	optimistic.Body = body
	m.store.UpsertReview(optimistic)

	updated, err := m.client.PatchReview(ctx, reviewID, shelfd.RecordPatch{Body: &body})
	switch {
	case err == nil:
		m.store.UpsertReview(*updated)
		m.store.EndFieldUpdate(key)
		return Outcome{Applied: true}
	case shelfd.IsNotFound(err):
		m.store.EndFieldUpdate(key)
		m.store.RemoveReview(reviewID)
		m.store.PushNotice(true, "This review was removed elsewhere.")
		return Outcome{Applied: true, NotFound: true}
	default:
		m.store.UpsertReview(prev)
		m.store.EndFieldUpdate(key)
		msg := shelfd.UserMessage(err, "Couldn't save the review.")
		m.store.PushNotice(false, msg)
		return Outcome{Applied: true, RolledBack: true, Err: msg}
	}
}

// DeleteReview removes a review, optimistically.
func (m *Mutator) DeleteReview(ctx context.Context, reviewID string) Outcome {
	prev, ok := m.store.ReviewByID(reviewID)
	if !ok {
		return Outcome{NoOp: true}
	}
	key := state.FieldKey{ItemID: reviewID, Field: "review_delete"}
	if !m.store.BeginFieldUpdate(key) {
		return Outcome{Dropped: true}
	}
	defer m.store.EndFieldUpdate(key)

	m.store.RemoveReview(reviewID)
	err := m.client.DeleteReview(ctx, reviewID)
	if err != nil && !shelfd.IsNotFound(err) {
		m.store.UpsertReview(prev)
		msg := shelfd.UserMessage(err, "Couldn't delete the review.")
		m.store.PushNotice(false, msg)
		return Outcome{Applied: true, RolledBack: true, Err: msg}
	}
	return Outcome{Applied: true}
}
