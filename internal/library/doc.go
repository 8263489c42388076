// Package library implements the data-synchronization layer shared by the
// catalogue list and book-detail views.
//
// Two primitives live here. The Loader fetches the list page and the five
// independent detail sections (reading sessions, notes, highlights, reviews,
// statistics); each section carries its own loading/error/retry state and
// every write into the shared store is gated by the run-guard epoch captured
// when the page began loading, so a slow response from a superseded
// navigation is silently discarded.
//
// The Mutator applies single-field edits optimistically: the local value
// changes immediately, the remote write follows, and the outcome reconciles
// the two. Equal-value edits are no-ops that never reach the wire; invalid
// enum or range values are rejected by validation before any request; a
// non-404 failure rolls the field back exactly; a 404 is treated as eventual
// consistency - the optimistic value stays, an informational notice is
// raised, and one full refresh is requested over the event bus. At most one
// mutation per (item, field) pair is in flight; a second attempt is dropped,
// not queued.
package library
