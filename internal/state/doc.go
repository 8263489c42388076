// Package state provides the shared, thread-safe view state for shelfhand.
//
// # Overview
//
// The Store is the single container the loaders, the optimistic mutator, and
// the UI agree on. It holds the current catalogue page, the open item's
// detail (read cycles, notes, highlights, reviews, statistics), the
// per-(item, field) updating flags, and a short queue of transient notices.
// The UI never mutates it directly; every write goes through the sync layer
// in internal/library, internal/merge, and internal/progress.
//
// # Run guard
//
// The Store owns a Guard that issues monotonically increasing load epochs per
// entity key. Navigating to an item calls BeginLoad, which synchronously
// invalidates every token issued earlier for that key. Section writers present
// the token they captured at start; the check happens inside the store's lock,
// so a slow fetch that resolves after a newer navigation can never overwrite
// the newer page's data. A discarded stale result is not an error - it is an
// abandoned computation, dropped without a trace.
//
// # Update semantics
//
// Fetch failures keep prior data: SetListError and SetSectionError record a
// user-facing message but never clear what was already loaded, so the view
// keeps showing the last good state next to a retry affordance.
//
// # Concurrency model
//
// A readers-writer lock guards all fields. Snapshot returns deep copies
// (items, cycles with embedded logs, section maps) so the UI can render
// without holding the lock and without observing later mutations. The zero
// value of Store is ready to use.
package state
