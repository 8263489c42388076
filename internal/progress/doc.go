// Package progress models reading-progress measurement: unit conversion,
// timeline preparation, and the write path that records a new log.
//
// Conversion treats the canonical percent as the fixed point. A raw value in
// pages or minutes converts to percent through the owning edition's totals,
// and switching the entry unit carries the current percent into the new unit
// rather than resetting the input. A missing total is not an error but a
// blocked state: the Recorder's PendingLog holds the entry, collects the
// total (pre-filled from the provider's suggestion when one exists),
// persists it to the edition, and only then allows submission.
//
// Recording is an implicit two-step write. A log needs an open reading
// cycle; when none exists one is created first. Both the cycle creation and
// the log submission carry idempotency keys minted when the entry was
// prepared, so a retry after a transient failure cannot duplicate either
// record. Aggregate statistics are server-computed; after a successful
// submit the recorder publishes a progress event and the application
// re-requests them.
package progress
