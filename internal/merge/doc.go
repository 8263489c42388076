// Package merge drives the two-phase consolidation of duplicate catalogue
// entries.
//
// The workflow walks idle -> previewing -> ready -> applying -> done, falling
// back to idle with a retryable error when a step fails. Preview fetches each
// item's mergeable-field values and the dependency tallies (read cycles,
// progress logs, notes, highlights, reviews that would move to the target);
// conflicts are derived locally, comparing only items that define a field.
// Apply is irreversible and reuses one idempotency key per prepared merge so
// a retry after a transient failure cannot consolidate twice.
package merge
