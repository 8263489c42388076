// Package shelfd provides the HTTP client for the shelfd reading-tracker API.
//
// The client covers the catalogue, read-cycle, progress-log, dependent-record,
// statistics, merge, and edition-totals endpoints. All methods accept a
// context and return either a decoded payload or an error; backend failures
// carrying a machine-readable envelope surface as *APIError so callers can
// distinguish "not found / already gone" responses (IsNotFound) from every
// other failure.
//
// Requests are paced through a token-bucket limiter so a burst of concurrent
// section loads cannot overwhelm the daemon. Writes that must not be repeated
// on retry (cycle creation, progress logs, merge apply) carry an
// Idempotency-Key header supplied by the caller.
package shelfd
