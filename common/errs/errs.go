// Package errs defines the sentinel error kinds shared across the
// ingestion, transport, store, and HTTP layers (§7's error-kind
// taxonomy), following the flat-sentinel style of the corpus's own
// auth/errors.go rather than a third-party errors package — a 22-line
// file of plain errors.New values is already this codebase's idiom for
// error taxonomies, so adding a dependency here would contradict it.
package errs

import "errors"

var (
	// ErrValidation marks a client-side failure; the event is never queued.
	ErrValidation = errors.New("validation_error")

	// ErrAuth marks a failure from the token provider or a 401/403
	// response. Non-retryable.
	ErrAuth = errors.New("auth_error")

	// ErrRetryableTransport marks timeouts, network errors, and 429,
	// 500, 502, 503 and 504 responses.
	ErrRetryableTransport = errors.New("retryable_transport_error")

	// ErrNonRetryableTransport marks any 4xx response other than 429.
	ErrNonRetryableTransport = errors.New("non_retryable_transport_error")

	// ErrStoreConflict marks an idempotency-key hit; callers treat this
	// as success.
	ErrStoreConflict = errors.New("store_conflict")

	// ErrStoreChunkFailed marks a bulk-insert chunk that fell back to
	// per-row insertion.
	ErrStoreChunkFailed = errors.New("store_chunk_failed")

	// ErrSpilloverFull marks event loss because the spillover writer
	// rejected the offer.
	ErrSpilloverFull = errors.New("spillover_full")

	// ErrShutdownInProgress marks an enqueue attempted after shutdown began.
	ErrShutdownInProgress = errors.New("shutdown_in_progress")

	// ErrNotFound marks an unknown entity on a query-by-id endpoint.
	ErrNotFound = errors.New("not_found")
)
