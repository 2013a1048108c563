package store

import (
	"context"
	"fmt"

	"eventlog.dev/service/eventlog"
	"github.com/google/uuid"
)

// IndexError reports one failed row within an otherwise successful batch.
type IndexError struct {
	Index        int
	ErrorMessage string
}

// BulkResult reports the outcome of InsertBulk/InsertBatchUpload.
// ExecutionIDs is indexed by the caller's original input order; a slot
// stays empty for indices present in Errors.
type BulkResult struct {
	TotalReceived int
	TotalInserted int
	ExecutionIDs  []string
	Errors        []IndexError
}

const bulkChunkSize = 100

// InsertBulk runs the full §4.7 bulk-insert algorithm inside one
// transaction: pre-query existing idempotency keys in chunks of 100,
// partition into skip/insert, multi-row insert the to-insert partition
// in chunks of 100, and fall back to per-row insertion within the same
// transaction on chunk failure.
func (s *Store) InsertBulk(ctx context.Context, events []eventlog.Event) (*BulkResult, error) {
	return s.insertMany(ctx, events, "")
}

// InsertBatchUpload is InsertBulk with batch_id stamped on every row,
// per §4.7's caller-labeled bulk upload.
func (s *Store) InsertBatchUpload(ctx context.Context, batchID string, events []eventlog.Event) (*BulkResult, error) {
	return s.insertMany(ctx, events, batchID)
}

func (s *Store) insertMany(ctx context.Context, events []eventlog.Event, batchID string) (*BulkResult, error) {
	result := &BulkResult{
		TotalReceived: len(events),
		ExecutionIDs:  make([]string, len(events)),
	}
	if len(events) == 0 {
		return result, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: failed to begin bulk insert transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	refs := make([]eventRef, len(events))
	keyToIdx := make(map[string][]int)
	var keys []string
	for i, e := range events {
		if batchID != "" {
			e.BatchID = &batchID
		}
		refs[i] = eventRef{idx: i, event: e}
		if e.IdempotencyKey != nil && *e.IdempotencyKey != "" {
			keyToIdx[*e.IdempotencyKey] = append(keyToIdx[*e.IdempotencyKey], i)
			keys = append(keys, *e.IdempotencyKey)
		}
	}

	existing := make(map[string]string)
	for _, chunk := range chunkStrings(dedupe(keys), bulkChunkSize) {
		found, err := s.lookupManyByIdempotencyKey(ctx, tx, chunk)
		if err != nil {
			return nil, err
		}
		for k, v := range found {
			existing[k] = v
		}
	}

	var toInsert []eventRef
	for _, ref := range refs {
		if ref.event.IdempotencyKey != nil && *ref.event.IdempotencyKey != "" {
			if execID, ok := existing[*ref.event.IdempotencyKey]; ok {
				result.ExecutionIDs[ref.idx] = execID
				continue
			}
		}
		toInsert = append(toInsert, ref)
	}

	for _, chunk := range chunkEvents(toInsert, bulkChunkSize) {
		inserted, chunkErr := insertChunk(ctx, tx, chunk)
		if chunkErr == nil {
			for _, ins := range inserted {
				result.ExecutionIDs[ins.idx] = ins.executionID
				result.TotalInserted++
			}
			continue
		}

		// chunk failed atomically (likely a constraint violation on one
		// row); the transaction is now aborted, so roll back to the
		// savepoint taken before the chunk attempt and retry row by row.
		perRow := insertChunkPerRow(ctx, tx, chunk)
		for _, pr := range perRow {
			if pr.err != nil {
				result.Errors = append(result.Errors, IndexError{Index: pr.idx, ErrorMessage: pr.err.Error()})
				continue
			}
			result.ExecutionIDs[pr.idx] = pr.executionID
			result.TotalInserted++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("store: failed to commit bulk insert transaction: %w", err)
	}
	return result, nil
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0:0]
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}

func (s *Store) lookupManyByIdempotencyKey(ctx context.Context, tx querier, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	rows, err := tx.Query(ctx,
		`SELECT idempotency_key, execution_id FROM events WHERE idempotency_key = ANY($1) AND is_deleted = false`,
		keys,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, execID string
		if err := rows.Scan(&key, &execID); err != nil {
			return nil, err
		}
		out[key] = execID
	}
	return out, rows.Err()
}
