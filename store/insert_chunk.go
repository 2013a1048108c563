package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type insertedRow struct {
	idx         int
	executionID string
}

type perRowResult struct {
	idx         int
	executionID string
	err         error
}

// insertChunk attempts a single multi-row INSERT for the whole chunk
// inside a savepoint, so a failure rolls back only this chunk's attempt
// rather than aborting the outer transaction. Results are matched back
// to their caller index by the execution_id this function generates
// and supplies as a literal, not by RETURNING row order, since
// multi-row INSERT...RETURNING order is not guaranteed by the SQL
// standard.
func insertChunk(ctx context.Context, tx pgx.Tx, chunk []eventRef) ([]insertedRow, error) {
	if _, err := tx.Exec(ctx, "SAVEPOINT chunk_insert"); err != nil {
		return nil, err
	}

	execIDToIdx := make(map[string]int, len(chunk))
	args := make([]interface{}, 0, len(chunk)*len(eventColumns))
	for _, ref := range chunk {
		execID := uuid.NewString()
		execIDToIdx[execID] = ref.idx
		rowArgs, err := eventInsertArgs(ref.event, execID)
		if err != nil {
			tx.Exec(ctx, "ROLLBACK TO SAVEPOINT chunk_insert")
			return nil, err
		}
		args = append(args, rowArgs...)
	}

	query := buildInsertQuery(len(chunk), false)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		tx.Exec(ctx, "ROLLBACK TO SAVEPOINT chunk_insert")
		return nil, err
	}
	defer rows.Close()

	var out []insertedRow
	for rows.Next() {
		var execID string
		if err := rows.Scan(&execID); err != nil {
			tx.Exec(ctx, "ROLLBACK TO SAVEPOINT chunk_insert")
			return nil, err
		}
		out = append(out, insertedRow{idx: execIDToIdx[execID], executionID: execID})
	}
	if err := rows.Err(); err != nil {
		tx.Exec(ctx, "ROLLBACK TO SAVEPOINT chunk_insert")
		return nil, err
	}

	if _, err := tx.Exec(ctx, "RELEASE SAVEPOINT chunk_insert"); err != nil {
		return nil, err
	}
	return out, nil
}

// insertChunkPerRow retries each row of a failed chunk individually,
// each under its own savepoint, so one bad row does not sink the rest.
func insertChunkPerRow(ctx context.Context, tx pgx.Tx, chunk []eventRef) []perRowResult {
	results := make([]perRowResult, 0, len(chunk))
	for _, ref := range chunk {
		if _, err := tx.Exec(ctx, "SAVEPOINT row_insert"); err != nil {
			results = append(results, perRowResult{idx: ref.idx, err: err})
			continue
		}

		execID := uuid.NewString()
		args, err := eventInsertArgs(ref.event, execID)
		if err != nil {
			tx.Exec(ctx, "ROLLBACK TO SAVEPOINT row_insert")
			results = append(results, perRowResult{idx: ref.idx, err: err})
			continue
		}

		query := buildInsertQuery(1, false)
		var returned string
		scanErr := tx.QueryRow(ctx, query, args...).Scan(&returned)
		if scanErr != nil {
			tx.Exec(ctx, "ROLLBACK TO SAVEPOINT row_insert")
			results = append(results, perRowResult{idx: ref.idx, err: scanErr})
			continue
		}

		tx.Exec(ctx, "RELEASE SAVEPOINT row_insert")
		results = append(results, perRowResult{idx: ref.idx, executionID: returned})
	}
	return results
}
