package store

import "context"

// SoftDelete marks an event row deleted without removing it, per the
// service's no-hard-delete non-goal.
func (s *Store) SoftDelete(ctx context.Context, executionID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE events SET is_deleted = true WHERE execution_id = $1`,
		executionID,
	)
	return err
}
