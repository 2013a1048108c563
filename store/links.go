package store

import (
	"context"
	"errors"
	"fmt"

	"eventlog.dev/service/eventlog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// LinkStore holds the low-write-volume reference tables (correlation
// links, process definitions) with GORM, mirroring the corpus's own
// split between gorm.Open for RabbitLog (db/postgres.go) and a bare
// pgxpool for the hot-path table (db/postgres_pgx.go). Unlike the
// teacher's administrative helpers, failures here are returned errors:
// this runs inside a long-lived service rather than a one-shot CLI
// invocation, so a panic would take the whole process down.
type LinkStore struct {
	db *gorm.DB
}

// NewLinkStore opens a GORM connection and migrates CorrelationLink
// and ProcessDefinition.
func NewLinkStore(dsn string) (*LinkStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("store: failed to open gorm connection: %w", err)
	}
	if err := db.AutoMigrate(&eventlog.CorrelationLink{}, &eventlog.ProcessDefinition{}); err != nil {
		return nil, fmt.Errorf("store: failed to migrate reference tables: %w", err)
	}
	return &LinkStore{db: db}, nil
}

// UpsertCorrelationLink idempotently creates or updates the
// correlation_id -> account_id mapping.
func (l *LinkStore) UpsertCorrelationLink(ctx context.Context, link eventlog.CorrelationLink) error {
	return l.db.WithContext(ctx).
		Where(eventlog.CorrelationLink{CorrelationID: link.CorrelationID}).
		Assign(link).
		FirstOrCreate(&eventlog.CorrelationLink{}).Error
}

// GetCorrelationLink looks up the account a correlation belongs to.
func (l *LinkStore) GetCorrelationLink(ctx context.Context, correlationID string) (*eventlog.CorrelationLink, error) {
	var link eventlog.CorrelationLink
	err := l.db.WithContext(ctx).First(&link, "correlation_id = ?", correlationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// UpsertProcessDefinition creates or updates a process catalog entry.
func (l *LinkStore) UpsertProcessDefinition(ctx context.Context, def eventlog.ProcessDefinition) error {
	return l.db.WithContext(ctx).
		Where(eventlog.ProcessDefinition{ProcessName: def.ProcessName}).
		Assign(def).
		FirstOrCreate(&eventlog.ProcessDefinition{}).Error
}

// GetProcessDefinition looks up a process by name.
func (l *LinkStore) GetProcessDefinition(ctx context.Context, name string) (*eventlog.ProcessDefinition, error) {
	var def eventlog.ProcessDefinition
	err := l.db.WithContext(ctx).First(&def, "process_name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// ListProcessDefinitions returns every active process definition.
func (l *LinkStore) ListProcessDefinitions(ctx context.Context) ([]eventlog.ProcessDefinition, error) {
	var defs []eventlog.ProcessDefinition
	err := l.db.WithContext(ctx).Where("active = ?", true).Find(&defs).Error
	return defs, err
}

// Close releases the underlying *sql.DB connection pool.
func (l *LinkStore) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
