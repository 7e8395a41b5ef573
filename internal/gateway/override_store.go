package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"txn-classifier/internal/domain"
)

type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create_overrides",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS overrides (
				transaction_id TEXT PRIMARY KEY,
				type TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
		},
	},
}

// SQLiteOverrideStore keeps manual overrides in a SQLite database and
// implements the OverrideStore interface.
type SQLiteOverrideStore struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// NewSQLiteOverrideStore opens (creating if needed) the database at path
// and applies pending migrations.
func NewSQLiteOverrideStore(path string, logger zerolog.Logger) (*SQLiteOverrideStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open override database %s: %w", path, err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	s := &SQLiteOverrideStore{db: db, logger: logger, now: time.Now}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteOverrideStore) Close() error {
	return s.db.Close()
}

// GetOverrides returns every stored override keyed by transaction id.
func (s *SQLiteOverrideStore) GetOverrides(ctx context.Context) (domain.Overrides, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT transaction_id, type FROM overrides`)
	if err != nil {
		return nil, fmt.Errorf("failed to query overrides: %w", err)
	}
	defer func() { _ = rows.Close() }()

	overrides := make(domain.Overrides)
	for rows.Next() {
		var id, typ string
		if err := rows.Scan(&id, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan override: %w", err)
		}
		overrides[id] = domain.Override{Type: typ}
	}
	return overrides, rows.Err()
}

// SetOverride inserts or replaces the override of one transaction.
func (s *SQLiteOverrideStore) SetOverride(ctx context.Context, transactionID string, typ domain.Type) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO overrides (transaction_id, type, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(transaction_id) DO UPDATE SET type = excluded.type, updated_at = excluded.updated_at
	`, transactionID, string(typ), s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save override: %w", err)
	}
	s.logger.Debug().Str("transaction_id", transactionID).Str("type", string(typ)).Msg("override saved")
	return nil
}

// DeleteOverride removes the override of one transaction. Deleting a
// missing override is not an error.
func (s *SQLiteOverrideStore) DeleteOverride(ctx context.Context, transactionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM overrides WHERE transaction_id = ?`, transactionID); err != nil {
		return fmt.Errorf("failed to delete override: %w", err)
	}
	return nil
}

func (s *SQLiteOverrideStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := s.appliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
		s.logger.Info().Int("version", m.version).Str("name", m.name).Msg("migration applied")
	}
	return nil
}

func (s *SQLiteOverrideStore) appliedMigrations(ctx context.Context) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to read applied migration: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	return applied, nil
}

func (s *SQLiteOverrideStore) apply(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, stmt := range m.stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.version, m.name); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
