package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ecobeehub/internal/core"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorage implements storage.Storage using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// New creates a new SQLite storage instance
func New(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Serialize writers; the hub is the only user of the file
	db.SetMaxOpenConns(1)

	storage := &SQLiteStorage{db: db}

	if err := storage.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return storage, nil
}

// migrate creates the database schema
func (s *SQLiteStorage) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS config_entries (
			id TEXT PRIMARY KEY,
			domain TEXT NOT NULL,
			title TEXT NOT NULL,
			source TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_config_entries_domain ON config_entries(domain);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateEntry stores a new config entry
func (s *SQLiteStorage) CreateEntry(ctx context.Context, entry *core.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	now := time.Now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	data, err := marshalData(entry.Data)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO config_entries (id, domain, title, source, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Domain, entry.Title, entry.Source, data, entry.CreatedAt, entry.UpdatedAt)

	return err
}

// GetEntry retrieves a config entry by ID
func (s *SQLiteStorage) GetEntry(ctx context.Context, id string) (*core.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, domain, title, source, data, created_at, updated_at
		FROM config_entries WHERE id = ?
	`, id)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrEntryNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// ListEntries retrieves all entries of a domain ordered by creation time
func (s *SQLiteStorage) ListEntries(ctx context.Context, domain string) ([]*core.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, domain, title, source, data, created_at, updated_at
		FROM config_entries WHERE domain = ? ORDER BY created_at, id
	`, domain)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*core.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// UpdateEntryData replaces the data of an existing entry
func (s *SQLiteStorage) UpdateEntryData(ctx context.Context, id string, data map[string]string) error {
	encoded, err := marshalData(data)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE config_entries SET data = ?, updated_at = ? WHERE id = ?
	`, encoded, time.Now(), id)
	if err != nil {
		return err
	}

	return requireAffected(result, id)
}

// DeleteEntry deletes a config entry
func (s *SQLiteStorage) DeleteEntry(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM config_entries WHERE id = ?", id)
	if err != nil {
		return err
	}

	return requireAffected(result, id)
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Helper functions

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (*core.Entry, error) {
	var entry core.Entry
	var data string

	if err := row.Scan(&entry.ID, &entry.Domain, &entry.Title, &entry.Source,
		&data, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(data), &entry.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry data: %w", err)
	}
	if entry.Data == nil {
		entry.Data = make(map[string]string)
	}

	return &entry, nil
}

func marshalData(data map[string]string) (string, error) {
	if data == nil {
		data = map[string]string{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal entry data: %w", err)
	}
	return string(encoded), nil
}

func requireAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", core.ErrEntryNotFound, id)
	}
	return nil
}
