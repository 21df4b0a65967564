package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrSettingNotFound is returned when a section/key pair has no stored value.
// Use errors.Is() to check for it in calling code.
var ErrSettingNotFound = errors.New("database: setting not found")

// Settings provides access to the persisted key/value store.
// Values are stored as text, organised into named sections. The integration
// registry keeps its enablement flags in the "integrations" section; feature
// modules may keep their own sections for module-specific state.
//
// All methods are safe for concurrent use (serialised by SQLite's single
// writer connection).
type Settings struct {
	db *DB
}

// NewSettings creates a settings store backed by the given database.
func NewSettings(db *DB) *Settings {
	return &Settings{db: db}
}

// Get retrieves the value for a section/key pair.
// Returns ErrSettingNotFound if no value is stored.
func (s *Settings) Get(ctx context.Context, section, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE section = ? AND key = ?`,
		section, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s/%s", ErrSettingNotFound, section, key)
	}
	if err != nil {
		return "", fmt.Errorf("reading setting %s/%s: %w", section, key, err)
	}
	return value, nil
}

// Set stores or replaces the value for a section/key pair.
func (s *Settings) Set(ctx context.Context, section, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (section, key, value, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (section, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		section, key, value, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing setting %s/%s: %w", section, key, err)
	}
	return nil
}

// GetBool retrieves a boolean value for a section/key pair.
// Returns ErrSettingNotFound if no value is stored; a stored value that does
// not parse as a boolean is an error.
func (s *Settings) GetBool(ctx context.Context, section, key string) (bool, error) {
	value, err := s.Get(ctx, section, key)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("setting %s/%s is not a boolean (%q): %w", section, key, value, err)
	}
	return b, nil
}

// SetBool stores a boolean value for a section/key pair.
func (s *Settings) SetBool(ctx context.Context, section, key string, value bool) error {
	return s.Set(ctx, section, key, strconv.FormatBool(value))
}

// Keys returns all keys stored in a section, in key order.
// An unknown section returns an empty slice, not an error.
func (s *Settings) Keys(ctx context.Context, section string) ([]string, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT key FROM settings WHERE section = ? ORDER BY key`,
		section,
	)
	if err != nil {
		return nil, fmt.Errorf("listing section %s: %w", section, err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning section %s: %w", section, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating section %s: %w", section, err)
	}
	return keys, nil
}

// Delete removes a section/key pair. Deleting a missing key is not an error.
func (s *Settings) Delete(ctx context.Context, section, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM settings WHERE section = ? AND key = ?`,
		section, key,
	)
	if err != nil {
		return fmt.Errorf("deleting setting %s/%s: %w", section, key, err)
	}
	return nil
}
