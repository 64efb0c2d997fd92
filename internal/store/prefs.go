package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// GetPreference returns the value for key, or ErrNotFound.
func (s *Store) GetPreference(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get preference %q: %w", key, err)
	}
	return value, nil
}

// SetPreference upserts a key-value pair.
func (s *Store) SetPreference(key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: preference key is required", ErrValidation)
	}
	_, err := s.db.Exec(
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set preference %q: %w", key, err)
	}
	s.notify(CollectionPreferences)
	return nil
}

// DeletePreference removes a key. Missing keys are not an error; deletes
// are idempotent here, unlike record collections.
func (s *Store) DeletePreference(key string) error {
	if _, err := s.db.Exec("DELETE FROM preferences WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete preference %q: %w", key, err)
	}
	s.notify(CollectionPreferences)
	return nil
}

// ListPreferences returns all pairs ordered by key.
func (s *Store) ListPreferences() ([]Preference, error) {
	rows, err := s.db.Query("SELECT key, value FROM preferences ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	var prefs []Preference
	for rows.Next() {
		var p Preference
		if err := rows.Scan(&p.Key, &p.Value); err != nil {
			return nil, err
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

// ClearPreferences deletes every pair.
func (s *Store) ClearPreferences() error {
	if _, err := s.db.Exec("DELETE FROM preferences"); err != nil {
		return fmt.Errorf("clear preferences: %w", err)
	}
	s.notify(CollectionPreferences)
	return nil
}
