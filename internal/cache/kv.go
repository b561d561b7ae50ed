package cache

import (
	"database/sql"
	"errors"
	"fmt"
)

// GetValue returns the value stored under key in the key/value table.
// Entries in this table never expire.
func (c *DB) GetValue(key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var value string
	err := c.db.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

// PutValue stores value under key, replacing any previous value.
func (c *DB) PutValue(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO kv_store (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}
