package config

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ConfigStore manages runtime settings that can be changed over the API,
// using SQLite.
type ConfigStore struct {
	db       *sql.DB
	defaults Config
}

// Config represents runtime settings.
type Config struct {
	DefaultDialect string `json:"default_dialect"`
	ImportSchedule string `json:"import_schedule"`
}

// NewConfigStore creates a new config store with the given database path.
// defaults is returned for every setting that was never stored.
func NewConfigStore(dbPath string, defaults Config) (*ConfigStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &ConfigStore{db: db, defaults: defaults}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the config table if it doesn't exist.
func (c *ConfigStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS config (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	_, err := c.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (c *ConfigStore) Close() error {
	return c.db.Close()
}

// GetConfig retrieves the runtime settings.
func (c *ConfigStore) GetConfig() (*Config, error) {
	cfg := c.defaults

	rows, err := c.db.Query("SELECT key, value FROM config WHERE key IN (?, ?)",
		"default_dialect", "import_schedule")
	if err != nil {
		return nil, fmt.Errorf("failed to query config: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan config: %w", err)
		}
		switch key {
		case "default_dialect":
			cfg.DefaultDialect = value
		case "import_schedule":
			cfg.ImportSchedule = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query config: %w", err)
	}

	return &cfg, nil
}

// UpdateConfig stores the non-empty fields of cfg.
func (c *ConfigStore) UpdateConfig(cfg *Config) error {
	query := "INSERT OR REPLACE INTO config (key, value) VALUES (?, ?)"

	if cfg.DefaultDialect != "" {
		if _, err := c.db.Exec(query, "default_dialect", cfg.DefaultDialect); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}
	}
	if cfg.ImportSchedule != "" {
		if _, err := c.db.Exec(query, "import_schedule", cfg.ImportSchedule); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}
	}

	return nil
}
