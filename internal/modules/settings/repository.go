// Package settings persists user settings and saved target-allocation
// presets. This is the service-side analog of the mobile client's local
// key-value store; the engine packages never touch it.
package settings

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jimmyjeon420-png/baln-sub000/internal/domain"
)

// SettingDefaults are the fallback values for keys that have never been
// written.
var SettingDefaults = map[string]string{
	"tax_country":        "KR",
	"drift_tolerance_pp": "0.5",
}

// TargetPreset is one saved target allocation.
type TargetPreset struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"name"`
	Targets   domain.TargetAllocations `json:"targets"`
	CreatedAt time.Time                `json:"created_at"`
}

// Repository stores settings and target presets in the config database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates the repository and ensures its schema exists.
func NewRepository(db *sql.DB, log zerolog.Logger) (*Repository, error) {
	r := &Repository{
		db:  db,
		log: log.With().Str("repository", "settings").Logger(),
	}
	if err := r.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate settings schema: %w", err)
	}
	return r, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS target_presets (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		targets    TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`
	_, err := r.db.Exec(schema)
	return err
}

// Get returns the value for key, falling back to SettingDefaults and then
// the provided fallback.
func (r *Repository) Get(key, fallback string) string {
	var value string
	err := r.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == nil {
		return value
	}
	if err != sql.ErrNoRows {
		r.log.Warn().Err(err).Str("key", key).Msg("Failed to read setting")
	}
	if def, ok := SettingDefaults[key]; ok {
		return def
	}
	return fallback
}

// Set writes a setting value.
func (r *Repository) Set(key, value string) error {
	_, err := r.db.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// SaveTargetPreset stores a named target allocation and returns its ID.
func (r *Repository) SaveTargetPreset(name string, targets domain.TargetAllocations) (string, error) {
	payload, err := json.Marshal(targets)
	if err != nil {
		return "", fmt.Errorf("failed to encode targets: %w", err)
	}

	id := uuid.New().String()
	_, err = r.db.Exec(
		"INSERT INTO target_presets (id, name, targets) VALUES (?, ?, ?)",
		id, name, string(payload),
	)
	if err != nil {
		return "", fmt.Errorf("failed to store target preset: %w", err)
	}

	r.log.Debug().Str("id", id).Str("name", name).Msg("Stored target preset")
	return id, nil
}

// GetTargetPreset returns one preset by ID.
func (r *Repository) GetTargetPreset(id string) (*TargetPreset, error) {
	row := r.db.QueryRow("SELECT id, name, targets, created_at FROM target_presets WHERE id = ?", id)
	return scanPreset(row)
}

// ListTargetPresets returns all saved presets, newest first.
func (r *Repository) ListTargetPresets() ([]TargetPreset, error) {
	rows, err := r.db.Query("SELECT id, name, targets, created_at FROM target_presets ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list target presets: %w", err)
	}
	defer rows.Close()

	var presets []TargetPreset
	for rows.Next() {
		preset, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, *preset)
	}
	return presets, rows.Err()
}

// DeleteTargetPreset removes one preset by ID.
func (r *Repository) DeleteTargetPreset(id string) error {
	_, err := r.db.Exec("DELETE FROM target_presets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete target preset: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreset(row rowScanner) (*TargetPreset, error) {
	var preset TargetPreset
	var payload string
	if err := row.Scan(&preset.ID, &preset.Name, &payload, &preset.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("target preset not found")
		}
		return nil, fmt.Errorf("failed to scan target preset: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &preset.Targets); err != nil {
		return nil, fmt.Errorf("failed to decode targets: %w", err)
	}
	return &preset, nil
}
