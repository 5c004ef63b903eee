package service

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

const (
	ConfigSleepBoundaryHour = "sleep_boundary_hour"
	ConfigWeightUnit        = "weight_unit"
)

var allowedConfigKeys = map[string]struct{}{
	ConfigSleepBoundaryHour: {},
	ConfigWeightUnit:        {},
}

func SetConfig(db *sql.DB, key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return fmt.Errorf("%w: config key is required", ErrInvalidInput)
	}
	if _, ok := allowedConfigKeys[key]; !ok {
		return fmt.Errorf("%w: unknown config key %q", ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)
	switch key {
	case ConfigSleepBoundaryHour:
		hour, err := strconv.Atoi(value)
		if err != nil || hour < 0 || hour > 23 {
			return fmt.Errorf("%w: %s must be an hour between 0 and 23", ErrInvalidInput, key)
		}
	case ConfigWeightUnit:
		if value != "kg" && value != "lb" {
			return fmt.Errorf("%w: %s must be kg or lb", ErrInvalidInput, key)
		}
	}
	_, err := db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, value)
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func GetConfig(db *sql.DB, key string) (string, bool, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return "", false, fmt.Errorf("%w: config key is required", ErrInvalidInput)
	}
	var value string
	err := db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

func ListConfig(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return out, nil
}

// SleepBoundaryHour reads the configured day-boundary hour, falling back to
// the default when the value is missing or unreadable.
func SleepBoundaryHour(db *sql.DB) int {
	value, ok, err := GetConfig(db, ConfigSleepBoundaryHour)
	if err != nil || !ok {
		return DefaultSleepBoundaryHour
	}
	hour, err := strconv.Atoi(value)
	if err != nil {
		return DefaultSleepBoundaryHour
	}
	return hour
}

// WeightUnit reads the display unit for weights, defaulting to kg.
func WeightUnit(db *sql.DB) string {
	value, ok, err := GetConfig(db, ConfigWeightUnit)
	if err != nil || !ok {
		return "kg"
	}
	return value
}
