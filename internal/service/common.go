package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// dayKeyLayout is the calendar-day key used by ledgers and sleep logs.
const dayKeyLayout = "2006-01-02"

func validateDayKey(day string) error {
	if _, err := time.ParseInLocation(dayKeyLayout, strings.TrimSpace(day), time.Local); err != nil {
		return fmt.Errorf("%w: invalid day %q, expected YYYY-MM-DD", ErrInvalidInput, day)
	}
	return nil
}

func validateProfileID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: profile id must be greater than 0", ErrInvalidInput)
	}
	return nil
}

func validatePositiveInt(name string, value int) error {
	if value <= 0 {
		return fmt.Errorf("%w: %s must be greater than 0", ErrInvalidInput, name)
	}
	return nil
}

func validateNonNegativeInt(name string, value int) error {
	if value < 0 {
		return fmt.Errorf("%w: %s must be >= 0", ErrInvalidInput, name)
	}
	return nil
}

func validateNonNegativeFloat(name string, value float64) error {
	if value < 0 {
		return fmt.Errorf("%w: %s must be >= 0", ErrInvalidInput, name)
	}
	return nil
}

func validatePositiveFloat(name string, value float64) error {
	if value <= 0 {
		return fmt.Errorf("%w: %s must be greater than 0", ErrInvalidInput, name)
	}
	return nil
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

func nullableString(value string) any {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return value
}

// dayKeyOf returns the local calendar day of a timestamp. Sleep is the one
// event type that does not use this directly; it goes through LogicalDay.
func dayKeyOf(t time.Time) string {
	return t.In(time.Local).Format(dayKeyLayout)
}

func beginningOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// dayBounds returns the RFC3339 start (inclusive) and end (exclusive) of a
// YYYY-MM-DD date in local time.
func dayBounds(date string) (string, string, error) {
	start, err := parseDateStart(date)
	if err != nil {
		return "", "", err
	}
	t, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return "", "", fmt.Errorf("parse RFC3339 %q: %w", start, err)
	}
	return start, t.Add(24 * time.Hour).Format(time.RFC3339), nil
}

func parseDateStart(value string) (string, error) {
	t, err := time.ParseInLocation(dayKeyLayout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return "", fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrInvalidInput, value)
	}
	return t.Format(time.RFC3339), nil
}

func parseDateEndExclusive(value string) (string, error) {
	start, err := parseDateStart(value)
	if err != nil {
		return "", err
	}
	t, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return "", fmt.Errorf("parse end date %q: %w", value, err)
	}
	return t.Add(24 * time.Hour).Format(time.RFC3339), nil
}

func categoryIDByName(db *sql.DB, category string) (int64, error) {
	name := normalizeName(category)
	if name == "" {
		return 0, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	var id int64
	if err := db.QueryRow(`SELECT id FROM meal_categories WHERE name = ?`, name).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("%w: category %q does not exist", ErrNotFound, name)
		}
		return 0, fmt.Errorf("lookup category %q: %w", name, err)
	}
	return id, nil
}
