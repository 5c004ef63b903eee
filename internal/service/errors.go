package service

import "errors"

// Sentinel errors for the service layer. Callers match with errors.Is; the
// wrapping message carries the specifics.
var (
	// ErrInvalidInput marks caller-supplied values outside their valid range.
	// It is raised before any read or write, so no partial state is left
	// behind.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCalculationOutOfRange marks a computed BMR or TDEE outside its
	// sanity band, which usually means mixed units upstream. The value is
	// never clamped into range.
	ErrCalculationOutOfRange = errors.New("calculation out of range")

	// ErrLedgerConflict is returned by the ledger store when a save loses a
	// revision race with a concurrent writer.
	ErrLedgerConflict = errors.New("ledger conflict")

	ErrNotFound = errors.New("not found")
)
