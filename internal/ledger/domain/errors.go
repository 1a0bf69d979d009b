package domain

import "errors"

// Ledger error taxonomy. Handlers map these onto HTTP status codes with
// errors.Is, so every failure path wraps one of them.
var (
	// ErrNotFound covers missing accounts, holdings and transactions.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOperation covers oversells, reversals that would drive a
	// holding negative, and similar state violations.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrInsufficientData covers non-positive quantities or prices.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDuplicateTransaction is returned when a transaction ID was already
	// applied. Create is idempotent by transaction ID.
	ErrDuplicateTransaction = errors.New("duplicate transaction")
)
