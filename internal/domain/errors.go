package domain

import "errors"

// Sentinel errors returned by services and repositories. Handlers map these
// onto HTTP statuses; the core packages never touch the transport layer.
var (
	// ErrValidation covers malformed or missing request fields
	// (non-list tag payloads, zero price, rating out of range, ...).
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoCircuitMatch: no circuit satisfies the combined
	// tag/experience/theme filter in plan generation.
	ErrNoCircuitMatch = errors.New("no circuits found matching your preferences")

	// ErrNoHomestayAvailable: the selected circuit has zero homestays.
	ErrNoHomestayAvailable = errors.New("no homestays available under the selected circuit")

	// ErrBudgetExceeded: no homestay (with transport, if required) fits the budget.
	ErrBudgetExceeded = errors.New("no homestay options available within your budget")
)
