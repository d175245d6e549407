package model

import (
	"errors"
	"fmt"
)

// Error taxonomy shared across the core. All of these are local,
// recoverable-by-caller conditions; none should crash the process.
var (
	// ErrDataUnavailable marks a missing snapshot, indicator or price.
	// Callers skip the cycle, they do not treat it as fatal.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrVenueUnavailable marks a disconnected execution venue. The
	// operation is retried only on the next externally triggered
	// attempt, never automatically.
	ErrVenueUnavailable = errors.New("venue unavailable")

	// ErrNotFound marks a stale or duplicate close. It is an
	// idempotency signal, not an error to alarm on.
	ErrNotFound = errors.New("position not found")

	// ErrRiskRejected matches any validator veto via errors.Is.
	ErrRiskRejected = errors.New("risk rejected")
)

// RiskRejectedError carries the validator's verbatim reason and
// risk score to the caller.
type RiskRejectedError struct {
	Reason    string
	RiskScore float64
}

func (e *RiskRejectedError) Error() string {
	return fmt.Sprintf("risk rejected: %s", e.Reason)
}

func (e *RiskRejectedError) Unwrap() error {
	return ErrRiskRejected
}
