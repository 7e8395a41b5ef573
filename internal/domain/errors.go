package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when the input collection itself is
// malformed. Bad individual records never produce an error.
var ErrInvalidArgument = errors.New("invalid argument")

// WarningCode identifies the kind of per-record problem that was tolerated.
type WarningCode string

const (
	WarnUnparseableTimestamp WarningCode = "unparseable_timestamp"
	WarnExcludedFromPairing  WarningCode = "excluded_from_pairing"
	WarnMissingAmount        WarningCode = "missing_amount"
	WarnUnknownDirection     WarningCode = "unknown_direction"
	WarnGeneratedID          WarningCode = "generated_id"
	WarnIgnoredOverride      WarningCode = "ignored_override"
	WarnOverridesUnavailable WarningCode = "overrides_unavailable"
)

// Warning records a fault that was isolated to one record (or one
// collaborator) instead of failing the whole batch.
type Warning struct {
	Code          WarningCode `json:"code"`
	TransactionID string      `json:"transaction_id,omitempty"`
	Message       string      `json:"message"`
}

func (w Warning) String() string {
	if w.TransactionID == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Code, w.TransactionID, w.Message)
}
