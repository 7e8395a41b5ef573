package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Text is a loosely typed JSON value. Strings, numbers and booleans all
// decode into their textual form and null decodes to "".
type Text string

// UnmarshalJSON accepts any JSON scalar.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
	case len(b) == 0 || b[0] == '{' || b[0] == '[':
		return fmt.Errorf("%w: expected a scalar value", ErrInvalidArgument)
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(b)
	}
	return nil
}

func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

// RawTransaction is a transaction record as it arrives from a spreadsheet,
// CSV file or API payload, before any field has been validated.
type RawTransaction struct {
	ID         Text `json:"id"`
	Timestamp  Text `json:"timestamp"`
	Bank       Text `json:"bank"`
	Amount     Text `json:"amount"`
	Direction  Text `json:"direction"`
	Merchant   Text `json:"merchant"`
	Method     Text `json:"method"`
	RawMessage Text `json:"raw_message"`
	Category   Text `json:"category"`
	ManualType Text `json:"manual_type"`
}

// timestampLayouts are tried in order; layouts without a zone are read in
// the caller supplied location.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// DecodeBatch parses a JSON array of raw transactions. Only a payload that
// isn't an array at all is rejected; an element that can't be decoded
// becomes an empty record and is degraded later by NormalizeBatch.
func DecodeBatch(data []byte) ([]RawTransaction, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: transactions must be a JSON array", ErrInvalidArgument)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, fmt.Errorf("%w: could not decode transactions: %v", ErrInvalidArgument, err)
	}

	raws := make([]RawTransaction, len(elems))
	for i, elem := range elems {
		var raw RawTransaction
		if err := json.Unmarshal(elem, &raw); err != nil {
			raw = RawTransaction{}
		}
		raws[i] = raw
	}
	return raws, nil
}

// RawBatch lets RawTransaction slices embedded in larger payloads
// use the same tolerant decoding as DecodeBatch.
type RawBatch []RawTransaction

// UnmarshalJSON implements json.Unmarshaler.
func (b *RawBatch) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*b = nil
		return nil
	}
	raws, err := DecodeBatch(data)
	if err != nil {
		return err
	}
	*b = raws
	return nil
}

// NormalizeBatch resolves every optional field of raws to its documented
// default and returns one Transaction per input, in input order. Problems
// with individual records are reported as warnings, never as errors.
func NormalizeBatch(raws []RawTransaction, loc *time.Location) ([]Transaction, []Warning) {
	if loc == nil {
		loc = time.UTC
	}
	txs := make([]Transaction, 0, len(raws))
	var warnings []Warning
	for _, raw := range raws {
		tx, ws := Normalize(raw, loc)
		txs = append(txs, tx)
		warnings = append(warnings, ws...)
	}
	return txs, warnings
}

// Normalize converts a single raw record.
func Normalize(raw RawTransaction, loc *time.Location) (Transaction, []Warning) {
	var warnings []Warning

	tx := Transaction{
		ID:         raw.ID.String(),
		Bank:       raw.Bank.String(),
		Merchant:   raw.Merchant.String(),
		Method:     raw.Method.String(),
		RawMessage: raw.RawMessage.String(),
		Category:   raw.Category.String(),
		ManualType: raw.ManualType.String(),
	}

	if tx.ID == "" {
		tx.ID = uuid.NewString()
		warnings = append(warnings, Warning{
			Code:          WarnGeneratedID,
			TransactionID: tx.ID,
			Message:       "record had no id, generated one",
		})
	}

	amount, err := ParseAmount(raw.Amount.String())
	if err != nil {
		warnings = append(warnings, Warning{
			Code:          WarnMissingAmount,
			TransactionID: tx.ID,
			Message:       fmt.Sprintf("could not parse amount %q, using 0", raw.Amount.String()),
		})
	}
	tx.Amount = amount.Abs()

	tx.Direction = ParseDirection(raw.Direction.String())
	if !tx.Direction.Valid() {
		warnings = append(warnings, Warning{
			Code:          WarnUnknownDirection,
			TransactionID: tx.ID,
			Message:       fmt.Sprintf("unrecognized direction %q", raw.Direction.String()),
		})
	}

	ts, err := ParseTimestamp(raw.Timestamp.String(), loc)
	if err != nil {
		warnings = append(warnings, Warning{
			Code:          WarnUnparseableTimestamp,
			TransactionID: tx.ID,
			Message:       err.Error(),
		})
	}
	tx.Timestamp = ts

	return tx, warnings
}

// ParseDirection maps the spellings banks use for debit and credit onto a
// Direction. Anything else is DirectionUnknown.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debit", "dr", "withdrawal", "debited", "out":
		return Debit
	case "credit", "cr", "deposit", "credited", "in":
		return Credit
	}
	return DirectionUnknown
}

// ParseAmount parses a currency amount, ignoring thousands separators and
// common currency markers. The sign is preserved.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(",", "", " ", "", "₹", "", "$", "", "INR", "", "Rs.", "", "Rs", "").Replace(s)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	return decimal.NewFromString(cleaned)
}

// ParseTimestamp accepts the layouts in timestampLayouts as well as integer
// epoch milliseconds. It returns the zero time alongside an error when s
// can't be read.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse timestamp %q", s)
}
