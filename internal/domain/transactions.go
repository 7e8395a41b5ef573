package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells whether money left (DEBIT) or entered (CREDIT) an account.
type Direction string

const (
	Debit            Direction = "DEBIT"
	Credit           Direction = "CREDIT"
	DirectionUnknown Direction = ""
)

// Valid reports whether the direction is one of Debit or Credit.
func (d Direction) Valid() bool {
	return d == Debit || d == Credit
}

// Transaction is a normalized bank transaction. All optional fields have
// already been resolved to their defaults, so the engine never has to
// guess about missing values. Transactions are never mutated by the engine.
type Transaction struct {
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Bank       string          `json:"bank"`
	Amount     decimal.Decimal `json:"amount"` // Always a magnitude, see Direction
	Direction  Direction       `json:"direction"`
	Merchant   string          `json:"merchant,omitempty"`
	Method     string          `json:"method,omitempty"`
	RawMessage string          `json:"raw_message,omitempty"`
	Category   string          `json:"category,omitempty"`
	ManualType string          `json:"manual_type,omitempty"`
}

// HasTimestamp reports whether the transaction can be ordered in time.
func (t Transaction) HasTimestamp() bool {
	return !t.Timestamp.IsZero()
}

// TransferPair links the two sides of a detected internal transfer.
type TransferPair struct {
	DebitID   string   `json:"debit_id"`
	CreditID  string   `json:"credit_id"`
	GapMillis int64    `json:"gap_ms"`
	Signals   []string `json:"signals"`
}

// TransferPairSet holds the IDs of every transaction that is one side of a
// detected internal transfer.
type TransferPairSet map[string]struct{}

// NewTransferPairSet returns a set containing ids.
func NewTransferPairSet(ids ...string) TransferPairSet {
	s := make(TransferPairSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add marks id as paired. Empty ids are ignored.
func (s TransferPairSet) Add(id string) {
	if id == "" {
		return
	}
	s[id] = struct{}{}
}

// Has reports whether id is paired. A nil set contains nothing.
func (s TransferPairSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of paired ids.
func (s TransferPairSet) Len() int {
	return len(s)
}

// IDs returns the paired ids in sorted order.
func (s TransferPairSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
