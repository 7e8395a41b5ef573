package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// displayPlaces is the number of decimal places used when amounts leave
// the engine as JSON.
const displayPlaces = 2

// DerivedMetrics summarizes the actual (non-internal) transactions.
type DerivedMetrics struct {
	TotalSpend  decimal.Decimal
	TotalIncome decimal.Decimal
	NetFlow     decimal.Decimal
	Count       int
}

// MarshalJSON renders the currency fields as numbers rounded for display.
func (m DerivedMetrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TotalSpend  json.Number `json:"total_spend"`
		TotalIncome json.Number `json:"total_income"`
		NetFlow     json.Number `json:"net_flow"`
		Count       int         `json:"count"`
	}{
		TotalSpend:  displayNumber(m.TotalSpend),
		TotalIncome: displayNumber(m.TotalIncome),
		NetFlow:     displayNumber(m.NetFlow),
		Count:       m.Count,
	})
}

// GroupTotal is the summed amount of one partition of a breakdown.
type GroupTotal struct {
	Key    string
	Amount decimal.Decimal
	Count  int
}

// MarshalJSON renders Amount as a number rounded for display.
func (g GroupTotal) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key    string      `json:"key"`
		Amount json.Number `json:"amount"`
		Count  int         `json:"count"`
	}{
		Key:    g.Key,
		Amount: displayNumber(g.Amount),
		Count:  g.Count,
	})
}

// Breakdown partitions actual transactions by a key, with debit and credit
// totals computed independently.
type Breakdown struct {
	Debit  []GroupTotal `json:"debit"`
	Credit []GroupTotal `json:"credit"`
}

// ClassifiedTransaction is one input transaction with its automatic and
// final (after overrides) classification.
type ClassifiedTransaction struct {
	Transaction Transaction `json:"transaction"`
	Automatic   Type        `json:"automatic_type"`
	Rule        string      `json:"rule"` // classification rule that produced Automatic
	Final       Type        `json:"final_type"`
	Overridden  bool        `json:"overridden"`
}

// ClassificationReport is the top-level structure for the final JSON output.
type ClassificationReport struct {
	RunID        string                  `json:"run_id"`
	Transactions []ClassifiedTransaction `json:"transactions"`
	Automatic    ClassificationResult    `json:"automatic"`
	Final        ClassificationResult    `json:"final"`
	Pairs        []TransferPair          `json:"pairs"`
	Metrics      DerivedMetrics          `json:"metrics"`
	ByDay        Breakdown               `json:"by_day"`
	ByCategory   Breakdown               `json:"by_category"`
	ByMethod     Breakdown               `json:"by_method"`
	ByType       []GroupTotal            `json:"by_type"`
	Warnings     []Warning               `json:"warnings"`
}

func displayNumber(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(displayPlaces))
}
