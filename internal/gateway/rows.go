package gateway

import (
	"strings"

	"txn-classifier/internal/domain"
)

type column int

const (
	colID column = iota
	colTimestamp
	colBank
	colAmount
	colDirection
	colMerchant
	colMethod
	colMessage
	colCategory
	colManualType
)

// headerAliases maps normalized header names onto columns.
var headerAliases = map[string]column{
	"id":                colID,
	"transaction_id":    colID,
	"txn_id":            colID,
	"reference":         colID,
	"unique_identifier": colID,
	"timestamp":         colTimestamp,
	"date":              colTimestamp,
	"time":              colTimestamp,
	"datetime":          colTimestamp,
	"bank":              colBank,
	"account":           colBank,
	"amount":            colAmount,
	"direction":         colDirection,
	"type":              colDirection,
	"dr_cr":             colDirection,
	"merchant":          colMerchant,
	"recipient":         colMerchant,
	"payee":             colMerchant,
	"method":            colMethod,
	"payment_method":    colMethod,
	"raw_message":       colMessage,
	"message":           colMessage,
	"sms":               colMessage,
	"description":       colMessage,
	"category":          colCategory,
	"manual_type":       colManualType,
	"tag":               colManualType,
}

// rowMapper turns spreadsheet-like rows into raw transactions using the
// positions found in a header row.
type rowMapper struct {
	index map[column]int
}

func newRowMapper(header []string) rowMapper {
	index := make(map[column]int, len(header))
	for i, name := range header {
		col, ok := headerAliases[normalizeHeader(name)]
		if !ok {
			continue
		}
		// first matching header wins
		if _, seen := index[col]; !seen {
			index[col] = i
		}
	}
	return rowMapper{index: index}
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
	return strings.NewReplacer(" ", "_", "-", "_", "/", "_").Replace(name)
}

func (m rowMapper) hasColumn(col column) bool {
	_, ok := m.index[col]
	return ok
}

func (m rowMapper) cell(row []string, col column) domain.Text {
	i, ok := m.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return domain.Text(strings.TrimSpace(row[i]))
}

// mapRow builds a raw transaction from one row. When the row carries no
// direction, a signed amount decides it: negative is a debit, anything else
// a credit.
func (m rowMapper) mapRow(row []string) domain.RawTransaction {
	raw := domain.RawTransaction{
		ID:         m.cell(row, colID),
		Timestamp:  m.cell(row, colTimestamp),
		Bank:       m.cell(row, colBank),
		Amount:     m.cell(row, colAmount),
		Direction:  m.cell(row, colDirection),
		Merchant:   m.cell(row, colMerchant),
		Method:     m.cell(row, colMethod),
		RawMessage: m.cell(row, colMessage),
		Category:   m.cell(row, colCategory),
		ManualType: m.cell(row, colManualType),
	}

	if raw.Direction.String() == "" {
		amount, err := domain.ParseAmount(raw.Amount.String())
		if err == nil {
			if amount.IsNegative() {
				raw.Direction = domain.Text(domain.Debit)
			} else {
				raw.Direction = domain.Text(domain.Credit)
			}
		}
	}
	return raw
}

// mapRows skips rows with no content at all.
func (m rowMapper) mapRows(rows [][]string) []domain.RawTransaction {
	var raws []domain.RawTransaction
	for _, row := range rows {
		if blankRow(row) {
			continue
		}
		raws = append(raws, m.mapRow(row))
	}
	return raws
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
