package domain

import (
	"strings"
)

// Type is the semantic classification of a transaction.
type Type string

const (
	TypeInternal    Type = "internal"
	TypeBillPayment Type = "bill-payment"
	TypeIncome      Type = "income"
	TypeSpending    Type = "spending"
	TypeUnknown     Type = "unknown"
)

// Types lists every classification in display order.
var Types = []Type{TypeInternal, TypeBillPayment, TypeIncome, TypeSpending, TypeUnknown}

// ParseType converts a user supplied label such as "Bill Payment" or
// "bill_payment" into a Type. The second return is false for labels that
// don't name a classification.
func ParseType(s string) (Type, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	switch norm {
	case "internal", "internal-transfer", "transfer":
		return TypeInternal, true
	case "bill-payment", "bill", "billpayment":
		return TypeBillPayment, true
	case "income":
		return TypeIncome, true
	case "spending", "expense":
		return TypeSpending, true
	case "unknown":
		return TypeUnknown, true
	}
	return "", false
}

// ClassificationResult maps a transaction ID to its type.
type ClassificationResult map[string]Type

// Override is a manual tag supplied by the user for one transaction.
type Override struct {
	Type string `json:"type"`
}

// Overrides maps transaction IDs to manual tags.
type Overrides map[string]Override
