package domain

import (
	"fmt"
	"time"
)

// DefaultTransferWindow is how far apart the two sides of an internal
// transfer may be.
const DefaultTransferWindow = 10 * time.Minute

// Rules is the injectable rule table used by the matcher, classifier and
// aggregator. All keyword lists are matched case-insensitively as
// substrings unless noted otherwise.
type Rules struct {
	TransferWindow time.Duration `yaml:"transfer_window"`

	// Pairing signals.
	OwnBanks                 []string `yaml:"own_banks"` // exact match after trimming
	TransferIndicators       []string `yaml:"transfer_indicators"`
	GenericTransferMerchants []string `yaml:"generic_transfer_merchants"`
	PersonalAliases          []string `yaml:"personal_aliases"`

	// Classification patterns.
	BillPaymentKeywords         []string `yaml:"bill_payment_keywords"`
	ExplicitTransferPhrases     []string `yaml:"explicit_transfer_phrases"`
	CreditCardMethod            string   `yaml:"credit_card_method"` // exact match
	CreditCardPaymentIndicators []string `yaml:"credit_card_payment_indicators"`
	TransferMerchantPatterns    []string `yaml:"transfer_merchant_patterns"`
	TransferCategories          []string `yaml:"transfer_categories"`

	// Aggregation labels.
	UncategorizedLabel string `yaml:"uncategorized_label"`
	OtherMethodLabel   string `yaml:"other_method_label"`
	UndatedLabel       string `yaml:"undated_label"`
	Timezone           string `yaml:"timezone"`
}

// DefaultRules returns the rule table used when nothing is configured.
func DefaultRules() Rules {
	return Rules{
		TransferWindow: DefaultTransferWindow,
		OwnBanks: []string{
			"hdfc bank", "icici bank", "state bank of india", "sbi",
			"axis bank", "kotak mahindra bank",
		},
		TransferIndicators:       []string{"transfer", "credited", "debited", "account", "balance"},
		GenericTransferMerchants: []string{"credit", "debit", "transfer"},
		PersonalAliases:          nil,
		BillPaymentKeywords: []string{
			"electricity", "water bill", "gas bill", "broadband", "internet",
			"airtel", "jio", "vodafone", "vi postpaid", "bsnl", "act fibernet",
			"tata power", "bescom", "mobile recharge", "dth recharge", "bill",
			"credit card payment", "cc payment", "card payment",
			"loan payment", "emi payment", "loan emi", "insurance premium",
		},
		ExplicitTransferPhrases: []string{"credited to", "debited from", "transfer to", "transfer from"},
		CreditCardMethod:        "credit card",
		CreditCardPaymentIndicators: []string{
			"credit card payment", "payment received towards your credit card",
			"payment towards your card", "cc payment received",
		},
		TransferMerchantPatterns: []string{
			"cc payment", "credit card payment", "card payment", "autopay",
			"auto transfer", "auto-transfer", "scheduled transfer",
			"standing instruction", "self transfer", "own account",
		},
		TransferCategories: []string{"credit card payment", "loan payment", "investment transfer"},
		UncategorizedLabel: "Uncategorized",
		OtherMethodLabel:   "Other",
		UndatedLabel:       "undated",
		Timezone:           "UTC",
	}
}

// WithDefaults fills every unset field from DefaultRules. Lists that were
// explicitly set, even to an empty list, are kept.
func (r Rules) WithDefaults() Rules {
	d := DefaultRules()
	if r.TransferWindow == 0 {
		r.TransferWindow = d.TransferWindow
	}
	if r.OwnBanks == nil {
		r.OwnBanks = d.OwnBanks
	}
	if r.TransferIndicators == nil {
		r.TransferIndicators = d.TransferIndicators
	}
	if r.GenericTransferMerchants == nil {
		r.GenericTransferMerchants = d.GenericTransferMerchants
	}
	if r.BillPaymentKeywords == nil {
		r.BillPaymentKeywords = d.BillPaymentKeywords
	}
	if r.ExplicitTransferPhrases == nil {
		r.ExplicitTransferPhrases = d.ExplicitTransferPhrases
	}
	if r.CreditCardMethod == "" {
		r.CreditCardMethod = d.CreditCardMethod
	}
	if r.CreditCardPaymentIndicators == nil {
		r.CreditCardPaymentIndicators = d.CreditCardPaymentIndicators
	}
	if r.TransferMerchantPatterns == nil {
		r.TransferMerchantPatterns = d.TransferMerchantPatterns
	}
	if r.TransferCategories == nil {
		r.TransferCategories = d.TransferCategories
	}
	if r.UncategorizedLabel == "" {
		r.UncategorizedLabel = d.UncategorizedLabel
	}
	if r.OtherMethodLabel == "" {
		r.OtherMethodLabel = d.OtherMethodLabel
	}
	if r.UndatedLabel == "" {
		r.UndatedLabel = d.UndatedLabel
	}
	if r.Timezone == "" {
		r.Timezone = d.Timezone
	}
	return r
}

// Validate checks the rule table for values the engine cannot work with.
func (r Rules) Validate() error {
	if r.TransferWindow < 0 {
		return fmt.Errorf("%w: transfer window must not be negative, got %s", ErrInvalidArgument, r.TransferWindow)
	}
	if _, err := time.LoadLocation(r.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q: %v", ErrInvalidArgument, r.Timezone, err)
	}
	return nil
}

// Location returns the time zone used for day grouping, UTC when the
// configured zone can't be loaded.
func (r Rules) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
