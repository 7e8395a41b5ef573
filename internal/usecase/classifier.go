package usecase

import (
	"txn-classifier/internal/domain"
)

// ruleInput is what a classification rule gets to look at.
type ruleInput struct {
	tx     domain.Transaction
	text   foldedText
	paired bool
}

// classificationRule assigns typ to any transaction for which match holds.
type classificationRule struct {
	name  string
	typ   domain.Type
	match func(c *Classifier, in ruleInput) bool
}

// classificationRules are evaluated in order and the first match wins.
// Debits are only ever internal through pairing: a debit that merely reads
// like a transfer (a card bill, "transfer to ...") is real spending. Credits
// can also become internal from their text alone.
var classificationRules = []classificationRule{
	{
		name:  "transfer_pair",
		typ:   domain.TypeInternal,
		match: func(_ *Classifier, in ruleInput) bool { return in.paired },
	},
	{
		name: "credit_transfer_pattern",
		typ:  domain.TypeInternal,
		match: func(c *Classifier, in ruleInput) bool {
			return in.tx.Direction == domain.Credit && c.hasExplicitTransferPattern(in.text)
		},
	},
	{
		name:  "bill_payment",
		typ:   domain.TypeBillPayment,
		match: func(c *Classifier, in ruleInput) bool { return c.isBillPayment(in.text) },
	},
	{
		name:  "credit",
		typ:   domain.TypeIncome,
		match: func(_ *Classifier, in ruleInput) bool { return in.tx.Direction == domain.Credit },
	},
	{
		name:  "debit",
		typ:   domain.TypeSpending,
		match: func(_ *Classifier, in ruleInput) bool { return in.tx.Direction == domain.Debit },
	},
	{
		name:  "invalid_direction",
		typ:   domain.TypeUnknown,
		match: func(_ *Classifier, in ruleInput) bool { return !in.tx.Direction.Valid() },
	},
}

// Classifier assigns exactly one domain.Type to every transaction.
type Classifier struct {
	matcher *Matcher

	billKeywords        patternList
	explicitPhrases     patternList
	creditCardMethod    string
	cardPaymentPhrases  patternList
	transferMerchants   patternList
	transferCategories  patternList
	debitMerchantMarker string
}

// NewClassifier creates a classifier that uses matcher for transfer pairing.
func NewClassifier(rules domain.Rules, matcher *Matcher) *Classifier {
	rules = rules.WithDefaults()
	return &Classifier{
		matcher:             matcher,
		billKeywords:        newPatternList(rules.BillPaymentKeywords),
		explicitPhrases:     newPatternList(rules.ExplicitTransferPhrases),
		creditCardMethod:    fold(rules.CreditCardMethod),
		cardPaymentPhrases:  newPatternList(rules.CreditCardPaymentIndicators),
		transferMerchants:   newPatternList(rules.TransferMerchantPatterns),
		transferCategories:  newPatternList(rules.TransferCategories),
		debitMerchantMarker: "debit",
	}
}

// Classify returns the type of transaction within the batch all. The
// transfer pairs of all are computed on every call; use ClassifyBatch to
// classify a whole batch with a single pairing pass.
func (c *Classifier) Classify(transaction domain.Transaction, all []domain.Transaction) domain.Type {
	return c.ClassifyWithPairs(transaction, c.matcher.FindTransferPairs(all))
}

// ClassifyWithPairs classifies transaction against an already computed pair
// set.
func (c *Classifier) ClassifyWithPairs(transaction domain.Transaction, pairs domain.TransferPairSet) domain.Type {
	typ, _ := c.evaluate(transaction, pairs.Has(transaction.ID))
	return typ
}

// BatchClassification holds the automatic classification of a batch.
type BatchClassification struct {
	Types   []domain.Type // aligned with the input slice
	Rules   []string      // name of the rule that fired, aligned with Types
	Result  domain.ClassificationResult
	Pairing PairingResult
}

// ClassifyBatch classifies every transaction in transactions. When IDs
// repeat, Result keeps the type of the first occurrence while Types keeps
// one entry per input.
func (c *Classifier) ClassifyBatch(transactions []domain.Transaction) BatchClassification {
	pairing := c.matcher.Match(transactions)

	batch := BatchClassification{
		Types:   make([]domain.Type, len(transactions)),
		Rules:   make([]string, len(transactions)),
		Result:  make(domain.ClassificationResult, len(transactions)),
		Pairing: pairing,
	}
	for i, tx := range transactions {
		paired := pairing.IsPairedAt(i) || pairing.Paired.Has(tx.ID)
		typ, rule := c.evaluate(tx, paired)
		batch.Types[i] = typ
		batch.Rules[i] = rule
		if _, seen := batch.Result[tx.ID]; !seen {
			batch.Result[tx.ID] = typ
		}
	}
	return batch
}

// HasExplicitTransferPattern reports whether the transaction's own text
// marks it as a transfer, regardless of direction.
func (c *Classifier) HasExplicitTransferPattern(transaction domain.Transaction) bool {
	return c.hasExplicitTransferPattern(foldTransaction(transaction))
}

// IsBillPayment reports whether the merchant or message names a bill.
func (c *Classifier) IsBillPayment(transaction domain.Transaction) bool {
	return c.isBillPayment(foldTransaction(transaction))
}

func (c *Classifier) evaluate(tx domain.Transaction, paired bool) (domain.Type, string) {
	in := ruleInput{tx: tx, text: foldTransaction(tx), paired: paired}
	for _, rule := range classificationRules {
		if rule.match(c, in) {
			return rule.typ, rule.name
		}
	}
	return domain.TypeUnknown, "fallthrough"
}

func (c *Classifier) hasExplicitTransferPattern(text foldedText) bool {
	if text.merchant == c.debitMerchantMarker && c.explicitPhrases.containsAny(text.message) {
		return true
	}
	if c.creditCardMethod != "" && text.method == c.creditCardMethod {
		return true
	}
	if c.cardPaymentPhrases.containsAny(text.message) {
		return true
	}
	if c.transferMerchants.containsAny(text.merchant) {
		return true
	}
	return c.transferCategories.containsAny(text.category)
}

func (c *Classifier) isBillPayment(text foldedText) bool {
	return c.billKeywords.containsAny(text.merchant) || c.billKeywords.containsAny(text.message)
}
