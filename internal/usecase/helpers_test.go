package usecase_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txn-classifier/internal/domain"
	"txn-classifier/internal/usecase"
)

var baseTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type txOption func(*domain.Transaction)

func withBank(bank string) txOption {
	return func(t *domain.Transaction) { t.Bank = bank }
}

func withMerchant(merchant string) txOption {
	return func(t *domain.Transaction) { t.Merchant = merchant }
}

func withMessage(msg string) txOption {
	return func(t *domain.Transaction) { t.RawMessage = msg }
}

func withMethod(method string) txOption {
	return func(t *domain.Transaction) { t.Method = method }
}

func withCategory(category string) txOption {
	return func(t *domain.Transaction) { t.Category = category }
}

func withManualType(label string) txOption {
	return func(t *domain.Transaction) { t.ManualType = label }
}

func makeTx(id string, dir domain.Direction, amount string, ts time.Time, opts ...txOption) domain.Transaction {
	tx := domain.Transaction{
		ID:        id,
		Timestamp: ts,
		Amount:    decimal.RequireFromString(amount),
		Direction: dir,
	}
	for _, opt := range opts {
		opt(&tx)
	}
	return tx
}

func newEngine(t *testing.T) *usecase.Engine {
	t.Helper()
	engine, err := usecase.NewEngine(domain.DefaultRules(), zerolog.Nop())
	require.NoError(t, err)
	return engine
}

func newClassifier() *usecase.Classifier {
	rules := domain.DefaultRules()
	return usecase.NewClassifier(rules, usecase.NewMatcher(rules, zerolog.Nop()))
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "expected %s, got %s", want, got.String())
}
