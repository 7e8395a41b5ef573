package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"txn-classifier/internal/domain"
	"txn-classifier/internal/usecase"
)

func TestResolveFinalType(t *testing.T) {
	tx := makeTx("T1", domain.Debit, "10", baseTime)

	t.Run("no overrides keeps the automatic type", func(t *testing.T) {
		for _, auto := range domain.Types {
			assert.Equal(t, auto, usecase.ResolveFinalType(tx, auto, domain.Overrides{}))
			assert.Equal(t, auto, usecase.ResolveFinalType(tx, auto, nil))
		}
	})

	t.Run("override wins regardless of automatic type", func(t *testing.T) {
		overrides := domain.Overrides{"T1": {Type: "income"}}
		for _, auto := range domain.Types {
			assert.Equal(t, domain.TypeIncome, usecase.ResolveFinalType(tx, auto, overrides))
		}
	})

	t.Run("override labels are normalized", func(t *testing.T) {
		overrides := domain.Overrides{"T1": {Type: " Bill Payment "}}
		assert.Equal(t, domain.TypeBillPayment, usecase.ResolveFinalType(tx, domain.TypeSpending, overrides))
	})

	t.Run("empty or unknown override is ignored", func(t *testing.T) {
		assert.Equal(t, domain.TypeSpending, usecase.ResolveFinalType(tx, domain.TypeSpending, domain.Overrides{"T1": {}}))
		assert.Equal(t, domain.TypeSpending, usecase.ResolveFinalType(tx, domain.TypeSpending, domain.Overrides{"T1": {Type: "groceries"}}))
	})

	t.Run("overrides for other ids do not apply", func(t *testing.T) {
		overrides := domain.Overrides{"T2": {Type: "internal"}}
		assert.Equal(t, domain.TypeSpending, usecase.ResolveFinalType(tx, domain.TypeSpending, overrides))
	})
}

func TestOverrideResolver_Precedence(t *testing.T) {
	tests := []struct {
		name           string
		tx             domain.Transaction
		primary        domain.Overrides
		provisional    domain.Overrides
		wantType       domain.Type
		wantOverridden bool
	}{
		{
			name:           "nothing set",
			tx:             makeTx("T1", domain.Debit, "10", baseTime),
			wantType:       domain.TypeSpending,
			wantOverridden: false,
		},
		{
			name:           "primary beats provisional",
			tx:             makeTx("T1", domain.Debit, "10", baseTime),
			primary:        domain.Overrides{"T1": {Type: "internal"}},
			provisional:    domain.Overrides{"T1": {Type: "income"}},
			wantType:       domain.TypeInternal,
			wantOverridden: true,
		},
		{
			name:           "provisional used when primary has no entry",
			tx:             makeTx("T1", domain.Debit, "10", baseTime),
			primary:        domain.Overrides{"T2": {Type: "internal"}},
			provisional:    domain.Overrides{"T1": {Type: "income"}},
			wantType:       domain.TypeIncome,
			wantOverridden: true,
		},
		{
			name:           "provisional used when primary is unavailable",
			tx:             makeTx("T1", domain.Debit, "10", baseTime),
			primary:        nil,
			provisional:    domain.Overrides{"T1": {Type: "bill_payment"}},
			wantType:       domain.TypeBillPayment,
			wantOverridden: true,
		},
		{
			name:           "record manual type beats provisional",
			tx:             makeTx("T1", domain.Debit, "10", baseTime, withManualType("Internal")),
			provisional:    domain.Overrides{"T1": {Type: "income"}},
			wantType:       domain.TypeInternal,
			wantOverridden: true,
		},
		{
			name:           "primary beats record manual type",
			tx:             makeTx("T1", domain.Debit, "10", baseTime, withManualType("internal")),
			primary:        domain.Overrides{"T1": {Type: "spending"}},
			wantType:       domain.TypeSpending,
			wantOverridden: true,
		},
		{
			name:           "invalid primary falls through",
			tx:             makeTx("T1", domain.Debit, "10", baseTime),
			primary:        domain.Overrides{"T1": {Type: "??"}},
			provisional:    domain.Overrides{"T1": {Type: "unknown"}},
			wantType:       domain.TypeUnknown,
			wantOverridden: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := usecase.NewOverrideResolver(tt.primary, tt.provisional)
			got, overridden := resolver.Resolve(tt.tx, domain.TypeSpending)
			assert.Equal(t, tt.wantType, got)
			assert.Equal(t, tt.wantOverridden, overridden)
		})
	}
}

func TestOverrideResolver_Invalid(t *testing.T) {
	resolver := usecase.NewOverrideResolver(
		domain.Overrides{"T1": {Type: "groceries"}, "T2": {Type: "income"}},
		domain.Overrides{"T3": {Type: ""}},
	)
	transactions := []domain.Transaction{
		makeTx("T1", domain.Debit, "10", baseTime),
		makeTx("T1", domain.Debit, "10", baseTime),
		makeTx("T2", domain.Debit, "10", baseTime, withManualType("misc")),
		makeTx("T3", domain.Debit, "10", baseTime),
	}

	warnings := resolver.Invalid(transactions)

	if assert.Len(t, warnings, 3) {
		assert.Equal(t, "T1", warnings[0].TransactionID)
		assert.Equal(t, "T2", warnings[1].TransactionID)
		assert.Equal(t, "T3", warnings[2].TransactionID)
		for _, w := range warnings {
			assert.Equal(t, domain.WarnIgnoredOverride, w.Code)
		}
	}
}
