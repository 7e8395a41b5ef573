package usecase_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txn-classifier/internal/domain"
	"txn-classifier/internal/usecase"
)

func TestNewEngine_InvalidRules(t *testing.T) {
	rules := domain.DefaultRules()
	rules.Timezone = "Mars/Olympus_Mons"

	engine, err := usecase.NewEngine(rules, zerolog.Nop())

	assert.Nil(t, engine)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestEngine_Run_PairedTransfer(t *testing.T) {
	engine := newEngine(t)

	transactions := []domain.Transaction{
		makeTx("A", domain.Debit, "500", baseTime, withBank("HDFC Bank")),
		makeTx("B", domain.Credit, "500", baseTime.Add(time.Minute), withBank("HDFC Bank")),
	}

	report := engine.Run(transactions, nil, nil)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, domain.ClassificationResult{"A": domain.TypeInternal, "B": domain.TypeInternal}, report.Final)
	assert.Equal(t, report.Automatic, report.Final)
	assertDecimal(t, "0", report.Metrics.TotalSpend)
	assertDecimal(t, "0", report.Metrics.TotalIncome)
	assert.Equal(t, 0, report.Metrics.Count)
	if assert.Len(t, report.Pairs, 1) {
		assert.Equal(t, "A", report.Pairs[0].DebitID)
		assert.Equal(t, "B", report.Pairs[0].CreditID)
		assert.Equal(t, []string{usecase.SignalOwnBanks}, report.Pairs[0].Signals)
	}
	assert.Empty(t, report.Warnings)
	assert.Equal(t, "transfer_pair", report.Transactions[0].Rule)
}

func TestEngine_Run_CardPaymentSides(t *testing.T) {
	engine := newEngine(t)

	transactions := []domain.Transaction{
		makeTx("CR", domain.Credit, "15000", baseTime, withMerchant("CC Payment to XX1150")),
		makeTx("DR", domain.Debit, "15000", baseTime.Add(2*time.Hour), withMerchant("CC Payment to XX1150")),
	}

	report := engine.Run(transactions, nil, nil)

	assert.Equal(t, domain.TypeInternal, report.Final["CR"])
	assert.Equal(t, domain.TypeBillPayment, report.Final["DR"])
	assertDecimal(t, "0", report.Metrics.TotalIncome)
	assertDecimal(t, "15000", report.Metrics.TotalSpend)
	assert.Equal(t, 1, report.Metrics.Count)
}

func TestEngine_Run_OutsideWindow(t *testing.T) {
	engine := newEngine(t)

	transactions := []domain.Transaction{
		makeTx("A", domain.Debit, "500", baseTime, withBank("HDFC Bank")),
		makeTx("B", domain.Credit, "500", baseTime.Add(11*time.Minute), withBank("HDFC Bank")),
	}

	report := engine.Run(transactions, nil, nil)

	assert.Empty(t, report.Pairs)
	assert.Equal(t, domain.TypeSpending, report.Final["A"])
	assert.Equal(t, domain.TypeIncome, report.Final["B"])
	assertDecimal(t, "500", report.Metrics.TotalSpend)
	assertDecimal(t, "500", report.Metrics.TotalIncome)
	assertDecimal(t, "0", report.Metrics.NetFlow)
	assert.Equal(t, 2, report.Metrics.Count)
}

func TestEngine_Run_Overrides(t *testing.T) {
	engine := newEngine(t)

	transactions := []domain.Transaction{
		makeTx("A", domain.Debit, "500", baseTime, withBank("HDFC Bank")),
		makeTx("B", domain.Credit, "500", baseTime.Add(time.Minute), withBank("HDFC Bank")),
		makeTx("C", domain.Debit, "80", baseTime.Add(time.Hour), withMerchant("Cafe")),
	}
	overrides := domain.Overrides{"A": {Type: "spending"}, "C": {Type: "nonsense"}}
	provisional := domain.Overrides{"B": {Type: "income"}}

	report := engine.Run(transactions, overrides, provisional)

	assert.Equal(t, domain.TypeInternal, report.Automatic["A"])
	assert.Equal(t, domain.TypeSpending, report.Final["A"])
	assert.Equal(t, domain.TypeIncome, report.Final["B"])
	assert.Equal(t, domain.TypeSpending, report.Final["C"])
	assert.True(t, report.Transactions[0].Overridden)
	assert.True(t, report.Transactions[1].Overridden)
	assert.False(t, report.Transactions[2].Overridden)
	assert.Equal(t, 3, report.Metrics.Count)
	assertDecimal(t, "580", report.Metrics.TotalSpend)

	if assert.Len(t, report.Warnings, 1) {
		assert.Equal(t, domain.WarnIgnoredOverride, report.Warnings[0].Code)
		assert.Equal(t, "C", report.Warnings[0].TransactionID)
	}
}

func TestEngine_Run_UndatedTransactionIsStillClassified(t *testing.T) {
	engine := newEngine(t)

	transactions := []domain.Transaction{
		makeTx("U", domain.Debit, "42", time.Time{}, withMerchant("Jio Prepaid")),
	}

	report := engine.Run(transactions, nil, nil)

	assert.Equal(t, domain.TypeBillPayment, report.Final["U"])
	if assert.Len(t, report.Warnings, 1) {
		assert.Equal(t, domain.WarnExcludedFromPairing, report.Warnings[0].Code)
		assert.Equal(t, "U", report.Warnings[0].TransactionID)
	}
	if assert.Len(t, report.ByDay.Debit, 1) {
		assert.Equal(t, "undated", report.ByDay.Debit[0].Key)
	}
}

func TestEngine_Run_EmptyBatch(t *testing.T) {
	engine := newEngine(t)

	report := engine.Run(nil, nil, nil)

	assert.Empty(t, report.Transactions)
	assert.Equal(t, 0, report.Metrics.Count)
	assertDecimal(t, "0", report.Metrics.NetFlow)
	assert.Len(t, report.ByType, len(domain.Types))

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"warnings":[]`)
}

func TestEngine_ComputeMetricsConsistency(t *testing.T) {
	engine := newEngine(t)

	transactions := []domain.Transaction{
		makeTx("1", domain.Debit, "1000", baseTime, withBank("SBI")),
		makeTx("2", domain.Credit, "1000", baseTime.Add(3*time.Minute), withBank("Axis Bank")),
		makeTx("3", domain.Credit, "52000.75", baseTime.Add(time.Hour), withMerchant("ACME Payroll")),
		makeTx("4", domain.Debit, "349.25", baseTime.Add(2*time.Hour), withMerchant("Swiggy")),
		makeTx("5", domain.Debit, "1499", baseTime.Add(3*time.Hour), withMerchant("Airtel Broadband")),
	}

	metrics := engine.ComputeMetrics(transactions, nil)
	actual := engine.ComputeActual(transactions, nil)

	assert.Equal(t, len(actual), metrics.Count)
	assert.Equal(t, 3, metrics.Count)
	assertDecimal(t, "1848.25", metrics.TotalSpend)
	assertDecimal(t, "52000.75", metrics.TotalIncome)
	assertDecimal(t, "50152.5", metrics.NetFlow)
	assert.True(t, metrics.TotalSpend.Sub(metrics.TotalIncome).Equal(metrics.NetFlow.Neg()))

	withOverride := engine.ComputeMetrics(transactions, domain.Overrides{"1": {Type: "spending"}})
	assert.Equal(t, 4, withOverride.Count)
	assertDecimal(t, "2848.25", withOverride.TotalSpend)
}

func TestEngine_RunRaw(t *testing.T) {
	engine := newEngine(t)

	raws, err := domain.DecodeBatch([]byte(`[
		{"id": "A", "timestamp": 1741944600000, "bank": "HDFC Bank", "amount": 500, "direction": "debit"},
		{"id": "B", "timestamp": "2025-03-14T09:31:00Z", "bank": "HDFC Bank", "amount": "500.00", "direction": "CR"},
		{"id": "C", "timestamp": "yesterday", "amount": "₹1,200", "direction": "debit", "merchant": "Airtel"},
		"not an object"
	]`))
	require.NoError(t, err)

	report := engine.RunRaw(raws, nil, nil)

	require.Len(t, report.Transactions, 4)
	assert.Equal(t, domain.TypeInternal, report.Final["A"])
	assert.Equal(t, domain.TypeInternal, report.Final["B"])
	assert.Equal(t, domain.TypeBillPayment, report.Final["C"])
	assert.Equal(t, domain.TypeUnknown, report.Transactions[3].Final)
	assertDecimal(t, "1200", report.Metrics.TotalSpend)

	codes := make([]domain.WarningCode, 0, len(report.Warnings))
	for _, w := range report.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []domain.WarningCode{
		domain.WarnUnparseableTimestamp,
		domain.WarnGeneratedID,
		domain.WarnMissingAmount,
		domain.WarnUnknownDirection,
		domain.WarnUnparseableTimestamp,
		domain.WarnExcludedFromPairing,
		domain.WarnExcludedFromPairing,
	}, codes)
}
