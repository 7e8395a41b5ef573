package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txn-classifier/internal/domain"
	"txn-classifier/internal/usecase"
	mock_usecase "txn-classifier/internal/usecase/mocks"
)

func rawTx(id, ts, bank, amount, dir, merchant string) domain.RawTransaction {
	return domain.RawTransaction{
		ID:        domain.Text(id),
		Timestamp: domain.Text(ts),
		Bank:      domain.Text(bank),
		Amount:    domain.Text(amount),
		Direction: domain.Text(dir),
		Merchant:  domain.Text(merchant),
	}
}

func TestDashboardUseCase_Build(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	raws := []domain.RawTransaction{
		rawTx("A", "2025-03-01T10:00:00Z", "HDFC Bank", "500", "debit", ""),
		rawTx("B", "2025-03-01T10:01:00Z", "HDFC Bank", "500", "credit", ""),
		rawTx("C", "2025-03-05T12:00:00Z", "", "1,250.50", "DR", "Swiggy"),
		rawTx("D", "2025-03-20T12:00:00Z", "", "85000", "CR", "ACME Payroll"),
		rawTx("E", "", "", "40", "debit", "Tea Stall"),
	}

	tests := []struct {
		name         string
		timeframe    usecase.Timeframe
		provisional  domain.Overrides
		repoErr      error
		overrides    domain.Overrides
		overridesErr error
		wantFinal    domain.ClassificationResult
		wantCount    int
		wantWarnings []domain.WarningCode
		wantErr      bool
	}{
		{
			name: "unbounded timeframe keeps every record",
			wantFinal: domain.ClassificationResult{
				"A": domain.TypeInternal,
				"B": domain.TypeInternal,
				"C": domain.TypeSpending,
				"D": domain.TypeIncome,
				"E": domain.TypeSpending,
			},
			wantCount:    3,
			wantWarnings: []domain.WarningCode{domain.WarnUnparseableTimestamp, domain.WarnExcludedFromPairing},
		},
		{
			name: "bounded timeframe drops undated and out of range records",
			timeframe: usecase.Timeframe{
				Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
			},
			wantFinal: domain.ClassificationResult{
				"A": domain.TypeInternal,
				"B": domain.TypeInternal,
				"C": domain.TypeSpending,
			},
			wantCount:    1,
			wantWarnings: []domain.WarningCode{domain.WarnUnparseableTimestamp},
		},
		{
			name:      "stored overrides and provisional tags are applied",
			overrides: domain.Overrides{"A": {Type: "spending"}},
			provisional: domain.Overrides{
				"B": {Type: "income"},
				"D": {Type: "internal"},
			},
			wantFinal: domain.ClassificationResult{
				"A": domain.TypeSpending,
				"B": domain.TypeIncome,
				"C": domain.TypeSpending,
				"D": domain.TypeInternal,
				"E": domain.TypeSpending,
			},
			wantCount:    4,
			wantWarnings: []domain.WarningCode{domain.WarnUnparseableTimestamp, domain.WarnExcludedFromPairing},
		},
		{
			name:         "unavailable override source falls back to automatic types",
			overridesErr: errors.New("sheet is offline"),
			provisional:  domain.Overrides{"C": {Type: "bill-payment"}},
			wantFinal: domain.ClassificationResult{
				"A": domain.TypeInternal,
				"B": domain.TypeInternal,
				"C": domain.TypeBillPayment,
				"D": domain.TypeIncome,
				"E": domain.TypeSpending,
			},
			wantCount: 3,
			wantWarnings: []domain.WarningCode{
				domain.WarnUnparseableTimestamp,
				domain.WarnOverridesUnavailable,
				domain.WarnExcludedFromPairing,
			},
		},
		{
			name:    "repository error",
			repoErr: errors.New("file not found"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mock_usecase.NewMockTransactionRepository(ctrl)
			source := mock_usecase.NewMockOverrideSource(ctrl)

			if tt.repoErr != nil {
				repo.EXPECT().GetTransactions(gomock.Any()).Return(nil, tt.repoErr)
			} else {
				repo.EXPECT().GetTransactions(gomock.Any()).Return(raws, nil)
				source.EXPECT().GetOverrides(gomock.Any()).Return(tt.overrides, tt.overridesErr)
			}

			uc := usecase.NewDashboardUseCase(repo, source, newEngine(t), zerolog.Nop())
			got, err := uc.Build(context.Background(), tt.timeframe, tt.provisional)

			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, tt.repoErr))
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantFinal, got.Final)
			assert.Equal(t, tt.wantCount, got.Metrics.Count)

			codes := make([]domain.WarningCode, 0, len(got.Warnings))
			for _, w := range got.Warnings {
				codes = append(codes, w.Code)
			}
			assert.Equal(t, tt.wantWarnings, codes)
		})
	}
}

func TestDashboardUseCase_BuildWithoutOverrideSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_usecase.NewMockTransactionRepository(ctrl)
	repo.EXPECT().GetTransactions(gomock.Any()).Return([]domain.RawTransaction{
		rawTx("", "1741944600000", "", "99", "debit", "Jio Recharge"),
	}, nil)

	uc := usecase.NewDashboardUseCase(repo, nil, newEngine(t), zerolog.Nop())
	got, err := uc.Build(context.Background(), usecase.Timeframe{}, nil)

	require.NoError(t, err)
	if assert.Len(t, got.Transactions, 1) {
		tx := got.Transactions[0]
		assert.NotEmpty(t, tx.Transaction.ID)
		assert.Equal(t, domain.TypeBillPayment, tx.Final)
		assert.True(t, baseTime.Equal(tx.Transaction.Timestamp))
	}
	if assert.Len(t, got.Warnings, 1) {
		assert.Equal(t, domain.WarnGeneratedID, got.Warnings[0].Code)
	}
}

func TestDashboardUseCase_Tag(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("stores the normalized type", func(t *testing.T) {
		store := mock_usecase.NewMockOverrideStore(ctrl)
		store.EXPECT().SetOverride(gomock.Any(), "T1", domain.TypeBillPayment).Return(nil)

		uc := usecase.NewDashboardUseCase(nil, store, newEngine(t), zerolog.Nop())
		typ, err := uc.Tag(context.Background(), "T1", "Bill Payment")

		require.NoError(t, err)
		assert.Equal(t, domain.TypeBillPayment, typ)
	})

	t.Run("rejects unknown labels", func(t *testing.T) {
		store := mock_usecase.NewMockOverrideStore(ctrl)

		uc := usecase.NewDashboardUseCase(nil, store, newEngine(t), zerolog.Nop())
		_, err := uc.Tag(context.Background(), "T1", "groceries")

		assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
	})

	t.Run("rejects empty ids", func(t *testing.T) {
		store := mock_usecase.NewMockOverrideStore(ctrl)

		uc := usecase.NewDashboardUseCase(nil, store, newEngine(t), zerolog.Nop())
		_, err := uc.Tag(context.Background(), "  ", "income")

		assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
	})

	t.Run("wraps store errors", func(t *testing.T) {
		storeErr := errors.New("database is locked")
		store := mock_usecase.NewMockOverrideStore(ctrl)
		store.EXPECT().SetOverride(gomock.Any(), "T1", domain.TypeIncome).Return(storeErr)

		uc := usecase.NewDashboardUseCase(nil, store, newEngine(t), zerolog.Nop())
		_, err := uc.Tag(context.Background(), "T1", "income")

		assert.True(t, errors.Is(err, storeErr))
	})

	t.Run("read-only source", func(t *testing.T) {
		source := mock_usecase.NewMockOverrideSource(ctrl)

		uc := usecase.NewDashboardUseCase(nil, source, newEngine(t), zerolog.Nop())
		_, err := uc.Tag(context.Background(), "T1", "income")

		assert.True(t, errors.Is(err, usecase.ErrOverridesReadOnly))
	})
}

func TestDashboardUseCase_Untag(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_usecase.NewMockOverrideStore(ctrl)
	store.EXPECT().DeleteOverride(gomock.Any(), "T1").Return(nil)

	uc := usecase.NewDashboardUseCase(nil, store, newEngine(t), zerolog.Nop())
	assert.NoError(t, uc.Untag(context.Background(), "T1"))

	noStore := usecase.NewDashboardUseCase(nil, nil, newEngine(t), zerolog.Nop())
	assert.True(t, errors.Is(noStore.Untag(context.Background(), "T1"), usecase.ErrOverridesReadOnly))
}
