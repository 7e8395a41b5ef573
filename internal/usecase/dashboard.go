package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"txn-classifier/internal/domain"
)

// ErrOverridesReadOnly is returned when tagging without a writable
// override store.
var ErrOverridesReadOnly = errors.New("override store is read-only or not configured")

// Timeframe bounds a dashboard to whole days. A zero Start or End leaves
// that side open.
type Timeframe struct {
	Start time.Time
	End   time.Time
}

func (tf Timeframe) bounded() bool {
	return !tf.Start.IsZero() || !tf.End.IsZero()
}

// contains reports whether t falls on or after Start and on or before the
// last instant of End's day.
func (tf Timeframe) contains(t time.Time) bool {
	if !tf.Start.IsZero() && t.Before(tf.Start) {
		return false
	}
	if !tf.End.IsZero() && !t.Before(tf.End.Add(24*time.Hour)) {
		return false
	}
	return true
}

// DashboardUseCase orchestrates one dashboard refresh: load the batch,
// normalize it, fetch overrides and run the engine.
type DashboardUseCase struct {
	repo      TransactionRepository
	overrides OverrideSource
	engine    *Engine
	logger    zerolog.Logger
}

// NewDashboardUseCase creates a new instance of the usecase. overrides may
// be nil when no override store is configured.
func NewDashboardUseCase(repo TransactionRepository, overrides OverrideSource, engine *Engine, logger zerolog.Logger) *DashboardUseCase {
	return &DashboardUseCase{repo: repo, overrides: overrides, engine: engine, logger: logger}
}

// Build produces the classification report for the given timeframe.
// provisional carries locally cached tags that the override store has not
// confirmed yet.
func (uc *DashboardUseCase) Build(ctx context.Context, tf Timeframe, provisional domain.Overrides) (*domain.ClassificationReport, error) {
	// Step 1: Data Ingestion
	raws, err := uc.repo.GetTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get transactions: %w", err)
	}

	// Step 2: Normalization
	transactions, warnings := domain.NormalizeBatch(raws, uc.engine.Location())

	// Step 3: Timeframe Filtering
	transactions = uc.filterByTimeframe(transactions, tf)

	// Step 4: Overrides, falling back to automatic classification
	overrides := uc.loadOverrides(ctx, &warnings)

	// Step 5: Classification and aggregation
	report := uc.engine.Run(transactions, overrides, provisional)

	return prependWarnings(report, warnings), nil
}

// Tag stores a manual override for one transaction.
func (uc *DashboardUseCase) Tag(ctx context.Context, transactionID, label string) (domain.Type, error) {
	store, ok := uc.overrides.(OverrideStore)
	if !ok {
		return "", ErrOverridesReadOnly
	}
	if strings.TrimSpace(transactionID) == "" {
		return "", fmt.Errorf("%w: transaction id is required", domain.ErrInvalidArgument)
	}
	typ, ok := domain.ParseType(label)
	if !ok {
		return "", fmt.Errorf("%w: unknown type %q", domain.ErrInvalidArgument, label)
	}
	if err := store.SetOverride(ctx, transactionID, typ); err != nil {
		return "", fmt.Errorf("could not save override for %s: %w", transactionID, err)
	}
	return typ, nil
}

// Untag removes the manual override of one transaction.
func (uc *DashboardUseCase) Untag(ctx context.Context, transactionID string) error {
	store, ok := uc.overrides.(OverrideStore)
	if !ok {
		return ErrOverridesReadOnly
	}
	if err := store.DeleteOverride(ctx, transactionID); err != nil {
		return fmt.Errorf("could not delete override for %s: %w", transactionID, err)
	}
	return nil
}

func (uc *DashboardUseCase) loadOverrides(ctx context.Context, warnings *[]domain.Warning) domain.Overrides {
	if uc.overrides == nil {
		return nil
	}
	overrides, err := uc.overrides.GetOverrides(ctx)
	if err != nil {
		uc.logger.Warn().Err(err).Msg("override source unavailable, using automatic classification")
		*warnings = append(*warnings, domain.Warning{
			Code:    domain.WarnOverridesUnavailable,
			Message: err.Error(),
		})
		return nil
	}
	return overrides
}

func (uc *DashboardUseCase) filterByTimeframe(transactions []domain.Transaction, tf Timeframe) []domain.Transaction {
	if !tf.bounded() {
		return transactions
	}
	var filtered []domain.Transaction
	for _, tx := range transactions {
		if !tx.HasTimestamp() {
			uc.logger.Debug().Str("transaction_id", tx.ID).Msg("undated transaction left out of bounded timeframe")
			continue
		}
		if tf.contains(tx.Timestamp) {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}
