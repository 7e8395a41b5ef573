package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"txn-classifier/internal/domain"
)

// Engine runs the full classification pipeline over one batch:
// pairing, rule classification, overrides, then aggregation. It holds no
// state between calls and is safe for concurrent use.
type Engine struct {
	matcher    *Matcher
	classifier *Classifier
	aggregator *Aggregator
	location   *time.Location
	logger     zerolog.Logger
}

// NewEngine validates rules and wires the pipeline components.
func NewEngine(rules domain.Rules, logger zerolog.Logger) (*Engine, error) {
	rules = rules.WithDefaults()
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}

	matcher := NewMatcher(rules, logger)
	return &Engine{
		matcher:    matcher,
		classifier: NewClassifier(rules, matcher),
		aggregator: NewAggregator(rules),
		location:   rules.Location(),
		logger:     logger,
	}, nil
}

// Matcher returns the engine's transfer matcher.
func (e *Engine) Matcher() *Matcher {
	return e.matcher
}

// Classifier returns the engine's classifier.
func (e *Engine) Classifier() *Classifier {
	return e.classifier
}

// Location is the time zone used to read zone-less timestamps and to
// group by day.
func (e *Engine) Location() *time.Location {
	return e.location
}

// Run classifies transactions and computes every derived view of them.
// Every input transaction appears in the report with exactly one type.
func (e *Engine) Run(transactions []domain.Transaction, overrides, provisional domain.Overrides) *domain.ClassificationReport {
	runID := uuid.NewString()
	log := e.logger.With().Str("run_id", runID).Logger()

	batch := e.classifier.ClassifyBatch(transactions)
	resolver := NewOverrideResolver(overrides, provisional)

	report := &domain.ClassificationReport{
		RunID:        runID,
		Transactions: make([]domain.ClassifiedTransaction, len(transactions)),
		Automatic:    batch.Result,
		Final:        make(domain.ClassificationResult, len(transactions)),
		Pairs:        batch.Pairing.Pairs,
		Warnings:     make([]domain.Warning, 0),
	}

	final := make([]domain.Type, len(transactions))
	for i, tx := range transactions {
		typ, overridden := resolver.Resolve(tx, batch.Types[i])
		final[i] = typ
		report.Transactions[i] = domain.ClassifiedTransaction{
			Transaction: tx,
			Automatic:   batch.Types[i],
			Rule:        batch.Rules[i],
			Final:       typ,
			Overridden:  overridden,
		}
		if _, seen := report.Final[tx.ID]; !seen {
			report.Final[tx.ID] = typ
		}
	}

	for _, id := range batch.Pairing.Unsortable {
		report.Warnings = append(report.Warnings, domain.Warning{
			Code:          domain.WarnExcludedFromPairing,
			TransactionID: id,
			Message:       "no usable timestamp, classified by rules only",
		})
	}
	for _, w := range resolver.Invalid(transactions) {
		log.Warn().Str("transaction_id", w.TransactionID).Msg(w.Message)
		report.Warnings = append(report.Warnings, w)
	}

	actual := e.aggregator.ComputeActual(transactions, final)
	report.Metrics = e.aggregator.Summarize(actual)
	report.ByDay = e.aggregator.GroupByDay(actual)
	report.ByCategory = e.aggregator.GroupByCategory(actual)
	report.ByMethod = e.aggregator.GroupByMethod(actual)
	report.ByType = e.aggregator.GroupByType(transactions, final)

	log.Info().
		Int("transactions", len(transactions)).
		Int("pairs", len(report.Pairs)).
		Int("actual", report.Metrics.Count).
		Int("warnings", len(report.Warnings)).
		Msg("classification run complete")

	return report
}

// RunRaw normalizes raws and runs the pipeline over the result.
// Normalization warnings come first in the report.
func (e *Engine) RunRaw(raws []domain.RawTransaction, overrides, provisional domain.Overrides) *domain.ClassificationReport {
	transactions, warnings := domain.NormalizeBatch(raws, e.location)
	return prependWarnings(e.Run(transactions, overrides, provisional), warnings)
}

// ComputeActual returns the transactions that remain after internal
// transfers are excluded, with overrides applied.
func (e *Engine) ComputeActual(transactions []domain.Transaction, overrides domain.Overrides) []domain.Transaction {
	return e.aggregator.ComputeActual(transactions, e.finalTypes(transactions, overrides))
}

// ComputeMetrics returns the derived metrics of transactions with overrides
// applied.
func (e *Engine) ComputeMetrics(transactions []domain.Transaction, overrides domain.Overrides) domain.DerivedMetrics {
	return e.aggregator.ComputeMetrics(transactions, e.finalTypes(transactions, overrides))
}

func (e *Engine) finalTypes(transactions []domain.Transaction, overrides domain.Overrides) []domain.Type {
	batch := e.classifier.ClassifyBatch(transactions)
	resolver := NewOverrideResolver(overrides, nil)
	final := make([]domain.Type, len(transactions))
	for i, tx := range transactions {
		final[i], _ = resolver.Resolve(tx, batch.Types[i])
	}
	return final
}

func prependWarnings(report *domain.ClassificationReport, warnings []domain.Warning) *domain.ClassificationReport {
	merged := make([]domain.Warning, 0, len(warnings)+len(report.Warnings))
	merged = append(merged, warnings...)
	report.Warnings = append(merged, report.Warnings...)
	return report
}
