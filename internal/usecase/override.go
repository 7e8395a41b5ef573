package usecase

import (
	"fmt"

	"txn-classifier/internal/domain"
)

// ResolveFinalType applies a manual override on top of the automatic type.
// A present, recognizable override always wins; otherwise auto is kept.
func ResolveFinalType(transaction domain.Transaction, auto domain.Type, overrides domain.Overrides) domain.Type {
	if typ, ok := lookupOverride(overrides, transaction.ID); ok {
		return typ
	}
	return auto
}

// OverrideResolver merges manual tags over automatic classification.
//
// Sources are consulted in order: Primary (confirmed overrides from the
// store), the transaction's own ManualType, then Provisional (entries the
// UI has written locally but the store has not confirmed yet). A nil map is
// treated as an unavailable source and skipped.
type OverrideResolver struct {
	Primary     domain.Overrides
	Provisional domain.Overrides
}

// NewOverrideResolver creates a resolver over the given override sources.
func NewOverrideResolver(primary, provisional domain.Overrides) *OverrideResolver {
	return &OverrideResolver{Primary: primary, Provisional: provisional}
}

// Resolve returns the final type of transaction and whether an override
// was applied.
func (r *OverrideResolver) Resolve(transaction domain.Transaction, auto domain.Type) (domain.Type, bool) {
	if typ, ok := lookupOverride(r.Primary, transaction.ID); ok {
		return typ, true
	}
	if typ, ok := domain.ParseType(transaction.ManualType); ok {
		return typ, true
	}
	if typ, ok := lookupOverride(r.Provisional, transaction.ID); ok {
		return typ, true
	}
	return auto, false
}

// Invalid reports override entries that are present but can't be applied,
// so they can be surfaced instead of silently dropped.
func (r *OverrideResolver) Invalid(transactions []domain.Transaction) []domain.Warning {
	var warnings []domain.Warning
	seen := make(map[string]bool)
	for _, tx := range transactions {
		if seen[tx.ID] {
			continue
		}
		seen[tx.ID] = true

		if o, ok := r.Primary[tx.ID]; ok && !isApplicable(o.Type) {
			warnings = append(warnings, ignoredOverride(tx.ID, "override", o.Type))
		}
		if tx.ManualType != "" && !isApplicable(tx.ManualType) {
			warnings = append(warnings, ignoredOverride(tx.ID, "manual type", tx.ManualType))
		}
		if o, ok := r.Provisional[tx.ID]; ok && !isApplicable(o.Type) {
			warnings = append(warnings, ignoredOverride(tx.ID, "provisional override", o.Type))
		}
	}
	return warnings
}

func lookupOverride(overrides domain.Overrides, id string) (domain.Type, bool) {
	if overrides == nil {
		return "", false
	}
	o, ok := overrides[id]
	if !ok {
		return "", false
	}
	return domain.ParseType(o.Type)
}

func isApplicable(label string) bool {
	_, ok := domain.ParseType(label)
	return ok
}

func ignoredOverride(id, source, label string) domain.Warning {
	return domain.Warning{
		Code:          domain.WarnIgnoredOverride,
		TransactionID: id,
		Message:       fmt.Sprintf("%s %q is not a known type, ignored", source, label),
	}
}
