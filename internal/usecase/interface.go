package usecase

import (
	"context"

	"txn-classifier/internal/domain"
)

// TransactionRepository defines the interface for fetching transaction data.
// The usecase layer depends on this interface, not on a concrete implementation.
//
//go:generate mockgen -destination=mocks/mock_repository.go -source=interface.go
type TransactionRepository interface {
	GetTransactions(ctx context.Context) ([]domain.RawTransaction, error)
}

// OverrideSource provides the confirmed manual tags, keyed by transaction ID.
type OverrideSource interface {
	GetOverrides(ctx context.Context) (domain.Overrides, error)
}

// OverrideStore is an OverrideSource that also accepts writes.
type OverrideStore interface {
	OverrideSource
	SetOverride(ctx context.Context, transactionID string, typ domain.Type) error
	DeleteOverride(ctx context.Context, transactionID string) error
}
