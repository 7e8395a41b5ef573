// Package app wires configuration into the gateways and usecases shared by
// the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"txn-classifier/internal/config"
	"txn-classifier/internal/gateway"
	"txn-classifier/internal/usecase"
)

// Components are the wired application parts. Dashboard is nil when no
// transaction source is configured.
type Components struct {
	Engine    *usecase.Engine
	Dashboard *usecase.DashboardUseCase
	closers   []func() error
}

// Close releases the resources opened by Build.
func (c *Components) Close() error {
	var first error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Build creates the engine and, when a source is configured, the
// dashboard usecase with its repository and override source.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Components, error) {
	engine, err := usecase.NewEngine(cfg.Rules, logger)
	if err != nil {
		return nil, err
	}
	c := &Components{Engine: engine}
	if !cfg.HasSource() {
		return c, nil
	}

	repo, err := transactionRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	overrides, err := c.overrideSource(ctx, cfg, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.Dashboard = usecase.NewDashboardUseCase(repo, overrides, engine, logger)
	return c, nil
}

func sheetsOptions(cfg *config.Config) []option.ClientOption {
	var opts []option.ClientOption
	if creds := cfg.Sources.Sheets.CredentialsFile; creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}

func transactionRepository(ctx context.Context, cfg *config.Config) (usecase.TransactionRepository, error) {
	if len(cfg.Sources.CSVPaths) > 0 {
		return gateway.NewCSVTransactionRepository(cfg.Sources.CSVPaths...), nil
	}
	sheets := cfg.Sources.Sheets
	repo, err := gateway.NewSheetsTransactionRepository(ctx, sheets.SpreadsheetID, sheets.Range, sheetsOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("could not create sheets repository: %w", err)
	}
	return repo, nil
}

// overrideSource prefers the writable SQLite store over a read-only sheet
// range. It returns nil when neither is configured.
func (c *Components) overrideSource(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (usecase.OverrideSource, error) {
	if path := cfg.Overrides.DatabasePath; path != "" {
		store, err := gateway.NewSQLiteOverrideStore(path, logger)
		if err != nil {
			return nil, fmt.Errorf("could not open override store: %w", err)
		}
		c.closers = append(c.closers, store.Close)
		return store, nil
	}

	sheets := cfg.Sources.Sheets
	if sheets.SpreadsheetID != "" && sheets.OverridesRange != "" {
		source, err := gateway.NewSheetsOverrideSource(ctx, sheets.SpreadsheetID, sheets.OverridesRange, sheetsOptions(cfg)...)
		if err != nil {
			return nil, fmt.Errorf("could not create sheets override source: %w", err)
		}
		return source, nil
	}
	return nil, nil
}
