package gateway

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"txn-classifier/internal/domain"
)

// sheetRange reads one A1 range of a spreadsheet as text cells.
type sheetRange struct {
	service       *sheets.Service
	spreadsheetID string
	readRange     string
}

func newSheetRange(ctx context.Context, spreadsheetID, readRange string, opts ...option.ClientOption) (sheetRange, error) {
	if spreadsheetID == "" || readRange == "" {
		return sheetRange{}, fmt.Errorf("%w: spreadsheet id and range are required", domain.ErrInvalidArgument)
	}
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return sheetRange{}, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return sheetRange{service: service, spreadsheetID: spreadsheetID, readRange: readRange}, nil
}

func (s sheetRange) rows(ctx context.Context) ([][]string, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from spreadsheet %s: %w", s.readRange, s.spreadsheetID, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, values := range resp.Values {
		row := make([]string, len(values))
		for j, v := range values {
			if v != nil {
				row[j] = fmt.Sprint(v)
			}
		}
		rows[i] = row
	}
	return rows, nil
}

// SheetsTransactionRepository implements the TransactionRepository
// interface for a Google Sheets range whose first row is a header.
type SheetsTransactionRepository struct {
	sheet sheetRange
}

// NewSheetsTransactionRepository creates a repository for readRange of the
// given spreadsheet. opts are passed to the Sheets client, typically
// option.WithCredentialsFile.
func NewSheetsTransactionRepository(ctx context.Context, spreadsheetID, readRange string, opts ...option.ClientOption) (*SheetsTransactionRepository, error) {
	sheet, err := newSheetRange(ctx, spreadsheetID, readRange, opts...)
	if err != nil {
		return nil, err
	}
	return &SheetsTransactionRepository{sheet: sheet}, nil
}

// GetTransactions fetches and maps the range.
func (r *SheetsTransactionRepository) GetTransactions(ctx context.Context) ([]domain.RawTransaction, error) {
	rows, err := r.sheet.rows(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	mapper := newRowMapper(rows[0])
	if !mapper.hasColumn(colAmount) {
		return nil, fmt.Errorf("%w: header of %s has no amount column", domain.ErrInvalidArgument, r.sheet.readRange)
	}
	return mapper.mapRows(rows[1:]), nil
}

// SheetsOverrideSource reads manual overrides from a two column range:
// transaction id, then type label. It is read-only.
type SheetsOverrideSource struct {
	sheet sheetRange
}

// NewSheetsOverrideSource creates an override source for readRange.
func NewSheetsOverrideSource(ctx context.Context, spreadsheetID, readRange string, opts ...option.ClientOption) (*SheetsOverrideSource, error) {
	sheet, err := newSheetRange(ctx, spreadsheetID, readRange, opts...)
	if err != nil {
		return nil, err
	}
	return &SheetsOverrideSource{sheet: sheet}, nil
}

// GetOverrides returns the overrides keyed by transaction id. A leading
// header row is skipped and later rows for the same id win.
func (s *SheetsOverrideSource) GetOverrides(ctx context.Context) (domain.Overrides, error) {
	rows, err := s.sheet.rows(ctx)
	if err != nil {
		return nil, err
	}

	overrides := make(domain.Overrides, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		id := strings.TrimSpace(row[0])
		if id == "" {
			continue
		}
		if col, ok := headerAliases[normalizeHeader(id)]; i == 0 && ok && col == colID {
			continue
		}
		overrides[id] = domain.Override{Type: strings.TrimSpace(row[1])}
	}
	return overrides, nil
}
