package gateway

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"txn-classifier/internal/domain"
)

// CSVTransactionRepository implements the TransactionRepository interface for CSV files.
type CSVTransactionRepository struct {
	paths []string
}

// NewCSVTransactionRepository creates a new repository instance reading
// every file in paths, in order.
func NewCSVTransactionRepository(paths ...string) *CSVTransactionRepository {
	return &CSVTransactionRepository{paths: paths}
}

// GetTransactions reads and maps every configured CSV file.
func (r *CSVTransactionRepository) GetTransactions(ctx context.Context) ([]domain.RawTransaction, error) {
	var all []domain.RawTransaction
	for _, path := range r.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raws, err := r.readFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, raws...)
	}
	return all, nil
}

func (r *CSVTransactionRepository) readFile(path string) ([]domain.RawTransaction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transaction file %s: %w", path, err)
	}
	defer file.Close()

	raws, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raws, nil
}

// ReadCSV maps a CSV stream whose first row is a header. Rows may have
// fewer or more cells than the header.
func ReadCSV(in io.Reader) ([]domain.RawTransaction, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	mapper := newRowMapper(header)
	if !mapper.hasColumn(colAmount) {
		return nil, fmt.Errorf("%w: header has no amount column", domain.ErrInvalidArgument)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record: %w", err)
		}
		rows = append(rows, record)
	}
	return mapper.mapRows(rows), nil
}
