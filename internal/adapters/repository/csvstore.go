package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/cupstats/internal/domain/dataset"
	"github.com/okian/cupstats/pkg/logger"
)

// CSVStore reads the three record sets from CSV files in a directory.
type CSVStore struct {
	dir  string
	opts options
}

// NewCSVStore creates a store reading from dir.
func NewCSVStore(dir string, opts ...Option) *CSVStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &CSVStore{dir: dir, opts: o}
}

// Load implements Store.
func (s *CSVStore) Load(ctx context.Context) (*dataset.Dataset, error) {
	editions, err := s.readFile(ctx, s.opts.files[0], requiredEditionColumns)
	if err != nil {
		return nil, err
	}
	matches, err := s.readFile(ctx, s.opts.files[1], requiredMatchColumns)
	if err != nil {
		return nil, err
	}
	appearances, err := s.readFile(ctx, s.opts.files[2], requiredAppearanceColumns)
	if err != nil {
		return nil, err
	}

	ds := dataset.New(
		cleanEditions(editions),
		cleanMatches(matches),
		cleanAppearances(appearances, s.opts.goalEventsOnly),
	)
	counts := ds.Counts()
	s.opts.logger.Info(ctx, "dataset loaded from csv",
		logger.String("dir", s.dir),
		logger.Int("editions", counts.Editions),
		logger.Int("matches", counts.Matches),
		logger.Int("appearances", counts.Appearances),
	)
	return ds, nil
}

func (s *CSVStore) readFile(ctx context.Context, name string, required []string) ([]record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadSource, err)
	}
	defer f.Close()

	records, err := readCSV(f, name, required)
	if err != nil {
		return nil, err
	}
	s.opts.logger.Debug(ctx, "csv file read", logger.String("path", path), logger.Int("rows", len(records)))
	return records, nil
}

// readCSV parses a headed CSV stream into records. Header names are trimmed;
// short rows leave trailing columns empty.
func readCSV(r io.Reader, name string, required []string) ([]record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s is empty", ErrReadSource, name)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrReadSource, name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	if err := requireColumns(name, header, required); err != nil {
		return nil, err
	}

	var records []record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrReadSource, name, err)
		}
		rec := make(record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
