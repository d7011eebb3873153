package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/okian/cupstats/internal/domain/dataset"
	"github.com/okian/cupstats/pkg/logger"
)

const postgresDriver = "postgres"

// PostgresStore reads the record sets from Postgres tables whose columns keep
// the CSV header names. The connection is held only for the duration of Load.
type PostgresStore struct {
	dsn  string
	opts options
}

// NewPostgresStore creates a store for the given connection string.
func NewPostgresStore(dsn string, opts ...Option) *PostgresStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &PostgresStore{dsn: dsn, opts: o}
}

// Load implements Store.
func (s *PostgresStore) Load(ctx context.Context) (*dataset.Dataset, error) {
	db, err := sqlx.ConnectContext(ctx, postgresDriver, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadSource, err)
	}
	defer db.Close()

	editions, err := s.readTable(ctx, db, s.opts.tables[0], requiredEditionColumns)
	if err != nil {
		return nil, err
	}
	matches, err := s.readTable(ctx, db, s.opts.tables[1], requiredMatchColumns)
	if err != nil {
		return nil, err
	}
	appearances, err := s.readTable(ctx, db, s.opts.tables[2], requiredAppearanceColumns)
	if err != nil {
		return nil, err
	}

	ds := dataset.New(
		cleanEditions(editions),
		cleanMatches(matches),
		cleanAppearances(appearances, s.opts.goalEventsOnly),
	)
	counts := ds.Counts()
	s.opts.logger.Info(ctx, "dataset loaded from postgres",
		logger.Int("editions", counts.Editions),
		logger.Int("matches", counts.Matches),
		logger.Int("appearances", counts.Appearances),
	)
	return ds, nil
}

func (s *PostgresStore) readTable(ctx context.Context, db *sqlx.DB, table string, required []string) ([]record, error) {
	rows, err := db.QueryxContext(ctx, "SELECT * FROM "+pq.QuoteIdentifier(table))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadSource, table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadSource, table, err)
	}
	if err := requireColumns(table, columns, required); err != nil {
		return nil, err
	}

	var records []record
	for rows.Next() {
		cells := make(map[string]any, len(columns))
		if err := rows.MapScan(cells); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrReadSource, table, err)
		}
		rec := make(record, len(cells))
		for k, v := range cells {
			rec[strings.TrimSpace(k)] = cellString(v)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadSource, table, err)
	}
	s.opts.logger.Debug(ctx, "postgres table read", logger.String("table", table), logger.Int("rows", len(records)))
	return records, nil
}

// cellString renders a scanned value the way it would appear in the CSV
// export so both sources share the cleaning rules.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// Open returns the store for a configured source kind.
func Open(source, location string, opts ...Option) (Store, error) {
	switch source {
	case "csv":
		return NewCSVStore(location, opts...), nil
	case "postgres":
		return NewPostgresStore(location, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
}
