package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultTable is the table Store.Dataset reads when none is configured.
const DefaultTable = "drinks"

// ErrInvalidTable is returned when a table name is not a plain SQL identifier.
var ErrInvalidTable = errors.New("invalid table name")

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store is a read-only view over a SQL database holding the same table shape
// as the CSV source. It never writes.
type Store struct {
	db *sql.DB
}

// NewStore wraps db, verifying that it is reachable.
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dataset reads every row of table. The column chosen by opts.NameColumn (or
// the first column) is the record name; every other column is converted to a
// number, with NaN for NULL or non-numeric values.
func (s *Store) Dataset(ctx context.Context, table string, opts Options) (*Dataset, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identifierRe.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT * FROM "`+table+`"`)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	if len(header) == 0 {
		return &Dataset{NameColumn: opts.NameColumn}, nil
	}

	nameIdx := columnIndex(header, opts.NameColumn)
	ds := &Dataset{NameColumn: header[nameIdx]}
	for i, col := range header {
		if i != nameIdx {
			ds.Columns = append(ds.Columns, col)
		}
	}

	values := make([]any, len(header))
	ptrs := make([]any, len(header))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err = rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		rec := Record{
			Name:     strings.TrimSpace(sqlText(values[nameIdx])),
			Measures: make(map[string]float64, len(header)-1),
		}
		for i, col := range header {
			if i != nameIdx {
				rec.Measures[col] = sqlNumber(values[i])
			}
		}
		ds.Records = append(ds.Records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", table, err)
	}
	return ds, nil
}

func sqlText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

func sqlNumber(v any) float64 {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case float64:
		return t
	case string, []byte:
		return parseMeasure(sqlText(t))
	case bool:
		if t {
			return 1
		}
		return 0
	case nil:
		return math.NaN()
	default:
		f, err := strconv.ParseFloat(fmt.Sprint(t), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
}
