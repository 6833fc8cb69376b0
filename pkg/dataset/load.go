package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
)

// DefaultNameColumn is the header of the identifying-name column in the
// drinks-by-country dataset.
const DefaultNameColumn = "country"

// ErrMissingDataset is returned by LoadCSV when the source file does not exist.
// Callers are expected to continue with an empty dataset.
var ErrMissingDataset = errors.New("dataset file not found")

// Record is one row of the dataset: an identifying name plus its numeric
// measures keyed by column name. Records are never modified after loading.
type Record struct {
	Name     string
	Measures map[string]float64
}

// Measure returns the value of the named column, or NaN if the record has no
// such column.
func (r Record) Measure(column string) float64 {
	v, ok := r.Measures[column]
	if !ok {
		return math.NaN()
	}
	return v
}

// Dataset is the ordered result of a load.
type Dataset struct {
	// NameColumn is the header of the column the record names came from.
	NameColumn string
	// Columns lists the numeric measure columns in header order.
	Columns []string
	// Records holds the rows in source order.
	Records []Record
	// Skipped counts rows dropped for having fewer fields than the header.
	Skipped int
}

// Options controls how rows are interpreted.
type Options struct {
	// NameColumn selects the identifying column. If empty or absent from the
	// header, the first column is used.
	NameColumn string
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// LoadCSV reads the delimited file at path. A missing file yields an empty
// dataset and an error wrapping ErrMissingDataset.
func LoadCSV(path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Dataset{NameColumn: opts.NameColumn}, fmt.Errorf("%w: %s", ErrMissingDataset, path)
		}
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	return ParseCSV(f, opts)
}

// maxLineSize bounds a single row of input.
const maxLineSize = 1 << 20

// ParseCSV reads a header row followed by data rows from r, one row per line.
// Rows with fewer fields than the header are skipped; any extra trailing
// fields are ignored. Quotes are read leniently and never span lines, so a
// stray quote damages at most its own row. Measure fields that do not parse
// as numbers become NaN.
func ParseCSV(r io.Reader, opts Options) (*Dataset, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var header []string
	for header == nil && scanner.Scan() {
		fields, err := splitRow(scanner.Text(), opts.Comma)
		if err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		header = fields
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if header == nil {
		return &Dataset{NameColumn: opts.NameColumn}, nil
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	// A UTF-8 BOM would otherwise end up in the first column name.
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	nameIdx := columnIndex(header, opts.NameColumn)
	ds := &Dataset{NameColumn: header[nameIdx]}
	for i, col := range header {
		if i != nameIdx {
			ds.Columns = append(ds.Columns, col)
		}
	}

	for scanner.Scan() {
		fields, err := splitRow(scanner.Text(), opts.Comma)
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				ds.Skipped++
				continue
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if fields == nil {
			continue
		}
		if len(fields) < len(header) {
			ds.Skipped++
			continue
		}
		ds.Records = append(ds.Records, newRecord(header, nameIdx, fields))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return ds, nil
}

// splitRow splits one line into fields. A blank line yields nil fields and no
// error.
func splitRow(line string, comma rune) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	if comma != 0 {
		reader.Comma = comma
	}
	fields, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	return fields, err
}

func newRecord(header []string, nameIdx int, fields []string) Record {
	rec := Record{
		Name:     strings.TrimSpace(fields[nameIdx]),
		Measures: make(map[string]float64, len(header)-1),
	}
	for i, col := range header {
		if i == nameIdx {
			continue
		}
		rec.Measures[col] = parseMeasure(fields[i])
	}
	return rec
}

// parseMeasure converts a field to a float, returning NaN rather than failing.
func parseMeasure(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func columnIndex(header []string, name string) int {
	if name == "" {
		return 0
	}
	for i, col := range header {
		if col == name {
			return i
		}
	}
	return 0
}
