package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	ioutils "github.com/husaker/spotify-data-viz/internal/ioutils"
)

// ErrColumnNotFound is returned when a named column does not exist.
var ErrColumnNotFound = errors.New("column not found")

// Table is an in-memory CSV table with a header row.
type Table struct {
	header []string
	rows   [][]string
	index  map[string]int
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	t := &Table{index: make(map[string]int)}
	for _, c := range columns {
		t.addColumn(c)
	}
	return t
}

// Read parses CSV from r. The first record is the header. Short rows are
// padded with empty cells; a UTF-8 BOM on the header is dropped.
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty csv: missing header row")
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading csv header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := New(header...)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading csv")
		}
		t.AppendRow(record)
	}
	return t, nil
}

// ReadFile reads a CSV file.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return t, nil
}

// Write encodes the table as CSV.
func (t *Table) Write(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.header); err != nil {
		return err
	}
	if err := writer.WriteAll(t.rows); err != nil {
		return err
	}
	return writer.Error()
}

// WriteFile writes the table to path, creating parent directories. An
// existing file is replaced only once the whole table is encoded.
func (t *Table) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := t.Write(&buf); err != nil {
		return err
	}
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return ioutils.WriteFileAtomic(path, buf.Bytes())
}

// Header returns a copy of the column names.
func (t *Table) Header() []string {
	return append([]string(nil), t.header...)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// HasColumn reports whether the table has a column called name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns every value of the named column.
func (t *Table) Column(name string) ([]string, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.Wrapf(ErrColumnNotFound, "%q", name)
	}
	out := make([]string, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out, nil
}

// Get returns the cell at row and column, or "" if the column is absent.
func (t *Table) Get(row int, column string) string {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.rows) {
		return ""
	}
	return t.rows[row][i]
}

// Set writes a cell, adding the column if needed.
func (t *Table) Set(row int, column, value string) {
	i, ok := t.index[column]
	if !ok {
		i = t.addColumn(column)
	}
	t.rows[row][i] = value
}

// EnsureColumns adds any of the named columns that do not exist yet.
func (t *Table) EnsureColumns(names ...string) {
	for _, name := range names {
		if !t.HasColumn(name) {
			t.addColumn(name)
		}
	}
}

// AppendRow adds a row, padding or truncating it to the header width.
func (t *Table) AppendRow(values []string) {
	row := make([]string, len(t.header))
	copy(row, values)
	t.rows = append(t.rows, row)
}

func (t *Table) addColumn(name string) int {
	// duplicate header names keep the first occurrence addressable
	if _, exists := t.index[name]; !exists {
		t.index[name] = len(t.header)
	}
	t.header = append(t.header, name)
	for r := range t.rows {
		t.rows[r] = append(t.rows[r], "")
	}
	return len(t.header) - 1
}

// DerivedPath inserts suffix before the extension of path, defaulting
// the extension to .csv: plays.csv becomes plays-enriched.csv.
func DerivedPath(path, suffix string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if ext == "" {
		ext = ".csv"
	}
	return base + suffix + ext
}
