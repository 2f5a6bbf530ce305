// Package dataset reads the measured laboratory series that drive a run.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/reactorsim/internal/forcing"
)

var (
	ErrMissingColumn     = errors.New("dataset: missing required column")
	ErrNotMonotonic      = errors.New("dataset: time column is not strictly increasing")
	ErrMalformed         = errors.New("dataset: malformed value")
	ErrTooFewRows        = errors.New("dataset: too few rows")
	ErrUnsupportedFormat = errors.New("dataset: unsupported file format")
)

// Column headers as written by the laboratory acquisition software.
const (
	ColTime = "t[s]"
	ColF2   = "F2[m^3/s]"
	ColF7   = "F7[m^3/s]"
	ColF8   = "F8[m^3/s]"
	ColF9   = "F9[m^3/s]"
	ColRPS  = "RPS[RPS]"
	ColT1   = "T1[K]"
	ColT2   = "T2[K]"
	ColT3   = "T3[K]"
)

var Required = []string{ColTime, ColF2, ColF7, ColF8, ColF9, ColRPS, ColT1, ColT2, ColT3}

// MinRows is the smallest table an interpolant can be built from.
const MinRows = 2

// flowFloor replaces negative flow readings.
const flowFloor = 0x1p-52

// Table holds the required columns of one experiment.
type Table struct {
	Time []float64
	F2   []float64
	F7   []float64
	F8   []float64
	F9   []float64
	RPS  []float64
	T1   []float64
	T2   []float64
	T3   []float64

	// Clamped counts the negative flow samples replaced on load.
	Clamped int
}

func (t *Table) column(name string) *[]float64 {
	switch name {
	case ColTime:
		return &t.Time
	case ColF2:
		return &t.F2
	case ColF7:
		return &t.F7
	case ColF8:
		return &t.F8
	case ColF9:
		return &t.F9
	case ColRPS:
		return &t.RPS
	case ColT1:
		return &t.T1
	case ColT2:
		return &t.T2
	case ColT3:
		return &t.T3
	}
	return nil
}

func (t *Table) Len() int { return len(t.Time) }

// Span returns the first and last sample time.
func (t *Table) Span() (float64, float64) {
	return t.Time[0], t.Time[len(t.Time)-1]
}

// Raw returns the columns that feed the forcing signals.
func (t *Table) Raw() forcing.Raw {
	return forcing.Raw{
		Time: t.Time,
		F2:   t.F2,
		F7:   t.F7,
		F8:   t.F8,
		F9:   t.F9,
		RPS:  t.RPS,
		T2:   t.T2,
	}
}

// Mean is the arithmetic mean of a column.
func Mean(xs []float64) float64 {
	return stat.Mean(xs, nil)
}

// Read loads a table from path. The format follows the extension: .txt and
// .tsv are tab separated, .csv is comma separated and .xlsx is read from the
// first sheet.
func Read(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".tsv":
		return readDelimitedFile(path, '\t')
	case ".csv":
		return readDelimitedFile(path, ',')
	case ".xlsx":
		return ReadXLSX(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

func readDelimitedFile(path string, comma rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadDelimited(f, comma)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func ReadDelimited(r io.Reader, comma rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrTooFewRows)
	}
	return FromRecords(records[0], records[1:])
}

func ReadXLSX(path string) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, err
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("%s: %w: no sheets", path, ErrTooFewRows)
	}

	var records [][]string
	for _, row := range f.Sheets[0].Rows {
		if row == nil {
			continue
		}
		rec := make([]string, len(row.Cells))
		blank := true
		for j, c := range row.Cells {
			rec[j] = strings.TrimSpace(c.Value)
			if rec[j] != "" {
				blank = false
			}
		}
		if !blank {
			records = append(records, rec)
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w: empty sheet", path, ErrTooFewRows)
	}

	t, err := FromRecords(records[0], records[1:])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// FromRecords builds a table from a header and string rows. Columns beyond
// the required ones are ignored.
func FromRecords(header []string, rows [][]string) (*Table, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}

	var missing []string
	for _, name := range Required {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	if len(rows) < MinRows {
		return nil, fmt.Errorf("%w: got %d, need at least %d", ErrTooFewRows, len(rows), MinRows)
	}

	t := &Table{}
	for _, name := range Required {
		*t.column(name) = make([]float64, len(rows))
	}

	for i, row := range rows {
		for _, name := range Required {
			j := idx[name]
			if j >= len(row) {
				return nil, fmt.Errorf("%w: row %d has no %s", ErrMalformed, i+2, name)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[j]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %s: %q", ErrMalformed, i+2, name, row[j])
			}
			(*t.column(name))[i] = v
		}
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	t.clampFlows()
	return t, nil
}

func (t *Table) validate() error {
	for i := 1; i < len(t.Time); i++ {
		if !(t.Time[i] > t.Time[i-1]) {
			return fmt.Errorf("%w: t[%d]=%g after %g", ErrNotMonotonic, i, t.Time[i], t.Time[i-1])
		}
	}
	return nil
}

func (t *Table) clampFlows() {
	for _, col := range [][]float64{t.F2, t.F7, t.F8, t.F9} {
		for i, v := range col {
			if v < 0 {
				col[i] = flowFloor
				t.Clamped++
			}
		}
	}
}
