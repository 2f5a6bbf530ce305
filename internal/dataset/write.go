package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"
)

func (t *Table) row(i int) []float64 {
	out := make([]float64, len(Required))
	for j, name := range Required {
		out[j] = (*t.column(name))[i]
	}
	return out
}

// WriteDelimited writes the required columns with the given separator.
func (t *Table) WriteDelimited(w io.Writer, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(Required); err != nil {
		return err
	}
	rec := make([]string, len(Required))
	for i := range t.Time {
		for j, v := range t.row(i) {
			rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (t *Table) WriteXLSX(path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("data")
	if err != nil {
		return err
	}
	header := sheet.AddRow()
	for _, name := range Required {
		header.AddCell().SetString(name)
	}
	for i := range t.Time {
		r := sheet.AddRow()
		for _, v := range t.row(i) {
			r.AddCell().SetFloat(v)
		}
	}
	return f.Save(path)
}

// Write stores the table at path in the format implied by its extension.
func (t *Table) Write(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	var comma rune
	switch ext {
	case ".xlsx":
		return t.WriteXLSX(path)
	case ".txt", ".tsv":
		comma = '\t'
	case ".csv":
		comma = ','
	default:
		return ErrUnsupportedFormat
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteDelimited(f, comma); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
