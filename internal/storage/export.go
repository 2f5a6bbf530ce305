package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/reactorsim/internal/experiment"
)

// floats encodes non-finite values as null.
type floats []float64

func (f floats) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 16*len(f)+2)
	buf = append(buf, '[')
	for i, v := range f {
		if i > 0 {
			buf = append(buf, ',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf = append(buf, "null"...)
			continue
		}
		buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
	}
	return append(buf, ']'), nil
}

func finite(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

type ExportData struct {
	Run     RunMetadata       `json:"run"`
	Results map[string]floats `json:"results"`
}

// ExportJSON writes the run metadata and every output series keyed by name,
// with the sample times under "time".
func ExportJSON(w io.Writer, meta *RunMetadata, tr *experiment.Trajectory) error {
	data := ExportData{
		Run:     *meta,
		Results: make(map[string]floats, len(tr.Series)+1),
	}
	data.Results["time"] = tr.Time
	for _, s := range tr.Series {
		data.Results[s.Name] = s.Values
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// WriteCSV writes time and every series as columns at full precision.
func WriteCSV(w io.Writer, tr *experiment.Trajectory) error {
	cw := csv.NewWriter(w)

	header := append([]string{"time"}, tr.Names()...)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i, t := range tr.Time {
		row[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for j, s := range tr.Series {
			row[j+1] = strconv.FormatFloat(s.Values[i], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
