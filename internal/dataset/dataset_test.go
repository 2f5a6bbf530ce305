package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const header = "t[s]\tF2[m^3/s]\tF7[m^3/s]\tF8[m^3/s]\tF9[m^3/s]\tRPS[RPS]\tT1[K]\tT2[K]\tT3[K]\n"

func TestReadDelimited(t *testing.T) {
	in := header +
		"0\t1e-4\t0\t0\t-2e-9\t3\t296\t333\t295\n" +
		"1\t1e-4\t6e-8\t1e-8\t1e-8\t3\t296.1\t333\t295.5\n" +
		"2\t-1e-6\t6e-8\t1e-8\t1e-8\t3\t296.2\t333\t296\n"

	tab, err := ReadDelimited(strings.NewReader(in), '\t')
	if err != nil {
		t.Fatal(err)
	}
	if tab.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", tab.Len())
	}
	if tab.F9[0] != flowFloor || tab.F2[2] != flowFloor {
		t.Error("negative flows must be replaced by the floor")
	}
	if tab.Clamped != 2 {
		t.Errorf("expected 2 clamped samples, got %d", tab.Clamped)
	}
	if tab.T3[1] != 295.5 || tab.RPS[2] != 3 {
		t.Error("values read into the wrong column")
	}
	if t0, t1 := tab.Span(); t0 != 0 || t1 != 2 {
		t.Errorf("span = [%g, %g]", t0, t1)
	}
	if math.Abs(Mean(tab.T3)-295.5) > 1e-12 {
		t.Errorf("mean T3 = %g", Mean(tab.T3))
	}
}

func TestColumnOrderAndExtras(t *testing.T) {
	in := "note,T3[K],T2[K],T1[K],RPS[RPS],F9[m^3/s],F8[m^3/s],F7[m^3/s],F2[m^3/s],t[s]\n" +
		"a,300,330,301,2,0,0,0,0,0\n" +
		"b,300,330,301,2,0,0,0,0,10\n"

	tab, err := ReadDelimited(strings.NewReader(in), ',')
	if err != nil {
		t.Fatal(err)
	}
	if tab.Time[1] != 10 || tab.T2[0] != 330 || tab.T1[0] != 301 {
		t.Errorf("unexpected table %+v", tab)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"missing column", "t[s]\tF2[m^3/s]\n0\t1\n1\t1\n", ErrMissingColumn},
		{"too few rows", header + "0\t0\t0\t0\t0\t3\t296\t333\t295\n", ErrTooFewRows},
		{"empty", "", ErrTooFewRows},
		{"not monotonic", header +
			"0\t0\t0\t0\t0\t3\t296\t333\t295\n" +
			"0\t0\t0\t0\t0\t3\t296\t333\t295\n", ErrNotMonotonic},
		{"malformed", header +
			"0\t0\t0\t0\t0\t3\t296\t333\t295\n" +
			"1\tx\t0\t0\t0\t3\t296\t333\t295\n", ErrMalformed},
		{"short row", header +
			"0\t0\t0\t0\t0\t3\t296\t333\t295\n" +
			"1\t0\t0\n", ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDelimited(strings.NewReader(tt.in), '\t')
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestReadUnsupported(t *testing.T) {
	if _, err := Read("data.json"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestWriteReadFormats(t *testing.T) {
	r := LaboratoryRecipe()
	r.Step = 600
	src := Synthetic(r)

	for _, ext := range []string{".txt", ".csv", ".xlsx"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "lab"+ext)
			if err := src.Write(path); err != nil {
				t.Fatal(err)
			}
			got, err := Read(path)
			if err != nil {
				t.Fatal(err)
			}
			if got.Len() != src.Len() {
				t.Fatalf("expected %d rows, got %d", src.Len(), got.Len())
			}
			for i := range src.Time {
				a, b := src.row(i), got.row(i)
				for j := range a {
					if math.Abs(a[j]-b[j]) > 1e-12*math.Max(1, math.Abs(a[j])) {
						t.Fatalf("row %d column %s: %g != %g", i, Required[j], b[j], a[j])
					}
				}
			}
		})
	}
}

func TestWriteUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lab.dat")
	if err := Synthetic(LaboratoryRecipe()).Write(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("nothing should be written for an unsupported format")
	}
}

func TestSynthetic(t *testing.T) {
	r := LaboratoryRecipe()
	tab := Synthetic(r)

	if tab.Len() != int(r.End/r.Step)+1 {
		t.Fatalf("unexpected length %d", tab.Len())
	}
	if _, end := tab.Span(); end != r.End {
		t.Errorf("last sample at %g, want %g", end, r.End)
	}
	if tab.F2[0] != 0 || tab.F7[0] != 0 {
		t.Error("no flow before the feed starts")
	}
	i := int(r.FeedFrom/r.Step) + 1
	if tab.F2[i] != r.JacketFlow || tab.F7[i] != r.Monomer {
		t.Error("flows must be on during the feed")
	}
	if tab.F7[tab.Len()-1] != 0 || tab.F8[tab.Len()-1] != r.Initiator {
		t.Error("monomer feed stops before the initiator feed")
	}
	if tab.T1[0] != r.Initial || tab.T3[0] != r.Initial {
		t.Error("first temperatures must equal the initial value")
	}
	for j := 1; j < tab.Len(); j++ {
		if tab.T3[j] > r.Setpoint || tab.T1[j] > r.Setpoint {
			t.Fatalf("temperature above setpoint at %g", tab.Time[j])
		}
	}
}
