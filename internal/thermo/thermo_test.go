package thermo

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func TestWaterAtTableNodes(t *testing.T) {
	w := NewWater()
	for _, row := range waterTable {
		p, err := w.Properties(row[0]+celsius, Atmospheric)
		if err != nil {
			t.Fatalf("T=%g °C: %v", row[0], err)
		}
		got := []float64{p.Density, p.HeatCapacity, p.Viscosity, p.Conductivity, p.Expansion}
		for c, v := range got {
			if math.Abs(v-row[c+1]) > 1e-9*math.Max(1, math.Abs(row[c+1])) {
				t.Errorf("T=%g °C column %d: got %g want %g", row[0], c, v, row[c+1])
			}
		}
	}
}

func TestWaterRoomTemperature(t *testing.T) {
	p, err := NewWater().Properties(296.15, Atmospheric)
	if err != nil {
		t.Fatal(err)
	}
	if p.Density < 997.05 || p.Density > 998.21 {
		t.Errorf("density %g outside neighbours", p.Density)
	}
	if pr := p.Prandtl(); pr < 6 || pr > 7.5 {
		t.Errorf("Prandtl number %g implausible near 23 °C", pr)
	}
	if nu := p.KinematicViscosity(); math.Abs(nu-9.4e-7) > 0.3e-7 {
		t.Errorf("kinematic viscosity %g", nu)
	}
}

func TestWaterOutOfRange(t *testing.T) {
	w := NewWater()
	tests := []struct {
		name string
		T, P float64
	}{
		{"frozen", 250, Atmospheric},
		{"boiling", 400, Atmospheric},
		{"vacuum", 300, 1000},
		{"nan", math.NaN(), Atmospheric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := w.Properties(tt.T, tt.P); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("expected ErrOutOfRange, got %v", err)
			}
		})
	}
}

type countingProvider struct {
	mu    sync.Mutex
	calls int
	src   Provider
}

func (c *countingProvider) Properties(T, P float64) (Properties, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.src.Properties(T, P)
}

func TestCached(t *testing.T) {
	src := &countingProvider{src: NewWater()}
	c := NewCached(src, 8)

	first, err := c.Properties(300, Atmospheric)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := c.Properties(300, Atmospheric)
	if first != second {
		t.Error("cached value differs")
	}
	if src.calls != 1 {
		t.Errorf("expected 1 underlying call, got %d", src.calls)
	}

	if _, err := c.Properties(500, Atmospheric); err == nil {
		t.Error("errors must propagate")
	}
	if _, err := c.Properties(500, Atmospheric); err == nil {
		t.Error("errors must not be cached")
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 3 {
		t.Errorf("hits=%d misses=%d", hits, misses)
	}
}

func TestCachedConcurrent(t *testing.T) {
	c := NewCached(NewWater(), 4)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if _, err := c.Properties(290+float64((g+i)%10), Atmospheric); err != nil {
					t.Error(err)
					return
				}
			}
		}(g)
	}
	wg.Wait()
}
