package signal

import (
	"sync"
	"testing"
)

func TestNoiseCache_BedLengthAndReuse(t *testing.T) {
	c := NewNoiseCache()

	a, err := c.Bed(Pink, 48000)
	if err != nil {
		t.Fatalf("Bed() error = %v", err)
	}
	if len(a) != 96000 {
		t.Fatalf("len = %d, want 96000", len(a))
	}

	b, err := c.Bed(Pink, 48000)
	if err != nil {
		t.Fatalf("Bed() error = %v", err)
	}
	if &a[0] != &b[0] {
		t.Fatal("second Bed call should return the cached slice")
	}

	w, err := c.Bed(White, 48000)
	if err != nil {
		t.Fatalf("Bed() error = %v", err)
	}
	if &w[0] == &a[0] {
		t.Fatal("colors must not share a bed")
	}

	if _, err := c.Bed(Pink, 44100); err != nil {
		t.Fatalf("Bed() error = %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
}

func TestNoiseCache_Deterministic(t *testing.T) {
	a, _ := NewNoiseCache().Bed(Brown, 8000)
	b, _ := NewNoiseCache().Bed(Brown, 8000)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("beds differ at %d", i)
		}
	}
}

func TestNoiseCache_ConcurrentFirstAccess(t *testing.T) {
	c := NewNoiseCache()

	const workers = 16
	beds := make([][]float64, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bed, err := c.Bed(White, 16000)
			if err != nil {
				t.Errorf("Bed() error = %v", err)
				return
			}
			beds[i] = bed
		}()
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		for j := range beds[0] {
			if beds[i][j] != beds[0][j] {
				t.Fatalf("worker %d sample %d differs", i, j)
			}
		}
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

func TestNoiseCache_InvalidColor(t *testing.T) {
	if _, err := NewNoiseCache().Bed(Color(5), 48000); err == nil {
		t.Fatal("expected error for invalid color")
	}
}
