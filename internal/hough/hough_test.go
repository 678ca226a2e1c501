package hough

import (
	"errors"
	"math"
	"testing"
)

// testGrid is a minimal Grid backed by an explicit cell set.
type testGrid struct {
	t, p  int
	cells map[[2]int]bool
}

func newTestGrid(t, p int) *testGrid {
	return &testGrid{t: t, p: p, cells: make(map[[2]int]bool)}
}

func (g *testGrid) Dims() (t, p int) { return g.t, g.p }
func (g *testGrid) At(t, p int) bool { return g.cells[[2]int{t, p}] }
func (g *testGrid) set(t, p int)     { g.cells[[2]int{t, p}] = true }

func TestNewDegenerateMask(t *testing.T) {
	testCases := []struct {
		name string
		grid *testGrid
	}{
		{"zero dimensions", newTestGrid(0, 0)},
		{"no occupied cells", newTestGrid(10, 10)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.grid); !errors.Is(err, ErrDegenerateMask) {
				t.Errorf("New() error = %v, want ErrDegenerateMask", err)
			}
		})
	}
}

func TestTransformDiagonal(t *testing.T) {
	// The main diagonal t = p lies on the exact -45 degree bin with
	// offset zero; every cell votes into the same accumulator bin.
	g := newTestGrid(20, 20)
	for i := 0; i < 20; i++ {
		g.set(i, i)
	}

	tr, err := New(g)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if got := tr.MaxVotes(); got != 20 {
		t.Fatalf("MaxVotes() = %d, want 20", got)
	}

	peaks := tr.Peaks(PeakParams{MaxPeaks: 1, Threshold: 20, MinDistance: 8, MinAngle: 3})
	if len(peaks) != 1 {
		t.Fatalf("got %d peaks, want 1", len(peaks))
	}

	peak := peaks[0]
	if peak.Votes != 20 {
		t.Errorf("peak votes = %d, want 20", peak.Votes)
	}
	if peak.Offset != 0 {
		t.Errorf("peak offset = %v, want 0", peak.Offset)
	}

	// Neighbouring angle bins collect the full vote count too; any
	// winner within their span identifies the same line.
	if deg := peak.Angle * 180 / math.Pi; math.Abs(deg+45) > 2 {
		t.Errorf("peak angle = %.1f degrees, want -45 +/- 2", deg)
	}
}

func TestPeaksSuppression(t *testing.T) {
	// Two vertical ten-cell columns produce two well separated line
	// families near angle zero.
	g := newTestGrid(10, 40)
	for ti := 0; ti < 10; ti++ {
		g.set(ti, 5)
		g.set(ti, 30)
	}

	tr, err := New(g)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	params := PeakParams{MaxPeaks: 50, Threshold: 10, MinDistance: 8, MinAngle: 3}
	peaks := tr.Peaks(params)
	if len(peaks) < 2 {
		t.Fatalf("got %d peaks, want at least 2", len(peaks))
	}

	// Votes are non-increasing and every peak clears the threshold.
	for i, p := range peaks {
		if p.Votes < params.Threshold {
			t.Errorf("peak %d votes = %d, below threshold %d", i, p.Votes, params.Threshold)
		}
		if i > 0 && p.Votes > peaks[i-1].Votes {
			t.Errorf("peak %d votes %d exceed preceding peak votes %d", i, p.Votes, peaks[i-1].Votes)
		}
	}

	// Both columns are recovered near angle zero.
	for _, wantOffset := range []float64{5, 30} {
		var found bool
		for _, p := range peaks {
			if math.Abs(p.Offset-wantOffset) <= 1 && math.Abs(p.Angle*180/math.Pi) <= 4 {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no peak near offset %v at angle 0", wantOffset)
		}
	}

	// No accepted pair sits inside the suppression neighbourhood.
	for i := 0; i < len(peaks); i++ {
		for j := i + 1; j < len(peaks); j++ {
			dOffset := math.Abs(peaks[i].Offset - peaks[j].Offset)
			dAngle := math.Abs(peaks[i].Angle-peaks[j].Angle) * 180 / math.Pi
			if wrapped := 180 - dAngle; wrapped < dAngle {
				dAngle = wrapped
			}
			if dOffset <= float64(params.MinDistance) && dAngle <= float64(params.MinAngle) {
				t.Errorf("peaks %d and %d are within the suppression neighbourhood", i, j)
			}
		}
	}
}

func TestPeaksMaxPeaksCap(t *testing.T) {
	g := newTestGrid(10, 40)
	for ti := 0; ti < 10; ti++ {
		g.set(ti, 5)
		g.set(ti, 30)
	}

	tr, err := New(g)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	peaks := tr.Peaks(PeakParams{MaxPeaks: 1, Threshold: 1, MinDistance: 8, MinAngle: 3})
	if len(peaks) != 1 {
		t.Errorf("got %d peaks, want 1", len(peaks))
	}
}
