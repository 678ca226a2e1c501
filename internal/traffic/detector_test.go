package traffic

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/das-traffic/corridor/internal/config"
	"github.com/das-traffic/corridor/internal/field"
	"github.com/das-traffic/corridor/internal/hough"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// diagonalScene builds a field with one five-cell wide band moving one
// position per time step, and its occupancy mask.
func diagonalScene(t *testing.T) (*field.Field, *field.Mask) {
	t.Helper()

	f := field.NewField(40, 200)
	for ti := 0; ti < 40; ti++ {
		center := 50 + ti
		for pi := center - 2; pi <= center+2; pi++ {
			f.Set(ti, pi, 10)
		}
	}

	mask, threshold := field.Binarize(f, config.DefaultTuning())
	if threshold != 0 {
		t.Fatalf("threshold = %v, want 0 on zero background", threshold)
	}
	return f, mask
}

func TestDetectDiagonalBand(t *testing.T) {
	f, mask := diagonalScene(t)

	d := NewDetector(config.DefaultTuning(), discardLogger())
	candidates := d.Detect(f, mask)
	if len(candidates) == 0 {
		t.Fatal("no candidates detected")
	}

	// The strongest candidate follows the injected band.
	best := candidates[0]
	if deg := best.Line.Angle * 180 / math.Pi; math.Abs(deg+45) > 2 {
		t.Errorf("best candidate angle = %.1f degrees, want -45 +/- 2", deg)
	}
	if len(best.Points) < 35 {
		t.Fatalf("best candidate has %d points, want at least 35", len(best.Points))
	}
	for _, pt := range best.Points {
		want := float64(50 + pt.TimeIndex)
		if math.Abs(pt.Position-want) > 3 {
			t.Errorf("point at step %d sits at %.1f, want %.1f +/- 3", pt.TimeIndex, pt.Position, want)
		}
	}
}

func TestDetectEmptyMask(t *testing.T) {
	f := field.NewField(20, 50)
	mask := field.NewMask(20, 50)

	d := NewDetector(config.DefaultTuning(), discardLogger())
	if candidates := d.Detect(f, mask); candidates != nil {
		t.Errorf("got %d candidates from an empty mask, want none", len(candidates))
	}
}

func TestValidateAngleBounds(t *testing.T) {
	d := NewDetector(config.DefaultTuning(), discardLogger())
	f := field.NewField(20, 50)
	mask := field.NewMask(20, 50)

	testCases := []struct {
		name  string
		angle float64
	}{
		{"near-horizontal", 0.01},
		{"near-vertical", 88 * math.Pi / 180},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := d.validate(f, mask, hough.Line{Angle: tc.angle, Offset: 10}); ok {
				t.Error("line accepted, want angle rejection")
			}
		})
	}
}

func TestValidateMinLength(t *testing.T) {
	d := NewDetector(config.DefaultTuning(), discardLogger())
	f := field.NewField(20, 50)
	mask := field.NewMask(20, 50)

	// A 45 degree line clipping the far corner stays in bounds for only
	// five steps. Occupy those cells so the rejection cannot come from
	// the support check.
	line := hough.Line{Angle: -math.Pi / 4, Offset: 45 * math.Cos(math.Pi/4)}
	for ti := 0; ti < 5; ti++ {
		mask.Set(ti, 45+ti, true)
		f.Set(ti, 45+ti, 5)
	}

	if _, ok := d.validate(f, mask, line); ok {
		t.Error("five-point line accepted, want length rejection")
	}
}

func TestValidateSupport(t *testing.T) {
	d := NewDetector(config.DefaultTuning(), discardLogger())
	f := field.NewField(20, 50)
	mask := field.NewMask(20, 50)

	// A perfectly valid geometry threading through an empty mask has no
	// signal support underneath.
	line := hough.Line{Angle: -math.Pi / 4, Offset: 0}
	if _, ok := d.validate(f, mask, line); ok {
		t.Error("unsupported line accepted")
	}
}
