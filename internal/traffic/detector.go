package traffic

import (
	"errors"
	"log/slog"
	"math"

	"github.com/das-traffic/corridor/internal/config"
	"github.com/das-traffic/corridor/internal/field"
	"github.com/das-traffic/corridor/internal/hough"
)

// CandidatePoint is one sample of a candidate line: the time step index
// and the (fractional) corridor position the line passes through at that
// step.
type CandidatePoint struct {
	TimeIndex int
	Position  float64
}

// Candidate is a validated line proposal: the accumulator peak it came
// from plus its ordered in-bounds point trace. Candidates are transient;
// they are consumed immediately by classification and speed estimation.
type Candidate struct {
	Line   hough.Line
	Points []CandidatePoint
}

// Detector runs the line search over an occupancy mask and filters the
// raw peaks down to plausible vehicle track candidates. Rejections here
// are expected filtering outcomes, not errors, and are never logged
// individually.
type Detector struct {
	tuning config.Tuning
	logger *slog.Logger
}

// NewDetector creates a detector with the given tuning.
func NewDetector(tuning config.Tuning, logger *slog.Logger) *Detector {
	return &Detector{tuning: tuning, logger: logger}
}

// Detect proposes track candidates from the mask. A degenerate mask (no
// occupied cells) is recovered locally: the search reports nothing and
// the run continues with an empty candidate set. The returned order is
// the search's native peak order and later becomes the track ID space.
func (d *Detector) Detect(f *field.Field, m *field.Mask) []Candidate {
	tr, err := hough.New(m)
	if err != nil {
		if !errors.Is(err, hough.ErrDegenerateMask) {
			d.logger.Warn("line search failed", slog.String("error", err.Error()))
		}
		return nil
	}

	peaks := tr.Peaks(hough.PeakParams{
		MaxPeaks:    d.tuning.MaxPeaks,
		Threshold:   int(math.Ceil(d.tuning.PeakThreshold * float64(tr.MaxVotes()))),
		MinDistance: d.tuning.MinPeakDistance,
		MinAngle:    d.tuning.MinPeakAngle,
	})

	var candidates []Candidate
	for _, line := range peaks {
		points, ok := d.validate(f, m, line)
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{Line: line, Points: points})
	}
	return candidates
}

// validate applies the angle, length and signal-support checks to one
// peak and samples its point trace.
func (d *Detector) validate(f *field.Field, m *field.Mask, line hough.Line) ([]CandidatePoint, bool) {
	// Near-vertical lines are instantaneous cross-channel artifacts,
	// near-horizontal ones static noise bands; neither is vehicle motion.
	deg := math.Abs(line.Angle * 180 / math.Pi)
	if deg <= d.tuning.MinAngleDeg || deg >= d.tuning.MaxAngleDeg {
		return nil, false
	}

	t, p := m.Dims()
	sin, cos := math.Sincos(line.Angle)

	points := make([]CandidatePoint, 0, t)
	for ti := 0; ti < t; ti++ {
		x := (line.Offset - float64(ti)*sin) / cos
		if x >= 0 && x < float64(p) {
			points = append(points, CandidatePoint{TimeIndex: ti, Position: x})
		}
	}
	if len(points) < d.tuning.MinTrackLength {
		return nil, false
	}

	// Spurious peaks can thread through mask holes with no real signal
	// underneath; require support on the leading points.
	var support int
	for _, pt := range points[:min(d.tuning.SupportPoints, len(points))] {
		pi := int(pt.Position)
		if m.At(pt.TimeIndex, pi) && f.At(pt.TimeIndex, pi) > 0 {
			support++
		}
	}
	if support < d.tuning.MinSupport {
		return nil, false
	}

	return points, true
}
