package traffic

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/das-traffic/corridor/internal/config"
	"github.com/das-traffic/corridor/internal/field"
)

// Classify samples field amplitude along the candidate's trace and
// decides the vehicle class. At most ClassifySamples evenly strided
// points are read. Heavy vehicles are the rarer, higher-signal minority,
// so the rule is biased toward light: only a clearly elevated mean or
// peak amplitude classifies as heavy. Returns the class and the mean
// sampled amplitude; with no valid samples the result is light with
// amplitude zero.
func Classify(f *field.Field, points []CandidatePoint, tuning config.Tuning) (VehicleType, float64) {
	if len(points) == 0 {
		return VehicleLight, 0
	}

	t, p := f.Dims()
	stride := max(1, len(points)/tuning.ClassifySamples)

	var amps []float64
	for i := 0; i < len(points); i += stride {
		ti, pi := points[i].TimeIndex, int(points[i].Position)
		if ti >= 0 && ti < t && pi >= 0 && pi < p {
			amps = append(amps, f.At(ti, pi))
		}
	}
	if len(amps) == 0 {
		return VehicleLight, 0
	}

	mean := stat.Mean(amps, nil)
	peak := amps[0]
	for _, a := range amps[1:] {
		peak = math.Max(peak, a)
	}

	if mean > tuning.HeavyMeanAmplitude || peak > tuning.HeavyPeakAmplitude {
		return VehicleHeavy, mean
	}
	return VehicleLight, mean
}

// Speed estimates the track speed in km/h from its first and last point.
// Tracks with fewer than two points or a non-positive time span get
// speed zero, which the acceptance band then rejects.
func Speed(points []TrackPoint) float64 {
	if len(points) < 2 {
		return 0
	}

	first, last := points[0], points[len(points)-1]
	dt := last.Time - first.Time
	if dt <= 0 {
		return 0
	}
	return math.Abs((last.Position - first.Position) / dt * 3.6)
}

// Realize maps a candidate into a full track: time indices become
// absolute timestamps (clamped to the last known step), the class and
// speed are computed, and the speed acceptance band is applied. A
// rejected candidate is an expected outcome, not an error; it returns
// (nil, false) silently.
func Realize(id int, cand Candidate, f *field.Field, timestamps []float64, tuning config.Tuning) (*Track, bool) {
	points := make([]TrackPoint, len(cand.Points))
	for i, pt := range cand.Points {
		ts := timestamps[len(timestamps)-1]
		if pt.TimeIndex < len(timestamps) {
			ts = timestamps[pt.TimeIndex]
		}
		points[i] = TrackPoint{Time: ts, Position: pt.Position}
	}

	vehicleType, avgAmp := Classify(f, cand.Points, tuning)

	speed := Speed(points)
	if speed < tuning.MinSpeedKMH || speed > tuning.MaxSpeedKMH {
		return nil, false
	}

	return &Track{
		ID:           id,
		Points:       points,
		VehicleType:  vehicleType,
		AvgAmplitude: avgAmp,
		SpeedKMH:     speed,
	}, true
}
