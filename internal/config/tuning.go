package config

import "fmt"

// Tuning holds the empirically tuned detection thresholds. The defaults
// reproduce the reference sensor deployment; individual values can be
// overridden per deployment from the yaml configuration without code
// changes.
type Tuning struct {
	// Mask builder
	LowerPercentile float64 `yaml:"lowerPercentile"` // lower quantile of the field intensity distribution
	UpperPercentile float64 `yaml:"upperPercentile"` // upper quantile of the field intensity distribution
	PercentileBlend float64 `yaml:"percentileBlend"` // threshold position between the two quantiles

	// Line detector
	MaxPeaks        int     `yaml:"maxPeaks"`        // maximum Hough peaks to extract
	PeakThreshold   float64 `yaml:"peakThreshold"`   // relative accumulator threshold (fraction of max)
	MinPeakDistance int     `yaml:"minPeakDistance"` // minimum inter-peak distance in offset bins
	MinPeakAngle    int     `yaml:"minPeakAngle"`    // minimum inter-peak distance in angle bins
	MinAngleDeg     float64 `yaml:"minAngleDeg"`     // reject lines closer than this to the time axis
	MaxAngleDeg     float64 `yaml:"maxAngleDeg"`     // reject lines closer than this to the position axis
	MinTrackLength  int     `yaml:"minTrackLength"`  // minimum in-bounds points per candidate
	SupportPoints   int     `yaml:"supportPoints"`   // leading points checked against the mask
	MinSupport      int     `yaml:"minSupport"`      // occupied cells required among SupportPoints

	// Classifier
	HeavyMeanAmplitude float64 `yaml:"heavyMeanAmplitude"` // mean amplitude above which a track is heavy
	HeavyPeakAmplitude float64 `yaml:"heavyPeakAmplitude"` // peak amplitude above which a track is heavy
	ClassifySamples    int     `yaml:"classifySamples"`    // amplitude samples taken along a track

	// Speed acceptance band and congestion
	MinSpeedKMH        float64 `yaml:"minSpeedKMH"`
	MaxSpeedKMH        float64 `yaml:"maxSpeedKMH"`
	CongestionSpeedKMH float64 `yaml:"congestionSpeedKMH"`
}

// DefaultTuning returns the reference deployment thresholds.
func DefaultTuning() Tuning {
	return Tuning{
		LowerPercentile: 0.70,
		UpperPercentile: 0.85,
		PercentileBlend: 0.2,

		MaxPeaks:        400,
		PeakThreshold:   0.1,
		MinPeakDistance: 8,
		MinPeakAngle:    3,
		MinAngleDeg:     3,
		MaxAngleDeg:     87,
		MinTrackLength:  8,
		SupportPoints:   10,
		MinSupport:      3,

		HeavyMeanAmplitude: 2.5,
		HeavyPeakAmplitude: 25,
		ClassifySamples:    20,

		MinSpeedKMH:        5,
		MaxSpeedKMH:        120,
		CongestionSpeedKMH: 25,
	}
}

// Validate checks the tuning values for internal consistency.
func (t Tuning) Validate() error {
	if t.LowerPercentile < 0 || t.UpperPercentile > 1 || t.LowerPercentile > t.UpperPercentile {
		return fmt.Errorf("invalid percentile range: %f..%f", t.LowerPercentile, t.UpperPercentile)
	}
	if t.PercentileBlend < 0 || t.PercentileBlend > 1 {
		return fmt.Errorf("invalid percentile blend: %f", t.PercentileBlend)
	}
	if t.MaxPeaks <= 0 {
		return fmt.Errorf("invalid peak count: %d", t.MaxPeaks)
	}
	if t.PeakThreshold <= 0 || t.PeakThreshold >= 1 {
		return fmt.Errorf("invalid peak threshold: %f", t.PeakThreshold)
	}
	if t.MinAngleDeg < 0 || t.MaxAngleDeg > 90 || t.MinAngleDeg >= t.MaxAngleDeg {
		return fmt.Errorf("invalid angle bounds: %f..%f", t.MinAngleDeg, t.MaxAngleDeg)
	}
	if t.MinTrackLength < 2 {
		return fmt.Errorf("invalid minimum track length: %d", t.MinTrackLength)
	}
	if t.MinSupport > t.SupportPoints {
		return fmt.Errorf("minimum support %d exceeds checked points %d", t.MinSupport, t.SupportPoints)
	}
	if t.MinSpeedKMH < 0 || t.MinSpeedKMH >= t.MaxSpeedKMH {
		return fmt.Errorf("invalid speed band: %f..%f km/h", t.MinSpeedKMH, t.MaxSpeedKMH)
	}
	return nil
}
