package traffic

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/das-traffic/corridor/internal/config"
)

// ClassCounts holds the per-class vehicle totals.
type ClassCounts struct {
	Light int `json:"light"`
	Heavy int `json:"heavy"`
}

// Statistics is the corridor-level summary over one run's accepted track
// set. It is recomputed wholly from the track set each run, never
// updated incrementally. Field names match the persisted artifact.
type Statistics struct {
	TotalVehicles      int         `json:"total_vehicles"`
	AvgSpeedKMH        float64     `json:"avg_speed_kmh"`
	CongestionVehicles int         `json:"congestion_vehicles"`
	CongestionPercent  float64     `json:"congestion_percent"`
	PeakHour           string      `json:"peak_hour"`
	TrafficIntensity   float64     `json:"traffic_intensity"`
	VehicleTypes       ClassCounts `json:"vehicle_types"`
	ProcessingTime     float64     `json:"processing_time"`
}

// EmptyStatistics returns the fixed zero-valued record. No traffic is a
// valid terminal state, not a failure.
func EmptyStatistics() *Statistics {
	return &Statistics{PeakHour: "00:00-01:00"}
}

// Aggregate computes the summary statistics for one run. An empty track
// set yields EmptyStatistics verbatim. Among equally frequent start
// hours the smallest hour index wins.
func Aggregate(tracks []*Track, tuning config.Tuning, elapsed time.Duration) *Statistics {
	if len(tracks) == 0 {
		return EmptyStatistics()
	}

	speeds := make([]float64, len(tracks))
	var counts ClassCounts
	var congestion int
	for i, tr := range tracks {
		speeds[i] = tr.SpeedKMH
		if tr.SpeedKMH < tuning.CongestionSpeedKMH {
			congestion++
		}
		switch tr.VehicleType {
		case VehicleHeavy:
			counts.Heavy++
		default:
			counts.Light++
		}
	}

	earliest, latest := tracks[0].StartTime(), tracks[0].StartTime()
	var hourly [24]int
	for _, tr := range tracks {
		start := tr.StartTime()
		earliest = math.Min(earliest, start)
		latest = math.Max(latest, start)
		hourly[startHour(start)]++
	}

	peakHour := 0
	for h, n := range hourly {
		if n > hourly[peakHour] {
			peakHour = h
		}
	}

	durationHours := (latest - earliest) / 3600
	var intensity float64
	if durationHours > 0 {
		intensity = round1(float64(len(tracks)) / durationHours)
	}

	return &Statistics{
		TotalVehicles:      len(tracks),
		AvgSpeedKMH:        round1(stat.Mean(speeds, nil)),
		CongestionVehicles: congestion,
		CongestionPercent:  round1(float64(congestion) / float64(len(tracks)) * 100),
		PeakHour:           fmt.Sprintf("%02d:00-%02d:00", peakHour, peakHour+1),
		TrafficIntensity:   intensity,
		VehicleTypes:       counts,
		ProcessingTime:     round1(elapsed.Seconds()),
	}
}

// startHour maps a fractional Unix timestamp to its local hour of day.
func startHour(ts float64) int {
	return time.Unix(int64(ts), 0).Hour()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
