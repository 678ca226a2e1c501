// Package traffic turns Hough line candidates into accepted vehicle
// tracks and aggregates corridor-level statistics over them.
package traffic

// VehicleType is the binary vehicle class.
type VehicleType string

const (
	VehicleLight VehicleType = "light"
	VehicleHeavy VehicleType = "heavy"
)

// TrackPoint is one sample of a vehicle's path: absolute time in
// fractional Unix seconds and position along the corridor in meters.
type TrackPoint struct {
	Time     float64 `json:"time"`
	Position float64 `json:"position"`
}

// Track is one accepted vehicle passage. The ID is the candidate's
// discovery order in the line search; accepted tracks therefore carry
// stable but not necessarily contiguous IDs. A track is immutable once
// accepted.
type Track struct {
	ID           int          `json:"id"`
	Points       []TrackPoint `json:"points"`
	VehicleType  VehicleType  `json:"vehicle_type"`
	AvgAmplitude float64      `json:"avg_amp"`
	SpeedKMH     float64      `json:"speed_kmh"`
}

// StartTime returns the track's first sample time.
func (t *Track) StartTime() float64 {
	return t.Points[0].Time
}
