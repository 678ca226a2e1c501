package analysis

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/das-traffic/corridor/internal/traffic"
)

func sampleTracks() []*traffic.Track {
	return []*traffic.Track{
		{
			ID: 0,
			Points: []traffic.TrackPoint{
				{Time: 1700000000, Position: 10},
				{Time: 1700000010, Position: 110},
			},
			VehicleType:  traffic.VehicleLight,
			AvgAmplitude: 1.5,
			SpeedKMH:     36,
		},
		{
			ID: 2,
			Points: []traffic.TrackPoint{
				{Time: 1700000005, Position: 200},
				{Time: 1700000020, Position: 320},
			},
			VehicleType:  traffic.VehicleHeavy,
			AvgAmplitude: 28,
			SpeedKMH:     28.8,
		},
	}
}

func TestPersistRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tracks := sampleTracks()
	stats := &traffic.Statistics{
		TotalVehicles: 2,
		AvgSpeedKMH:   32.4,
		PeakHour:      "08:00-09:00",
		VehicleTypes:  traffic.ClassCounts{Light: 1, Heavy: 1},
	}

	meta := newMetadata(time.Now())
	require.NoError(t, Persist(dir, tracks, stats, meta))

	got, earliest, latest, err := LoadLastResult(dir)
	require.NoError(t, err)
	require.Equal(t, tracks, got)
	require.Equal(t, 1700000000.0, earliest)
	require.Equal(t, 1700000020.0, latest)

	gotStats, err := LoadStatistics(dir)
	require.NoError(t, err)
	require.Equal(t, stats, gotStats)
}

func TestPersistArtifactShape(t *testing.T) {
	dir := t.TempDir()
	meta := newMetadata(time.Now())
	require.NoError(t, Persist(dir, sampleTracks(), traffic.EmptyStatistics(), meta))

	data, err := os.ReadFile(filepath.Join(dir, resultFile))
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Contains(t, raw, "trace_list")
	require.Contains(t, raw, "statistics")
	require.Contains(t, raw, "metadata")

	var result Result
	require.NoError(t, json.Unmarshal(data, &result))
	require.Equal(t, algorithmName, result.Metadata.Algorithm)

	_, err = uuid.Parse(result.Metadata.RunID)
	require.NoError(t, err)

	_, err = time.Parse(time.RFC3339, result.Metadata.AnalysisTime)
	require.NoError(t, err)

	report, err := os.ReadFile(filepath.Join(dir, reportFile))
	require.NoError(t, err)
	require.Contains(t, string(report), "TRAFFIC ANALYSIS REPORT")
	require.Contains(t, string(report), "Total vehicles: 0")
	require.Contains(t, string(report), "Peak hour: 00:00-01:00")
}

func TestPersistEmptyTrackList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Persist(dir, nil, traffic.EmptyStatistics(), newMetadata(time.Now())))

	data, err := os.ReadFile(filepath.Join(dir, resultFile))
	require.NoError(t, err)

	// An empty run serializes an empty array, never null.
	require.Contains(t, string(data), `"trace_list": []`)

	tracks, earliest, latest, err := LoadLastResult(dir)
	require.NoError(t, err)
	require.Empty(t, tracks)
	require.Equal(t, 0.0, earliest)
	require.Equal(t, 1.0, latest)
}

func TestLoadLastResultMissing(t *testing.T) {
	tracks, earliest, latest, err := LoadLastResult(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	require.Nil(t, tracks)
	require.Equal(t, 0.0, earliest)
	require.Equal(t, 1.0, latest)
}

func TestPersistOverwrites(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Persist(dir, sampleTracks(), traffic.EmptyStatistics(), newMetadata(time.Now())))
	require.NoError(t, Persist(dir, nil, traffic.EmptyStatistics(), newMetadata(time.Now())))

	tracks, _, _, err := LoadLastResult(dir)
	require.NoError(t, err)
	require.Empty(t, tracks)
}
