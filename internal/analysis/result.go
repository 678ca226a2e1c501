package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/das-traffic/corridor/internal/traffic"
)

const (
	resultFile = "tracks.json"
	reportFile = "report.txt"

	algorithmName = "hough-adaptive-v1"
)

// Metadata identifies one analysis run inside the persisted artifact.
type Metadata struct {
	AnalysisTime string `json:"analysis_time"`
	Algorithm    string `json:"algorithm"`
	RunID        string `json:"run_id"`
}

// Result is the persisted unit: the full track list, the statistics
// record and the run metadata. The artifact for an output location is
// overwritten by every run; there is no history.
type Result struct {
	TraceList  []*traffic.Track    `json:"trace_list"`
	Statistics *traffic.Statistics `json:"statistics"`
	Metadata   Metadata            `json:"metadata"`
}

func newMetadata(now time.Time) Metadata {
	return Metadata{
		AnalysisTime: now.Format(time.RFC3339),
		Algorithm:    algorithmName,
		RunID:        uuid.NewString(),
	}
}

// Persist writes the structured result and the plain-text report into
// outputDir, replacing any prior artifacts.
func Persist(outputDir string, tracks []*traffic.Track, stats *traffic.Statistics, meta Metadata) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if tracks == nil {
		tracks = []*traffic.Track{}
	}
	result := Result{TraceList: tracks, Statistics: stats, Metadata: meta}

	data, err := json.MarshalIndent(&result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if err = os.WriteFile(filepath.Join(outputDir, resultFile), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", resultFile, err)
	}

	if err = os.WriteFile(filepath.Join(outputDir, reportFile), []byte(formatReport(stats)), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", reportFile, err)
	}
	return nil
}

// formatReport renders the fixed-layout plain-text summary.
func formatReport(stats *traffic.Statistics) string {
	var b strings.Builder
	fmt.Fprintln(&b, "TRAFFIC ANALYSIS REPORT")
	fmt.Fprintln(&b, "==============================")
	fmt.Fprintf(&b, "Total vehicles: %d\n", stats.TotalVehicles)
	fmt.Fprintf(&b, "Light: %d\n", stats.VehicleTypes.Light)
	fmt.Fprintf(&b, "Heavy: %d\n", stats.VehicleTypes.Heavy)
	fmt.Fprintf(&b, "Average speed: %.1f km/h\n", stats.AvgSpeedKMH)
	fmt.Fprintf(&b, "Congestion: %.1f%%\n", stats.CongestionPercent)
	fmt.Fprintf(&b, "Peak hour: %s\n", stats.PeakHour)
	fmt.Fprintf(&b, "Intensity: %.1f vehicles/hour\n", stats.TrafficIntensity)
	fmt.Fprintln(&b, "==============================")
	return b.String()
}

// LoadLastResult reads the most recent persisted result and returns the
// track list together with the earliest and latest point time across all
// tracks. An empty track list yields the (0, 1) placeholder range so
// downstream consumers always see a non-degenerate span.
func LoadLastResult(outputDir string) ([]*traffic.Track, float64, float64, error) {
	result, err := readResult(outputDir)
	if err != nil {
		return nil, 0, 1, err
	}
	if len(result.TraceList) == 0 {
		return nil, 0, 1, nil
	}

	earliest, latest := math.Inf(1), math.Inf(-1)
	for _, tr := range result.TraceList {
		for _, pt := range tr.Points {
			earliest = math.Min(earliest, pt.Time)
			latest = math.Max(latest, pt.Time)
		}
	}
	return result.TraceList, earliest, latest, nil
}

// LoadStatistics reads only the statistics record of the most recent
// persisted result.
func LoadStatistics(outputDir string) (*traffic.Statistics, error) {
	result, err := readResult(outputDir)
	if err != nil {
		return nil, err
	}
	return result.Statistics, nil
}

func readResult(outputDir string) (*Result, error) {
	data, err := os.ReadFile(filepath.Join(outputDir, resultFile))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", resultFile, err)
	}

	var result Result
	if err = json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", resultFile, err)
	}
	return &result, nil
}
