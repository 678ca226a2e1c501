// Package analysis wires the detection stages into the engine entry
// points exposed to collaborators: running one batch analysis over a
// recording and reading back the persisted result.
package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/das-traffic/corridor/internal/config"
	"github.com/das-traffic/corridor/internal/field"
	"github.com/das-traffic/corridor/internal/recording"
	"github.com/das-traffic/corridor/internal/traffic"
)

// RunResult reports the outcome of one analysis run. Err is set for any
// failed run (missing input, storage failure, persistence failure); an
// empty accepted track set is a success, not a failure.
type RunResult struct {
	Success        bool
	TracksCount    int
	Statistics     *traffic.Statistics
	ProcessingTime float64 // seconds
	Err            error
}

// Engine is the batch detection-classification-aggregation pipeline.
// An engine holds no per-run state; one instance may serve concurrent
// runs as long as each run gets its own output location.
type Engine struct {
	tuning config.Tuning
	logger *slog.Logger
}

// NewEngine creates an engine with the given tuning.
func NewEngine(tuning config.Tuning, logger *slog.Logger) *Engine {
	return &Engine{tuning: tuning, logger: logger}
}

// Run processes one complete recording end to end and persists the
// result into outputDir. Each run owns its recording, field and mask
// exclusively; the source container is opened read-only so concurrent
// runs may share it. The output location is last-writer-wins.
func (e *Engine) Run(ctx context.Context, recordingPath, outputDir string) *RunResult {
	start := time.Now()
	fail := func(err error) *RunResult {
		return &RunResult{Err: err, ProcessingTime: time.Since(start).Seconds()}
	}

	store := recording.NewStore(recordingPath)
	defer store.Close()

	rec, err := store.Load(ctx)
	if err != nil {
		return fail(err)
	}

	t, p, f := rec.Intensity.Dims()
	e.logger.Info("recording loaded",
		slog.Int("timeSteps", t),
		slog.Int("positions", p),
		slog.Int("channels", f),
		slog.String("size", humanize.Bytes(uint64(len(rec.Intensity.Raw())*4))))

	reduced := field.Reduce(rec.Intensity)
	mask, threshold := field.Binarize(reduced, e.tuning)
	e.logger.Info("field binarized",
		slog.Float64("threshold", threshold),
		slog.String("occupiedCells", humanize.Comma(int64(mask.Count()))))

	detector := traffic.NewDetector(e.tuning, e.logger)
	candidates := detector.Detect(reduced, mask)

	var tracks []*traffic.Track
	for i, cand := range candidates {
		if tr, ok := traffic.Realize(i, cand, reduced, rec.Timestamps, e.tuning); ok {
			tracks = append(tracks, tr)
		}
	}

	stats := traffic.Aggregate(tracks, e.tuning, time.Since(start))
	if err = Persist(outputDir, tracks, stats, newMetadata(time.Now())); err != nil {
		return fail(err)
	}

	e.logger.Info("analysis complete",
		slog.Group("stats",
			slog.Int("candidates", len(candidates)),
			slog.Int("tracks", len(tracks)),
			slog.Int("light", stats.VehicleTypes.Light),
			slog.Int("heavy", stats.VehicleTypes.Heavy),
			slog.Float64("avgSpeedKMH", stats.AvgSpeedKMH),
			slog.String("peakHour", stats.PeakHour),
		))

	return &RunResult{
		Success:        true,
		TracksCount:    len(tracks),
		Statistics:     stats,
		ProcessingTime: time.Since(start).Seconds(),
	}
}
