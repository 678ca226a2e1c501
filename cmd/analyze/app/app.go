package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/das-traffic/corridor/internal/analysis"
)

// Run executes a single analysis over the configured recording and
// persists the result into the output directory.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	engine := analysis.NewEngine(config.Tuning, logger)

	res := engine.Run(ctx, config.Recording.Path, config.Output.Directory)
	if res.Err != nil {
		return fmt.Errorf("analysis failed: %w", res.Err)
	}

	logger.Info("analysis complete",
		slog.Int("tracks", res.TracksCount),
		slog.Float64("processing_time_sec", res.ProcessingTime),
		slog.String("output", config.Output.Directory))

	return nil
}
