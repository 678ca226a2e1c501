package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/das-traffic/corridor/internal/analysis"
	"github.com/das-traffic/corridor/internal/field"
	"github.com/das-traffic/corridor/internal/recording"
	"github.com/das-traffic/corridor/internal/traffic"
)

// amplitudePercentile drives the automatic color scale upper bound.
// A fixed maximum would let a single hot cell wash out the field.
const amplitudePercentile = 0.90

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("recording container '%s' does not exist: %w", config.DBPath, err)
	}

	store := recording.NewStore(config.DBPath)
	defer store.Close()

	rec, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading recording: %w", err)
	}

	f := field.Reduce(rec.Intensity)
	rows, cols := f.Dims()

	var tracks []*traffic.Track
	if !config.NoTracks {
		if tracks, _, _, err = analysis.LoadLastResult(config.ResultDir); err != nil {
			return fmt.Errorf("loading analysis result: %w", err)
		}
	}

	maxAmplitude := autoMaxAmplitude(f)
	if config.MaxAmplitude != nil {
		maxAmplitude = *config.MaxAmplitude
	}

	logger.Info("rendering field",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", cols),
			slog.Int("height", rows),
			slog.Float64("maxAmplitude", maxAmplitude),
			slog.Int("tracks", len(tracks)),
		))

	renderer := NewFieldRenderer(RenderConfig{
		ColorTheme:    config.Theme,
		MaxAmplitude:  maxAmplitude,
		NoAnnotations: config.NoAnnotations,
	})

	img, err := renderer.Render(f, rec.Timestamps, tracks)
	if err != nil {
		return fmt.Errorf("rendering field: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}

func autoMaxAmplitude(f *field.Field) float64 {
	values := slices.Clone(f.Raw())
	slices.Sort(values)
	return stat.Quantile(amplitudePercentile, stat.Empirical, values, nil)
}
