// Command gen-recording writes a synthetic recording container with a
// configurable set of vehicle passes, for exercising the analysis
// pipeline without access to fibre hardware.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/das-traffic/corridor/internal/recording"
)

type vehicle struct {
	speedKMH  float64
	amplitude float64
	startCell float64
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	var (
		output   string
		rows     int
		cols     int
		channels int
		timeStep float64
		passes   string
		noise    float64
		seed     int64
	)
	flag.StringVar(&output, "o", "", "Path to the output container")
	flag.IntVar(&rows, "rows", 100, "Number of time steps")
	flag.IntVar(&cols, "cols", 600, "Number of corridor positions")
	flag.IntVar(&channels, "channels", recording.Channels, "Number of frequency channels")
	flag.Float64Var(&timeStep, "dt", recording.TimeStep, "Seconds per time step")
	flag.StringVar(&passes, "vehicles", "60:1:50,90:20:300", "Vehicle passes as speedKMH:amplitude:startCell, comma separated")
	flag.Float64Var(&noise, "noise", 0, "Uniform noise amplitude added to every cell")
	flag.Int64Var(&seed, "seed", 1, "Noise random seed")
	flag.Parse()

	if output == "" {
		logger.Error("output path is required")
		flag.Usage()
		os.Exit(1)
	}

	vehicles, err := parseVehicles(passes)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	if err = generate(output, rows, cols, channels, timeStep, vehicles, noise, seed); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	logger.Info("recording written",
		slog.String("path", output),
		slog.Int("rows", rows),
		slog.Int("cols", cols),
		slog.Int("vehicles", len(vehicles)))
}

func parseVehicles(s string) ([]vehicle, error) {
	var vehicles []vehicle
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("invalid vehicle pass %q, want speedKMH:amplitude:startCell", part)
		}

		var v vehicle
		var err error
		if v.speedKMH, err = strconv.ParseFloat(fields[0], 64); err != nil {
			return nil, fmt.Errorf("invalid speed in %q: %w", part, err)
		}
		if v.amplitude, err = strconv.ParseFloat(fields[1], 64); err != nil {
			return nil, fmt.Errorf("invalid amplitude in %q: %w", part, err)
		}
		if v.startCell, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return nil, fmt.Errorf("invalid start cell in %q: %w", part, err)
		}
		vehicles = append(vehicles, v)
	}

	if len(vehicles) == 0 {
		return nil, fmt.Errorf("no vehicles specified")
	}
	return vehicles, nil
}

func generate(output string, rows, cols, channels int, timeStep float64, vehicles []vehicle, noise float64, seed int64) (err error) {
	tensor := recording.NewTensor(rows, cols, channels)

	if noise > 0 {
		rng := rand.New(rand.NewSource(seed))
		for t := 0; t < rows; t++ {
			for p := 0; p < cols; p++ {
				tensor.Set(t, p, 0, float32(rng.Float64()*noise))
			}
		}
	}

	for _, v := range vehicles {
		// Cells travelled per time step at the requested speed, with the
		// one metre cell spacing of the reference interrogator.
		slope := v.speedKMH / 3.6 * timeStep

		for t := 0; t < rows; t++ {
			center := v.startCell + slope*float64(t)
			for p := int(math.Floor(center)) - 2; p <= int(math.Floor(center))+2; p++ {
				if p < 0 || p >= cols {
					continue
				}
				tensor.Set(t, p, 0, float32(v.amplitude))
			}
		}
	}

	timestamps := make([]float64, rows)
	start := float64(time.Now().Unix())
	for t := range timestamps {
		timestamps[t] = start + float64(t)*timeStep
	}

	store := recording.NewStore(output)
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	ctx := context.Background()
	if err = store.PutTensor(ctx, tensor); err != nil {
		return fmt.Errorf("writing intensity tensor: %w", err)
	}
	if err = store.PutTimestamps(ctx, timestamps); err != nil {
		return fmt.Errorf("writing timestamps: %w", err)
	}
	return nil
}
