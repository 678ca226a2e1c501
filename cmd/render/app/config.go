package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"
)

type ImageFormat string

type Config struct {
	DBPath        string
	ResultDir     string
	OutputFile    string
	Format        ImageFormat
	Theme         ColorTheme
	MaxAmplitude  *float64
	NoAnnotations bool
	NoTracks      bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

var validThemes = map[ColorTheme]struct{}{
	ThermalTheme:   {},
	ClassicTheme:   {},
	GrayscaleTheme: {},
}

func NewConfig() *Config {
	return &Config{
		Format: ImagePNG,
		Theme:  ThermalTheme,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var imageFormat, theme string
	var maxAmplitude float64
	flag.StringVar(&c.DBPath, "db", "", "Path to the recording container")
	flag.StringVar(&c.ResultDir, "r", "", "Path to the analysis result directory (optional, overlays tracks)")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	flag.StringVar(&theme, "theme", string(ThermalTheme), "Color theme. [thermal, classic, grayscale]")
	flag.Float64Var(&maxAmplitude, "max-amp", 0, "Define a manual maximum amplitude (format nn.n)")
	flag.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable annotations such as time and position scales")
	flag.Parse()

	imageFormat = strings.ToLower(imageFormat)
	theme = strings.ToLower(theme)

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "max-amp" {
			c.MaxAmplitude = &maxAmplitude
		}
	})

	var err error
	if c.DBPath == "" {
		err = errors.New("recording container path is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if _, ok := validThemes[ColorTheme(theme)]; !ok {
		err = fmt.Errorf("invalid color theme: %s", theme)
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	c.NoTracks = c.ResultDir == ""
	c.Format = ImageFormat(imageFormat)
	c.Theme = ColorTheme(theme)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
