package app

import (
	"image/color"
	"math"
)

// ColorTheme selects a predefined color scheme for amplitude mapping.
type ColorTheme string

const (
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow to white
	ClassicTheme   ColorTheme = "classic"   // Blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // Black to white transition

	DefaultColorMapSize = 256
)

// ColorMapper maps field amplitudes onto a pre-computed color gradient.
// Amplitudes at or above the upper bound saturate to the last color.
type ColorMapper struct {
	colorMap    []color.Color
	size        int
	ampPerIndex float64
}

// NewColorMapper builds a mapper for amplitudes in [0, maxAmplitude].
func NewColorMapper(theme ColorTheme, maxAmplitude float64) *ColorMapper {
	return NewColorMapperWithSize(theme, maxAmplitude, DefaultColorMapSize)
}

// NewColorMapperWithSize builds a mapper with an explicit gradient size.
func NewColorMapperWithSize(theme ColorTheme, maxAmplitude float64, size int) *ColorMapper {
	if size <= 0 {
		size = DefaultColorMapSize
	}
	if maxAmplitude <= 0 {
		maxAmplitude = 1
	}

	cm := &ColorMapper{
		colorMap:    make([]color.Color, size),
		size:        size,
		ampPerIndex: maxAmplitude / float64(size-1),
	}

	themeFn := getColorTheme(theme)
	for i := 0; i < size; i++ {
		cm.colorMap[i] = themeFn(float64(i) / float64(size-1))
	}
	return cm
}

// GetColor returns the gradient color for the given amplitude.
func (cm *ColorMapper) GetColor(amplitude float64) color.Color {
	index := int(amplitude / cm.ampPerIndex)
	if index < 0 {
		return cm.colorMap[0]
	}
	if index >= cm.size {
		return cm.colorMap[cm.size-1]
	}
	return cm.colorMap[index]
}

// HSV represents a color in HSV (Hue, Saturation, Value) color space
type HSV struct {
	H float64 // Hue angle in degrees [0-360]
	S float64 // Saturation [0-1]
	V float64 // Value/Brightness [0-1]
}

// RGB converts HSV to RGB color space
func (hsv HSV) RGB() color.Color {
	if hsv.S <= 0.0 {
		v := uint8(hsv.V * 255)
		return color.RGBA{R: v, G: v, B: v, A: 255}
	}

	h := hsv.H
	if h >= 360 {
		h -= 360
	}
	h /= 60

	i := int(h)
	f := h - float64(i)

	v := uint8(hsv.V * 255)
	p := uint8((hsv.V * (1 - hsv.S)) * 255)
	q := uint8((hsv.V * (1 - (hsv.S * f))) * 255)
	t := uint8((hsv.V * (1 - (hsv.S * (1 - f)))) * 255)

	switch i {
	case 0:
		return color.RGBA{R: v, G: t, B: p, A: 255}
	case 1:
		return color.RGBA{R: q, G: v, B: p, A: 255}
	case 2:
		return color.RGBA{R: p, G: v, B: t, A: 255}
	case 3:
		return color.RGBA{R: p, G: q, B: v, A: 255}
	case 4:
		return color.RGBA{R: t, G: p, B: v, A: 255}
	default: // case 5:
		return color.RGBA{R: v, G: p, B: q, A: 255}
	}
}

func getColorTheme(theme ColorTheme) func(float64) color.Color {
	switch theme {
	case ClassicTheme:
		return func(t float64) color.Color {
			return HSV{
				H: 240 - (t * 240),
				S: 0.9 + (t * 0.1),
				V: math.Pow(t, 0.7),
			}.RGB()
		}

	case GrayscaleTheme:
		return func(t float64) color.Color {
			v := uint8(math.Pow(t, 0.7) * 255)
			return color.RGBA{R: v, G: v, B: v, A: 255}
		}

	default: // ThermalTheme
		return func(t float64) color.Color {
			if t < 0.33 {
				return color.RGBA{
					R: uint8((t * 3) * 255),
					A: 255,
				}
			}
			if t < 0.66 {
				return color.RGBA{
					R: 255,
					G: uint8(((t - 0.33) * 3) * 255),
					A: 255,
				}
			}
			return color.RGBA{
				R: 255,
				G: 255,
				B: uint8(((t - 0.66) * 3) * 255),
				A: 255,
			}
		}
	}
}
