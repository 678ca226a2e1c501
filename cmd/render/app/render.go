package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sort"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/das-traffic/corridor/internal/field"
	"github.com/das-traffic/corridor/internal/traffic"
)

const (
	dpi            = 120.0
	fontSize       = 12.0
	tickMarkLength = 5
	pixelsPerLabel = 150.0

	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 80
	defaultBottomBorder = 40
	defaultRightBorder  = 40
)

var (
	lightColor = color.RGBA{B: 255, A: 255}
	heavyColor = color.RGBA{R: 255, A: 255}
)

// BorderConfig defines the sizes of white space around the field area
type BorderConfig struct {
	Top    int // Space for position scale
	Left   int // Space for time scale
	Bottom int // Space for information bar
	Right  int // Right padding
}

// RenderConfig holds configuration options for field visualization
type RenderConfig struct {
	ColorTheme    ColorTheme
	MaxAmplitude  float64 // Amplitude mapped to the hottest color
	NoAnnotations bool
	BorderConfig  BorderConfig
}

// FieldRenderer draws a reduced intensity field as a heatmap with
// detected vehicle tracks overlaid as polylines.
type FieldRenderer struct {
	colorMap *ColorMapper
	config   RenderConfig
}

// NewFieldRenderer creates a renderer with the given configuration.
func NewFieldRenderer(config RenderConfig) *FieldRenderer {
	if config.BorderConfig.Top == 0 {
		config.BorderConfig.Top = defaultTopBorder
	}
	if config.BorderConfig.Left == 0 {
		config.BorderConfig.Left = defaultLeftBorder
	}
	if config.BorderConfig.Bottom == 0 {
		config.BorderConfig.Bottom = defaultBottomBorder
	}
	if config.BorderConfig.Right == 0 {
		config.BorderConfig.Right = defaultRightBorder
	}

	return &FieldRenderer{
		colorMap: NewColorMapper(config.ColorTheme, config.MaxAmplitude),
		config:   config,
	}
}

// Render creates an image of the field with track overlays and scales.
// Rows are time steps, columns are corridor positions, mapped 1:1 to
// pixels inside the border area.
func (r *FieldRenderer) Render(f *field.Field, timestamps []float64, tracks []*traffic.Track) (*image.RGBA, error) {
	rows, cols := f.Dims()

	fullWidth := cols + r.config.BorderConfig.Left + r.config.BorderConfig.Right
	fullHeight := rows + r.config.BorderConfig.Top + r.config.BorderConfig.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	area := image.Rect(
		r.config.BorderConfig.Left,
		r.config.BorderConfig.Top,
		r.config.BorderConfig.Left+cols,
		r.config.BorderConfig.Top+rows,
	)

	if !r.config.NoAnnotations {
		ann, err := newAnnotator(annotatorConfig{
			FontSize: fontSize,
			Borders:  r.config.BorderConfig,
		})
		if err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
		defer ann.Close()

		if err = ann.annotate(img, f, timestamps); err != nil {
			return nil, fmt.Errorf("drawing annotations: %w", err)
		}
	}

	r.renderField(img, area, f)
	r.renderTracks(img, area, timestamps, tracks)

	return img, nil
}

func (r *FieldRenderer) renderField(img *image.RGBA, area image.Rectangle, f *field.Field) {
	rows, cols := f.Dims()
	for t := 0; t < rows; t++ {
		imgY := area.Min.Y + t
		for p := 0; p < cols; p++ {
			img.Set(area.Min.X+p, imgY, r.colorMap.GetColor(f.At(t, p)))
		}
	}
}

func (r *FieldRenderer) renderTracks(img *image.RGBA, area image.Rectangle, timestamps []float64, tracks []*traffic.Track) {
	for _, tr := range tracks {
		c := lightColor
		if tr.VehicleType == traffic.VehicleHeavy {
			c = heavyColor
		}

		for i := 1; i < len(tr.Points); i++ {
			x0 := area.Min.X + int(tr.Points[i-1].Position)
			y0 := area.Min.Y + timeRow(timestamps, tr.Points[i-1].Time)
			x1 := area.Min.X + int(tr.Points[i].Position)
			y1 := area.Min.Y + timeRow(timestamps, tr.Points[i].Time)
			drawLine(img, area, x0, y0, x1, y1, c)
		}
	}
}

// timeRow maps an absolute timestamp back onto its recording row.
// Timestamps are non-decreasing, so the nearest row is found by binary
// search instead of a scan over the whole recording.
func timeRow(timestamps []float64, ts float64) int {
	if len(timestamps) == 0 {
		return 0
	}

	i := sort.SearchFloat64s(timestamps, ts)
	if i == len(timestamps) {
		return i - 1
	}
	if i > 0 && ts-timestamps[i-1] <= timestamps[i]-ts {
		return i - 1
	}
	return i
}

// drawLine rasterizes a segment clipped to the field area.
func drawLine(img *image.RGBA, area image.Rectangle, x0, y0, x1, y1 int, c color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if image.Pt(x0, y0).In(area) {
			img.Set(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Internal annotator implementation

type annotatorConfig struct {
	FontSize float64
	Borders  BorderConfig
}

type annotator struct {
	context  *freetype.Context
	config   annotatorConfig
	fontFace font.Face
}

func newAnnotator(config annotatorConfig) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, f *field.Field, timestamps []float64) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	if err := a.drawPositionScale(img, f); err != nil {
		return fmt.Errorf("drawing position scale: %w", err)
	}
	if err := a.drawTimeScale(img, timestamps); err != nil {
		return fmt.Errorf("drawing time scale: %w", err)
	}
	if err := a.drawInfoBar(img, f, timestamps); err != nil {
		return fmt.Errorf("drawing info bar: %w", err)
	}
	return nil
}

func (a *annotator) drawPositionScale(img *image.RGBA, f *field.Field) error {
	// One metre cell spacing, so the position index is the metre mark.
	_, cols := f.Dims()
	span := float64(cols - 1)
	meterStep := niceStep(span, float64(cols)/pixelsPerLabel)

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := a.config.Borders.Top - fontHeight/2

	for m := 0.0; m <= span; m += meterStep {
		x := a.config.Borders.Left + int(m)

		for y := a.config.Borders.Top - tickMarkLength; y < a.config.Borders.Top; y++ {
			img.Set(x, y, color.Black)
		}

		label := fmt.Sprintf("%.0fm", m)
		width := font.MeasureString(a.fontFace, label)
		pt := freetype.Pt(x-(width.Round()/2), textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing position label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawTimeScale(img *image.RGBA, timestamps []float64) error {
	if len(timestamps) < 2 {
		return nil
	}

	duration := timestamps[len(timestamps)-1] - timestamps[0]
	rowStep := duration / float64(len(timestamps)-1)
	if rowStep <= 0 {
		return nil
	}
	secStep := niceStep(duration, float64(len(timestamps))/pixelsPerLabel)

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	for sec := 0.0; sec <= duration; sec += secStep {
		imgY := a.config.Borders.Top + int(sec/rowStep)

		for x := a.config.Borders.Left - tickMarkLength; x < a.config.Borders.Left; x++ {
			img.Set(x, imgY, color.Black)
		}

		textY := imgY + fontHeight/2 - metrics.Descent.Round()
		label := fmt.Sprintf("%02d:%02d", int(sec)/60, int(sec)%60)
		pt := freetype.Pt(10, textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing time label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, f *field.Field, timestamps []float64) error {
	rows, cols := f.Dims()

	var duration float64
	if len(timestamps) > 1 {
		duration = timestamps[len(timestamps)-1] - timestamps[0]
	}
	info := fmt.Sprintf("Corridor: %dm over %d cells; Duration: %.0fs over %d steps; 1px = 1m",
		cols, cols, duration, rows)

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := img.Bounds().Max.Y - (a.config.Borders.Bottom-fontHeight)/2 - metrics.Descent.Round()

	pt := freetype.Pt(a.config.Borders.Left, textY)
	if _, err := a.context.DrawString(info, pt); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}
	return nil
}

// niceStep picks a round step size producing roughly desiredSteps labels.
func niceStep(span, desiredSteps float64) float64 {
	if desiredSteps < 2 {
		desiredSteps = 2
	}

	steps := []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000}
	target := span / desiredSteps

	for _, step := range steps {
		if step >= target {
			if span/step >= 2 {
				return step
			}
			break
		}
	}
	return span / 2
}
