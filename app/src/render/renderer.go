package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"telemetry-dashboard/app/src/domain"
)

// ErrNoPoints is returned by RGB565 when the scene holds no samples yet.
var ErrNoPoints = errors.New("render: scene has no points")

const (
	// viewExtent bounds the projected [-2,2] cube with some margin.
	viewExtent = 3.6
	// axisExtent is shorter than the 3D axes so points dominate the small frame.
	axisExtent = 2.5
	dotWidth   = 2.5
)

// Renderer draws a scene into a small static image for clients that cannot
// run the 3D view, such as the ESP32 TFT display.
type Renderer struct {
	width  int
	height int
}

func NewRenderer(width, height int) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render: invalid size %dx%d", width, height)
	}
	return &Renderer{width: width, height: height}, nil
}

func (r *Renderer) Size() (width, height int) { return r.width, r.height }

// PNG renders scene as a PNG image. A scene without points still shows its axes.
func (r *Renderer) PNG(scene domain.Scene) ([]byte, error) {
	graph := chart.Chart{
		Width:  r.width,
		Height: r.height,
		Background: chart.Style{
			FillColor: drawing.ColorWhite,
			Padding:   chart.BoxZero,
		},
		Canvas: chart.Style{FillColor: drawing.ColorWhite},
		XAxis: chart.XAxis{
			Style: chart.Hidden(),
			Range: &chart.ContinuousRange{Min: -viewExtent, Max: viewExtent},
		},
		YAxis: chart.YAxis{
			Style: chart.Hidden(),
			Range: &chart.ContinuousRange{Min: -viewExtent, Max: viewExtent},
		},
		Series: append(axisSeries(scene.Axes), pointSeries(scene.Points)...),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: png: %w", err)
	}
	return buf.Bytes(), nil
}

// RGB565 renders scene as raw little-endian RGB565 pixels, row-major.
func (r *Renderer) RGB565(scene domain.Scene) ([]byte, error) {
	if len(scene.Points) == 0 {
		return nil, ErrNoPoints
	}
	encoded, err := r.PNG(scene)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("render: decode png: %w", err)
	}
	return ToRGB565(img), nil
}

// ToRGB565 packs img into little-endian RGB565, two bytes per pixel.
func ToRGB565(img image.Image) []byte {
	b := img.Bounds()
	out := make([]byte, 0, 2*b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out = append(out, rgb565(img.At(x, y))...)
		}
	}
	return out
}

func rgb565(c color.Color) []byte {
	r, g, b, _ := c.RGBA()
	px := (uint16(r>>8)&0xF8)<<8 | (uint16(g>>8)&0xFC)<<3 | uint16(b>>8)>>3
	return []byte{byte(px), byte(px >> 8)}
}

func axisSeries(axes [3]domain.AxisSegment) []chart.Series {
	series := make([]chart.Series, 0, len(axes))
	for _, a := range axes {
		to := normalize(a.To)
		x0, y0 := Project(a.From)
		x1, y1 := Project(scale(to, axisExtent))
		series = append(series, chart.ContinuousSeries{
			Name:    a.Label,
			XValues: []float64{x0, x1},
			YValues: []float64{y0, y1},
			Style: chart.Style{
				StrokeColor: hexColor(a.Color),
				StrokeWidth: 1,
			},
		})
	}
	return series
}

func pointSeries(points []domain.ScenePoint) []chart.Series {
	if len(points) == 0 {
		return nil
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	colors := make([]drawing.Color, len(points))
	for i, p := range points {
		xs[i], ys[i] = Project(p.Position)
		colors[i] = hexColor(p.Color)
	}

	return []chart.Series{chart.ContinuousSeries{
		Name:    "samples",
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    dotWidth,
			DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				return colors[index]
			},
		},
	}}
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
