// Package svg renders the dashboard charts as standalone SVG documents.
package svg

import (
	"errors"
	"fmt"
	"html"
	"math"
	"strings"
)

// Frame holds the options shared by every axis chart.
type Frame struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
}

// LineOpts customises the line chart renderer.
type LineOpts struct {
	Frame
	StrokeColor string
	FillColor   string
	ShowDots    bool
}

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Frame
	SeriesALabel string
	SeriesBLabel string
	ColorA       string
	ColorB       string
}

// DoughnutOpts customises the doughnut chart renderer. Colors are matched to
// slices by index; missing entries fall back to an evenly spaced hue.
type DoughnutOpts struct {
	Title       string
	Description string
	Colors      []string
	Thickness   float64
	ShowLegend  bool
}

// Defaults for the dashboard charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 240
	DefaultPadding = 24.0
	DefaultTicks   = 6
)

// ErrEmptySeries is returned when there is nothing to draw.
var ErrEmptySeries = errors.New("svg: series required")

// canvas is the resolved drawing area of an axis chart.
type canvas struct {
	width, height int
	padding       float64
	ticks         int
	axis, grid    string
	chartW        float64
	chartH        float64
	minVal        float64
	maxVal        float64
	scale         float64
}

func newCanvas(width, height int, f Frame, values ...[]float64) (canvas, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	c := canvas{
		width:   width,
		height:  height,
		padding: f.Padding,
		ticks:   f.TickCount,
		axis:    fallback(f.AxisColor, "#475569"),
		grid:    fallback(f.GridColor, "#cbd5f5"),
	}
	if c.padding <= 0 {
		c.padding = DefaultPadding
	}
	if c.ticks <= 0 {
		c.ticks = DefaultTicks
	}
	c.chartW = float64(width) - 2*c.padding
	c.chartH = float64(height) - 2*c.padding
	if c.chartW <= 0 || c.chartH <= 0 {
		return canvas{}, fmt.Errorf("svg: viewport too small")
	}
	c.minVal, c.maxVal = bounds(values...)
	if c.minVal > 0 {
		c.minVal = 0
	}
	if c.maxVal < 0 {
		c.maxVal = 0
	}
	if almostEqual(c.maxVal, c.minVal) {
		c.maxVal = c.minVal + 1
	}
	c.scale = c.chartH / (c.maxVal - c.minVal)
	return c, nil
}

func (c canvas) bottom() float64 { return c.padding + c.chartH }

func (c canvas) y(value float64) float64 {
	return c.bottom() - (value-c.minVal)*c.scale
}

func openSVG(b *strings.Builder, width, height int, title, desc, kind, defaultTitle, defaultDesc string) {
	titleID := makeID(title, kind+"-title")
	descID := makeID(title, kind+"-desc")
	fmt.Fprintf(b, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID)
	fmt.Fprintf(b, "<title id=\"%s\">%s</title>", titleID, html.EscapeString(fallback(title, defaultTitle)))
	fmt.Fprintf(b, "<desc id=\"%s\">%s</desc>", descID, html.EscapeString(fallback(desc, defaultDesc)))
}

// gridAndAxes draws horizontal grid lines with tick labels and the two axes.
// The x axis sits on the zero line.
func (c canvas) gridAndAxes(b *strings.Builder) {
	for i := 0; i <= c.ticks; i++ {
		ratio := float64(i) / float64(c.ticks)
		y := c.bottom() - ratio*c.chartH
		value := c.minVal + (c.maxVal-c.minVal)*ratio
		fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", c.padding, y, c.padding+c.chartW, y, c.grid)
		fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", c.padding-6, y+4, c.axis, html.EscapeString(formatTick(value)))
	}
	zeroY := c.y(0)
	fmt.Fprintf(b, "<g stroke=\"%s\" aria-label=\"Axes\">", c.axis)
	fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", c.padding, c.padding, c.padding, c.bottom())
	fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", c.padding, zeroY, c.padding+c.chartW, zeroY)
	b.WriteString("</g>")
}

func (c canvas) xLabel(b *strings.Builder, x float64, label string) {
	fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", x, c.bottom()+14, c.axis, html.EscapeString(label))
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func bounds(series ...[]float64) (float64, float64) {
	first := true
	var minVal, maxVal float64
	for _, s := range series {
		for _, v := range s {
			if first {
				minVal, maxVal = v, v
				first = false
				continue
			}
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	return minVal, maxVal
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	case almostEqual(v, math.Round(v)):
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
