package svg

import (
	"fmt"
	"html"
	"strings"
)

// Bars renders a grouped bar chart comparing up to two series.
func Bars(width, height int, seriesA, seriesB []float64, labels []string, opts BarOpts) (string, error) {
	if len(seriesA) == 0 && len(seriesB) == 0 {
		return "", ErrEmptySeries
	}
	if len(labels) == 0 {
		return "", fmt.Errorf("svg: labels required")
	}
	if len(seriesA) > 0 && len(seriesA) != len(labels) {
		return "", fmt.Errorf("svg: seriesA length must match labels")
	}
	if len(seriesB) > 0 && len(seriesB) != len(labels) {
		return "", fmt.Errorf("svg: seriesB length must match labels")
	}
	c, err := newCanvas(width, height, opts.Frame, seriesA, seriesB)
	if err != nil {
		return "", err
	}
	series := []struct {
		values []float64
		color  string
		label  string
		offset float64
	}{
		{seriesA, fallback(opts.ColorA, "#0ea5e9"), fallback(opts.SeriesALabel, "Series A"), 0.3},
		{seriesB, fallback(opts.ColorB, "#f97316"), fallback(opts.SeriesBLabel, "Series B"), 1.4},
	}

	groupWidth := c.chartW / float64(len(labels))
	barWidth := groupWidth / 3

	var b strings.Builder
	openSVG(&b, c.width, c.height, opts.Frame.Title, opts.Frame.Description, "bar", "Bar chart", "Grouped bar comparison")
	c.gridAndAxes(&b)

	for i, label := range labels {
		baseX := c.padding + float64(i)*groupWidth
		for _, s := range series {
			if len(s.values) == 0 {
				continue
			}
			y, h := c.bar(s.values[i])
			fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" aria-label=\"%s %s\"></rect>", baseX+barWidth*s.offset, y, barWidth, h, s.color, html.EscapeString(s.label), html.EscapeString(label))
		}
		c.xLabel(&b, baseX+groupWidth/2, label)
	}

	legendX := c.padding
	legendY := max(c.padding-12, 12)
	for _, s := range series {
		if len(s.values) == 0 {
			continue
		}
		fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", legendX, legendY-8, s.color)
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\">%s</text>", legendX+14, legendY, c.axis, html.EscapeString(s.label))
		legendX += 90
	}

	b.WriteString("</svg>")
	return b.String(), nil
}

// bar returns the top and height of a bar clamped to the drawing area.
func (c canvas) bar(value float64) (float64, float64) {
	zeroY := c.y(0)
	top, bottom := c.y(value), zeroY
	if value < 0 {
		top, bottom = zeroY, c.y(value)
	}
	top = max(top, c.padding)
	bottom = min(bottom, c.bottom())
	return top, max(bottom-top, 0)
}
