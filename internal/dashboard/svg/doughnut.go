package svg

import (
	"fmt"
	"html"
	"math"
	"strings"
)

// Doughnut renders a ring chart where each slice is proportional to its value.
// Negative values are treated as zero; an all-zero series draws an empty ring.
func Doughnut(width, height int, values []float64, labels []string, opts DoughnutOpts) (string, error) {
	if len(values) == 0 {
		return "", ErrEmptySeries
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match values")
	}
	if width <= 0 {
		width = DefaultHeight
	}
	if height <= 0 {
		height = DefaultHeight
	}
	legendWidth := 0.0
	if opts.ShowLegend {
		legendWidth = 160
	}
	cx := (float64(width) - legendWidth) / 2
	cy := float64(height) / 2
	radius := math.Min(cx, cy) - DefaultPadding/2
	if radius <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	thickness := opts.Thickness
	if thickness <= 0 || thickness >= radius {
		thickness = radius * 0.4
	}
	ring := radius - thickness/2
	circumference := 2 * math.Pi * ring

	total := 0.0
	for _, v := range values {
		total += math.Max(v, 0)
	}

	var b strings.Builder
	openSVG(&b, width, height, opts.Title, opts.Description, "doughnut", "Doughnut chart", "Share per category")
	fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"none\" stroke=\"#e2e8f0\" stroke-width=\"%.2f\" aria-hidden=\"true\"></circle>", cx, cy, ring, thickness)

	// Each slice is a dashed circle stroke rotated to start at twelve o'clock.
	offset := 0.0
	for i, v := range values {
		color := sliceColor(opts.Colors, i, len(values))
		if total > 0 && v > 0 {
			length := circumference * v / total
			fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"none\" stroke=\"%s\" stroke-width=\"%.2f\" stroke-dasharray=\"%.2f %.2f\" stroke-dashoffset=\"%.2f\" transform=\"rotate(-90 %.2f %.2f)\" aria-label=\"%s %s\"></circle>",
				cx, cy, ring, color, thickness, length, circumference-length, -offset, cx, cy, html.EscapeString(labels[i]), formatTick(v))
			offset += length
		}
		if opts.ShowLegend {
			lx := float64(width) - legendWidth + 8
			ly := DefaultPadding + float64(i)*16
			fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", lx, ly-8, color)
			fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"#475569\" font-size=\"10\" text-anchor=\"start\">%s (%s)</text>", lx+14, ly, html.EscapeString(labels[i]), formatTick(v))
		}
	}
	fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"#0f172a\" font-size=\"16\" text-anchor=\"middle\">%s</text>", cx, cy+5, formatTick(total))

	b.WriteString("</svg>")
	return b.String(), nil
}

func sliceColor(colors []string, i, n int) string {
	if i < len(colors) && strings.TrimSpace(colors[i]) != "" {
		return colors[i]
	}
	return fmt.Sprintf("hsl(%d, 70%%, 60%%)", i*360/n)
}
