package svg

import (
	"fmt"
	"strings"
)

// Line renders an SVG line chart for the given series and labels.
func Line(width, height int, series []float64, labels []string, opts LineOpts) (string, error) {
	if len(series) == 0 {
		return "", ErrEmptySeries
	}
	if len(series) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match series")
	}
	c, err := newCanvas(width, height, opts.Frame, series)
	if err != nil {
		return "", err
	}
	stroke := fallback(opts.StrokeColor, "#2563eb")
	fill := fallback(opts.FillColor, "rgba(37,99,235,0.12)")

	xs := make([]float64, len(series))
	for i := range series {
		if len(series) == 1 {
			xs[i] = c.padding + c.chartW/2
			continue
		}
		xs[i] = c.padding + float64(i)*c.chartW/float64(len(series)-1)
	}

	var path strings.Builder
	for i, value := range series {
		cmd := " L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s%.2f %.2f", cmd, xs[i], c.y(value))
	}

	var b strings.Builder
	openSVG(&b, c.width, c.height, opts.Title, opts.Description, "line", "Line chart", "Trend data")
	c.gridAndAxes(&b)

	area := fmt.Sprintf("%s L%.2f %.2f L%.2f %.2f Z", path.String(), xs[len(xs)-1], c.bottom(), xs[0], c.bottom())
	fmt.Fprintf(&b, "<path d=\"%s\" fill=\"%s\" stroke=\"none\" aria-hidden=\"true\"></path>", area, fill)
	fmt.Fprintf(&b, "<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\" stroke-linejoin=\"round\" stroke-linecap=\"round\"></path>", path.String(), stroke)

	for i, value := range series {
		if opts.ShowDots {
			fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" fill=\"%s\"></circle>", xs[i], c.y(value), stroke)
		}
		c.xLabel(&b, xs[i], labels[i])
	}

	b.WriteString("</svg>")
	return b.String(), nil
}
