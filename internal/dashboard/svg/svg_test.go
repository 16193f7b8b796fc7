package svg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineProducesSVG(t *testing.T) {
	out, err := Line(400, 200, []float64{1, 4, 2}, []string{"Jan 2024", "Feb 2024", "Mar 2024"}, LineOpts{
		Frame:    Frame{Title: "Activity", Description: "Monthly activity"},
		ShowDots: true,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, "<path")
	assert.Contains(t, out, "aria-labelledby=\"activity-line-title activity-line-desc\"")
	assert.Equal(t, 3, strings.Count(out, "<circle"))
	assert.Contains(t, out, "Feb 2024")
}

func TestLineRejectsBadInput(t *testing.T) {
	_, err := Line(0, 0, nil, nil, LineOpts{})
	require.ErrorIs(t, err, ErrEmptySeries)

	_, err = Line(0, 0, []float64{1}, []string{"a", "b"}, LineOpts{})
	require.Error(t, err)

	_, err = Line(10, 10, []float64{1}, []string{"a"}, LineOpts{Frame: Frame{Padding: 20}})
	require.Error(t, err)
}

func TestBarsRenderBothSeries(t *testing.T) {
	out, err := Bars(480, 240, []float64{1, 0}, []float64{0, 1}, []string{"Admin", "Editor"}, BarOpts{
		Frame:        Frame{Title: "Status"},
		SeriesALabel: "Active",
		SeriesBLabel: "Inactive",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, strings.Count(out, "<rect"))
	assert.Contains(t, out, "aria-label=\"Inactive Editor\"")
}

func TestBarsEscapesLabels(t *testing.T) {
	out, err := Bars(0, 0, []float64{2}, nil, []string{"<QA>"}, BarOpts{})
	require.NoError(t, err)
	assert.Contains(t, out, "&lt;QA&gt;")
	assert.NotContains(t, out, "<QA>")
}

func TestDoughnutSlices(t *testing.T) {
	out, err := Doughnut(360, 240, []float64{2, 1, 0}, []string{"Admin", "Editor", "Viewer"}, DoughnutOpts{
		Title:      "Users by role",
		Colors:     []string{"hsl(0, 70%, 60%)"},
		ShowLegend: true,
	})
	require.NoError(t, err)
	assert.Contains(t, out, "stroke=\"hsl(0, 70%, 60%)\"")
	assert.Contains(t, out, "stroke=\"hsl(120, 70%, 60%)\"")
	// background ring plus two non-zero slices
	assert.Equal(t, 3, strings.Count(out, "<circle"))
	assert.Contains(t, out, "Viewer (0)")
	assert.Contains(t, out, ">3</text>")
}

func TestDoughnutAllZero(t *testing.T) {
	out, err := Doughnut(0, 0, []float64{0, 0}, []string{"a", "b"}, DoughnutOpts{})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "<circle"))

	_, err = Doughnut(0, 0, nil, nil, DoughnutOpts{})
	require.ErrorIs(t, err, ErrEmptySeries)
}
