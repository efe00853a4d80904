// Package plot renders monthly sales series as line charts.
package plot

import (
	"errors"
	"fmt"
	"io"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/rfp/sales-analysis/sales"
)

// ErrNoData is returned when a series has no points to draw.
var ErrNoData = errors.New("no data to plot")

// Format is the output encoding.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat accepts "svg", "png" or "" (svg).
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unsupported chart format %q", s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Chart describes one monthly line chart.
type Chart struct {
	Title  string
	Series []sales.MonthlyTotal
	Format Format
	Width  int
	Height int
}

const (
	defaultWidth  = 800
	defaultHeight = 400
	yAxisName     = "Sales (units)"
)

var lineColor = drawing.ColorFromHex("1f77b4")

// Render draws c to w.
func Render(w io.Writer, c Chart) error {
	if len(c.Series) == 0 {
		return ErrNoData
	}

	xs, ys := points(c.Series)
	// go-chart needs a non-zero x range; pad a single month with a
	// duplicate point one day later.
	if len(xs) == 1 {
		xs = append(xs, xs[0].AddDate(0, 0, 1))
		ys = append(ys, ys[0])
	}

	annotations := make([]chart.Value2, len(c.Series))
	for i, t := range c.Series {
		annotations[i] = chart.Value2{
			XValue: chart.TimeToFloat64(t.Month.Time()),
			YValue: ys[i],
			Label:  t.Sales.String(),
		}
	}

	width, height := c.Width, c.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	ch := chart.Chart{
		Title:      c.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "Month",
			ValueFormatter: chart.TimeValueFormatterWithFormat(sales.MonthLayout),
			Ticks:          monthTicks(c.Series),
		},
		YAxis: chart.YAxis{
			Name:  yAxisName,
			Range: yRange(ys),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    c.Title,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 2,
					DotColor:    lineColor,
					DotWidth:    4,
				},
			},
			chart.AnnotationSeries{Annotations: annotations},
		},
	}

	format := c.Format
	if format == "" {
		format = FormatSVG
	}
	provider := chart.SVG
	if format == FormatPNG {
		provider = chart.PNG
	}
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("render %q: %w", c.Title, err)
	}
	return nil
}

func points(series []sales.MonthlyTotal) ([]time.Time, []float64) {
	xs := make([]time.Time, len(series))
	ys := make([]float64, len(series))
	for i, t := range series {
		xs[i] = t.Month.Time()
		ys[i] = t.Sales.InexactFloat64()
	}
	return xs, ys
}

// monthTicks places one tick per month of the series.
func monthTicks(series []sales.MonthlyTotal) []chart.Tick {
	first, last := series[0].Month, series[len(series)-1].Month
	var ticks []chart.Tick
	for m := first; !last.Before(m); m = m.AddMonths(1) {
		ticks = append(ticks, chart.Tick{
			Value: chart.TimeToFloat64(m.Time()),
			Label: m.String(),
		})
	}
	if len(ticks) == 1 {
		ticks = append(ticks, chart.Tick{Value: chart.TimeToFloat64(first.Time().AddDate(0, 0, 1))})
	}
	return ticks
}

// yRange starts at zero for non-negative data and always spans a
// non-zero interval.
func yRange(ys []float64) *chart.ContinuousRange {
	lo, hi := ys[0], ys[0]
	for _, y := range ys[1:] {
		if y < lo {
			lo = y
		}
		if y > hi {
			hi = y
		}
	}
	if lo > 0 {
		lo = 0
	}
	if hi <= lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi + (hi-lo)*0.1}
}
