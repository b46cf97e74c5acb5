package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultChartWidth  = 800
	DefaultChartHeight = 200
	DefaultChartMargin = 10

	footroom = 0.98
	headroom = 1.02

	// minVisibleSpan keeps flat series drawable.
	minVisibleSpan = 0.01
)

var (
	// ErrInsufficientHistory is returned when fewer than two prices are available to plot.
	ErrInsufficientHistory = errors.New("insufficient history for chart")

	// ErrInvalidDimensions is returned when the plot area would be empty.
	ErrInvalidDimensions = errors.New("invalid chart dimensions")
)

// ChartOptions sizes the plot area. Margin is applied on every side.
type ChartOptions struct {
	Width  float64
	Height float64
	Margin float64
}

// DefaultChartOptions matches the product detail view.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{Width: DefaultChartWidth, Height: DefaultChartHeight, Margin: DefaultChartMargin}
}

// Validate rejects non-finite sizes and plot areas with no room left inside the margins.
func (o ChartOptions) Validate() error {
	for _, v := range []float64{o.Width, o.Height, o.Margin} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: width=%v height=%v margin=%v", ErrInvalidDimensions, o.Width, o.Height, o.Margin)
		}
	}
	if o.Margin < 0 || o.Width <= 2*o.Margin || o.Height <= 2*o.Margin {
		return fmt.Errorf("%w: width=%v height=%v margin=%v", ErrInvalidDimensions, o.Width, o.Height, o.Margin)
	}
	return nil
}

// Point is a plot coordinate with y growing downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Overlay is the forecast segment drawn after the last real point.
type Overlay struct {
	From           Point   `json:"from"`
	To             Point   `json:"to"`
	PredictedPrice float64 `json:"predicted_price"`
}

// Path renders the overlay as an SVG path.
func (o *Overlay) Path() string {
	return fmt.Sprintf("M %s L %s", coord(o.From), coord(o.To))
}

// MarshalJSON adds the rendered path to the overlay fields.
func (o *Overlay) MarshalJSON() ([]byte, error) {
	type overlay Overlay
	return json.Marshal(struct {
		*overlay
		Path string `json:"path"`
	}{(*overlay)(o), o.Path()})
}

// Chart is a price series mapped into plot coordinates.
type Chart struct {
	Options ChartOptions `json:"-"`
	Points  []Point      `json:"points"`
	YMin    float64      `json:"y_min"`
	YMax    float64      `json:"y_max"`
	Overlay *Overlay     `json:"overlay,omitempty"`
}

// ChartSeries maps prices by index across [margin, width-margin] and by value across
// [height-margin, margin] using a range padded 2% on both ends.
func ChartSeries(prices []float64, opts ChartOptions) (*Chart, error) {
	if len(prices) < 2 {
		return nil, ErrInsufficientHistory
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	lo, hi := prices[0], prices[0]
	for _, p := range prices[1:] {
		lo = min(lo, p)
		hi = max(hi, p)
	}
	yMin, yMax := lo*footroom, hi*headroom
	if span := yMax - yMin; span < minVisibleSpan {
		pad := (minVisibleSpan - span) / 2
		yMin -= pad
		yMax += pad
	}

	chart := &Chart{
		Options: opts,
		Points:  make([]Point, len(prices)),
		YMin:    yMin,
		YMax:    yMax,
	}
	last := float64(len(prices) - 1)
	for i, p := range prices {
		chart.Points[i] = Point{
			X: opts.Margin + float64(i)/last*(opts.Width-2*opts.Margin),
			Y: chart.mapY(p),
		}
	}
	return chart, nil
}

func (c *Chart) mapY(price float64) float64 {
	o := c.Options
	return o.Height - o.Margin - (price-c.YMin)/(c.YMax-c.YMin)*(o.Height-2*o.Margin)
}

// WithPrediction adds the overlay segment from the last point to (width, y(price)).
// y is mapped with the historical range and may fall outside the plot area.
func (c *Chart) WithPrediction(price float64) *Chart {
	c.Overlay = &Overlay{
		From:           c.Points[len(c.Points)-1],
		To:             Point{X: c.Options.Width, Y: c.mapY(price)},
		PredictedPrice: price,
	}
	return c
}

// LinePath renders the series as an SVG polyline path.
func (c *Chart) LinePath() string {
	return "M " + c.joinedPoints()
}

// AreaPath renders the series closed down to the bottom edge.
func (c *Chart) AreaPath() string {
	first, last := c.Points[0], c.Points[len(c.Points)-1]
	bottom := c.Options.Height
	return fmt.Sprintf("M %s L %s L %s Z",
		coord(Point{X: first.X, Y: bottom}),
		c.joinedPoints(),
		coord(Point{X: last.X, Y: bottom}))
}

func (c *Chart) joinedPoints() string {
	parts := make([]string, len(c.Points))
	for i, p := range c.Points {
		parts[i] = coord(p)
	}
	return strings.Join(parts, " L ")
}

// MarshalJSON adds the line and area paths to the chart fields.
func (c *Chart) MarshalJSON() ([]byte, error) {
	type chart Chart
	return json.Marshal(struct {
		*chart
		LinePath string `json:"line_path"`
		AreaPath string `json:"area_path"`
	}{(*chart)(c), c.LinePath(), c.AreaPath()})
}

func coord(p Point) string {
	return decimal.NewFromFloat(p.X).StringFixed(1) + "," + decimal.NewFromFloat(p.Y).StringFixed(1)
}
