package analytics

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/iyhunko/pricehawk/internal/model"
	"github.com/iyhunko/pricehawk/internal/predictor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func product(current, lowest float64) *model.Product {
	p := model.NewProduct("https://www.flipkart.com/item/p/itm1")
	p.Currency = "INR"
	p.CurrentPrice = ptr(current)
	p.LowestPrice = ptr(lowest)
	return p
}

func observations(p *model.Product, prices ...float64) []*model.PriceObservation {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	history := make([]*model.PriceObservation, len(prices))
	for i, price := range prices {
		history[i] = &model.PriceObservation{
			ID:         int64(i + 1),
			ProductID:  p.ID,
			Price:      price,
			ObservedAt: start.Add(time.Duration(i) * time.Hour),
		}
	}
	return history
}

func TestChangeFromPrevious(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   Change
	}{
		{"drop", []float64{100, 90}, Change{Amount: -10, Percent: -10}},
		{"rise uses last two", []float64{50, 100, 110}, Change{Amount: 10, Percent: 10}},
		{"percent rounded", []float64{3, 4}, Change{Amount: 1, Percent: 33.33}},
		{"single", []float64{100}, Change{}},
		{"empty", nil, Change{}},
		{"zero previous", []float64{0, 10}, Change{Amount: 10, Percent: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChangeFromPrevious(tt.prices))
		})
	}
}

func TestDerive(t *testing.T) {
	t.Run("given history, when deriving, then statistics come from history and low from product", func(t *testing.T) {
		p := product(90, 70)
		snap := Derive(p, observations(p, 100, 120, 90), nil, DefaultChartOptions())

		assert.Equal(t, p.ID, snap.ProductID)
		assert.Equal(t, 90.0, *snap.Current)
		assert.Equal(t, 70.0, *snap.Low, "low trusts the stored invariant")
		assert.Equal(t, 120.0, *snap.High)
		assert.InDelta(t, 103.333, *snap.Average, 0.001)
		assert.Equal(t, Change{Amount: -30, Percent: -25}, snap.Change)
		assert.Equal(t, 3, snap.Count)
		assert.NotNil(t, snap.Chart)
		assert.Nil(t, snap.Prediction)
		assert.Nil(t, snap.PredictedPrice)
	})

	t.Run("given no history, when deriving, then high and average default to current and chart is absent", func(t *testing.T) {
		p := product(80, 80)
		snap := Derive(p, nil, nil, DefaultChartOptions())

		assert.Equal(t, 80.0, *snap.High)
		assert.Equal(t, 80.0, *snap.Average)
		assert.Equal(t, Change{}, snap.Change)
		assert.Nil(t, snap.Chart)
		assert.Equal(t, 0, snap.Count)
	})

	t.Run("given a NaN width, when deriving, then no chart is drawn and the snapshot still encodes", func(t *testing.T) {
		p := product(90, 70)
		opts := DefaultChartOptions()
		opts.Width = math.NaN()

		snap := Derive(p, observations(p, 100, 120, 90), nil, opts)

		assert.Nil(t, snap.Chart)
		_, err := json.Marshal(snap)
		assert.NoError(t, err)
	})

	t.Run("given current equals lowest, when deriving, then at all time low", func(t *testing.T) {
		p := product(50, 50)
		snap := Derive(p, observations(p, 60, 50), nil, DefaultChartOptions())

		assert.True(t, snap.IsAtAllTimeLow)
		assert.Equal(t, &Savings{Amount: 0, Percent: 0}, snap.Savings)
	})

	t.Run("given current above lowest, when deriving, then savings of 5 (10%)", func(t *testing.T) {
		p := product(55, 50)
		snap := Derive(p, observations(p, 50, 55), nil, DefaultChartOptions())

		assert.False(t, snap.IsAtAllTimeLow)
		assert.Equal(t, &Savings{Amount: 5, Percent: 10}, snap.Savings)
		assert.Equal(t, Change{Amount: 5, Percent: 10}, snap.Change)
	})

	t.Run("given six observations and a forecast, when deriving, then prediction is absent", func(t *testing.T) {
		p := product(95, 90)
		snap := Derive(p, observations(p, 100, 99, 98, 97, 96, 95), &predictor.Prediction{PredictedPrice: 90}, DefaultChartOptions())

		assert.Nil(t, snap.Prediction)
		assert.Nil(t, snap.PredictedPrice)
		require.NotNil(t, snap.Chart)
		assert.Nil(t, snap.Chart.Overlay)
	})

	t.Run("given seven observations and a forecast, when deriving, then prediction is merged", func(t *testing.T) {
		p := product(94, 90)
		prediction := &predictor.Prediction{PredictedPrice: 90, WillDrop: true, Confidence: "high"}
		snap := Derive(p, observations(p, 100, 99, 98, 97, 96, 95, 94), prediction, DefaultChartOptions())

		require.NotNil(t, snap.PredictedPrice)
		assert.Equal(t, 90.0, *snap.PredictedPrice)
		assert.Same(t, prediction, snap.Prediction)
		require.NotNil(t, snap.Chart.Overlay)
		assert.Equal(t, 800.0, snap.Chart.Overlay.To.X)
	})

	t.Run("given a product without price, when deriving, then optional fields are absent", func(t *testing.T) {
		p := model.NewProduct("https://www.amazon.in/dp/B0NONE")
		snap := Derive(p, nil, nil, DefaultChartOptions())

		assert.Nil(t, snap.Current)
		assert.Nil(t, snap.High)
		assert.Nil(t, snap.Savings)
		assert.False(t, snap.IsAtAllTimeLow)
	})
}
