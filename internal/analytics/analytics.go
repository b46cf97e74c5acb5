// Package analytics derives read-side price statistics and plot data.
// Nothing here touches storage or the network.
package analytics

import (
	"github.com/google/uuid"
	"github.com/iyhunko/pricehawk/internal/model"
	"github.com/iyhunko/pricehawk/internal/predictor"
	"github.com/shopspring/decimal"
)

// MinPredictionHistory is the history length below which forecasts are not shown.
const MinPredictionHistory = predictor.MinHistory

// Change is the move between the two most recent observations.
type Change struct {
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percent"`
}

// Savings is how far the current price sits above the all-time low.
type Savings struct {
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percent"`
}

// Snapshot is the analytics view of one product.
type Snapshot struct {
	ProductID      uuid.UUID             `json:"product_id"`
	Currency       string                `json:"currency"`
	Current        *float64              `json:"current"`
	Low            *float64              `json:"low"`
	High           *float64              `json:"high"`
	Average        *float64              `json:"average"`
	Change         Change                `json:"change_from_previous"`
	IsAtAllTimeLow bool                  `json:"is_at_all_time_low"`
	Savings        *Savings              `json:"savings"`
	Count          int                   `json:"count"`
	Chart          *Chart                `json:"chart"`
	Prediction     *predictor.Prediction `json:"prediction"`
	PredictedPrice *float64              `json:"predicted_price"`
}

// Derive computes the snapshot for a product and its ascending history.
// A nil prediction, or one supplied for a history shorter than MinPredictionHistory,
// yields no prediction. Sparse history never fails the derivation.
func Derive(product *model.Product, history []*model.PriceObservation, prediction *predictor.Prediction, opts ChartOptions) *Snapshot {
	prices := model.Prices(history)

	snap := &Snapshot{
		ProductID:      product.ID,
		Currency:       product.Currency,
		Current:        product.CurrentPrice,
		Low:            product.LowestPrice,
		High:           High(prices, product.CurrentPrice),
		Average:        Average(prices, product.CurrentPrice),
		Change:         ChangeFromPrevious(prices),
		IsAtAllTimeLow: product.IsAtAllTimeLow(),
		Savings:        SavingsFromLow(product),
		Count:          len(prices),
	}

	chart, err := ChartSeries(prices, opts)
	if err == nil {
		snap.Chart = chart
	}

	if prediction != nil && len(prices) >= MinPredictionHistory {
		snap.Prediction = prediction
		predicted := prediction.PredictedPrice
		snap.PredictedPrice = &predicted
		if snap.Chart != nil {
			snap.Chart.WithPrediction(predicted)
		}
	}
	return snap
}

// High is the maximum observed price, or fallback when there is no history.
func High(prices []float64, fallback *float64) *float64 {
	if len(prices) == 0 {
		return fallback
	}
	hi := prices[0]
	for _, p := range prices[1:] {
		hi = max(hi, p)
	}
	return &hi
}

// Average is the arithmetic mean of prices, or fallback when there is no history.
func Average(prices []float64, fallback *float64) *float64 {
	if len(prices) == 0 {
		return fallback
	}
	var sum float64
	for _, p := range prices {
		sum += p
	}
	avg := sum / float64(len(prices))
	return &avg
}

// ChangeFromPrevious compares the two latest prices of an ascending series.
func ChangeFromPrevious(prices []float64) Change {
	if len(prices) < 2 {
		return Change{}
	}
	latest, previous := prices[len(prices)-1], prices[len(prices)-2]
	change := Change{Amount: round(latest-previous, 2)}
	if previous != 0 {
		change.Percent = round((latest-previous)/previous*100, 2)
	}
	return change
}

// SavingsFromLow is nil until the product has both prices.
func SavingsFromLow(product *model.Product) *Savings {
	if !product.HasPrice() || product.LowestPrice == nil {
		return nil
	}
	current, lowest := *product.CurrentPrice, *product.LowestPrice
	savings := &Savings{Amount: round(current-lowest, 2)}
	if lowest != 0 {
		savings.Percent = round((current-lowest)/lowest*100, 1)
	}
	return savings
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
