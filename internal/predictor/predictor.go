// Package predictor is the client for the price forecasting service.
package predictor

import (
	"context"
	"errors"

	"github.com/iyhunko/pricehawk/internal/model"
)

// MinHistory is the number of observations required before a forecast is attempted.
const MinHistory = 7

// ErrInsufficientData is returned when there is too little history to forecast.
var ErrInsufficientData = errors.New("insufficient price history for prediction")

// Prediction is a 7-day price forecast.
type Prediction struct {
	PredictedPrice float64 `json:"predicted_price"`
	CurrentPrice   float64 `json:"current_price"`
	WillDrop       bool    `json:"will_drop"`
	DropAmount     float64 `json:"drop_amount"`
	DropPercentage float64 `json:"drop_percentage"`
	Confidence     string  `json:"confidence"`
	PredictionDays int     `json:"prediction_days"`
	DataPointsUsed int     `json:"data_points_used"`
}

// Predictor forecasts a price from an ascending history.
type Predictor interface {
	Predict(ctx context.Context, history []model.PricePoint) (*Prediction, error)
}
