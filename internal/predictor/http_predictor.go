package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iyhunko/pricehawk/internal/model"
)

// HTTPPredictor implements Predictor against the forecasting service REST API.
type HTTPPredictor struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPPredictor(baseURL string, timeout time.Duration) *HTTPPredictor {
	return &HTTPPredictor{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	PriceHistory []model.PricePoint `json:"price_history"`
}

// predictResponse covers both the forecast and the error shapes of /predict.
type predictResponse struct {
	PredictedPrice *float64 `json:"predicted_price"`
	CurrentPrice   float64  `json:"current_price"`
	WillDrop       bool     `json:"will_drop"`
	DropAmount     float64  `json:"drop_amount"`
	DropPercentage float64  `json:"drop_percentage"`
	Confidence     string   `json:"confidence"`
	PredictionDays int      `json:"prediction_days"`
	DataPointsUsed int      `json:"data_points_used"`
	Error          string   `json:"error"`
	CurrentCount   *int     `json:"current_count"`
}

func (p *HTTPPredictor) Predict(ctx context.Context, history []model.PricePoint) (*Prediction, error) {
	if len(history) < MinHistory {
		return nil, fmt.Errorf("%w: have %d points, need %d", ErrInsufficientData, len(history), MinHistory)
	}

	payload, err := json.Marshal(predictRequest{PriceHistory: history})
	if err != nil {
		return nil, fmt.Errorf("failed to encode predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call predictor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("predictor responded with status %d, body: %s", resp.StatusCode, string(body))
	}

	var body predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode predict response: %w", err)
	}

	if body.CurrentCount != nil {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientData, body.Error)
	}
	if body.PredictedPrice == nil {
		if body.Error != "" {
			return nil, fmt.Errorf("predictor failed: %s", body.Error)
		}
		return nil, ErrInsufficientData
	}

	return &Prediction{
		PredictedPrice: *body.PredictedPrice,
		CurrentPrice:   body.CurrentPrice,
		WillDrop:       body.WillDrop,
		DropAmount:     body.DropAmount,
		DropPercentage: body.DropPercentage,
		Confidence:     body.Confidence,
		PredictionDays: body.PredictionDays,
		DataPointsUsed: body.DataPointsUsed,
	}, nil
}
