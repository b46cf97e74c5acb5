package predictor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iyhunko/pricehawk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func history(n int) []model.PricePoint {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]model.PricePoint, n)
	for i := range points {
		points[i] = model.PricePoint{Price: 1000 - float64(i)*2, ObservedAt: start.Add(time.Duration(i) * 24 * time.Hour)}
	}
	return points
}

func TestHTTPPredictor_Predict(t *testing.T) {
	t.Run("given enough history, when predicting, then forecast is decoded", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/predict", r.URL.Path)

			var req map[string][]map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req["price_history"], 7)
			assert.Contains(t, req["price_history"][0], "scraped_at")

			_, _ = w.Write([]byte(`{"current_price":988,"predicted_price":950.25,"will_drop":true,"drop_amount":37.75,"drop_percentage":3.82,"confidence":"medium","prediction_days":7,"data_points_used":7}`))
		}))
		defer srv.Close()

		got, err := NewHTTPPredictor(srv.URL, time.Second).Predict(context.Background(), history(7))

		require.NoError(t, err)
		assert.Equal(t, 950.25, got.PredictedPrice)
		assert.True(t, got.WillDrop)
		assert.Equal(t, "medium", got.Confidence)
		assert.Equal(t, 7, got.DataPointsUsed)
	})

	t.Run("given six points, when predicting, then the service is not called", func(t *testing.T) {
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()

		_, err := NewHTTPPredictor(srv.URL, time.Second).Predict(context.Background(), history(6))

		assert.ErrorIs(t, err, ErrInsufficientData)
		assert.False(t, called)
	})

	t.Run("given a current_count answer, when predicting, then ErrInsufficientData", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":"Need at least 7 days of history","predicted_price":null,"will_drop":false,"confidence":"none","current_count":5}`))
		}))
		defer srv.Close()

		_, err := NewHTTPPredictor(srv.URL, time.Second).Predict(context.Background(), history(8))
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("given a model error, when predicting, then a plain error is returned", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":"ML model not yet trained","message":"Please train the model first"}`))
		}))
		defer srv.Close()

		_, err := NewHTTPPredictor(srv.URL, time.Second).Predict(context.Background(), history(8))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInsufficientData)
		assert.Contains(t, err.Error(), "ML model not yet trained")
	})

	t.Run("given a 500, when predicting, then an error is returned", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"detail":"Prediction failed"}`, http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := NewHTTPPredictor(srv.URL, time.Second).Predict(context.Background(), history(8))
		assert.ErrorContains(t, err, "status 500")
	})
}
