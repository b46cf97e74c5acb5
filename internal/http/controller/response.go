package controller

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/pricehawk/internal/apperr"
	"github.com/iyhunko/pricehawk/internal/model"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Details string `json:"details,omitempty"`
}

// ProductResponse represents the response body for a product.
type ProductResponse struct {
	ID             string   `json:"id"`
	URL            string   `json:"url"`
	Name           string   `json:"name"`
	ImageURL       string   `json:"image_url"`
	Platform       string   `json:"platform"`
	Currency       string   `json:"currency"`
	CurrentPrice   *float64 `json:"current_price"`
	LowestPrice    *float64 `json:"lowest_price"`
	IsAtAllTimeLow bool     `json:"is_at_all_time_low"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

// ObservationResponse is one entry of a product's price history.
type ObservationResponse struct {
	ID         int64   `json:"id"`
	Price      float64 `json:"price"`
	Currency   string  `json:"currency"`
	ObservedAt string  `json:"observed_at"`
}

func toProductResponse(product *model.Product) ProductResponse {
	return ProductResponse{
		ID:             product.ID.String(),
		URL:            product.URL,
		Name:           product.Name,
		ImageURL:       product.ImageURL,
		Platform:       string(product.Platform),
		Currency:       product.Currency,
		CurrentPrice:   product.CurrentPrice,
		LowestPrice:    product.LowestPrice,
		IsAtAllTimeLow: product.IsAtAllTimeLow(),
		CreatedAt:      product.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      product.UpdatedAt.Format(time.RFC3339),
	}
}

func toObservationResponses(history []*model.PriceObservation) []ObservationResponse {
	responses := make([]ObservationResponse, 0, len(history))
	for _, obs := range history {
		responses = append(responses, ObservationResponse{
			ID:         obs.ID,
			Price:      obs.Price,
			Currency:   obs.Currency,
			ObservedAt: obs.ObservedAt.Format(time.RFC3339),
		})
	}
	return responses
}

// writeError renders err with the status of its kind. Internal causes are logged, not returned.
func writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	resp := ErrorResponse{Kind: string(kind), Error: "internal server error"}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		resp.Error = appErr.Message
		if kind != apperr.KindInternal && appErr.Err != nil {
			resp.Details = appErr.Err.Error()
		}
	}
	if kind == apperr.KindInternal {
		slog.Error("request failed",
			slog.String("path", c.Request.URL.Path),
			slog.Any("err", err))
	}

	_ = c.Error(err)
	c.JSON(apperr.HTTPStatus(kind), resp)
}
