package controller

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iyhunko/pricehawk/internal/analytics"
	"github.com/iyhunko/pricehawk/internal/apperr"
	"github.com/iyhunko/pricehawk/internal/model"
	"github.com/iyhunko/pricehawk/internal/repository"
	"github.com/iyhunko/pricehawk/internal/service"
)

// TrackerService is what the tracker endpoints need from the service layer.
type TrackerService interface {
	Ingest(ctx context.Context, rawURL string) (*service.IngestResult, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*service.ProductDetail, error)
	ListProducts(ctx context.Context, query repository.Query) ([]*model.Product, error)
	Analytics(ctx context.Context, id uuid.UUID, opts analytics.ChartOptions) (*analytics.Snapshot, error)
}

// TrackerController handles HTTP requests for tracked products.
type TrackerController struct {
	tracker TrackerService
}

// NewTrackerController creates a new TrackerController with the given service.
func NewTrackerController(tracker TrackerService) *TrackerController {
	return &TrackerController{
		tracker: tracker,
	}
}

// TrackRequest represents the request body for tracking a product URL.
type TrackRequest struct {
	URL string `json:"url"`
}

// TrackResponse represents the response body of a successful track.
type TrackResponse struct {
	Success  bool            `json:"success"`
	Product  ProductResponse `json:"product"`
	Redirect string          `json:"redirect"`
}

// Track handles the HTTP POST request that scrapes a URL and records its price.
func (tc *TrackerController) Track(c *gin.Context) {
	var req TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.InvalidArgument(err))
		return
	}

	result, err := tc.tracker.Ingest(c.Request.Context(), req.URL)
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, TrackResponse{
		Success:  true,
		Product:  toProductResponse(result.Product),
		Redirect: result.Redirect,
	})
}

// ListProductsRequest represents the query parameters for listing products.
type ListProductsRequest struct {
	Limit    int32  `form:"limit"`
	Token    string `form:"token"`
	Platform string `form:"platform"`
}

// ListProductsResponse represents the response body for listing products.
type ListProductsResponse struct {
	Products      []ProductResponse `json:"products"`
	NextPageToken string            `json:"next_page_token,omitempty"`
}

// ListProducts handles the HTTP GET request for the dashboard listing with pagination.
func (tc *TrackerController) ListProducts(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeError(c, apperr.InvalidArgument(err))
		return
	}

	query := repository.NewQuery()
	if err := query.ApplyPagination(req.Limit, req.Token); err != nil {
		writeError(c, apperr.InvalidArgument(err))
		return
	}
	if req.Platform != "" {
		platform := model.ParsePlatform(req.Platform)
		if string(platform) != req.Platform {
			writeError(c, apperr.InvalidArgument(fmt.Errorf("unknown platform %q", req.Platform)))
			return
		}
		query.With(repository.PlatformField, string(platform))
	}

	products, err := tc.tracker.ListProducts(c.Request.Context(), *query)
	if err != nil {
		writeError(c, err)
		return
	}

	response := ListProductsResponse{
		Products: make([]ProductResponse, 0, len(products)),
	}
	for _, product := range products {
		response.Products = append(response.Products, toProductResponse(product))
	}

	// A full page means there may be more.
	if len(products) > 0 && len(products) == query.Limit {
		last := products[len(products)-1]
		paginator := repository.Paginator{
			LastID:        last.ID,
			LastUpdatedAt: last.UpdatedAt,
		}
		response.NextPageToken = paginator.Encode()
	}

	c.JSON(http.StatusOK, response)
}

// ProductDetailResponse is a product with its ascending price history.
type ProductDetailResponse struct {
	Product ProductResponse       `json:"product"`
	History []ObservationResponse `json:"history"`
}

// GetProduct handles the HTTP GET request for a product detail view.
func (tc *TrackerController) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	detail, err := tc.tracker.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProductDetailResponse{
		Product: toProductResponse(detail.Product),
		History: toObservationResponses(detail.History),
	})
}

// AnalyticsRequest sizes the chart. Unset values use the detail view defaults.
type AnalyticsRequest struct {
	Width  *float64 `form:"width"`
	Height *float64 `form:"height"`
	Margin *float64 `form:"margin"`
}

func (r AnalyticsRequest) options() analytics.ChartOptions {
	opts := analytics.DefaultChartOptions()
	if r.Width != nil {
		opts.Width = *r.Width
	}
	if r.Height != nil {
		opts.Height = *r.Height
	}
	if r.Margin != nil {
		opts.Margin = *r.Margin
	}
	return opts
}

// Analytics handles the HTTP GET request for a product's analytics snapshot.
func (tc *TrackerController) Analytics(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var req AnalyticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeError(c, apperr.InvalidArgument(err))
		return
	}

	opts := req.options()
	if err := opts.Validate(); err != nil {
		writeError(c, apperr.InvalidArgument(err))
		return
	}

	snapshot, err := tc.tracker.Analytics(c.Request.Context(), id, opts)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func productID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, apperr.InvalidArgument(fmt.Errorf("invalid product ID: %w", err)))
		return uuid.Nil, false
	}
	return id, true
}
