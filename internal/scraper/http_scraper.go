package scraper

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

const maxErrorBody = 4 << 10

// HTTPScraper implements Scraper against the scraping service REST API.
type HTTPScraper struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPScraper creates a scraper client with the given request timeout.
func NewHTTPScraper(baseURL string, timeout time.Duration) *HTTPScraper {
	return &HTTPScraper{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

type scrapeRequest struct {
	URL       string `json:"url"`
	ProductID string `json:"product_id"`
}

// scrapeResponse is the expected JSON shape from the scraping service.
type scrapeResponse struct {
	Name     string   `json:"name"`
	Price    *float64 `json:"price"`
	Currency string   `json:"currency"`
	ImageURL string   `json:"image_url"`
	Platform string   `json:"platform"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *HTTPScraper) Scrape(ctx context.Context, productURL string) (*Snapshot, error) {
	payload, err := json.Marshal(scrapeRequest{
		URL:       productURL,
		ProductID: model.IdentityFromURL(productURL).String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/scrape", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build scrape request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call scraper: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	var body scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode scrape response: %w", err)
	}
	if body.Price == nil {
		return nil, ErrMissingPrice
	}

	return &Snapshot{
		Name:     body.Name,
		Price:    *body.Price,
		Currency: body.Currency,
		ImageURL: body.ImageURL,
		Platform: body.Platform,
	}, nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorResponse
	detail := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		detail = body.Detail
	}
	return &StatusError{StatusCode: resp.StatusCode, Detail: detail}
}
