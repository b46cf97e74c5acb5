// Package scraper talks to the external page scraping service.
package scraper

import (
	"context"
	"errors"
	"fmt"

	"github.com/iyhunko/pricehawk/internal/model"
)

// ErrMissingPrice is returned when a scrape succeeded but carried no price.
var ErrMissingPrice = errors.New("scraper returned no price")

// Snapshot is the product state read from a storefront page.
type Snapshot struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	ImageURL string  `json:"image_url"`
	Platform string  `json:"platform"`
}

// Metadata returns the descriptive fields of the snapshot.
func (s *Snapshot) Metadata() *model.Metadata {
	return &model.Metadata{
		Name:     s.Name,
		ImageURL: s.ImageURL,
		Platform: model.ParsePlatform(s.Platform),
		Currency: s.Currency,
	}
}

// Scraper fetches the current state of a product page.
type Scraper interface {
	Scrape(ctx context.Context, productURL string) (*Snapshot, error)
}

// StatusError is a non-2xx answer from the scraping service.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("scraper responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("scraper responded with status %d: %s", e.StatusCode, e.Detail)
}
