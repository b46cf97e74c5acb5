package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Product represents a tracked item identified by its source URL.
// CurrentPrice and LowestPrice stay nil until the first observation is applied.
type Product struct {
	ID           uuid.UUID
	URL          string
	Name         string
	ImageURL     string
	Platform     Platform
	Currency     string
	CurrentPrice *float64
	LowestPrice  *float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Metadata is the descriptive part of a scraped product snapshot.
type Metadata struct {
	Name     string
	ImageURL string
	Platform Platform
	Currency string
}

// NewProduct builds an unsaved product for the given normalized URL.
func NewProduct(productURL string) *Product {
	now := time.Now()
	return &Product{
		ID:        IdentityFromURL(productURL),
		URL:       productURL,
		Platform:  DetectPlatform(productURL),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// InitMeta initializes the product identity and timestamps.
func (p *Product) InitMeta() {
	if p.ID == uuid.Nil {
		p.ID = IdentityFromURL(p.URL)
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// HasPrice reports whether at least one observation was applied.
func (p *Product) HasPrice() bool {
	return p.CurrentPrice != nil
}

// ApplyObservation folds a freshly observed price into the product state.
// LowestPrice never increases: it is compared against the stored value, not overwritten.
// Metadata only fills fields that are still empty.
func (p *Product) ApplyObservation(price float64, meta *Metadata, now time.Time) error {
	if err := ValidatePositivePrice(price); err != nil {
		return err
	}

	current := price
	p.CurrentPrice = &current

	lowest := price
	if p.LowestPrice != nil && *p.LowestPrice < lowest {
		lowest = *p.LowestPrice
	}
	p.LowestPrice = &lowest
	p.UpdatedAt = now

	if meta != nil {
		if p.Name == "" {
			p.Name = meta.Name
		}
		if p.ImageURL == "" {
			p.ImageURL = meta.ImageURL
		}
		if p.Platform == "" || p.Platform == PlatformOther {
			if meta.Platform != "" {
				p.Platform = meta.Platform
			}
		}
		if p.Currency == "" {
			p.Currency = meta.Currency
		}
	}

	return nil
}

// IsAtAllTimeLow reports whether the current price matches the lowest price ever seen.
func (p *Product) IsAtAllTimeLow() bool {
	if p.CurrentPrice == nil || p.LowestPrice == nil {
		return false
	}
	return *p.CurrentPrice <= *p.LowestPrice
}

// ValidatePositivePrice rejects prices that cannot be applied to a product.
func ValidatePositivePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return ErrInvalidObservation
	}
	return nil
}
