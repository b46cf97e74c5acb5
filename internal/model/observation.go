package model

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidObservation is returned when a price is not a usable number.
	ErrInvalidObservation = errors.New("invalid price observation")
)

// PriceObservation is one timestamped price reading in a product's ledger.
type PriceObservation struct {
	ID         int64
	ProductID  uuid.UUID
	Price      float64
	Currency   string
	ObservedAt time.Time
}

// PricePoint is the price/time pair exchanged with the predictor.
type PricePoint struct {
	Price      float64   `json:"price"`
	ObservedAt time.Time `json:"scraped_at"`
}

// InitMeta sets ObservedAt when the caller did not provide one.
func (o *PriceObservation) InitMeta() {
	if o.ObservedAt.IsZero() {
		o.ObservedAt = time.Now()
	}
}

// Validate checks that the price is finite and non-negative.
func (o *PriceObservation) Validate() error {
	if math.IsNaN(o.Price) || math.IsInf(o.Price, 0) || o.Price < 0 {
		return ErrInvalidObservation
	}
	return nil
}

// Prices extracts the price column of an ordered observation slice.
func Prices(observations []*PriceObservation) []float64 {
	prices := make([]float64, 0, len(observations))
	for _, o := range observations {
		prices = append(prices, o.Price)
	}
	return prices
}

// Points converts observations into predictor input.
func Points(observations []*PriceObservation) []PricePoint {
	points := make([]PricePoint, 0, len(observations))
	for _, o := range observations {
		points = append(points, PricePoint{Price: o.Price, ObservedAt: o.ObservedAt})
	}
	return points
}
