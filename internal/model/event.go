package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventStatus is the delivery state of an outbox event.
type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusProcessed EventStatus = "processed"
	EventStatusFailed    EventStatus = "failed"
)

const (
	// EventTypePriceObserved is written for every committed observation.
	EventTypePriceObserved = "price.observed"
	// EventTypeAllTimeLow is written when the observed price reaches the lowest price.
	EventTypeAllTimeLow = "price.all_time_low"
)

// Event is an outbox row written in the same transaction as the state change it describes.
type Event struct {
	ID          uuid.UUID
	EventType   string
	EventData   json.RawMessage
	Status      EventStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// PriceEvent is the payload of price events.
type PriceEvent struct {
	ProductID   string    `json:"product_id"`
	URL         string    `json:"url"`
	Name        string    `json:"name"`
	Platform    Platform  `json:"platform"`
	Price       float64   `json:"price"`
	LowestPrice float64   `json:"lowest_price"`
	Currency    string    `json:"currency"`
	ObservedAt  time.Time `json:"observed_at"`
}

// InitMeta assigns the id and creation time and defaults the status to pending.
func (e *Event) InitMeta() {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	if e.Status == "" {
		e.Status = EventStatusPending
	}
}

// NewPriceEvent marshals the payload into a pending event of the given type.
func NewPriceEvent(eventType string, product *Product, obs *PriceObservation) (*Event, error) {
	payload := PriceEvent{
		ProductID:  product.ID.String(),
		URL:        product.URL,
		Name:       product.Name,
		Platform:   product.Platform,
		Price:      obs.Price,
		Currency:   obs.Currency,
		ObservedAt: obs.ObservedAt,
	}
	if product.LowestPrice != nil {
		payload.LowestPrice = *product.LowestPrice
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal price event: %w", err)
	}

	return &Event{
		EventType: eventType,
		EventData: data,
		Status:    EventStatusPending,
	}, nil
}
