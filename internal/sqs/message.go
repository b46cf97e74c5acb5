package sqs

import (
	"encoding/json"
	"time"

	"github.com/iyhunko/pricehawk/internal/model"
)

// eventTypeAttribute carries the event type as an SQS message attribute.
const eventTypeAttribute = "event_type"

// PriceMessage is the body of a price event on the queue.
type PriceMessage struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	CreatedAt time.Time        `json:"created_at"`
	Data      model.PriceEvent `json:"data"`
}

// NewPriceMessage wraps an outbox event for publishing.
func NewPriceMessage(event *model.Event) (PriceMessage, error) {
	msg := PriceMessage{
		EventID:   event.ID.String(),
		EventType: event.EventType,
		CreatedAt: event.CreatedAt,
	}
	if err := json.Unmarshal(event.EventData, &msg.Data); err != nil {
		return PriceMessage{}, err
	}
	return msg, nil
}
