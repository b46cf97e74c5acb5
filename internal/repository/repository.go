package repository

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/pricehawk/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("resource not found")
)

// Order is the time ordering of a ledger read.
type Order int

const (
	Ascending Order = iota
	Descending
)

// ProductRepository reads tracked products.
// Writes go through IngestRepository so that state and ledger change together.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByURL(ctx context.Context, productURL string) (*model.Product, error)
	List(ctx context.Context, query Query) ([]*model.Product, error)
}

// ObservationRepository is the append-only price history ledger.
type ObservationRepository interface {
	Append(ctx context.Context, obs *model.PriceObservation) (*model.PriceObservation, error)
	Observations(ctx context.Context, productID uuid.UUID, order Order) iter.Seq2[*model.PriceObservation, error]
	List(ctx context.Context, productID uuid.UUID, order Order) ([]*model.PriceObservation, error)
	LatestObservedAt(ctx context.Context, productID uuid.UUID) (*time.Time, error)
}

// EventRepository stores outbox events.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	ListPending(ctx context.Context, limit int) ([]*model.Event, error)
	UpdateStatus(ctx context.Context, eventID uuid.UUID, status model.EventStatus) error
}

// Recorded is the committed outcome of one ingestion.
type Recorded struct {
	Product     *model.Product
	Observation *model.PriceObservation
	Created     bool
}

// IngestRepository applies an observation to a product and appends it to the ledger atomically,
// and reads both back from a single snapshot.
type IngestRepository interface {
	RecordObservation(ctx context.Context, product *model.Product, price float64, meta *model.Metadata) (*Recorded, error)
	ProductWithHistory(ctx context.Context, id uuid.UUID) (*model.Product, []*model.PriceObservation, error)
}

// UniqueConstraintError represents a database unique constraint violation error.
type UniqueConstraintError struct {
	Detail string
}

func (u *UniqueConstraintError) Error() string {
	return "resource must be unique: " + u.Detail
}
