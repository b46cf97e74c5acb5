package sql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/pricehawk/internal/model"
	"github.com/iyhunko/pricehawk/internal/repository"
)

// TransactionalRepository applies observations to products and the ledger in one transaction.
type TransactionalRepository struct {
	db              *sql.DB
	defaultCurrency string
	now             func() time.Time
}

// NewTransactionalRepository creates a new TransactionalRepository
func NewTransactionalRepository(db *sql.DB, defaultCurrency string) *TransactionalRepository {
	return &TransactionalRepository{db: db, defaultCurrency: defaultCurrency, now: time.Now}
}

// RecordObservation creates the product row if needed, locks it, applies the price,
// appends the observation and writes the outbox events. Nothing is committed on error.
//
// The row lock serializes concurrent ingestions of the same product only; the lowest price
// is recomputed from the locked row so a late writer can never raise it.
func (tr *TransactionalRepository) RecordObservation(ctx context.Context, product *model.Product, price float64, meta *model.Metadata) (*repository.Recorded, error) {
	if err := model.ValidatePositivePrice(price); err != nil {
		return nil, err
	}

	var recorded *repository.Recorded
	err := withinTransaction(ctx, tr.db, func(tx *sql.Tx) error {
		productRepo := &ProductRepository{db: tr.db, txn: tx}
		ledger := &ObservationRepository{db: tr.db, txn: tx, defaultCurrency: tr.defaultCurrency}
		eventRepo := &EventRepository{db: tr.db, txn: tx}

		created, err := productRepo.insertIfAbsent(ctx, product)
		if err != nil {
			return err
		}

		locked, err := productRepo.findForUpdate(ctx, product.ID)
		if err != nil {
			return err
		}

		// keep the ledger non-decreasing in time even if the clock stepped back
		observedAt := tr.now()
		latest, err := ledger.LatestObservedAt(ctx, locked.ID)
		if err != nil {
			return err
		}
		if latest != nil && latest.After(observedAt) {
			observedAt = *latest
		}

		if err := locked.ApplyObservation(price, meta, observedAt); err != nil {
			return err
		}
		if locked.Currency == "" {
			locked.Currency = tr.defaultCurrency
		}
		if err := productRepo.update(ctx, locked); err != nil {
			return err
		}

		currency := locked.Currency
		if meta != nil && meta.Currency != "" {
			currency = meta.Currency
		}
		obs, err := ledger.Append(ctx, &model.PriceObservation{
			ProductID:  locked.ID,
			Price:      price,
			Currency:   currency,
			ObservedAt: observedAt,
		})
		if err != nil {
			return err
		}

		eventTypes := []string{model.EventTypePriceObserved}
		if locked.IsAtAllTimeLow() {
			eventTypes = append(eventTypes, model.EventTypeAllTimeLow)
		}
		for _, eventType := range eventTypes {
			event, err := model.NewPriceEvent(eventType, locked, obs)
			if err != nil {
				return err
			}
			if _, err := eventRepo.Create(ctx, event); err != nil {
				return fmt.Errorf("failed to create %s event: %w", eventType, err)
			}
		}

		recorded = &repository.Recorded{Product: locked, Observation: obs, Created: created}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return recorded, nil
}

// ProductWithHistory reads a product and its ascending ledger from one snapshot,
// so the stored prices always agree with the history.
func (tr *TransactionalRepository) ProductWithHistory(ctx context.Context, id uuid.UUID) (*model.Product, []*model.PriceObservation, error) {
	var (
		product *model.Product
		history []*model.PriceObservation
	)
	err := withinSnapshot(ctx, tr.db, func(tx *sql.Tx) error {
		productRepo := &ProductRepository{db: tr.db, txn: tx}
		ledger := &ObservationRepository{db: tr.db, txn: tx, defaultCurrency: tr.defaultCurrency}

		var err error
		if product, err = productRepo.FindByID(ctx, id); err != nil {
			return err
		}
		history, err = ledger.List(ctx, id, repository.Ascending)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return product, history, nil
}
