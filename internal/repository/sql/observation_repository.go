package sql

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/pricehawk/internal/model"
	"github.com/iyhunko/pricehawk/internal/repository"
)

const (
	observationsAscQuery = `SELECT id, product_id, price, currency, observed_at
	                        FROM price_observations
	                        WHERE product_id = $1
	                        ORDER BY observed_at ASC, id ASC`
	observationsDescQuery = `SELECT id, product_id, price, currency, observed_at
	                         FROM price_observations
	                         WHERE product_id = $1
	                         ORDER BY observed_at DESC, id DESC`
)

// ObservationRepository is the Postgres price history ledger. It never updates or deletes rows.
type ObservationRepository struct {
	db              *sql.DB
	txn             *sql.Tx
	defaultCurrency string
}

// NewObservationRepository creates a ledger that stamps defaultCurrency on observations without one.
func NewObservationRepository(db *sql.DB, defaultCurrency string) *ObservationRepository {
	return &ObservationRepository{db: db, defaultCurrency: defaultCurrency}
}

// getExecutor returns the active executor (transaction if exists, otherwise db)
func (r *ObservationRepository) getExecutor() dbExecutor {
	if r.txn != nil {
		return r.txn
	}
	return r.db
}

// Append inserts one observation and returns it with its assigned id.
func (r *ObservationRepository) Append(ctx context.Context, obs *model.PriceObservation) (*model.PriceObservation, error) {
	if err := obs.Validate(); err != nil {
		return nil, err
	}
	obs.InitMeta()
	if obs.Currency == "" {
		obs.Currency = r.defaultCurrency
	}

	query := `INSERT INTO price_observations (product_id, price, currency, observed_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	if err := stmt.QueryRowContext(ctx, obs.ProductID, obs.Price, obs.Currency, obs.ObservedAt).Scan(&obs.ID); err != nil {
		return nil, fmt.Errorf("failed to insert price observation: %w", err)
	}

	return obs, nil
}

// Observations returns the ledger of a product as a lazy sequence.
// Each range over the sequence runs the query again.
func (r *ObservationRepository) Observations(ctx context.Context, productID uuid.UUID, order repository.Order) iter.Seq2[*model.PriceObservation, error] {
	query := observationsAscQuery
	if order == repository.Descending {
		query = observationsDescQuery
	}

	return func(yield func(*model.PriceObservation, error) bool) {
		stmt, err := r.getExecutor().PrepareContext(ctx, query)
		if err != nil {
			yield(nil, fmt.Errorf("failed to prepare select statement: %w", err))
			return
		}
		defer stmt.Close()

		rows, err := stmt.QueryContext(ctx, productID)
		if err != nil {
			yield(nil, fmt.Errorf("failed to query price observations: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var obs model.PriceObservation
			if err := rows.Scan(&obs.ID, &obs.ProductID, &obs.Price, &obs.Currency, &obs.ObservedAt); err != nil {
				yield(nil, fmt.Errorf("failed to scan price observation: %w", err))
				return
			}
			if !yield(&obs, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("error iterating rows: %w", err))
		}
	}
}

// List collects the ledger of a product into a slice.
func (r *ObservationRepository) List(ctx context.Context, productID uuid.UUID, order repository.Order) ([]*model.PriceObservation, error) {
	observations := []*model.PriceObservation{}
	for obs, err := range r.Observations(ctx, productID, order) {
		if err != nil {
			return nil, err
		}
		observations = append(observations, obs)
	}
	return observations, nil
}

// LatestObservedAt returns the time of the newest observation, or nil for an empty ledger.
func (r *ObservationRepository) LatestObservedAt(ctx context.Context, productID uuid.UUID) (*time.Time, error) {
	query := `SELECT MAX(observed_at) FROM price_observations WHERE product_id = $1`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	var latest sql.NullTime
	if err := stmt.QueryRowContext(ctx, productID).Scan(&latest); err != nil {
		return nil, fmt.Errorf("failed to query latest observation: %w", err)
	}
	if !latest.Valid {
		return nil, nil
	}

	return &latest.Time, nil
}
