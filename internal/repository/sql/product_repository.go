package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iyhunko/pricehawk/internal/model"
	"github.com/iyhunko/pricehawk/internal/repository"
)

const productColumns = "id, url, name, image_url, platform, currency, current_price, lowest_price, created_at, updated_at"

// ProductRepository implements repository.ProductRepository on Postgres.
type ProductRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// getExecutor returns the active executor (transaction if exists, otherwise db)
func (r *ProductRepository) getExecutor() dbExecutor {
	if r.txn != nil {
		return r.txn
	}
	return r.db
}

// FindByID retrieves a single product by ID.
func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.findOne(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
}

// FindByURL retrieves a single product by its normalized URL.
func (r *ProductRepository) FindByURL(ctx context.Context, productURL string) (*model.Product, error) {
	return r.findOne(ctx, "SELECT "+productColumns+" FROM products WHERE url = $1", productURL)
}

// findForUpdate locks the product row until the surrounding transaction ends.
func (r *ProductRepository) findForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.findOne(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1 FOR UPDATE", id)
}

func (r *ProductRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.Product, error) {
	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	product, err := scanProduct(stmt.QueryRowContext(ctx, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product not found: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return product, nil
}

// List retrieves products ordered by most recent update.
func (r *ProductRepository) List(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + productColumns + " FROM products WHERE 1=1")

	var args []interface{}
	argIndex := 1

	if platform, ok := query.Values[repository.PlatformField]; ok {
		queryBuilder.WriteString(fmt.Sprintf(" AND platform = $%d", argIndex))
		args = append(args, platform)
		argIndex++
	}

	if query.Paginator != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND (updated_at, id) < ($%d, $%d)", argIndex, argIndex+1))
		args = append(args, query.Paginator.LastUpdatedAt, query.Paginator.LastID)
		argIndex += 2
	}

	queryBuilder.WriteString(" ORDER BY updated_at DESC, id DESC")

	limit := query.Limit
	if limit <= 0 {
		limit = repository.DefaultPaginationLimit
	}
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argIndex))
	args = append(args, limit)

	stmt, err := r.getExecutor().PrepareContext(ctx, queryBuilder.String())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// insertIfAbsent creates the product row unless it already exists.
// It reports whether a row was inserted.
func (r *ProductRepository) insertIfAbsent(ctx context.Context, product *model.Product) (bool, error) {
	product.InitMeta()

	query := `INSERT INTO products (` + productColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          ON CONFLICT (id) DO NOTHING`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return false, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		product.ID, product.URL, product.Name, product.ImageURL, product.Platform, product.Currency,
		product.CurrentPrice, product.LowestPrice, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert product: %w", mapUniqueViolation(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

// update persists the mutable state of a product.
func (r *ProductRepository) update(ctx context.Context, product *model.Product) error {
	query := `UPDATE products
	          SET name = $2, image_url = $3, platform = $4, currency = $5,
	              current_price = $6, lowest_price = $7, updated_at = $8
	          WHERE id = $1`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare update statement: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		product.ID, product.Name, product.ImageURL, product.Platform, product.Currency,
		product.CurrentPrice, product.LowestPrice, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("product not found: %w", repository.ErrNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var (
		product      model.Product
		platform     string
		currentPrice sql.NullFloat64
		lowestPrice  sql.NullFloat64
	)
	err := row.Scan(
		&product.ID, &product.URL, &product.Name, &product.ImageURL, &platform, &product.Currency,
		&currentPrice, &lowestPrice, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.Platform = model.Platform(platform)
	if currentPrice.Valid {
		product.CurrentPrice = &currentPrice.Float64
	}
	if lowestPrice.Valid {
		product.LowestPrice = &lowestPrice.Float64
	}

	return &product, nil
}
