package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketfresh/internal/apperror"
	"github.com/vasiliy-maslov/marketfresh/internal/db"
)

var (
	ErrProductNotFound   = apperror.New(apperror.ProductNotFound, "product not found")
	ErrInsufficientStock = apperror.New(apperror.InsufficientStock, "insufficient stock")
)

type Repository interface {
	List(ctx context.Context, filter Filter) ([]Product, error)
	// GetByID returns an active product without its cold-chain spec.
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// GetColdChain returns nil, nil when the product has no recorded spec.
	GetColdChain(ctx context.Context, productID uuid.UUID) (*ColdChainSpec, error)
	ColdChainSpecs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]ColdChainSpec, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, p *Product) error
	// DecrementStock subtracts qty only when enough stock remains.
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) error
}

type postgresRepository struct {
	db *db.Postgres
}

func NewRepository(pg *db.Postgres) Repository {
	return &postgresRepository{db: pg}
}

const productColumns = `id, type, name, description, price_cents, unit, origin, freshness_date, stock_qty, is_active, created_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Type,
		&p.Name,
		&p.Description,
		&p.PriceCents,
		&p.Unit,
		&p.Origin,
		&p.FreshnessDate,
		&p.StockQty,
		&p.IsActive,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) List(ctx context.Context, filter Filter) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_active = TRUE`
	args := []any{}
	if filter.Type != "" {
		query += ` AND type = $1`
		args = append(args, string(filter.Type))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}

	return products, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND is_active = TRUE`

	p, err := scanProduct(r.db.Querier(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}

	return p, nil
}

func (r *postgresRepository) GetColdChain(ctx context.Context, productID uuid.UUID) (*ColdChainSpec, error) {
	query := `
		SELECT storage_min_c, storage_max_c, max_hours_outside_cold_chain, cold_chain_required
		FROM meat_details
		WHERE product_id = $1
	`

	var spec ColdChainSpec
	err := r.db.Querier(ctx).QueryRow(ctx, query, productID).Scan(
		&spec.StorageMinC,
		&spec.StorageMaxC,
		&spec.MaxHoursOutside,
		&spec.Required,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: failed to select cold chain for product %s: %w", productID, err)
	}

	return &spec, nil
}

func (r *postgresRepository) ColdChainSpecs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]ColdChainSpec, error) {
	specs := make(map[uuid.UUID]ColdChainSpec, len(productIDs))
	if len(productIDs) == 0 {
		return specs, nil
	}

	ids := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		ids = append(ids, id.String())
	}

	query := `
		SELECT product_id, storage_min_c, storage_max_c, max_hours_outside_cold_chain, cold_chain_required
		FROM meat_details
		WHERE product_id = ANY($1::uuid[])
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query cold chain specs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID uuid.UUID
			spec      ColdChainSpec
		)
		if err := rows.Scan(&productID, &spec.StorageMinC, &spec.StorageMaxC, &spec.MaxHoursOutside, &spec.Required); err != nil {
			return nil, fmt.Errorf("repository: failed to scan cold chain spec: %w", err)
		}
		specs[productID] = spec
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating cold chain specs: %w", err)
	}

	return specs, nil
}

func (r *postgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Querier(ctx).QueryRow(ctx, `SELECT COUNT(1) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("repository: failed to count products: %w", err)
	}
	return n, nil
}

func (r *postgresRepository) Create(ctx context.Context, p *Product) error {
	q := r.db.Querier(ctx)

	queryProduct := `
		INSERT INTO products (id, type, name, description, price_cents, unit, origin, freshness_date, stock_qty, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := q.Exec(ctx, queryProduct,
		p.ID,
		string(p.Type),
		p.Name,
		p.Description,
		p.PriceCents,
		p.Unit,
		p.Origin,
		p.FreshnessDate,
		p.StockQty,
		p.IsActive,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert product %s: %w", p.ID, err)
	}

	if p.ColdChain == nil {
		return nil
	}

	queryMeat := `
		INSERT INTO meat_details (product_id, storage_min_c, storage_max_c, max_hours_outside_cold_chain, cold_chain_required)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = q.Exec(ctx, queryMeat,
		p.ID,
		p.ColdChain.StorageMinC,
		p.ColdChain.StorageMaxC,
		p.ColdChain.MaxHoursOutside,
		p.ColdChain.Required,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert meat details for product %s: %w", p.ID, err)
	}

	return nil
}

func (r *postgresRepository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) error {
	query := `
		UPDATE products
		SET stock_qty = stock_qty - $1
		WHERE id = $2 AND stock_qty >= $1
	`

	cmdTag, err := r.db.Querier(ctx).Exec(ctx, query, qty, productID)
	if err != nil {
		return fmt.Errorf("repository: failed to decrement stock for product %s: %w", productID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		log.Warn().Stringer("product_id", productID).Int("quantity", qty).Msg("repository: conditional stock decrement matched no row")
		return ErrInsufficientStock
	}

	return nil
}
