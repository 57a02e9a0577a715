package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vasiliy-maslov/marketfresh/internal/apperror"
	"github.com/vasiliy-maslov/marketfresh/internal/db"
	"github.com/vasiliy-maslov/marketfresh/internal/product"
)

var (
	ErrCartNotFound = apperror.New(apperror.CartNotFound, "cart not found")
	ErrCartNotOpen  = apperror.New(apperror.CartNotOpen, "cart is not open")
)

type Repository interface {
	Create(ctx context.Context, c *Cart) error
	// GetByID returns the cart header without items.
	GetByID(ctx context.Context, id uuid.UUID) (*Cart, error)
	// LockStatus reads the cart status and holds a row lock until the surrounding transaction ends.
	LockStatus(ctx context.Context, id uuid.UUID) (Status, error)
	Items(ctx context.Context, cartID uuid.UUID) ([]Item, error)
	UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error
	// SetStatus moves the cart from one status to another. It fails with ErrCartNotOpen when
	// the cart is no longer in the from status.
	SetStatus(ctx context.Context, id uuid.UUID, from, to Status) error
}

type postgresRepository struct {
	db *db.Postgres
}

func NewRepository(pg *db.Postgres) Repository {
	return &postgresRepository{db: pg}
}

func (r *postgresRepository) Create(ctx context.Context, c *Cart) error {
	query := `INSERT INTO carts (id, status, created_at) VALUES ($1, $2, $3)`

	if _, err := r.db.Querier(ctx).Exec(ctx, query, c.ID, string(c.Status), c.CreatedAt); err != nil {
		return fmt.Errorf("repository: failed to insert cart %s: %w", c.ID, err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Cart, error) {
	query := `SELECT id, status, created_at FROM carts WHERE id = $1`

	var c Cart
	err := r.db.Querier(ctx).QueryRow(ctx, query, id).Scan(&c.ID, &c.Status, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("repository: failed to select cart by id %s: %w", id, err)
	}

	return &c, nil
}

func (r *postgresRepository) LockStatus(ctx context.Context, id uuid.UUID) (Status, error) {
	query := `SELECT status FROM carts WHERE id = $1 FOR UPDATE`

	var status Status
	err := r.db.Querier(ctx).QueryRow(ctx, query, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrCartNotFound
		}
		return "", fmt.Errorf("repository: failed to lock cart %s: %w", id, err)
	}

	return status, nil
}

func (r *postgresRepository) Items(ctx context.Context, cartID uuid.UUID) ([]Item, error) {
	query := `
		SELECT ci.product_id, ci.quantity, p.type, p.name, p.price_cents, p.unit, p.origin, p.freshness_date, p.stock_qty
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY p.created_at DESC, p.id
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query items of cart %s: %w", cartID, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ProductID,
			&it.Quantity,
			&it.Product.Type,
			&it.Product.Name,
			&it.Product.PriceCents,
			&it.Product.Unit,
			&it.Product.Origin,
			&it.Product.FreshnessDate,
			&it.Product.StockQty,
		); err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart item: %w", err)
		}
		it.Product.ID = it.ProductID
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating cart items: %w", err)
	}

	return items, nil
}

func (r *postgresRepository) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
	`

	if _, err := r.db.Querier(ctx).Exec(ctx, query, cartID, productID, quantity); err != nil {
		if db.IsForeignKeyViolation(err, "cart_items_product_id_fkey") {
			return product.ErrProductNotFound
		}
		return fmt.Errorf("repository: failed to upsert item %s in cart %s: %w", productID, cartID, err)
	}

	return nil
}

func (r *postgresRepository) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`

	if _, err := r.db.Querier(ctx).Exec(ctx, query, cartID, productID); err != nil {
		return fmt.Errorf("repository: failed to delete item %s from cart %s: %w", productID, cartID, err)
	}

	return nil
}

func (r *postgresRepository) SetStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	query := `UPDATE carts SET status = $1 WHERE id = $2 AND status = $3`

	cmdTag, err := r.db.Querier(ctx).Exec(ctx, query, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("repository: failed to update status of cart %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrCartNotOpen
	}

	return nil
}
