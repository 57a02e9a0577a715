package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vasiliy-maslov/marketfresh/internal/apperror"
	"github.com/vasiliy-maslov/marketfresh/internal/cart"
	"github.com/vasiliy-maslov/marketfresh/internal/db"
)

var (
	ErrOrderNotFound = apperror.New(apperror.OrderNotFound, "order not found")
	ErrCartEmpty     = apperror.New(apperror.CartEmpty, "cart is empty")

	// ErrStatusChanged is returned by UpdateStatus when the order left the expected status.
	ErrStatusChanged = errors.New("order status changed")
)

type Repository interface {
	// Create inserts the order and its items.
	Create(ctx context.Context, o *Order) error
	// GetByID returns the order header without items.
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	Items(ctx context.Context, orderID uuid.UUID) ([]Item, error)
	// LockStatus reads the order status and holds a row lock until the surrounding transaction ends.
	LockStatus(ctx context.Context, id uuid.UUID) (Status, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
}

type postgresRepository struct {
	db *db.Postgres
}

func NewRepository(pg *db.Postgres) Repository {
	return &postgresRepository{db: pg}
}

func (r *postgresRepository) Create(ctx context.Context, o *Order) error {
	q := r.db.Querier(ctx)

	queryOrder := `
		INSERT INTO orders (id, cart_id, status, total_cents, customer_name, customer_email, customer_phone, delivery_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := q.Exec(ctx, queryOrder,
		o.ID,
		o.CartID,
		string(o.Status),
		o.TotalCents,
		o.Customer.Name,
		o.Customer.Email,
		o.Customer.Phone,
		o.Customer.DeliveryAddress,
		o.CreatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err, "orders_cart_id_key") {
			return cart.ErrCartNotOpen
		}
		return fmt.Errorf("repository: failed to insert order %s: %w", o.ID, err)
	}

	queryItem := `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price_cents)
		VALUES ($1, $2, $3, $4)
	`
	batch := &pgx.Batch{}
	for _, it := range o.Items {
		batch.Queue(queryItem, o.ID, it.ProductID, it.Quantity, it.UnitPriceCents)
	}

	br := q.SendBatch(ctx, batch)
	for range o.Items {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("repository: failed to insert items of order %s: %w", o.ID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("repository: failed to close order items batch: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `
		SELECT id, cart_id, status, total_cents, customer_name, customer_email, customer_phone, delivery_address, created_at
		FROM orders
		WHERE id = $1
	`

	var o Order
	err := r.db.Querier(ctx).QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.CartID,
		&o.Status,
		&o.TotalCents,
		&o.Customer.Name,
		&o.Customer.Email,
		&o.Customer.Phone,
		&o.Customer.DeliveryAddress,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	return &o, nil
}

func (r *postgresRepository) Items(ctx context.Context, orderID uuid.UUID) ([]Item, error) {
	query := `
		SELECT oi.product_id, oi.quantity, oi.unit_price_cents, p.type, p.name, p.unit, p.origin, p.freshness_date
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY p.created_at DESC, p.id
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query items of order %s: %w", orderID, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ProductID,
			&it.Quantity,
			&it.UnitPriceCents,
			&it.Product.Type,
			&it.Product.Name,
			&it.Product.Unit,
			&it.Product.Origin,
			&it.Product.FreshnessDate,
		); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		it.Product.ID = it.ProductID
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}

	return items, nil
}

func (r *postgresRepository) LockStatus(ctx context.Context, id uuid.UUID) (Status, error) {
	query := `SELECT status FROM orders WHERE id = $1 FOR UPDATE`

	var status Status
	err := r.db.Querier(ctx).QueryRow(ctx, query, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrOrderNotFound
		}
		return "", fmt.Errorf("repository: failed to lock order %s: %w", id, err)
	}

	return status, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	query := `UPDATE orders SET status = $1 WHERE id = $2 AND status = $3`

	cmdTag, err := r.db.Querier(ctx).Exec(ctx, query, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("repository: failed to update status of order %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrStatusChanged
	}

	return nil
}
