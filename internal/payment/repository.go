package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vasiliy-maslov/marketfresh/internal/apperror"
	"github.com/vasiliy-maslov/marketfresh/internal/db"
)

var (
	ErrOrderNotPayable             = apperror.New(apperror.OrderNotPayable, "order is not awaiting payment")
	ErrPaymentIntentNotFound       = apperror.New(apperror.PaymentIntentNotFound, "payment intent not found")
	ErrPaymentIntentNotConfirmable = apperror.New(apperror.PaymentIntentNotConfirmable, "payment intent cannot be confirmed")
)

type Repository interface {
	Create(ctx context.Context, i *Intent) error
	// LockByID reads the intent and holds a row lock until the surrounding transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*Intent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	// FailPending marks every other intent of the order still awaiting confirmation as failed.
	FailPending(ctx context.Context, orderID, exceptID uuid.UUID) (int64, error)
}

type postgresRepository struct {
	db *db.Postgres
}

func NewRepository(pg *db.Postgres) Repository {
	return &postgresRepository{db: pg}
}

func (r *postgresRepository) Create(ctx context.Context, i *Intent) error {
	query := `
		INSERT INTO payment_intents (id, provider, order_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Querier(ctx).Exec(ctx, query, i.ID, i.Provider, i.OrderID, string(i.Status), i.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert payment intent %s: %w", i.ID, err)
	}

	return nil
}

func (r *postgresRepository) LockByID(ctx context.Context, id uuid.UUID) (*Intent, error) {
	query := `
		SELECT id, provider, order_id, status, created_at
		FROM payment_intents
		WHERE id = $1
		FOR UPDATE
	`

	var i Intent
	err := r.db.Querier(ctx).QueryRow(ctx, query, id).Scan(&i.ID, &i.Provider, &i.OrderID, &i.Status, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentIntentNotFound
		}
		return nil, fmt.Errorf("repository: failed to lock payment intent %s: %w", id, err)
	}

	return &i, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	query := `UPDATE payment_intents SET status = $1 WHERE id = $2 AND status = $3`

	cmdTag, err := r.db.Querier(ctx).Exec(ctx, query, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("repository: failed to update status of payment intent %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrPaymentIntentNotConfirmable
	}

	return nil
}

func (r *postgresRepository) FailPending(ctx context.Context, orderID, exceptID uuid.UUID) (int64, error) {
	query := `
		UPDATE payment_intents
		SET status = $1
		WHERE order_id = $2 AND id <> $3 AND status = $4
	`

	cmdTag, err := r.db.Querier(ctx).Exec(ctx, query,
		string(StatusFailed),
		orderID,
		exceptID,
		string(StatusRequiresConfirmation),
	)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to fail pending intents of order %s: %w", orderID, err)
	}

	return cmdTag.RowsAffected(), nil
}
