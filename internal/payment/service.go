package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketfresh/internal/db"
	"github.com/vasiliy-maslov/marketfresh/internal/events"
	"github.com/vasiliy-maslov/marketfresh/internal/order"
)

// OrderStore is the part of the order repository the payment flow drives.
type OrderStore interface {
	LockStatus(ctx context.Context, id uuid.UUID) (order.Status, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to order.Status) error
}

type Service interface {
	CreateIntent(ctx context.Context, orderID uuid.UUID) (*Intent, error)
	// ConfirmIntent marks the intent succeeded and its order paid in one transaction.
	ConfirmIntent(ctx context.Context, intentID uuid.UUID) (*Intent, error)
}

type service struct {
	repo      Repository
	orders    OrderStore
	tx        db.Transactor
	publisher events.Publisher
	provider  string
	now       func() time.Time
}

func NewService(repo Repository, orders OrderStore, tx db.Transactor, publisher events.Publisher, provider string, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &service{
		repo:      repo,
		orders:    orders,
		tx:        tx,
		publisher: publisher,
		provider:  provider,
		now:       now,
	}
}

func (s *service) CreateIntent(ctx context.Context, orderID uuid.UUID) (*Intent, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate payment intent id: %w", err)
	}

	intent := &Intent{
		ID:        id,
		Provider:  s.provider,
		OrderID:   orderID,
		Status:    StatusRequiresConfirmation,
		CreatedAt: s.now().UTC(),
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		status, err := s.orders.LockStatus(ctx, orderID)
		if err != nil {
			return err
		}
		if status != order.StatusPendingPayment {
			log.Warn().Stringer("order_id", orderID).Stringer("status", status).Msg("service: payment intent requested for an order not awaiting payment")
			return ErrOrderNotPayable
		}
		return s.repo.Create(ctx, intent)
	})
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) || errors.Is(err, ErrOrderNotPayable) {
			return nil, err
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to create payment intent")
		return nil, fmt.Errorf("service: failed to create payment intent: %w", err)
	}

	log.Info().Stringer("payment_intent_id", intent.ID).Stringer("order_id", orderID).Str("provider", intent.Provider).Msg("service: payment intent created")
	return intent, nil
}

func (s *service) ConfirmIntent(ctx context.Context, intentID uuid.UUID) (*Intent, error) {
	var confirmed *Intent

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		intent, err := s.repo.LockByID(ctx, intentID)
		if err != nil {
			return err
		}
		if intent.Status != StatusRequiresConfirmation {
			log.Warn().Stringer("payment_intent_id", intentID).Stringer("status", intent.Status).Msg("service: payment intent is not awaiting confirmation")
			return ErrPaymentIntentNotConfirmable
		}

		if err := s.orders.UpdateStatus(ctx, intent.OrderID, order.StatusPendingPayment, order.StatusPaid); err != nil {
			if errors.Is(err, order.ErrStatusChanged) {
				log.Warn().Stringer("payment_intent_id", intentID).Stringer("order_id", intent.OrderID).Msg("service: order no longer awaiting payment")
				return ErrPaymentIntentNotConfirmable
			}
			return err
		}

		if err := s.repo.UpdateStatus(ctx, intentID, StatusRequiresConfirmation, StatusSucceeded); err != nil {
			return err
		}

		failed, err := s.repo.FailPending(ctx, intent.OrderID, intentID)
		if err != nil {
			return err
		}
		if failed > 0 {
			log.Info().Stringer("order_id", intent.OrderID).Int64("count", failed).Msg("service: superseded payment intents marked failed")
		}

		intent.Status = StatusSucceeded
		confirmed = intent
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPaymentIntentNotFound) || errors.Is(err, ErrPaymentIntentNotConfirmable) {
			return nil, err
		}
		log.Error().Err(err).Stringer("payment_intent_id", intentID).Msg("service: failed to confirm payment intent")
		return nil, fmt.Errorf("service: failed to confirm payment intent: %w", err)
	}

	log.Info().Stringer("payment_intent_id", confirmed.ID).Stringer("order_id", confirmed.OrderID).Msg("service: payment intent confirmed, order paid")

	events.PublishBestEffort(ctx, s.publisher, events.NewPaymentSucceeded(events.PaymentSucceeded{
		PaymentIntentID: confirmed.ID,
		OrderID:         confirmed.OrderID,
		Provider:        confirmed.Provider,
	}))

	return confirmed, nil
}
