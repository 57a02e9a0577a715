package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketfresh/internal/cart"
	"github.com/vasiliy-maslov/marketfresh/internal/db"
	"github.com/vasiliy-maslov/marketfresh/internal/events"
	"github.com/vasiliy-maslov/marketfresh/internal/product"
)

// CartStore is the part of the cart repository checkout needs.
type CartStore interface {
	LockStatus(ctx context.Context, id uuid.UUID) (cart.Status, error)
	Items(ctx context.Context, cartID uuid.UUID) ([]cart.Item, error)
	SetStatus(ctx context.Context, id uuid.UUID, from, to cart.Status) error
}

type StockStore interface {
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) error
}

type Service interface {
	// CreateOrder checks out an open cart: the order, its items, the stock decrements and
	// the cart status change are written in one transaction.
	CreateOrder(ctx context.Context, in CreateInput) (*Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
}

type service struct {
	repo      Repository
	carts     CartStore
	stock     StockStore
	tx        db.Transactor
	publisher events.Publisher
	now       func() time.Time
}

func NewService(repo Repository, carts CartStore, stock StockStore, tx db.Transactor, publisher events.Publisher, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &service{
		repo:      repo,
		carts:     carts,
		stock:     stock,
		tx:        tx,
		publisher: publisher,
		now:       now,
	}
}

func (s *service) CreateOrder(ctx context.Context, in CreateInput) (*Order, error) {
	orderID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate order id: %w", err)
	}

	var created *Order
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		status, err := s.carts.LockStatus(ctx, in.CartID)
		if err != nil {
			return err
		}
		if status != cart.StatusOpen {
			log.Warn().Stringer("cart_id", in.CartID).Stringer("status", status).Msg("service: checkout of a cart that is not open")
			return cart.ErrCartNotOpen
		}

		cartItems, err := s.carts.Items(ctx, in.CartID)
		if err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return ErrCartEmpty
		}

		for _, it := range cartItems {
			if it.Quantity > it.Product.StockQty {
				log.Warn().
					Stringer("cart_id", in.CartID).
					Stringer("product_id", it.ProductID).
					Int("quantity", it.Quantity).
					Int("stock_qty", it.Product.StockQty).
					Msg("service: cart item exceeds stock at checkout")
				return product.ErrInsufficientStock
			}
		}

		o := &Order{
			ID:        orderID,
			CartID:    in.CartID,
			Status:    StatusPendingPayment,
			Customer:  in.Customer,
			Items:     make([]Item, 0, len(cartItems)),
			CreatedAt: s.now().UTC(),
		}
		for _, it := range cartItems {
			line := Item{
				ProductID:      it.ProductID,
				Quantity:       it.Quantity,
				UnitPriceCents: it.Product.PriceCents,
				LineTotalCents: it.Product.PriceCents * int64(it.Quantity),
			}
			o.TotalCents += line.LineTotalCents
			o.Items = append(o.Items, line)
		}

		if err := s.repo.Create(ctx, o); err != nil {
			return err
		}

		for _, it := range o.Items {
			if err := s.stock.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}

		if err := s.carts.SetStatus(ctx, in.CartID, cart.StatusOpen, cart.StatusCheckedOut); err != nil {
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrCartNotFound),
			errors.Is(err, cart.ErrCartNotOpen),
			errors.Is(err, ErrCartEmpty),
			errors.Is(err, product.ErrInsufficientStock):
			return nil, err
		}
		log.Error().Err(err).Stringer("cart_id", in.CartID).Msg("service: failed to create order")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().
		Stringer("order_id", created.ID).
		Stringer("cart_id", created.CartID).
		Int64("total_cents", created.TotalCents).
		Msg("service: order created successfully")

	events.PublishBestEffort(ctx, s.publisher, events.NewOrderCreated(events.OrderCreated{
		OrderID:    created.ID,
		CartID:     created.CartID,
		TotalCents: created.TotalCents,
		CreatedAt:  created.CreatedAt,
	}))

	return s.GetOrder(ctx, created.ID)
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", id).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	items, err := s.repo.Items(ctx, id)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order items in repository")
		return nil, fmt.Errorf("service: failed to fetch order items: %w", err)
	}

	now := s.now()
	for i := range items {
		items[i].LineTotalCents = items[i].UnitPriceCents * int64(items[i].Quantity)
		items[i].Product.FreshnessDays = product.FreshnessDays(items[i].Product.FreshnessDate, now)
	}
	o.Items = items

	return o, nil
}
