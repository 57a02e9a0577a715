package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketfresh/internal/db"
	"github.com/vasiliy-maslov/marketfresh/internal/product"
)

var ErrInvalidQuantity = errors.New("quantity must be greater than zero")

// ProductFinder looks up active catalog products.
type ProductFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
}

type Service interface {
	CreateCart(ctx context.Context) (*Cart, error)
	GetCart(ctx context.Context, id uuid.UUID) (*Cart, error)
	// SetItem sets the quantity of a product in an open cart, replacing any previous quantity.
	SetItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	// RemoveItem deletes a line from an open cart. Removing an absent line succeeds.
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
}

type service struct {
	repo     Repository
	products ProductFinder
	tx       db.Transactor
	now      func() time.Time
}

func NewService(repo Repository, products ProductFinder, tx db.Transactor, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     repo,
		products: products,
		tx:       tx,
		now:      now,
	}
}

func (s *service) CreateCart(ctx context.Context) (*Cart, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate cart id: %w", err)
	}

	c := &Cart{
		ID:        id,
		Status:    StatusOpen,
		CreatedAt: s.now().UTC(),
		Items:     []Item{},
	}

	if err := s.repo.Create(ctx, c); err != nil {
		log.Error().Err(err).Msg("service: failed to create cart in repository")
		return nil, fmt.Errorf("service: failed to create cart: %w", err)
	}

	log.Info().Stringer("cart_id", c.ID).Msg("service: cart created")
	return c, nil
}

func (s *service) GetCart(ctx context.Context, id uuid.UUID) (*Cart, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			log.Warn().Stringer("cart_id", id).Msg("service: cart not found by id")
			return nil, ErrCartNotFound
		}
		log.Error().Err(err).Stringer("cart_id", id).Msg("service: failed to fetch cart in repository")
		return nil, fmt.Errorf("service: failed to fetch cart: %w", err)
	}

	items, err := s.repo.Items(ctx, id)
	if err != nil {
		log.Error().Err(err).Stringer("cart_id", id).Msg("service: failed to fetch cart items in repository")
		return nil, fmt.Errorf("service: failed to fetch cart items: %w", err)
	}

	c.Items = items
	c.Price(s.now())

	return c, nil
}

func (s *service) SetItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("service: %w, got %d", ErrInvalidQuantity, quantity)
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.ensureOpen(ctx, cartID); err != nil {
			return err
		}

		p, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}

		if quantity > p.StockQty {
			log.Warn().
				Stringer("cart_id", cartID).
				Stringer("product_id", productID).
				Int("quantity", quantity).
				Int("stock_qty", p.StockQty).
				Msg("service: requested quantity exceeds stock")
			return product.ErrInsufficientStock
		}

		return s.repo.UpsertItem(ctx, cartID, productID, quantity)
	})

	return s.wrap(err, "set cart item", cartID)
}

func (s *service) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.ensureOpen(ctx, cartID); err != nil {
			return err
		}
		return s.repo.DeleteItem(ctx, cartID, productID)
	})

	return s.wrap(err, "remove cart item", cartID)
}

func (s *service) ensureOpen(ctx context.Context, cartID uuid.UUID) error {
	status, err := s.repo.LockStatus(ctx, cartID)
	if err != nil {
		return err
	}
	if status != StatusOpen {
		log.Warn().Stringer("cart_id", cartID).Stringer("status", status).Msg("service: cart is not open")
		return ErrCartNotOpen
	}
	return nil
}

// wrap passes business errors through untouched and wraps everything else.
func (s *service) wrap(err error, op string, cartID uuid.UUID) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrCartNotFound),
		errors.Is(err, ErrCartNotOpen),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, product.ErrInsufficientStock):
		return err
	default:
		log.Error().Err(err).Stringer("cart_id", cartID).Msgf("service: failed to %s", op)
		return fmt.Errorf("service: failed to %s: %w", op, err)
	}
}
