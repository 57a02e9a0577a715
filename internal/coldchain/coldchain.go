// Package coldchain derives the storage constraints a whole cart must respect from the
// cold-chain specs of its meat products.
package coldchain

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketfresh/internal/cart"
	"github.com/vasiliy-maslov/marketfresh/internal/product"
)

const Note = "Chaîne du froid requise (produits viande)."

type Requirements struct {
	StorageMinC     float64
	StorageMaxC     float64
	MaxHoursOutside int
	Note            string
	// Conflicting is set when the tightest bounds leave no valid temperature range.
	Conflicting bool
}

type Summary struct {
	HasMeat      bool
	Requirements *Requirements
}

// Aggregate returns the most restrictive combination of specs: the highest minimum, the
// lowest maximum and the shortest time outside the cold chain. It returns nil for no specs.
func Aggregate(specs []product.ColdChainSpec) *Requirements {
	if len(specs) == 0 {
		return nil
	}

	req := &Requirements{
		StorageMinC:     specs[0].StorageMinC,
		StorageMaxC:     specs[0].StorageMaxC,
		MaxHoursOutside: specs[0].MaxHoursOutside,
		Note:            Note,
	}
	for _, s := range specs[1:] {
		req.StorageMinC = max(req.StorageMinC, s.StorageMinC)
		req.StorageMaxC = min(req.StorageMaxC, s.StorageMaxC)
		req.MaxHoursOutside = min(req.MaxHoursOutside, s.MaxHoursOutside)
	}
	req.Conflicting = req.StorageMinC > req.StorageMaxC

	return req
}

type CartReader interface {
	GetCart(ctx context.Context, id uuid.UUID) (*cart.Cart, error)
}

type SpecReader interface {
	ColdChainSpecs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]product.ColdChainSpec, error)
}

type Service interface {
	ComputeForCart(ctx context.Context, cartID uuid.UUID) (*Summary, error)
}

type service struct {
	carts CartReader
	specs SpecReader
}

func NewService(carts CartReader, specs SpecReader) Service {
	return &service{carts: carts, specs: specs}
}

func (s *service) ComputeForCart(ctx context.Context, cartID uuid.UUID) (*Summary, error) {
	c, err := s.carts.GetCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, cart.ErrCartNotFound) {
			return nil, cart.ErrCartNotFound
		}
		return nil, fmt.Errorf("service: failed to load cart for cold chain: %w", err)
	}

	var meatIDs []uuid.UUID
	for _, it := range c.Items {
		if it.Product.Type == product.TypeMeat {
			meatIDs = append(meatIDs, it.ProductID)
		}
	}

	if len(meatIDs) == 0 {
		return &Summary{HasMeat: false}, nil
	}

	byProduct, err := s.specs.ColdChainSpecs(ctx, meatIDs)
	if err != nil {
		log.Error().Err(err).Stringer("cart_id", cartID).Msg("service: failed to fetch cold chain specs in repository")
		return nil, fmt.Errorf("service: failed to fetch cold chain specs: %w", err)
	}

	specs := make([]product.ColdChainSpec, 0, len(meatIDs))
	for _, id := range meatIDs {
		if spec, ok := byProduct[id]; ok {
			specs = append(specs, spec)
		}
	}

	req := Aggregate(specs)
	if req != nil && req.Conflicting {
		log.Warn().
			Stringer("cart_id", cartID).
			Float64("storage_min_c", req.StorageMinC).
			Float64("storage_max_c", req.StorageMaxC).
			Msg("service: cart cold chain specs conflict")
	}

	return &Summary{HasMeat: true, Requirements: req}, nil
}
