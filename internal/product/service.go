package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketfresh/internal/db"
)

type Service interface {
	ListProducts(ctx context.Context, filter Filter) ([]Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// SeedIfEmpty inserts the demo catalog when no product exists yet and reports whether it did.
	SeedIfEmpty(ctx context.Context) (bool, error)
}

type service struct {
	repo Repository
	tx   db.Transactor
	now  func() time.Time
}

func NewService(repo Repository, tx db.Transactor, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{
		repo: repo,
		tx:   tx,
		now:  now,
	}
}

func (s *service) ListProducts(ctx context.Context, filter Filter) ([]Product, error) {
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Stringer("type", filter.Type).Msg("service: failed to list products in repository")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}

	now := s.now()
	for i := range products {
		products[i].FreshnessDays = FreshnessDays(products[i].FreshnessDate, now)
	}

	return products, nil
}

func (s *service) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			log.Warn().Stringer("product_id", id).Msg("service: product not found by id")
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to fetch product by id in repository")
		return nil, fmt.Errorf("service: failed to fetch product by id: %w", err)
	}

	p.FreshnessDays = FreshnessDays(p.FreshnessDate, s.now())

	if p.Type == TypeMeat {
		spec, err := s.repo.GetColdChain(ctx, id)
		if err != nil {
			log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to fetch cold chain spec in repository")
			return nil, fmt.Errorf("service: failed to fetch cold chain spec: %w", err)
		}
		p.ColdChain = spec
	}

	return p, nil
}

func (s *service) SeedIfEmpty(ctx context.Context) (bool, error) {
	seeded := false

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		n, err := s.repo.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		for _, p := range DemoCatalog(s.now()) {
			if err := s.repo.Create(ctx, &p); err != nil {
				return err
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("service: failed to seed demo catalog")
		return false, fmt.Errorf("service: failed to seed demo catalog: %w", err)
	}

	if seeded {
		log.Info().Msg("service: demo catalog seeded")
	}
	return seeded, nil
}
