package service

import (
	"context"
	"fmt"

	"github.com/kollect-it/catalog/internal/clock"
	"github.com/kollect-it/catalog/internal/reference"
	"github.com/kollect-it/catalog/internal/sku/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Catalog reference.Catalog
	Repo    domain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	catalog reference.Catalog
	repo    domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("sku.service"),
		clock:   p.Clock,
		catalog: p.Catalog,
		repo:    p.Repo,
	}
}

func (s *Service) Allocate(ctx context.Context, categoryID string) (string, error) {
	prefix, ok := s.catalog.PrefixFor(categoryID)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownCategory, categoryID)
	}

	year := s.clock.Now().Year()
	number, err := s.repo.NextNumber(ctx, s.db, prefix, year)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	allocated := domain.SKU{Prefix: prefix, Year: year, Number: number}
	s.log.Info("sku allocated",
		zap.String("sku", allocated.String()),
		zap.String("category", categoryID),
	)
	return allocated.String(), nil
}

func (s *Service) Peek(ctx context.Context, categoryID string) (string, error) {
	prefix, ok := s.catalog.PrefixFor(categoryID)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownCategory, categoryID)
	}

	year := s.clock.Now().Year()
	current, err := s.repo.Current(ctx, s.db, prefix, year)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return domain.SKU{Prefix: prefix, Year: year, Number: current + 1}.String(), nil
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	counters, err := s.repo.All(ctx, s.db)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	stats := domain.Stats{Prefixes: make(map[string]domain.PrefixStats)}
	for _, counter := range counters {
		prefix := stats.Prefixes[counter.Prefix]
		if prefix.ByYear == nil {
			prefix.ByYear = make(map[int]int)
		}
		prefix.ByYear[counter.Year] = counter.LastNumber
		prefix.Total += counter.LastNumber
		stats.Prefixes[counter.Prefix] = prefix
		stats.GrandTotal += counter.LastNumber
	}
	return stats, nil
}

func (s *Service) SetCounter(ctx context.Context, categoryID string, year, number int) error {
	prefix, ok := s.catalog.PrefixFor(categoryID)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownCategory, categoryID)
	}
	if err := s.repo.Set(ctx, s.db, prefix, year, number); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	s.log.Warn("sku counter overridden",
		zap.String("prefix", prefix),
		zap.Int("year", year),
		zap.Int("number", number),
	)
	return nil
}
