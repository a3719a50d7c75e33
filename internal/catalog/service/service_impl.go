package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/kollect-it/catalog/internal/catalog/domain"
	"github.com/kollect-it/catalog/internal/clock"
	productdomain "github.com/kollect-it/catalog/internal/product/domain"
	"github.com/kollect-it/catalog/internal/reference"
	skudomain "github.com/kollect-it/catalog/internal/sku/domain"
	"github.com/kollect-it/catalog/pkg/db"
	"github.com/kollect-it/catalog/pkg/db/pagination"
	"github.com/lib/pq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Catalog reference.Catalog
	Repo    domain.Repository
	SKURepo skudomain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	catalog reference.Catalog
	repo    domain.Repository
	skuRepo skudomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("catalog.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		catalog: p.Catalog,
		repo:    p.Repo,
		skuRepo: p.SKURepo,
	}
}

func (s *Service) Create(ctx context.Context, payload productdomain.Payload) (*domain.Response, error) {
	if err := s.validate(payload); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	productID := s.genID.Generate().Int64()

	images := make([]domain.ProductImage, 0, len(payload.Images))
	for _, img := range payload.Images {
		images = append(images, domain.ProductImage{
			ID:        s.genID.Generate().Int64(),
			ProductID: productID,
			URL:       img.URL,
			Alt:       img.Alt,
			Order:     img.Order,
		})
	}

	product := &domain.Product{
		ID:              productID,
		Slug:            slug.Make(payload.Title + "-" + payload.SKU),
		SKU:             payload.SKU,
		Title:           payload.Title,
		Category:        payload.Category,
		Subcategory:     payload.Subcategory,
		Description:     payload.Description,
		DescriptionHTML: payload.DescriptionHTML,
		Price:           payload.Price,
		OriginalPrice:   payload.OriginalPrice,
		Condition:       payload.Condition,
		Era:             payload.Era,
		Origin:          payload.Origin,
		SEOTitle:        payload.SEOTitle,
		SEODescription:  payload.SEODescription,
		SEOKeywords:     pq.StringArray(payload.SEOKeywords),
		Status:          productdomain.StatusDraft,
		Images:          images,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.repo.Create(ctx, tx, product)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateSKU, payload.SKU)
		}
		return nil, err
	}

	s.log.Info("product created",
		zap.String("sku", product.SKU),
		zap.String("slug", product.Slug),
		zap.String("category", product.Category),
	)

	resp := s.toResponse(product)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, sku string) (*domain.Response, error) {
	item, err := s.repo.FindBySKU(ctx, s.db, sku)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	filter := domain.ListRequest{
		Category:  strings.TrimSpace(req.Category),
		Status:    strings.TrimSpace(req.Status),
		PageToken: strings.TrimSpace(req.PageToken),
		PageSize:  req.PageSize,
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > filter.PageSize
	if hasMore {
		items = items[:filter.PageSize]
	}

	resp := &domain.ListResponse{
		Products: make([]domain.Response, 0, len(items)),
		HasMore:  hasMore,
	}
	for i := range items {
		resp.Products = append(resp.Products, s.toResponse(&items[i]))
	}
	if hasMore {
		last := items[len(items)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: strconv.FormatInt(last.ID, 10)})
		if err != nil {
			return nil, err
		}
		resp.NextPageToken = token
	}
	return resp, nil
}

// RebuildCounters scans every stored SKU and raises the allocator
// counters to the highest number seen per (prefix, year). Used after a
// restore or a manual import; it never lowers a counter.
func (s *Service) RebuildCounters(ctx context.Context) (*domain.RebuildResult, error) {
	skus, err := s.repo.AllSKUs(ctx, s.db)
	if err != nil {
		return nil, err
	}

	type key struct {
		prefix string
		year   int
	}
	highest := make(map[key]int)

	result := &domain.RebuildResult{Counters: make(map[string]int)}
	for _, raw := range skus {
		result.Scanned++
		parsed, err := skudomain.Parse(raw)
		if err != nil {
			result.Skipped++
			continue
		}
		k := key{prefix: parsed.Prefix, year: parsed.Year}
		if parsed.Number > highest[k] {
			highest[k] = parsed.Number
		}
	}

	for k, number := range highest {
		if err := s.skuRepo.Raise(ctx, s.db, k.prefix, k.year, number); err != nil {
			return nil, err
		}
		result.Counters[fmt.Sprintf("%s-%d", k.prefix, k.year)] = number
	}

	s.log.Info("sku counters rebuilt",
		zap.Int("scanned", result.Scanned),
		zap.Int("skipped", result.Skipped),
		zap.Int("counters", len(result.Counters)),
	)
	return result, nil
}

// validate applies the submission contract plus the server-only rule
// that the condition must be one of the configured grades.
func (s *Service) validate(payload productdomain.Payload) error {
	var violations []productdomain.Violation

	var vErr *productdomain.ValidationErrors
	if err := payload.Validate(s.catalog); err != nil {
		if !errors.As(err, &vErr) {
			return err
		}
		violations = vErr.Violations
	}

	if payload.Condition != "" && !s.catalog.IsCondition(payload.Condition) {
		violations = append(violations, productdomain.Violation{
			Field:   "condition",
			Code:    "unknown_condition",
			Message: fmt.Sprintf("Unknown condition grade: %s", payload.Condition),
		})
	}

	if len(violations) == 0 {
		return nil
	}
	return &productdomain.ValidationErrors{Violations: violations}
}

func (s *Service) toResponse(p *domain.Product) domain.Response {
	images := make([]domain.ImageInfo, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, domain.ImageInfo{URL: img.URL, Alt: img.Alt, Order: img.Order})
	}

	resp := domain.Response{
		ID:              snowflake.ID(p.ID).String(),
		Slug:            p.Slug,
		SKU:             p.SKU,
		Title:           p.Title,
		Category:        p.Category,
		Subcategory:     p.Subcategory,
		Description:     p.Description,
		DescriptionHTML: p.DescriptionHTML,
		Price:           p.Price,
		OriginalPrice:   p.OriginalPrice,
		Condition:       p.Condition,
		Era:             p.Era,
		Origin:          p.Origin,
		SEOTitle:        p.SEOTitle,
		SEODescription:  p.SEODescription,
		SEOKeywords:     []string(p.SEOKeywords),
		Status:          p.Status,
		Images:          images,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if len(p.Metadata) > 0 {
		resp.Metadata = map[string]any(p.Metadata)
	}
	return resp
}
