package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/Skotchmaster/marketplace/pkg/mykafka"
	"github.com/Skotchmaster/marketplace/services/catalog/internal/filter"
	"github.com/Skotchmaster/marketplace/services/catalog/internal/repo"
	"github.com/Skotchmaster/marketplace/services/catalog/internal/transport"
	"github.com/Skotchmaster/marketplace/services/catalog/internal/util"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

type BoundsCache interface {
	Get(ctx context.Context) (transport.PriceBounds, bool, error)
	Set(ctx context.Context, b transport.PriceBounds) error
	Invalidate(ctx context.Context) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// CatalogService serves product listings and seller product creation. Bounds
// and Events are optional.
type CatalogService struct {
	Repo   *repo.GormRepo
	Bounds BoundsCache
	Events EventPublisher
}

func (s *CatalogService) ListProducts(ctx context.Context, params filter.Params, rawPage string) (*transport.ProductPage, error) {
	where, err := filter.Build(ctx, s.Repo, params)
	if err != nil {
		return nil, err
	}

	total, err := s.Repo.CountProducts(ctx, where)
	if err != nil {
		return nil, err
	}

	page, err := util.ResolvePage(rawPage, total, util.PageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: page %q", ErrNotFound, rawPage)
	}
	offset, limit := util.Calculate(page, util.PageSize)

	items, err := s.Repo.ListProducts(ctx, where, offset, limit)
	if err != nil {
		return nil, err
	}

	bounds, err := s.PriceBounds(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]transport.ProductListItem, 0, len(items))
	for _, p := range items {
		results = append(results, listItem(p))
	}

	return &transport.ProductPage{
		Page:     page,
		HasPrev:  page > 1,
		HasNext:  page < util.NumPages(total, util.PageSize),
		MinPrice: bounds.Min,
		MaxPrice: bounds.Max,
		Results:  results,
	}, nil
}

// PriceBounds returns MIN/MAX unit price over the whole catalog. Cache
// failures fall through to the database.
func (s *CatalogService) PriceBounds(ctx context.Context) (transport.PriceBounds, error) {
	l := logging.FromContext(ctx)

	if s.Bounds != nil {
		b, ok, err := s.Bounds.Get(ctx)
		if err != nil {
			l.Warn("price_bounds_cache_get_failed", "error", err)
		}
		if ok {
			return b, nil
		}
	}

	b, err := s.Repo.PriceBounds(ctx)
	if err != nil {
		return b, err
	}

	if s.Bounds != nil {
		if err := s.Bounds.Set(ctx, b); err != nil {
			l.Warn("price_bounds_cache_set_failed", "error", err)
		}
	}
	return b, nil
}

func listItem(p models.Product) transport.ProductListItem {
	item := transport.ProductListItem{
		ID:       p.ID,
		Title:    p.Title,
		SellerID: p.SellerID,
		Tags:     make([]string, 0, len(p.Tags)),
	}
	for _, t := range p.Tags {
		item.Tags = append(item.Tags, t.Name)
	}
	for _, u := range p.Units {
		if item.MinPrice == nil || u.Price < *item.MinPrice {
			price := u.Price
			item.MinPrice = &price
		}
		if u.NumInStock > 0 {
			item.InStock = true
		}
	}
	return item
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return product, err
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.Repo.ListTags(ctx)
}

func (s *CatalogService) ListProperties(ctx context.Context) ([]models.Property, error) {
	return s.Repo.ListProperties(ctx)
}

func (s *CatalogService) CreateProduct(ctx context.Context, sellerID uint, req transport.CreateProductRequest) (*models.Product, error) {
	req, err := normalizeProduct(req)
	if err != nil {
		return nil, err
	}

	product, err := s.Repo.CreateProduct(ctx, sellerID, req)
	switch {
	case errors.Is(err, repo.ErrDuplicateSKU):
		return nil, fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, repo.ErrUnknownValues):
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	case err != nil:
		return nil, err
	}

	l := logging.FromContext(ctx)
	if s.Bounds != nil {
		if err := s.Bounds.Invalidate(ctx); err != nil {
			l.Warn("price_bounds_cache_invalidate_failed", "error", err)
		}
	}

	if s.Events != nil {
		skus := make([]string, 0, len(product.Units))
		for _, u := range product.Units {
			skus = append(skus, u.SKU)
		}
		ev := mykafka.NewEvent("product_created", map[string]any{
			"product_id": product.ID,
			"seller_id":  product.SellerID,
			"title":      product.Title,
			"skus":       skus,
		})
		if err := s.Events.PublishEvent(ctx, mykafka.ProductEvents, strconv.FormatUint(uint64(product.ID), 10), ev); err != nil {
			l.Error("product_event_publish_failed", "product_id", product.ID, "error", err)
		}
	}

	return product, nil
}

func normalizeProduct(req transport.CreateProductRequest) (transport.CreateProductRequest, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return req, fmt.Errorf("%w: title is required", ErrValidation)
	}

	seen := make(map[string]struct{}, len(req.Tags))
	tags := make([]string, 0, len(req.Tags))
	for _, t := range req.Tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, t)
	}
	req.Tags = tags

	skus := make(map[string]struct{}, len(req.Units))
	for i := range req.Units {
		u := &req.Units[i]
		u.SKU = strings.TrimSpace(u.SKU)
		switch {
		case u.SKU == "":
			return req, fmt.Errorf("%w: units[%d].sku is required", ErrValidation, i)
		case u.Price < 0:
			return req, fmt.Errorf("%w: units[%d].price must not be negative", ErrValidation, i)
		case u.NumInStock < 0:
			return req, fmt.Errorf("%w: units[%d].num_in_stock must not be negative", ErrValidation, i)
		}
		if _, dup := skus[u.SKU]; dup {
			return req, fmt.Errorf("%w: sku %s repeated", ErrValidation, u.SKU)
		}
		skus[u.SKU] = struct{}{}
	}
	return req, nil
}
