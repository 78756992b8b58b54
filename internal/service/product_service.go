package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/naturalmart/shop-api/internal/cache"
	"github.com/naturalmart/shop-api/internal/domain"
	"github.com/naturalmart/shop-api/internal/repo/mongodb"
	"github.com/naturalmart/shop-api/pkg/logger"
)

type ProductService interface {
	Create(ctx context.Context, req *domain.CreateProductRequest) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Delete(ctx context.Context, rawProductID string) error
}

type productService struct {
	productRepo mongodb.ProductRepository
	cache       cache.ProductCache
	cacheTTL    time.Duration
}

func NewProductService(productRepo mongodb.ProductRepository, productCache cache.ProductCache, cacheTTL time.Duration) ProductService {
	return &productService{
		productRepo: productRepo,
		cache:       productCache,
		cacheTTL:    cacheTTL,
	}
}

func (s *productService) Create(ctx context.Context, req *domain.CreateProductRequest) (*domain.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	price, err := req.PriceValue()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	product := &domain.Product{
		Name:    req.Name,
		Price:   price,
		Image:   req.Image,
		Details: req.Details,
	}

	if err := s.productRepo.Insert(ctx, product); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	return product, nil
}

func (s *productService) List(ctx context.Context) ([]domain.Product, error) {
	if s.cache != nil {
		products, err := s.cache.Get(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.WarnContext(ctx, "Product cache read failed", "error", err)
		}
	}

	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, products, s.cacheTTL); err != nil {
			logger.WarnContext(ctx, "Product cache write failed", "error", err)
		}
	}

	return products, nil
}

func (s *productService) Delete(ctx context.Context, rawProductID string) error {
	productID, err := domain.ParseProductID(rawProductID)
	if err != nil {
		return err
	}

	deleted, err := s.productRepo.Delete(ctx, productID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}

	s.invalidateCache(ctx)
	return nil
}

func (s *productService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.WarnContext(ctx, "Product cache invalidation failed", "error", err)
	}
}
