package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Sherryli112/HatGiveMe/internal/domain"
	"github.com/Sherryli112/HatGiveMe/internal/events"
	"github.com/Sherryli112/HatGiveMe/internal/repository"
	apperrors "github.com/Sherryli112/HatGiveMe/pkg/util"
)

const catalogCacheKey = "catalog:products"

// CatalogService coordinates product listing and administration. The public
// listing is served through a best-effort Redis cache; stock shown there is
// advisory, the placement transaction always consults the database.
type CatalogService struct {
	products   repository.ProductRepository
	cache      *redis.Client
	cacheTTL   time.Duration
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CatalogDependencies bundles requirements for the catalog service.
type CatalogDependencies struct {
	ProductRepo repository.ProductRepository
	Cache       *redis.Client
	CacheTTL    time.Duration
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// ProductInput describes product creation/update payloads.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	return &CatalogService{
		products:   deps.ProductRepo,
		cache:      deps.Cache,
		cacheTTL:   deps.CacheTTL,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// ListProducts returns the first page of the catalog from cache when
// available, falling back to the database.
func (s *CatalogService) ListProducts(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	cacheable := offset == 0 && s.cache != nil && s.cacheTTL > 0

	if cacheable {
		if cached, err := s.cache.Get(ctx, catalogCacheKey).Bytes(); err == nil {
			var products []domain.Product
			if err := json.Unmarshal(cached, &products); err == nil {
				if limit > 0 && len(products) > limit {
					products = products[:limit]
				}
				return products, nil
			}
		}
	}

	products, err := s.products.List(ctx, repository.ProductFilter{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}

	if cacheable {
		if payload, err := json.Marshal(products); err == nil {
			if err := s.cache.Set(ctx, catalogCacheKey, payload, s.cacheTTL).Err(); err != nil && s.logger != nil {
				s.logger.Debug("catalog cache write failed", zap.Error(err))
			}
		}
	}
	return products, nil
}

// GetProduct fetches a single catalog entry.
func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("product", map[string]any{"product_id": productID})
		}
		return nil, err
	}
	return product, nil
}

// CreateProduct adds a catalog entry with its initial stock; administrator
// operation.
func (s *CatalogService) CreateProduct(ctx context.Context, actorID string, input ProductInput) (*domain.Product, error) {
	product := &domain.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Stock:       input.Stock,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	s.publishProductEvent(ctx, events.EventProductCreated, actorID, product)
	return product, nil
}

// UpdateProduct edits name, description and price of a catalog entry;
// administrator operation. Stock has no update path here.
func (s *CatalogService) UpdateProduct(ctx context.Context, actorID, productID string, input ProductInput) (*domain.Product, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Description = strings.TrimSpace(input.Description)
	product.Price = input.Price
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	s.publishProductEvent(ctx, events.EventProductUpdated, actorID, product)
	return product, nil
}

func (s *CatalogService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, catalogCacheKey).Err(); err != nil && s.logger != nil {
		s.logger.Debug("catalog cache invalidation failed", zap.Error(err))
	}
}

func (s *CatalogService) publishProductEvent(ctx context.Context, eventType events.EventType, actorID string, product *domain.Product) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload: events.ProductChangedPayload{
			ProductID: product.ID,
			Name:      product.Name,
		},
	})
}
