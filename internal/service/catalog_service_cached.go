package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/sakashimaa/go-shop-api/pkg/utils"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// cachedCatalogService caches single-product lookups in Redis. Reads go
// through a circuit breaker: when Redis is down the breaker opens and
// lookups fall straight through to the database.
type cachedCatalogService struct {
	next        CatalogService
	redisClient *redis.Client
	cacheTTL    time.Duration
	cb          *gobreaker.CircuitBreaker
}

func NewCachedCatalogService(next CatalogService, redisClient *redis.Client, cacheTTL time.Duration, logger *zap.Logger) CatalogService {
	settings := gobreaker.Settings{
		Name:        "CatalogCache",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn(
				"Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &cachedCatalogService{
		next:        next,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
		cb:          gobreaker.NewCircuitBreaker(settings),
	}
}

func (s *cachedCatalogService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.lookup(ctx, fmt.Sprintf("product:id:%s", id), func() (*domain.Product, error) {
		return s.next.GetByID(ctx, id)
	})
}

func (s *cachedCatalogService) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	return s.lookup(ctx, fmt.Sprintf("product:name:%s", name), func() (*domain.Product, error) {
		return s.next.GetByName(ctx, name)
	})
}

func (s *cachedCatalogService) lookup(ctx context.Context, key string, fetch func() (*domain.Product, error)) (*domain.Product, error) {
	val, err := utils.ExecuteWithBreaker(s.cb, func() (string, error) {
		return s.redisClient.Get(ctx, key).Result()
	})
	if err == nil {
		var product domain.Product
		if err := json.Unmarshal([]byte(val), &product); err == nil {
			return &product, nil
		}
	}

	product, err := fetch()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(product); err == nil {
		_, _ = utils.ExecuteWithBreaker(s.cb, func() (string, error) {
			return s.redisClient.Set(ctx, key, data, s.cacheTTL).Result()
		})
	}

	return product, nil
}

func (s *cachedCatalogService) invalidate(ctx context.Context, product *domain.Product) {
	keys := []string{
		fmt.Sprintf("product:id:%s", product.ID),
		fmt.Sprintf("product:name:%s", product.Name),
	}
	_, _ = utils.ExecuteWithBreaker(s.cb, func() (int64, error) {
		return s.redisClient.Del(ctx, keys...).Result()
	})
}

func (s *cachedCatalogService) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	return s.next.Create(ctx, product)
}

func (s *cachedCatalogService) List(ctx context.Context) ([]domain.Product, error) {
	return s.next.List(ctx)
}

func (s *cachedCatalogService) Search(ctx context.Context, query string) ([]domain.Product, error) {
	return s.next.Search(ctx, query)
}

func (s *cachedCatalogService) Update(ctx context.Context, id string, input *domain.UpdateProductInput) (*domain.Product, error) {
	product, err := s.next.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, product)
	return product, nil
}

func (s *cachedCatalogService) Delete(ctx context.Context, id string) error {
	// fetch before delete so the name key can be invalidated too
	product, err := s.next.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.next.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, product)
	return nil
}
