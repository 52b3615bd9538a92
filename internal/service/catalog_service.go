package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/sakashimaa/go-shop-api/internal/repository"
	"github.com/sakashimaa/go-shop-api/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type CatalogService interface {
	ProductCatalog

	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
	Update(ctx context.Context, id string, input *domain.UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type catalogService struct {
	repo   repository.ProductRepository
	logger *zap.Logger
	tracer trace.Tracer
}

func NewCatalogService(repo repository.ProductRepository, logger *zap.Logger) CatalogService {
	return &catalogService{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("catalog_service"),
	}
}

func (s *catalogService) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Create")
	defer span.End()

	span.SetAttributes(attribute.String("name", product.Name))

	product.ID = uuid.New().String()
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Product created",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name),
	)

	return product, nil
}

func (s *catalogService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *catalogService) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *catalogService) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *catalogService) Search(ctx context.Context, query string) ([]domain.Product, error) {
	return s.repo.Search(ctx, query)
}

func (s *catalogService) Update(ctx context.Context, id string, input *domain.UpdateProductInput) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Update")
	defer span.End()

	span.SetAttributes(attribute.String("product_id", id))

	if err := s.repo.Update(ctx, id, input); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

func (s *catalogService) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("product_id", id))

	return s.repo.Delete(ctx, id)
}
