package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/sakashimaa/go-shop-api/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type CategoryService interface {
	Create(ctx context.Context, name, description string) (*domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, id, name, description string) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

type categoryService struct {
	repo   repository.CategoryRepository
	logger *zap.Logger
	tracer trace.Tracer
}

func NewCategoryService(repo repository.CategoryRepository, logger *zap.Logger) CategoryService {
	return &categoryService{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("category_service"),
	}
}

func (s *categoryService) Create(ctx context.Context, name, description string) (*domain.Category, error) {
	ctx, span := s.tracer.Start(ctx, "CategoryService.Create")
	defer span.End()

	span.SetAttributes(attribute.String("name", name))

	category := &domain.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *categoryService) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	ctx, span := s.tracer.Start(ctx, "CategoryService.GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("category_id", id))

	return s.repo.GetByID(ctx, id)
}

func (s *categoryService) List(ctx context.Context) ([]domain.Category, error) {
	ctx, span := s.tracer.Start(ctx, "CategoryService.List")
	defer span.End()

	return s.repo.List(ctx)
}

func (s *categoryService) Update(ctx context.Context, id, name, description string) (*domain.Category, error) {
	ctx, span := s.tracer.Start(ctx, "CategoryService.Update")
	defer span.End()

	span.SetAttributes(attribute.String("category_id", id))

	if err := s.repo.Update(ctx, id, name, description); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "CategoryService.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("category_id", id))

	return s.repo.Delete(ctx, id)
}
