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

type ReviewService interface {
	// Create resolves the product by display name and mirrors the rating
	// onto the product record.
	Create(ctx context.Context, userID, productName string, rating int32, comment string) (*domain.Review, error)
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Review, error)
	Update(ctx context.Context, id string, rating *int32, comment *string) (*domain.Review, error)
	Delete(ctx context.Context, id string) error
}

type reviewService struct {
	repo    repository.ReviewRepository
	catalog CatalogService
	logger  *zap.Logger
	tracer  trace.Tracer
}

func NewReviewService(repo repository.ReviewRepository, catalog CatalogService, logger *zap.Logger) ReviewService {
	return &reviewService{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
		tracer:  otel.Tracer("review_service"),
	}
}

func (s *reviewService) Create(ctx context.Context, userID, productName string, rating int32, comment string) (*domain.Review, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("product", productName),
	)

	product, err := s.catalog.GetByName(ctx, productName)
	if err != nil {
		return nil, err
	}

	review := &domain.Review{
		ID:          uuid.New().String(),
		UserID:      userID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Rating:      rating,
		Comment:     comment,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	// the latest review's rating becomes the product rating
	if _, err := s.catalog.Update(ctx, product.ID, &domain.UpdateProductInput{Rating: &rating}); err != nil {
		mylogger.Warn(
			ctx,
			s.logger,
			"Failed to mirror rating onto product",
			zap.String("product_id", product.ID),
			zap.Error(err),
		)
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Review created",
		zap.String("review_id", review.ID),
		zap.String("product_id", product.ID),
	)

	return review, nil
}

func (s *reviewService) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("review_id", id))

	return s.repo.GetByID(ctx, id)
}

func (s *reviewService) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.ListByProduct")
	defer span.End()

	span.SetAttributes(attribute.String("product_id", productID))

	return s.repo.ListByProduct(ctx, productID)
}

func (s *reviewService) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.ListByUser")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	return s.repo.ListByUser(ctx, userID)
}

func (s *reviewService) Update(ctx context.Context, id string, rating *int32, comment *string) (*domain.Review, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.Update")
	defer span.End()

	span.SetAttributes(attribute.String("review_id", id))

	if err := s.repo.Update(ctx, id, rating, comment); err != nil {
		return nil, err
	}

	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if rating != nil {
		if _, err := s.catalog.Update(ctx, review.ProductID, &domain.UpdateProductInput{Rating: rating}); err != nil {
			mylogger.Warn(
				ctx,
				s.logger,
				"Failed to mirror rating onto product",
				zap.String("product_id", review.ProductID),
				zap.Error(err),
			)
		}
	}

	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "ReviewService.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("review_id", id))

	return s.repo.Delete(ctx, id)
}
