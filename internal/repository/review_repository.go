package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/sakashimaa/go-shop-api/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Review, error)
	Update(ctx context.Context, id string, rating *int32, comment *string) error
	Delete(ctx context.Context, id string) error
}

type reviewRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewReviewRepository(pool *pgxpool.Pool, logger *zap.Logger) ReviewRepository {
	return &reviewRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("review_repository"),
	}
}

const reviewColumns = `id, user_id, product_id, product_name, rating, comment, created_at, updated_at`

func scanReview(row pgx.Row) (*domain.Review, error) {
	var rv domain.Review
	if err := row.Scan(
		&rv.ID,
		&rv.UserID,
		&rv.ProductID,
		&rv.ProductName,
		&rv.Rating,
		&rv.Comment,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *reviewRepo) Create(ctx context.Context, review *domain.Review) error {
	ctx, span := r.tracer.Start(ctx, "ReviewRepository.Create")
	defer span.End()

	span.SetAttributes(attribute.String("product_id", review.ProductID))

	query := `
		INSERT INTO reviews (id, user_id, product_id, product_name, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx,
		query,
		review.ID,
		review.UserID,
		review.ProductID,
		review.ProductName,
		review.Rating,
		review.Comment,
	).Scan(&review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to insert review", zap.Error(err))

		return fmt.Errorf("failed to insert review: %w", err)
	}

	return nil
}

func (r *reviewRepo) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	ctx, span := r.tracer.Start(ctx, "ReviewRepository.GetByID")
	defer span.End()

	row := r.pool.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id)

	rv, err := scanReview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReviewNotFound
		}

		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to query review", zap.Error(err))

		return nil, fmt.Errorf("failed to query review: %w", err)
	}

	return rv, nil
}

func (r *reviewRepo) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	ctx, span := r.tracer.Start(ctx, "ReviewRepository.ListByProduct")
	defer span.End()

	span.SetAttributes(attribute.String("product_id", productID))

	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE product_id = $1 ORDER BY created_at DESC`, productID)
}

func (r *reviewRepo) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	ctx, span := r.tracer.Start(ctx, "ReviewRepository.ListByUser")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *reviewRepo) list(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		mylogger.Error(ctx, r.logger, "Failed to query reviews", zap.Error(err))

		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *rv)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reviews, nil
}

func (r *reviewRepo) Update(ctx context.Context, id string, rating *int32, comment *string) error {
	ctx, span := r.tracer.Start(ctx, "ReviewRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("review_id", id))

	query := `
		UPDATE reviews
		SET rating = COALESCE($2, rating),
			comment = COALESCE($3, comment),
			updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := r.pool.Exec(ctx, query, id, rating, comment)
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to update review", zap.Error(err))

		return fmt.Errorf("failed to update review: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}

	return nil
}

func (r *reviewRepo) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "ReviewRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("review_id", id))

	commandTag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to delete review", zap.Error(err))

		return fmt.Errorf("failed to delete review: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}

	return nil
}
