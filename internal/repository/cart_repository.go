package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/sakashimaa/go-shop-api/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CartRepository persists the cart aggregate as one JSONB document per user.
// Update is conditional on the stored version; callers retry on
// ErrCartVersionConflict.
type CartRepository interface {
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	Insert(ctx context.Context, cart *domain.Cart) error
	Update(ctx context.Context, cart *domain.Cart) error
	DeleteByUser(ctx context.Context, userID string) error
}

// cartDoc is the JSONB shape of the aggregate body. Identity, version and
// timestamps live in their own columns.
type cartDoc struct {
	Items      []domain.CartItem `json:"items"`
	TotalPrice int64             `json:"total_price"`
}

type cartRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewCartRepository(pool *pgxpool.Pool, logger *zap.Logger) CartRepository {
	return &cartRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("cart_repository"),
	}
}

func (r *cartRepo) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	ctx, span := r.tracer.Start(ctx, "CartRepository.GetByUser")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	query := `
		SELECT id, user_id, doc, version, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`

	var (
		cart domain.Cart
		raw  []byte
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&raw,
		&cart.Version,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartNotFound
		}

		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to query cart", zap.Error(err))

		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	var doc cartDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("failed to decode cart document: %w", err)
	}

	cart.Items = doc.Items
	cart.TotalPrice = doc.TotalPrice

	return &cart, nil
}

func (r *cartRepo) Insert(ctx context.Context, cart *domain.Cart) error {
	ctx, span := r.tracer.Start(ctx, "CartRepository.Insert")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", cart.UserID))

	raw, err := json.Marshal(cartDoc{Items: cart.Items, TotalPrice: cart.TotalPrice})
	if err != nil {
		return fmt.Errorf("failed to encode cart document: %w", err)
	}

	query := `
		INSERT INTO carts (id, user_id, doc, version, created_at, updated_at)
		VALUES ($1, $2, $3, 1, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = r.pool.QueryRow(ctx, query, cart.ID, cart.UserID, raw).
		Scan(&cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			// a concurrent request created the cart first; the caller
			// re-reads and applies its delta on top
			return ErrCartVersionConflict
		}

		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to insert cart", zap.Error(err))

		return fmt.Errorf("failed to insert cart: %w", err)
	}

	cart.Version = 1
	return nil
}

func (r *cartRepo) Update(ctx context.Context, cart *domain.Cart) error {
	ctx, span := r.tracer.Start(ctx, "CartRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", cart.UserID),
		attribute.Int64("version", cart.Version),
	)

	raw, err := json.Marshal(cartDoc{Items: cart.Items, TotalPrice: cart.TotalPrice})
	if err != nil {
		return fmt.Errorf("failed to encode cart document: %w", err)
	}

	query := `
		UPDATE carts
		SET doc = $1, version = version + 1, updated_at = NOW()
		WHERE user_id = $2 AND version = $3
	`

	commandTag, err := r.pool.Exec(ctx, query, raw, cart.UserID, cart.Version)
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to update cart", zap.Error(err))

		return fmt.Errorf("failed to update cart: %w", err)
	}

	// zero rows means either a concurrent writer bumped the version or the
	// cart was deleted; both resolve the same way, by re-reading
	if commandTag.RowsAffected() == 0 {
		return ErrCartVersionConflict
	}

	cart.Version++
	return nil
}

func (r *cartRepo) DeleteByUser(ctx context.Context, userID string) error {
	ctx, span := r.tracer.Start(ctx, "CartRepository.DeleteByUser")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	commandTag, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to delete cart", zap.Error(err))

		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrCartNotFound
	}

	return nil
}
