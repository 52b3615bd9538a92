package repository

import (
	"context"
	"encoding/json"
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

type OrderRepository interface {
	Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)
	// UpdateStatus overwrites order_status unless the order is already
	// Cancelled; Cancelled is terminal for admin updates.
	UpdateStatus(ctx context.Context, tx pgx.Tx, orderID, status string) error
	// MarkCancelled sets Cancelled unconditionally, from any state.
	MarkCancelled(ctx context.Context, tx pgx.Tx, orderID string) error
	UpdateAddress(ctx context.Context, orderID string, address domain.Address) error
}

type orderRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewOrderRepository(pool *pgxpool.Pool, logger *zap.Logger) OrderRepository {
	return &orderRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("order_repository"),
	}
}

const orderColumns = `
	id, user_id, items, shipping_address, payment_method,
	payment_status, order_status, total_amount, placed_at, created_at, updated_at
`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o        domain.Order
		rawItems []byte
		rawAddr  []byte
	)
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&rawItems,
		&rawAddr,
		&o.PaymentMethod,
		&o.PaymentStatus,
		&o.OrderStatus,
		&o.TotalAmount,
		&o.PlacedAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(rawItems, &o.Items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}
	if err := json.Unmarshal(rawAddr, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to decode shipping address: %w", err)
	}

	return &o, nil
}

func (r *orderRepo) Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", order.UserID),
		attribute.Int("items_count", len(order.Items)),
	)

	rawItems, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}
	rawAddr, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to encode shipping address: %w", err)
	}

	query := `
		INSERT INTO orders (id, user_id, items, shipping_address, payment_method,
			payment_status, order_status, total_amount, placed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if err := tx.QueryRow(
		ctx,
		query,
		order.ID,
		order.UserID,
		rawItems,
		rawAddr,
		order.PaymentMethod,
		order.PaymentStatus,
		string(order.OrderStatus),
		order.TotalAmount,
		order.PlacedAt,
	).Scan(&order.CreatedAt, &order.UpdatedAt); err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to insert order", zap.Error(err))

		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

func (r *orderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ListAll")
	defer span.End()

	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY placed_at DESC`)
}

func (r *orderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ListByUser")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY placed_at DESC`, userID)
}

func (r *orderRepo) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		mylogger.Error(ctx, r.logger, "Failed to query orders", zap.Error(err))

		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			mylogger.Error(ctx, r.logger, "Failed to scan order row", zap.Error(err))

			return nil, err
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepo) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to query order", zap.Error(err))

		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return o, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, orderID, status string) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.UpdateStatus")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", orderID),
		attribute.String("status", status),
	)

	query := `
		UPDATE orders
		SET order_status = $1, updated_at = NOW()
		WHERE id = $2 AND order_status <> $3
	`

	commandTag, err := tx.Exec(ctx, query, status, orderID, string(domain.OrderStatusCancelled))
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to update order status", zap.Error(err))

		return fmt.Errorf("failed to update order status: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		// distinguish a missing order from a terminal one
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check order existence: %w", err)
		}
		if !exists {
			return ErrOrderNotFound
		}
		return ErrOrderCancelled
	}

	return nil
}

func (r *orderRepo) MarkCancelled(ctx context.Context, tx pgx.Tx, orderID string) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.MarkCancelled")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	query := `
		UPDATE orders
		SET order_status = $1, updated_at = NOW()
		WHERE id = $2
	`

	commandTag, err := tx.Exec(ctx, query, string(domain.OrderStatusCancelled), orderID)
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to cancel order", zap.Error(err))

		return fmt.Errorf("failed to cancel order: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *orderRepo) UpdateAddress(ctx context.Context, orderID string, address domain.Address) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.UpdateAddress")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	rawAddr, err := json.Marshal(address)
	if err != nil {
		return fmt.Errorf("failed to encode shipping address: %w", err)
	}

	query := `
		UPDATE orders
		SET shipping_address = $1, updated_at = NOW()
		WHERE id = $2
	`

	commandTag, err := r.pool.Exec(ctx, query, rawAddr, orderID)
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to update shipping address", zap.Error(err))

		return fmt.Errorf("failed to update shipping address: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}
