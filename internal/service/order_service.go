package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/sakashimaa/go-shop-api/internal/repository"
	"github.com/sakashimaa/go-shop-api/pkg/mylogger"
	outboxDomain "github.com/sakashimaa/go-shop-api/pkg/outbox/domain"
	"github.com/sakashimaa/go-shop-api/pkg/outbox/worker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OrderService interface {
	// PlaceOrder freezes totalAmount at the catalog price of this instant;
	// later price changes never touch existing orders.
	PlaceOrder(ctx context.Context, userID, productName string, quantity *int32, address domain.Address, paymentMethod string) (*domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)
	// UpdateStatus accepts any status string but refuses to move an order
	// out of Cancelled.
	UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error)
	// Cancel transitions to Cancelled from any state, including Delivered.
	Cancel(ctx context.Context, orderID string) (*domain.Order, error)
	UpdateAddress(ctx context.Context, orderID string, address domain.Address) (*domain.Order, error)
	TrackStatus(ctx context.Context, orderID string) (domain.OrderStatus, error)
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type orderService struct {
	db         txBeginner
	orderRepo  repository.OrderRepository
	outboxRepo worker.OutboxRepository
	catalog    ProductCatalog
	topic      string
	logger     *zap.Logger
	tracer     trace.Tracer
}

func NewOrderService(
	db txBeginner,
	orderRepo repository.OrderRepository,
	outboxRepo worker.OutboxRepository,
	catalog ProductCatalog,
	topic string,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		db:         db,
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		catalog:    catalog,
		topic:      topic,
		logger:     logger,
		tracer:     otel.Tracer("order_service"),
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, userID, productName string, quantity *int32, address domain.Address, paymentMethod string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("product", productName),
	)

	qty, err := normalizeQuantity(quantity)
	if err != nil {
		return nil, err
	}

	product, err := s.catalog.GetByName(ctx, productName)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:     uuid.New().String(),
		UserID: userID,
		Items: []domain.OrderItem{
			{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  qty,
				Price:     product.Price,
			},
		},
		ShippingAddress: address,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   domain.PaymentStatusPending,
		OrderStatus:     domain.OrderStatusProcessing,
		PlacedAt:        time.Now().UTC(),
	}
	order.CalculateTotal()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	if err := s.orderRepo.Create(ctx, tx, order); err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to create order",
			zap.String("user_id", userID),
			zap.Error(err),
		)

		return nil, err
	}

	err = s.emitEvent(ctx, tx, order.ID, "OrderPlaced", &domain.OrderPlacedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		Items:       order.Items,
		TotalAmount: order.TotalAmount,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Order placed",
		zap.String("order_id", order.ID),
		zap.Int64("total_amount", order.TotalAmount),
	)

	return order, nil
}

func (s *orderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListAll")
	defer span.End()

	return s.orderRepo.ListAll(ctx)
}

func (s *orderService) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListByUser")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	return s.orderRepo.ListByUser(ctx, userID)
}

func (s *orderService) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	return s.orderRepo.GetByID(ctx, orderID)
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", orderID),
		attribute.String("status", status),
	)

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	if err := s.orderRepo.UpdateStatus(ctx, tx, orderID, status); err != nil {
		return nil, err
	}

	err = s.emitEvent(ctx, tx, orderID, "OrderStatusChanged", &domain.OrderStatusChangedEvent{
		OrderID:   orderID,
		OldStatus: string(order.OrderStatus),
		NewStatus: status,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	order.OrderStatus = domain.OrderStatus(status)
	return order, nil
}

func (s *orderService) Cancel(ctx context.Context, orderID string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Cancel")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	if err := s.orderRepo.MarkCancelled(ctx, tx, orderID); err != nil {
		return nil, err
	}

	err = s.emitEvent(ctx, tx, orderID, "OrderCancelled", &domain.OrderCancelledEvent{
		OrderID: orderID,
		UserID:  order.UserID,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	mylogger.Info(ctx, s.logger, "Order cancelled", zap.String("order_id", orderID))

	order.OrderStatus = domain.OrderStatusCancelled
	return order, nil
}

func (s *orderService) UpdateAddress(ctx context.Context, orderID string, address domain.Address) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateAddress")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	// full replace, not a merge
	if err := s.orderRepo.UpdateAddress(ctx, orderID, address); err != nil {
		return nil, err
	}

	return s.orderRepo.GetByID(ctx, orderID)
}

func (s *orderService) TrackStatus(ctx context.Context, orderID string) (domain.OrderStatus, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.TrackStatus")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}

	return order.OrderStatus, nil
}

func (s *orderService) emitEvent(ctx context.Context, tx pgx.Tx, orderID, eventType string, payload any) error {
	envelope := map[string]any{
		"event":   eventType,
		"payload": payload,
	}

	raw, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	event := &outboxDomain.OutboxEvent{
		AggregateType: "Order",
		AggregateID:   orderID,
		EventType:     eventType,
		Payload:       raw,
		Topic:         s.topic,
	}

	if err := s.outboxRepo.SaveOutboxEvent(ctx, tx, event); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to save outbox event", zap.Error(err))

		return fmt.Errorf("failed to save outbox event: %w", err)
	}

	return nil
}

func (s *orderService) rollback(ctx context.Context, tx pgx.Tx) {
	cleanupCtx := context.WithoutCancel(ctx)

	if err := tx.Rollback(cleanupCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		mylogger.Warn(cleanupCtx, s.logger, "Failed to rollback transaction", zap.Error(err))
	}
}
