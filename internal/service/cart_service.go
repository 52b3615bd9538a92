package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/sakashimaa/go-shop-api/internal/pricing"
	"github.com/sakashimaa/go-shop-api/internal/repository"
	"github.com/sakashimaa/go-shop-api/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ProductCatalog is the read-side of the catalog that cart and order
// operations consult for price snapshots.
type ProductCatalog interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByName(ctx context.Context, name string) (*domain.Product, error)
}

type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	// AddItem resolves the product by display name; a nil quantity
	// defaults to 1, an explicit quantity below 1 is rejected.
	AddItem(ctx context.Context, userID, productName string, quantity *int32) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int32) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID string) (*domain.Cart, error)
	// SetTotal overwrites the denormalized total directly, bypassing the
	// item-derived invariant. Admin escape hatch.
	SetTotal(ctx context.Context, userID string, totalPrice int64) (*domain.Cart, error)
}

// maxCartRetries bounds the optimistic read-apply-write loop; two requests
// for the same user racing on the cart document resolve by re-reading.
const maxCartRetries = 3

type cartService struct {
	repo    repository.CartRepository
	catalog ProductCatalog
	logger  *zap.Logger
	tracer  trace.Tracer
}

func NewCartService(repo repository.CartRepository, catalog ProductCatalog, logger *zap.Logger) CartService {
	return &cartService{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
		tracer:  otel.Tracer("cart_service"),
	}
}

func normalizeQuantity(quantity *int32) (int32, error) {
	if quantity == nil {
		return 1, nil
	}
	if *quantity < 1 {
		return 0, ErrInvalidQuantity
	}
	return *quantity, nil
}

func (s *cartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.GetCart")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	cart, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// empty carts are deleted on the last removal, but a row with zero
	// items still reads as an empty cart
	if len(cart.Items) == 0 {
		return nil, repository.ErrCartNotFound
	}

	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, userID, productName string, quantity *int32) (*domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.AddItem")
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

	delta := pricing.Delta{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  qty,
	}

	for attempt := 0; attempt < maxCartRetries; attempt++ {
		cart, err := s.repo.GetByUser(ctx, userID)
		switch {
		case errors.Is(err, repository.ErrCartNotFound):
			cart = &domain.Cart{ID: uuid.New().String(), UserID: userID}
			pricing.Apply(cart, delta)
			err = s.repo.Insert(ctx, cart)
		case err != nil:
			return nil, err
		default:
			pricing.Apply(cart, delta)
			err = s.repo.Update(ctx, cart)
		}

		if errors.Is(err, repository.ErrCartVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		mylogger.Info(
			ctx,
			s.logger,
			"Item added to cart",
			zap.String("user_id", userID),
			zap.String("product_id", product.ID),
			zap.Int32("quantity", qty),
		)

		return cart, nil
	}

	return nil, ErrTooMuchContention
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.RemoveItem")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("product_id", productID),
	)

	// the refund is priced at the current catalog price, not the price the
	// line was added at; see pricing.Delta
	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxCartRetries; attempt++ {
		cart, err := s.repo.GetByUser(ctx, userID)
		if err != nil {
			return nil, err
		}

		idx := cart.FindItem(productID)
		if idx == -1 {
			return nil, ErrItemNotInCart
		}

		pricing.Apply(cart, pricing.Delta{
			ProductID: productID,
			UnitPrice: product.Price,
			Quantity:  -cart.Items[idx].Quantity,
		})

		if len(cart.Items) == 0 {
			if err := s.repo.DeleteByUser(ctx, userID); err != nil && !errors.Is(err, repository.ErrCartNotFound) {
				return nil, err
			}
			return cart, nil
		}

		if err := s.repo.Update(ctx, cart); err != nil {
			if errors.Is(err, repository.ErrCartVersionConflict) {
				continue
			}
			return nil, err
		}

		return cart, nil
	}

	return nil, ErrTooMuchContention
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int32) (*domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.UpdateQuantity")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("product_id", productID),
		attribute.Int("quantity", int(quantity)),
	)

	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxCartRetries; attempt++ {
		cart, err := s.repo.GetByUser(ctx, userID)
		if err != nil {
			return nil, err
		}

		idx := cart.FindItem(productID)
		if idx == -1 {
			return nil, ErrItemNotInCart
		}

		// drop the old line at the current price, re-add with the new
		// quantity; the snapshot price becomes the current one
		pricing.Apply(cart, pricing.Delta{
			ProductID: productID,
			UnitPrice: product.Price,
			Quantity:  -cart.Items[idx].Quantity,
		})
		pricing.Apply(cart, pricing.Delta{
			ProductID: productID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  quantity,
		})

		if err := s.repo.Update(ctx, cart); err != nil {
			if errors.Is(err, repository.ErrCartVersionConflict) {
				continue
			}
			return nil, err
		}

		return cart, nil
	}

	return nil, ErrTooMuchContention
}

func (s *cartService) ClearCart(ctx context.Context, userID string) (*domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.ClearCart")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	cart, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return nil, err
	}

	mylogger.Info(ctx, s.logger, "Cart cleared", zap.String("user_id", userID))

	return cart, nil
}

func (s *cartService) SetTotal(ctx context.Context, userID string, totalPrice int64) (*domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.SetTotal")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int64("total_price", totalPrice),
	)

	for attempt := 0; attempt < maxCartRetries; attempt++ {
		cart, err := s.repo.GetByUser(ctx, userID)
		if err != nil {
			return nil, err
		}

		if cart.TotalPrice == totalPrice {
			return nil, ErrTotalUnchanged
		}

		mylogger.Warn(
			ctx,
			s.logger,
			"Cart total overridden by admin",
			zap.String("user_id", userID),
			zap.Int64("old_total", cart.TotalPrice),
			zap.Int64("new_total", totalPrice),
		)

		cart.TotalPrice = totalPrice

		if err := s.repo.Update(ctx, cart); err != nil {
			if errors.Is(err, repository.ErrCartVersionConflict) {
				continue
			}
			return nil, err
		}

		return cart, nil
	}

	return nil, ErrTooMuchContention
}
