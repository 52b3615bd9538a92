package service

import (
	"context"
	"testing"

	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/sakashimaa/go-shop-api/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCatalog struct {
	byID   map[string]*domain.Product
	byName map[string]*domain.Product
}

func newFakeCatalog(products ...*domain.Product) *fakeCatalog {
	c := &fakeCatalog{
		byID:   make(map[string]*domain.Product),
		byName: make(map[string]*domain.Product),
	}
	for _, p := range products {
		c.byID[p.ID] = p
		c.byName[p.Name] = p
	}
	return c
}

func (c *fakeCatalog) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (c *fakeCatalog) GetByName(_ context.Context, name string) (*domain.Product, error) {
	p, ok := c.byName[name]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

// fakeCartRepo keeps one cart per user and mimics the conditional update:
// a write only lands when the caller's version matches the stored one.
type fakeCartRepo struct {
	carts map[string]*domain.Cart
	// conflictsLeft forces this many version conflicts before writes succeed
	conflictsLeft int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[string]*domain.Cart)}
}

func (r *fakeCartRepo) GetByUser(_ context.Context, userID string) (*domain.Cart, error) {
	cart, ok := r.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	cp := *cart
	cp.Items = append([]domain.CartItem(nil), cart.Items...)
	return &cp, nil
}

func (r *fakeCartRepo) Insert(_ context.Context, cart *domain.Cart) error {
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		return repository.ErrCartVersionConflict
	}
	if _, ok := r.carts[cart.UserID]; ok {
		return repository.ErrCartVersionConflict
	}
	cart.Version = 1
	cp := *cart
	cp.Items = append([]domain.CartItem(nil), cart.Items...)
	r.carts[cart.UserID] = &cp
	return nil
}

func (r *fakeCartRepo) Update(_ context.Context, cart *domain.Cart) error {
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		return repository.ErrCartVersionConflict
	}
	stored, ok := r.carts[cart.UserID]
	if !ok || stored.Version != cart.Version {
		return repository.ErrCartVersionConflict
	}
	cart.Version++
	cp := *cart
	cp.Items = append([]domain.CartItem(nil), cart.Items...)
	r.carts[cart.UserID] = &cp
	return nil
}

func (r *fakeCartRepo) DeleteByUser(_ context.Context, userID string) error {
	if _, ok := r.carts[userID]; !ok {
		return repository.ErrCartNotFound
	}
	delete(r.carts, userID)
	return nil
}

func newCartServiceForTest(repo repository.CartRepository, catalog ProductCatalog) CartService {
	return NewCartService(repo, catalog, zap.NewNop())
}

func int32Ptr(v int32) *int32 { return &v }

func TestAddItem_DefaultQuantityIsOne(t *testing.T) {
	widget := &domain.Product{ID: "p-widget", Name: "Widget", Price: 10}
	svc := newCartServiceForTest(newFakeCartRepo(), newFakeCatalog(widget))

	cart, err := svc.AddItem(context.Background(), "u1", "Widget", nil)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	require.Equal(t, int32(1), cart.Items[0].Quantity)
	require.Equal(t, int64(10), cart.TotalPrice)
}

func TestAddItem_RejectsQuantityBelowOne(t *testing.T) {
	widget := &domain.Product{ID: "p-widget", Name: "Widget", Price: 10}
	svc := newCartServiceForTest(newFakeCartRepo(), newFakeCatalog(widget))

	_, err := svc.AddItem(context.Background(), "u1", "Widget", int32Ptr(0))
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddItem(context.Background(), "u1", "Widget", int32Ptr(-3))
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	svc := newCartServiceForTest(newFakeCartRepo(), newFakeCatalog())

	_, err := svc.AddItem(context.Background(), "u1", "Nothing", nil)
	require.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestAddItem_MergesExistingLine(t *testing.T) {
	widget := &domain.Product{ID: "p-widget", Name: "Widget", Price: 10}
	svc := newCartServiceForTest(newFakeCartRepo(), newFakeCatalog(widget))

	_, err := svc.AddItem(context.Background(), "u1", "Widget", int32Ptr(3))
	require.NoError(t, err)

	cart, err := svc.AddItem(context.Background(), "u1", "Widget", int32Ptr(2))
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	require.Equal(t, int32(5), cart.Items[0].Quantity)
	require.Equal(t, int64(50), cart.TotalPrice)
}

func TestAddItem_RetriesOnVersionConflict(t *testing.T) {
	widget := &domain.Product{ID: "p-widget", Name: "Widget", Price: 10}
	repo := newFakeCartRepo()
	repo.conflictsLeft = 2
	svc := newCartServiceForTest(repo, newFakeCatalog(widget))

	cart, err := svc.AddItem(context.Background(), "u1", "Widget", int32Ptr(1))
	require.NoError(t, err)
	require.Equal(t, int64(10), cart.TotalPrice)
}

func TestAddItem_GivesUpAfterMaxRetries(t *testing.T) {
	widget := &domain.Product{ID: "p-widget", Name: "Widget", Price: 10}
	repo := newFakeCartRepo()
	repo.conflictsLeft = maxCartRetries
	svc := newCartServiceForTest(repo, newFakeCatalog(widget))

	_, err := svc.AddItem(context.Background(), "u1", "Widget", int32Ptr(1))
	require.ErrorIs(t, err, ErrTooMuchContention)
}

func TestGetCart_EmptyIsNotFound(t *testing.T) {
	svc := newCartServiceForTest(newFakeCartRepo(), newFakeCatalog())

	_, err := svc.GetCart(context.Background(), "u1")
	require.ErrorIs(t, err, repository.ErrCartNotFound)
}

func TestRemoveItem_LastLineDeletesCart(t *testing.T) {
	widget := &domain.Product{ID: "p-widget", Name: "Widget", Price: 10}
	repo := newFakeCartRepo()
	svc := newCartServiceForTest(repo, newFakeCatalog(widget))

	_, err := svc.AddItem(context.Background(), "u1", "Widget", int32Ptr(3))
	require.NoError(t, err)

	cart, err := svc.RemoveItem(context.Background(), "u1", "p-widget")
	require.NoError(t, err)
	require.Empty(t, cart.Items)
	require.Equal(t, int64(0), cart.TotalPrice)

	_, err = svc.GetCart(context.Background(), "u1")
	require.ErrorIs(t, err, repository.ErrCartNotFound)
}

func TestRemoveItem_RefundsAtCurrentPrice(t *testing.T) {
	widget := &domain.Product{ID: "p-widget", Name: "Widget", Price: 10}
	gizmo := &domain.Product{ID: "p-gizmo", Name: "Gizmo", Price: 7}
	catalog := newFakeCatalog(widget, gizmo)
	svc := newCartServiceForTest(newFakeCartRepo(), catalog)

	_, err := svc.AddItem(context.Background(), "u1", "Widget", int32Ptr(3))
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), "u1", "Gizmo", int32Ptr(1))
	require.NoError(t, err)

	// price changes between add and remove; the refund uses the new price
	catalog.byID["p-widget"].Price = 12

	cart, err := svc.RemoveItem(context.Background(), "u1", "p-widget")
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	require.Equal(t, "p-gizmo", cart.Items[0].ProductID)
	// 30 + 7 - 3*12 = 1
	require.Equal(t, int64(1), cart.TotalPrice)
}

func TestRemoveItem_NotInCart(t *testing.T) {
	widget := &domain.Product{ID: "p-widget", Name: "Widget", Price: 10}
	gizmo := &domain.Product{ID: "p-gizmo", Name: "Gizmo", Price: 7}
	svc := newCartServiceForTest(newFakeCartRepo(), newFakeCatalog(widget, gizmo))

	_, err := svc.AddItem(context.Background(), "u1", "Widget", int32Ptr(1))
	require.NoError(t, err)

	_, err = svc.RemoveItem(context.Background(), "u1", "p-gizmo")
	require.ErrorIs(t, err, ErrItemNotInCart)
}

func TestUpdateQuantity_ReplacesLineAtCurrentPrice(t *testing.T) {
	widget := &domain.Product{ID: "p-widget", Name: "Widget", Price: 10}
	catalog := newFakeCatalog(widget)
	svc := newCartServiceForTest(newFakeCartRepo(), catalog)

	_, err := svc.AddItem(context.Background(), "u1", "Widget", int32Ptr(3))
	require.NoError(t, err)

	catalog.byID["p-widget"].Price = 12

	cart, err := svc.UpdateQuantity(context.Background(), "u1", "p-widget", 5)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	require.Equal(t, int32(5), cart.Items[0].Quantity)
	require.Equal(t, int64(12), cart.Items[0].PriceAtAdd)
	// 30 - 3*12 + 5*12 = 54
	require.Equal(t, int64(54), cart.TotalPrice)
}

func TestUpdateQuantity_RejectsBelowOne(t *testing.T) {
	widget := &domain.Product{ID: "p-widget", Name: "Widget", Price: 10}
	svc := newCartServiceForTest(newFakeCartRepo(), newFakeCatalog(widget))

	_, err := svc.UpdateQuantity(context.Background(), "u1", "p-widget", 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestClearCart_SecondClearIsNotFound(t *testing.T) {
	widget := &domain.Product{ID: "p-widget", Name: "Widget", Price: 10}
	svc := newCartServiceForTest(newFakeCartRepo(), newFakeCatalog(widget))

	_, err := svc.AddItem(context.Background(), "u1", "Widget", int32Ptr(2))
	require.NoError(t, err)

	cart, err := svc.ClearCart(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, int64(20), cart.TotalPrice)

	_, err = svc.ClearCart(context.Background(), "u1")
	require.ErrorIs(t, err, repository.ErrCartNotFound)
}

func TestSetTotal_OverridesAndDetectsNoChange(t *testing.T) {
	widget := &domain.Product{ID: "p-widget", Name: "Widget", Price: 10}
	svc := newCartServiceForTest(newFakeCartRepo(), newFakeCatalog(widget))

	_, err := svc.AddItem(context.Background(), "u1", "Widget", int32Ptr(2))
	require.NoError(t, err)

	cart, err := svc.SetTotal(context.Background(), "u1", 999)
	require.NoError(t, err)
	require.Equal(t, int64(999), cart.TotalPrice)
	// items are untouched, only the denormalized total moved
	require.Len(t, cart.Items, 1)

	_, err = svc.SetTotal(context.Background(), "u1", 999)
	require.ErrorIs(t, err, ErrTotalUnchanged)
}

func TestSetTotal_NoCart(t *testing.T) {
	svc := newCartServiceForTest(newFakeCartRepo(), newFakeCatalog())

	_, err := svc.SetTotal(context.Background(), "u1", 100)
	require.ErrorIs(t, err, repository.ErrCartNotFound)
}
