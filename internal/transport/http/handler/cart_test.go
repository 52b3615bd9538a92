package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/sakashimaa/go-shop-api/internal/repository"
	"github.com/sakashimaa/go-shop-api/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCartService struct {
	cart *domain.Cart
	err  error
}

func (s *fakeCartService) GetCart(context.Context, string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *fakeCartService) AddItem(context.Context, string, string, *int32) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *fakeCartService) RemoveItem(context.Context, string, string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *fakeCartService) UpdateQuantity(context.Context, string, string, int32) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *fakeCartService) ClearCart(context.Context, string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *fakeCartService) SetTotal(context.Context, string, int64) (*domain.Cart, error) {
	return s.cart, s.err
}

func newCartApp(svc service.CartService) *fiber.App {
	h := NewCartHandler(svc, zap.NewNop())

	app := fiber.New()
	// stand-in for the auth middleware
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userId", "u1")
		c.Locals("role", "user")
		return c.Next()
	})
	app.Get("/api/cart", h.Get)
	app.Post("/api/cart/add", h.Add)
	app.Put("/api/cart/total/:userId", h.SetTotal)
	return app
}

func TestCartGet_EmptyCart(t *testing.T) {
	app := newCartApp(&fakeCartService{err: repository.ErrCartNotFound})

	req := httptest.NewRequest("GET", "/api/cart", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "Your cart is empty", body["message"])
}

func TestCartAdd_Success(t *testing.T) {
	cart := &domain.Cart{
		ID:     "c1",
		UserID: "u1",
		Items: []domain.CartItem{
			{ProductID: "p1", Name: "Widget", Quantity: 2, PriceAtAdd: 10},
		},
		TotalPrice: 20,
	}
	app := newCartApp(&fakeCartService{cart: cart})

	payload := bytes.NewBufferString(`{"product":"Widget","quantity":2}`)
	req := httptest.NewRequest("POST", "/api/cart/add", payload)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "Added to cart!", body["message"])
}

func TestCartAdd_UnknownProduct(t *testing.T) {
	app := newCartApp(&fakeCartService{err: repository.ErrProductNotFound})

	payload := bytes.NewBufferString(`{"product":"Nothing"}`)
	req := httptest.NewRequest("POST", "/api/cart/add", payload)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCartSetTotal_NoChange(t *testing.T) {
	app := newCartApp(&fakeCartService{err: service.ErrTotalUnchanged})

	payload := bytes.NewBufferString(`{"totalPrice":100}`)
	req := httptest.NewRequest("PUT", "/api/cart/total/u1", payload)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "Total price is same as before", body["message"])
}
