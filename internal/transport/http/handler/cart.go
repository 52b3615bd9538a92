package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/go-shop-api/internal/repository"
	"github.com/sakashimaa/go-shop-api/internal/service"
	"github.com/sakashimaa/go-shop-api/internal/transport/http/middleware"
	"go.uber.org/zap"
)

type CartHandler struct {
	cart   service.CartService
	logger *zap.Logger
}

func NewCartHandler(cart service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{cart: cart, logger: logger}
}

func (h *CartHandler) Get(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	cart, err := h.cart.GetCart(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Your cart is empty"})
		}

		h.logger.Error("get cart failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error getting cart items",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Cart items:", "cart": cart})
}

type addToCartInput struct {
	Product  string `json:"product"`
	Quantity *int32 `json:"quantity"`
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	var input addToCartInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	cart, err := h.cart.AddItem(c.UserContext(), userID, input.Product, input.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuantity):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, repository.ErrProductNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		case errors.Is(err, service.ErrTooMuchContention):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
		}

		h.logger.Error("add to cart failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error adding items to cart",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Added to cart!", "cart": cart})
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	cart, err := h.cart.RemoveItem(c.UserContext(), userID, c.Params("productId"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCartNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Cart not found"})
		case errors.Is(err, repository.ErrProductNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no such Product"})
		case errors.Is(err, service.ErrItemNotInCart):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no such item in cart"})
		case errors.Is(err, service.ErrTooMuchContention):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
		}

		h.logger.Error("remove from cart failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error removing item from cart",
			"error":   err.Error(),
		})
	}

	if len(cart.Items) == 0 {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Cart is empty"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Item removed from cart", "cart": cart})
}

type updateQuantityInput struct {
	Quantity int32 `json:"quantity"`
}

func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	var input updateQuantityInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	cart, err := h.cart.UpdateQuantity(c.UserContext(), userID, c.Params("productId"), input.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuantity):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, repository.ErrCartNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Cart not found"})
		case errors.Is(err, repository.ErrProductNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		case errors.Is(err, service.ErrItemNotInCart):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Item not found in cart"})
		case errors.Is(err, service.ErrTooMuchContention):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
		}

		h.logger.Error("update cart quantity failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error updating cart item quantity",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Cart updated successfully", "cart": cart})
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	cart, err := h.cart.ClearCart(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Cart not found"})
		}

		h.logger.Error("clear cart failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error clearing cart",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Cart cleared!", "cart": cart})
}

type setTotalInput struct {
	TotalPrice int64 `json:"totalPrice"`
}

// SetTotal is the admin override for the denormalized total; the target
// user comes from the path, not the token.
func (h *CartHandler) SetTotal(c *fiber.Ctx) error {
	var input setTotalInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	cart, err := h.cart.SetTotal(c.UserContext(), c.Params("userId"), input.TotalPrice)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCartNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Cart not found"})
		case errors.Is(err, service.ErrTotalUnchanged):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Total price is same as before"})
		case errors.Is(err, service.ErrTooMuchContention):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
		}

		h.logger.Error("set cart total failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error updating cart total",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Updated totalPrice", "cart": cart})
}
