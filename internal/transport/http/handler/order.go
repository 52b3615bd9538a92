package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/sakashimaa/go-shop-api/internal/repository"
	"github.com/sakashimaa/go-shop-api/internal/service"
	"github.com/sakashimaa/go-shop-api/internal/transport/http/middleware"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders service.OrderService
	logger *zap.Logger
}

func NewOrderHandler(orders service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

type placeOrderInput struct {
	Product       string `json:"product"`
	Quantity      *int32 `json:"quantity"`
	Street        string `json:"street"`
	City          string `json:"city"`
	State         string `json:"state"`
	Pincode       string `json:"pincode"`
	Country       string `json:"country"`
	PaymentMethod string `json:"paymentMethod"`
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	var input placeOrderInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	address := domain.Address{
		Street:  input.Street,
		City:    input.City,
		State:   input.State,
		Pincode: input.Pincode,
		Country: input.Country,
	}

	order, err := h.orders.PlaceOrder(c.UserContext(), userID, input.Product, input.Quantity, address, input.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuantity):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, repository.ErrProductNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		}

		h.logger.Error("place order failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error placing order",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Order Confirmed!", "order": order})
}

func (h *OrderHandler) ListAll(c *fiber.Ctx) error {
	orders, err := h.orders.ListAll(c.UserContext())
	if err != nil {
		h.logger.Error("list orders failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error getting all orders",
			"error":   err.Error(),
		})
	}

	if len(orders) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "No orders yet"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "All Orders", "orders": orders})
}

func (h *OrderHandler) ListByUser(c *fiber.Ctx) error {
	orders, err := h.orders.ListByUser(c.UserContext(), c.Params("userId"))
	if err != nil {
		h.logger.Error("list user orders failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error getting your orders",
			"error":   err.Error(),
		})
	}

	if len(orders) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "No orders yet"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Your Orders", "orders": orders})
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	order, err := h.orders.GetByID(c.UserContext(), c.Params("orderId"))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
		}

		h.logger.Error("get order failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error getting this order",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Your Orders", "order": order})
}

type updateStatusInput struct {
	OrderStatus string `json:"orderStatus"`
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var input updateStatusInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	order, err := h.orders.UpdateStatus(c.UserContext(), c.Params("orderId"), input.OrderStatus)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
		case errors.Is(err, repository.ErrOrderCancelled):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "order is cancelled"})
		}

		h.logger.Error("update order status failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error updating order status",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Order status updated", "order": order})
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	order, err := h.orders.Cancel(c.UserContext(), c.Params("orderId"))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
		}

		h.logger.Error("cancel order failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error cancelling order",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Order Cancelled!", "order": order})
}

type updateAddressInput struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

func (h *OrderHandler) UpdateAddress(c *fiber.Ctx) error {
	var input updateAddressInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	address := domain.Address{
		Street:  input.Street,
		City:    input.City,
		State:   input.State,
		Pincode: input.Pincode,
		Country: input.Country,
	}

	order, err := h.orders.UpdateAddress(c.UserContext(), c.Params("orderId"), address)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
		}

		h.logger.Error("update shipping address failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error updating shipping address",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "shipping address updated", "order": order})
}

func (h *OrderHandler) TrackStatus(c *fiber.Ctx) error {
	status, err := h.orders.TrackStatus(c.UserContext(), c.Params("orderId"))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
		}

		h.logger.Error("track order failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error tracking order",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Order Status:", "orderStatus": status})
}
