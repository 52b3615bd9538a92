package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/sakashimaa/go-shop-api/internal/repository"
	"github.com/sakashimaa/go-shop-api/internal/service"
	"go.uber.org/zap"
)

type UserHandler struct {
	users  service.UserService
	logger *zap.Logger
}

func NewUserHandler(users service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error getting all users",
			"error":   err.Error(),
		})
	}

	if len(users) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "No users yet"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "All users: ", "users": users})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")

	user, err := h.users.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
		}

		h.logger.Error("get user failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error getting user details",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": fmt.Sprintf("User with id:%s", id),
		"user":    user,
	})
}

func (h *UserHandler) GetAddress(c *fiber.Ctx) error {
	id := c.Params("id")

	user, err := h.users.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
		}

		h.logger.Error("get user address failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error getting user address",
			"error":   err.Error(),
		})
	}

	if user.Address == (domain.Address{}) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Address not found"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": fmt.Sprintf("Address of user having id:%s", id),
		"address": user.Address,
	})
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	var input domain.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	user, err := h.users.Update(c.UserContext(), c.Params("id"), &input)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
		}

		h.logger.Error("update user failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error updating user details",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Updated successfully", "user": user})
}

type updateRoleInput struct {
	Role string `json:"role"`
}

func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	var input updateRoleInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	role := domain.Role(input.Role)
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid role"})
	}

	user, err := h.users.UpdateRole(c.UserContext(), c.Params("id"), role)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
		}

		h.logger.Error("update user role failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error updating role",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Updated role successfully", "user": user})
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if err := h.users.Delete(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
		}

		h.logger.Error("delete user failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error deleting user details",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Deleted successfully"})
}
