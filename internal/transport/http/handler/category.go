package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/go-shop-api/internal/repository"
	"github.com/sakashimaa/go-shop-api/internal/service"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	categories service.CategoryService
	logger     *zap.Logger
}

func NewCategoryHandler(categories service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger}
}

type categoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var input categoryInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	category, err := h.categories.Create(c.UserContext(), input.Name, input.Description)
	if err != nil {
		h.logger.Error("create category failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "error adding new category",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "category created successfully", "category": category})
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	categories, err := h.categories.List(c.UserContext())
	if err != nil {
		h.logger.Error("list categories failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "error getting all categories",
			"error":   err.Error(),
		})
	}

	if len(categories) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no categories defined yet"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "All categories: ", "categories": categories})
}

func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")

	category, err := h.categories.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no such category"})
		}

		h.logger.Error("get category failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "error getting category by id",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":  fmt.Sprintf("Category with id:%s", id),
		"category": category,
	})
}

func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	var input categoryInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	category, err := h.categories.Update(c.UserContext(), c.Params("id"), input.Name, input.Description)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no such category"})
		}

		h.logger.Error("update category failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "error updating category",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Updated successfully!", "category": category})
}

func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.categories.Delete(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no such category"})
		}

		h.logger.Error("delete category failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "error deleting category",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "deleted successfully!"})
}
