package handler

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/sakashimaa/go-shop-api/internal/repository"
	"github.com/sakashimaa/go-shop-api/internal/service"
	"github.com/sakashimaa/go-shop-api/pkg/utils"
	"go.uber.org/zap"
)

type ProductHandler struct {
	catalog  service.CatalogService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewProductHandler(catalog service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog:  catalog,
		validate: validator.New(),
		logger:   logger,
	}
}

type createProductInput struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Price       int64    `json:"price" validate:"gt=0"`
	CategoryID  string   `json:"category_id"`
	Brand       string   `json:"brand"`
	Stock       int64    `json:"stock" validate:"gte=0"`
	Images      []string `json:"images"`
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var input createProductInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  utils.FormatValidationError(err),
		})
	}

	product, err := h.catalog.Create(c.UserContext(), &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		CategoryID:  input.CategoryID,
		Brand:       input.Brand,
		Stock:       input.Stock,
		Images:      input.Images,
	})
	if err != nil {
		h.logger.Error("create product failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "error adding new product",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "product added successfully", "product": product})
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.catalog.List(c.UserContext())
	if err != nil {
		h.logger.Error("list products failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "error getting all products",
			"error":   err.Error(),
		})
	}

	if len(products) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no products yet"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "All products: ", "products": products})
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")

	product, err := h.catalog.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		}

		h.logger.Error("get product failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "error getting product by id",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": fmt.Sprintf("Product with id:%s", id),
		"product": product,
	})
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var input domain.UpdateProductInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	product, err := h.catalog.Update(c.UserContext(), c.Params("id"), &input)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		}

		h.logger.Error("update product failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "error updating product",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "product updated successfully", "product": product})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.catalog.Delete(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		}

		h.logger.Error("delete product failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "error deleting product",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "product deleted successfully"})
}

// Search matches ignoring whitespace, so "i phone" finds "iPhone".
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please enter a search query"})
	}

	products, err := h.catalog.Search(c.UserContext(), query)
	if err != nil {
		h.logger.Error("search products failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error searching products",
			"error":   err.Error(),
		})
	}

	if len(products) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no products found"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":  fmt.Sprintf("search results for %s", query),
		"products": products,
	})
}
