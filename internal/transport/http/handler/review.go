package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/go-shop-api/internal/repository"
	"github.com/sakashimaa/go-shop-api/internal/service"
	"github.com/sakashimaa/go-shop-api/internal/transport/http/middleware"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	reviews service.ReviewService
	logger  *zap.Logger
}

func NewReviewHandler(reviews service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

type createReviewInput struct {
	Name    string `json:"name"`
	Rating  int32  `json:"rating"`
	Comment string `json:"comment"`
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	var input createReviewInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	review, err := h.reviews.Create(c.UserContext(), userID, input.Name, input.Rating, input.Comment)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		}

		h.logger.Error("create review failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error adding review",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "review added successfully", "review": review})
}

func (h *ReviewHandler) ListByProduct(c *fiber.Ctx) error {
	reviews, err := h.reviews.ListByProduct(c.UserContext(), c.Params("productId"))
	if err != nil {
		h.logger.Error("list product reviews failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error getting reviews for this product",
			"error":   err.Error(),
		})
	}

	if len(reviews) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no reviews yet"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "review for this product", "reviews": reviews})
}

func (h *ReviewHandler) ListByUser(c *fiber.Ctx) error {
	reviews, err := h.reviews.ListByUser(c.UserContext(), c.Params("userId"))
	if err != nil {
		h.logger.Error("list user reviews failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error getting reviews from this user",
			"error":   err.Error(),
		})
	}

	if len(reviews) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no reviews yet"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "reviews by this user", "reviews": reviews})
}

type updateReviewInput struct {
	Rating  *int32  `json:"rating"`
	Comment *string `json:"comment"`
}

func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	var input updateReviewInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	review, err := h.reviews.Update(c.UserContext(), c.Params("reviewId"), input.Rating, input.Comment)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no such review"})
		}

		h.logger.Error("update review failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error editing the review",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "review updated!", "review": review})
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	if err := h.reviews.Delete(c.UserContext(), c.Params("reviewId")); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no such review"})
		}

		h.logger.Error("delete review failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error deleting the review",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "review deleted!"})
}
