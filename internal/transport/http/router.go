package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/go-shop-api/internal/transport/http/handler"
	"github.com/sakashimaa/go-shop-api/internal/transport/http/middleware"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Product  *handler.ProductHandler
	Category *handler.CategoryHandler
	Cart     *handler.CartHandler
	Order    *handler.OrderHandler
	Review   *handler.ReviewHandler
}

func RegisterRoutes(app *fiber.App, h *Handlers, jwtSecret string) {
	requireAuth := middleware.NewAuthMiddleware(jwtSecret)
	requireAdmin := middleware.NewAdminMiddleware()

	api := app.Group("/api")

	api.Post("/register", h.Auth.Register)
	api.Post("/login", h.Auth.Login)

	users := api.Group("/users", requireAuth)
	users.Get("", requireAdmin, h.User.List)
	users.Get("/:id/address", h.User.GetAddress)
	users.Get("/:id", h.User.Get)
	users.Put("/:id/role", requireAdmin, h.User.UpdateRole)
	users.Put("/:id", h.User.Update)
	users.Delete("/:id", requireAdmin, h.User.Delete)

	products := api.Group("/products")
	products.Get("", h.Product.List)
	products.Post("", requireAuth, requireAdmin, h.Product.Create)
	products.Get("/:id", h.Product.Get)
	products.Put("/:id", requireAuth, requireAdmin, h.Product.Update)
	products.Delete("/:id", requireAuth, requireAdmin, h.Product.Delete)

	api.Get("/search", h.Product.Search)

	categories := api.Group("/categories")
	categories.Get("", h.Category.List)
	categories.Post("", requireAuth, requireAdmin, h.Category.Create)
	categories.Get("/:id", h.Category.Get)
	categories.Put("/:id", requireAuth, requireAdmin, h.Category.Update)
	categories.Delete("/:id", requireAuth, requireAdmin, h.Category.Delete)

	cart := api.Group("/cart", requireAuth)
	cart.Get("", h.Cart.Get)
	cart.Post("/add", h.Cart.Add)
	cart.Delete("/remove/:productId", h.Cart.Remove)
	cart.Put("/update/:productId", h.Cart.UpdateQuantity)
	cart.Delete("/clear", h.Cart.Clear)
	cart.Put("/total/:userId", requireAdmin, h.Cart.SetTotal)

	orders := api.Group("/orders", requireAuth)
	orders.Post("", h.Order.Place)
	orders.Get("", requireAdmin, h.Order.ListAll)
	orders.Get("/user/:userId", h.Order.ListByUser)
	orders.Get("/:orderId/track", h.Order.TrackStatus)
	orders.Get("/:orderId", h.Order.Get)
	orders.Put("/:orderId/status", requireAdmin, h.Order.UpdateStatus)
	orders.Put("/:orderId/address", h.Order.UpdateAddress)
	orders.Put("/:orderId", h.Order.Cancel)

	reviews := api.Group("/reviews", requireAuth)
	reviews.Post("", h.Review.Create)
	reviews.Get("/product/:productId", h.Review.ListByProduct)
	reviews.Get("/user/:userId", h.Review.ListByUser)
	reviews.Put("/:reviewId", h.Review.Update)
	reviews.Delete("/:reviewId", h.Review.Delete)
}
