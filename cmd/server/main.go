package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sakashimaa/go-shop-api/internal/repository"
	"github.com/sakashimaa/go-shop-api/internal/service"
	transport "github.com/sakashimaa/go-shop-api/internal/transport/http"
	"github.com/sakashimaa/go-shop-api/internal/transport/http/handler"
	"github.com/sakashimaa/go-shop-api/internal/transport/http/middleware"
	"github.com/sakashimaa/go-shop-api/pkg/config"
	"github.com/sakashimaa/go-shop-api/pkg/db"
	"github.com/sakashimaa/go-shop-api/pkg/kafka"
	"github.com/sakashimaa/go-shop-api/pkg/metrics"
	outboxrepo "github.com/sakashimaa/go-shop-api/pkg/outbox/repository"
	"github.com/sakashimaa/go-shop-api/pkg/outbox/worker"
	"github.com/sakashimaa/go-shop-api/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	tp, err := utils.InitTracer(ctx, "shop-api")
	if err != nil {
		log.Fatalf("Failed to init trace: %v", err)
	}

	logger, err := config.NewLogger(config.LoggerConfig{
		Level: "info",
		Env:   cfg.Env,
	})
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	pool, err := db.NewPostgresDB(cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("Error connecting to Postgres: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.Postgres.URL, cfg.Postgres.MigrationsPath); err != nil {
		log.Fatalf("Error running migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing redis client: %v\n", err)
		}
	}()

	producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		log.Fatalf("Error creating kafka producer: %v", err)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			log.Printf("Error closing kafka producer: %v\n", err)
		}
	}()

	userRepo := repository.NewUserRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	reviewRepo := repository.NewReviewRepository(pool, logger)
	outboxRepo := outboxrepo.NewOutboxRepository(pool, logger)

	catalog := service.NewCachedCatalogService(
		service.NewCatalogService(productRepo, logger),
		redisClient,
		cfg.Redis.CacheTTL,
		logger,
	)
	authService := service.NewAuthService(userRepo, cfg.Auth.Secret, cfg.Auth.TokenTTL, logger)
	userService := service.NewUserService(userRepo, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	cartService := service.NewCartService(cartRepo, catalog, logger)
	orderService := service.NewOrderService(pool, orderRepo, outboxRepo, catalog, cfg.Kafka.Topic, logger)
	reviewService := service.NewReviewService(reviewRepo, catalog, logger)

	outboxProcessor := worker.NewOutboxProcessor(pool, outboxRepo, producer, logger)
	go outboxProcessor.Start(ctx)

	serverMetrics := metrics.NewServerMetrics("server")

	app := fiber.New()

	app.Use(otelfiber.Middleware())
	app.Use(middleware.NewMetricsMiddleware(serverMetrics))

	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Limiter.Max,
		Expiration: cfg.Limiter.Expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Try again later.",
			})
		},
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	handlers := &transport.Handlers{
		Auth:     handler.NewAuthHandler(authService, logger),
		User:     handler.NewUserHandler(userService, logger),
		Product:  handler.NewProductHandler(catalog, logger),
		Category: handler.NewCategoryHandler(categoryService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Review:   handler.NewReviewHandler(reviewService, logger),
	}

	transport.RegisterRoutes(app, handlers, cfg.Auth.Secret)

	logger.Info("Shop API started!")

	go func() {
		log.Println("HTTP Service listening on: " + cfg.HTTP.Port)
		if err := app.Listen(cfg.HTTP.Port); err != nil {
			log.Fatalf("Error listening on HTTP port %v: %v\n", cfg.HTTP.Port, err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down gracefully...")
	shutdownContext, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownContext); err != nil {
		log.Printf("Error shutting down HTTP app: %v\n", err)
	} else {
		log.Println("HTTP App stopped gracefully")
	}

	if err := tp.Shutdown(shutdownContext); err != nil {
		log.Printf("Error shutting down telemetry: %v\n", err)
	} else {
		log.Println("Telemetry stopped correctly")
	}
}
