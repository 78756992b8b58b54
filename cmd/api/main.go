package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/naturalmart/shop-api/internal/cache"
	"github.com/naturalmart/shop-api/internal/http/handlers"
	httpmiddleware "github.com/naturalmart/shop-api/internal/http/middleware"
	"github.com/naturalmart/shop-api/internal/notify"
	"github.com/naturalmart/shop-api/internal/platform/mailer"
	"github.com/naturalmart/shop-api/internal/repo/mongodb"
	"github.com/naturalmart/shop-api/internal/service"
	"github.com/naturalmart/shop-api/pkg/config"
	"github.com/naturalmart/shop-api/pkg/database"
	"github.com/naturalmart/shop-api/pkg/events"
	"github.com/naturalmart/shop-api/pkg/logger"
	"github.com/naturalmart/shop-api/pkg/middleware"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()

	mongoClient, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("Failed to disconnect MongoDB", "error", err)
		}
	}()
	logger.Info("Connected to MongoDB", "database", cfg.Mongo.Database)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	var eventBus events.EventBus
	if bus, err := events.NewNATSEventBus(cfg.NATS.URL); err != nil {
		// Events are best effort; the API stays up without them.
		logger.Warn("Failed to connect to NATS, events disabled", "error", err)
	} else {
		eventBus = bus
		defer bus.Close()
		logger.Info("Connected to NATS", "url", cfg.NATS.URL)
	}

	db := mongoClient.Database(cfg.Mongo.Database)
	userRepo := mongodb.NewUserRepository(db)
	anonOrderRepo := mongodb.NewAnonOrderRepository(db)
	productRepo := mongodb.NewProductRepository(db)

	productCache := cache.NewProductCache(redisClient)

	authService := service.NewAuthService(userRepo, eventBus, cfg)
	orderService := service.NewOrderService(userRepo, anonOrderRepo, eventBus)
	productService := service.NewProductService(productRepo, productCache, cfg.Redis.ProductCacheTTL)

	if eventBus != nil {
		var mailService mailer.Service
		if cfg.Email.DevMode || cfg.Email.MailerSendKey == "" {
			mailService = mailer.NewDev()
		} else {
			mailService = mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromEmail, cfg.Email.FromName)
		}
		notifier := notify.New(eventBus, mailService)
		if err := notifier.Start(); err != nil {
			logger.Error("Failed to start notifier", "error", err)
			os.Exit(1)
		}
	}

	h := handlers.New(authService, orderService, productService)

	authLimiter := httpmiddleware.NewRateLimiter(redisClient, httpmiddleware.RateLimitConfig{
		Requests: cfg.Auth.RateLimitRequests,
		Window:   cfg.Auth.RateLimitWindow,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ServiceName("api"))
	r.Use(middleware.Logging)
	r.Use(middleware.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", h.Home)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware())
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.Post("/products/post", h.CreateProduct)
		r.Get("/products", h.ListProducts)
		r.Delete("/products/{id}", h.DeleteProduct)

		r.Post("/orders/user", h.PlaceOrder)
		r.Get("/admin/orders", h.ListAllOrders)
		r.Get("/orders/{email}", h.ListUserOrders)
		r.Patch("/orders/{orderId}/confirm", h.ConfirmOrder)
		r.Delete("/orders/{orderId}", h.CancelOrder)
		r.Patch("/orders/deliver/{orderId}", h.DeliverOrder)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", "error", err)
		}
	}()

	logger.Info("Server starting", "port", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped")
}
