package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-ordering-api/config"
	"food-ordering-api/events"
	"food-ordering-api/handlers"
	"food-ordering-api/logger"
	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/payment"
	"food-ordering-api/repository"
	"food-ordering-api/routes"
	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const serviceName = "food-ordering-api"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.New(serviceName, zapcore.InfoLevel).Error(ctx, "startup", "invalid configuration", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.LogLevel)
	defer log.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.OpenDB(cfg)
	if err != nil {
		log.Error(ctx, "startup", "failed to connect database", err)
		os.Exit(1)
	}
	if err := config.Migrate(db); err != nil {
		log.Error(ctx, "startup", "failed to migrate database", err)
		os.Exit(1)
	}
	log.Info(ctx, "startup", "database ready", zap.String("driver", cfg.DBDriver))

	if cfg.SeedDemo && !cfg.IsProduction() {
		seedDemo(ctx, cfg, db, log)
	}

	var gateway payment.Gateway
	if cfg.StripeSecretKey != "" {
		stripeGateway, err := payment.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
		if err != nil {
			log.Error(ctx, "startup", "failed to configure payment gateway", err)
			os.Exit(1)
		}
		gateway = stripeGateway
	} else {
		// config only allows this outside production
		log.Warn(ctx, "startup", "STRIPE_SECRET_KEY not set, using local payment gateway")
		gateway = payment.NewLocal()
	}

	var publisher events.Publisher
	if cfg.AMQPURL != "" {
		rabbit, err := events.DialRabbit(cfg.AMQPURL, log)
		if err != nil {
			log.Error(ctx, "startup", "failed to connect message broker", err)
			os.Exit(1)
		}
		publisher = rabbit
	} else {
		publisher = events.NewLogPublisher(log)
	}
	defer publisher.Close()

	store := repository.NewStore(db)
	orderSvc := services.NewOrderService(store, gateway, publisher, log, cfg.PaymentCurrency)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS())
	routes.SetupRoutes(r, routes.Handlers{
		Orders:    handlers.NewOrderHandler(orderSvc, cfg.IsProduction()),
		Payments:  handlers.NewPaymentHandler(gateway, orderSvc, cfg.IsProduction()),
		Catalog:   handlers.NewCatalogHandler(store),
		JWTSecret: []byte(cfg.JWTSecret),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info(ctx, "startup", "server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server", "server stopped unexpectedly", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "shutdown", "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "shutdown", "graceful shutdown failed", err)
	}
}

// seedDemo loads demo data and logs a token per demo user. Development only.
func seedDemo(ctx context.Context, cfg *config.Config, db *gorm.DB, log *logger.Logger) {
	users, err := config.SeedDemo(db)
	if err != nil {
		log.Error(ctx, "startup", "failed to seed demo data", err)
		os.Exit(1)
	}
	for _, u := range users {
		token, err := middleware.GenerateToken(models.Identity{UserID: u.ID, Name: u.Name, Role: u.Role}, []byte(cfg.JWTSecret), cfg.JWTTTL)
		if err != nil {
			log.Error(ctx, "startup", "failed to sign demo token", err)
			continue
		}
		log.Info(ctx, "startup", "demo user",
			zap.String("email", u.Email),
			zap.String("role", string(u.Role)),
			zap.String("token", token),
		)
	}
}
