package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parkhub/internal/config"
	"parkhub/internal/handlers"
	"parkhub/internal/middleware"
	"parkhub/internal/models"
	"parkhub/internal/repositories/mongodb"
	"parkhub/internal/services"
	"parkhub/pkg/cache"
	"parkhub/pkg/database"
	"parkhub/pkg/logger"
	"parkhub/pkg/payment"
	"parkhub/pkg/sms"
	"parkhub/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	if err := database.EnsureIndexes(db.Database); err != nil {
		appLogger.Fatalf("Failed to create indexes: %v", err)
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	// Repositories
	userRepo := mongodb.NewUserRepository(db.Database)
	vehicleRepo := mongodb.NewVehicleRepository(db.Database)
	orgRepo := mongodb.NewOrganizationRepository(db.Database)
	lotRepo := mongodb.NewParkingLotRepository(db.Database, redisCache)
	discountRepo := mongodb.NewDiscountRepository(db.Database, redisCache)
	reservationRepo := mongodb.NewReservationRepository(db.Database)
	sessionRepo := mongodb.NewSessionRepository(db.Database)
	paymentRepo := mongodb.NewPaymentRepository(db.Database)

	// Payment providers
	providers := map[models.PaymentProvider]payment.Provider{}
	if cfg.Payment.Stripe.SecretKey != "" {
		providers[models.PaymentProviderStripe] = payment.NewStripeProvider(cfg.Payment.Stripe.SecretKey)
	}
	if cfg.Payment.Razorpay.KeyID != "" {
		providers[models.PaymentProviderRazorpay] = payment.NewRazorpayProvider(cfg.Payment.Razorpay.KeyID, cfg.Payment.Razorpay.KeySecret)
	}

	var smsProvider sms.Provider
	if cfg.SMS.Enabled && cfg.SMS.Twilio.AccountSID != "" {
		smsProvider = sms.NewTwilioProvider(cfg.SMS.Twilio.AccountSID, cfg.SMS.Twilio.AuthToken, cfg.SMS.FromNumber)
	}

	// Services
	pricingService := services.NewPricingService()
	discountService := services.NewDiscountService(discountRepo, userRepo, pricingService, appLogger)
	reservationService := services.NewReservationService(reservationRepo, vehicleRepo, lotRepo, userRepo, discountService, pricingService, smsProvider, appLogger)
	sessionService := services.NewSessionService(sessionRepo, reservationRepo, lotRepo, pricingService, redisCache, appLogger)
	paymentService := services.NewPaymentService(paymentRepo, reservationRepo, providers, models.PaymentProvider(cfg.Payment.DefaultProvider), appLogger)
	authService := services.NewAuthService(userRepo, cfg.Security, appLogger)
	userService := services.NewUserService(userRepo, orgRepo, appLogger)
	vehicleService := services.NewVehicleService(vehicleRepo, appLogger)
	lotService := services.NewParkingLotService(lotRepo, appLogger)
	orgService := services.NewOrganizationService(orgRepo, appLogger)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(appLogger))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))

	routes.SetupRoutes(router, &routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		User:         handlers.NewUserHandler(userService),
		Vehicle:      handlers.NewVehicleHandler(vehicleService),
		ParkingLot:   handlers.NewParkingLotHandler(lotService, sessionService),
		Organization: handlers.NewOrganizationHandler(orgService),
		Reservation:  handlers.NewReservationHandler(reservationService),
		Discount:     handlers.NewDiscountHandler(discountService),
		Session:      handlers.NewSessionHandler(sessionService),
		Payment:      handlers.NewPaymentHandler(paymentService),
	}, cfg.Security.JWTSecret)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.Infof("Starting %s on port %d", cfg.App.Name, cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Errorf("Forced shutdown: %v", err)
	}
}
