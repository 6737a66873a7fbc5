package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wheelio/car-rental-api/internal/application"
	"github.com/wheelio/car-rental-api/internal/config"
	"github.com/wheelio/car-rental-api/internal/events"
	"github.com/wheelio/car-rental-api/internal/gateway"
	"github.com/wheelio/car-rental-api/internal/handler"
	"github.com/wheelio/car-rental-api/internal/jobs"
	"github.com/wheelio/car-rental-api/internal/mailer"
	"github.com/wheelio/car-rental-api/internal/pkg/auth"
	"github.com/wheelio/car-rental-api/internal/pkg/database"
	"github.com/wheelio/car-rental-api/internal/pkg/health"
	"github.com/wheelio/car-rental-api/internal/pkg/kafka"
	"github.com/wheelio/car-rental-api/internal/pkg/logger"
	"github.com/wheelio/car-rental-api/internal/pkg/middleware"
	"github.com/wheelio/car-rental-api/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, "car-rental-api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting car-rental-api", zap.String("port", cfg.Port))

	db, err := database.Connect(cfg.Database.DSN(), log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(repository.AllModels()...); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.Database.URL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	jwtManager := auth.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
	)

	var kafkaProducer *kafka.Producer
	if cfg.Kafka.Enabled {
		kafkaProducer = kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
	}
	publisher := events.NewPublisher(kafkaProducer, log)

	var mail mailer.Mailer
	if cfg.Mail.DevMode || cfg.Mail.MailerSendKey == "" {
		mail = mailer.NewDevMailer(log)
	} else {
		mail = mailer.NewMailerSend(cfg.Mail.MailerSendKey, cfg.Mail.FromName, cfg.Mail.FromEmail)
	}

	paymentGateway := gateway.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)

	// Repositories
	userRepo := repository.NewGormUserRepository(db)
	carRepo := repository.NewGormCarRepository(db)
	cityRepo := repository.NewGormCityRepository(db)
	couponRepo := repository.NewGormCouponRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)
	reviewRepo := repository.NewGormReviewRepository(db)

	// Application services
	authService := application.NewAuthService(userRepo, jwtManager, mail, cfg.Mail.ClientURL, log)
	carService := application.NewCarService(carRepo, bookingRepo, log)
	cityService := application.NewCityService(cityRepo, log)
	couponService := application.NewCouponService(couponRepo, carRepo, log)
	bookingService := application.NewBookingService(bookingRepo, carRepo, couponRepo, paymentRepo, publisher, log)
	paymentService := application.NewPaymentService(bookingRepo, paymentRepo, paymentGateway, publisher, log)
	reviewService := application.NewReviewService(reviewRepo, bookingRepo, carRepo, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := authService.EnsureSuperAdmin(
		ctx,
		cfg.Seed.SuperAdminName,
		cfg.Seed.SuperAdminEmail,
		cfg.Seed.SuperAdminPassword,
	); err != nil {
		log.Fatal("failed to seed super admin", zap.Error(err))
	}

	// Stale booking reaper
	reaper := jobs.NewReaper(bookingRepo, publisher, cfg.Reaper.Interval, cfg.Reaper.StaleThreshold, log)
	if err := reaper.Start(ctx); err != nil {
		log.Fatal("failed to start reaper", zap.Error(err))
	}

	// HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	carHandler := handler.NewCarHandler(carService, reviewService)
	cityHandler := handler.NewCityHandler(cityService)
	couponHandler := handler.NewCouponHandler(couponService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	adminHandler := handler.NewAdminHandler(bookingService, authService)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())

	healthHandler := health.NewHandler(db, "car-rental-api")
	healthHandler.RegisterRoutes(router)

	authHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	carHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	cityHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	couponHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	paymentHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	reviewHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down car-rental-api...")

	// Stop the reaper before cancelling the root context so an in-flight
	// sweep finishes instead of failing on a cancelled context.
	reaper.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("car-rental-api stopped")
}
