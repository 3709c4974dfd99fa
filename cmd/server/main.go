package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/AlexVocao/login/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/AlexVocao/login/internal/auth"
	"github.com/AlexVocao/login/internal/cache"
	"github.com/AlexVocao/login/internal/config"
	"github.com/AlexVocao/login/internal/db"
	"github.com/AlexVocao/login/internal/handler"
	"github.com/AlexVocao/login/internal/mailer"
	"github.com/AlexVocao/login/internal/metrics"
	"github.com/AlexVocao/login/internal/model"
	"github.com/AlexVocao/login/internal/repository"
	"github.com/AlexVocao/login/internal/router"
	"github.com/AlexVocao/login/internal/service"
)

// @title Login API
// @version 1.0
// @description Username/password authentication with password reset by email and JWT-protected profile.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		logger.Error("database init", "error", err)
		os.Exit(1)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.PasswordResetToken{},
		&model.AuthEvent{},
	); err != nil {
		logger.Error("auto-migrate", "error", err)
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	resetTokenRepo := repository.NewResetTokenRepository(gormDB)
	authEventRepo := repository.NewAuthEventRepository(gormDB)

	// Initialize auth components
	jwtService, err := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("jwt init", "error", err)
		os.Exit(1)
	}
	limiter := auth.NewLoginLimiter(cacheClient, cfg.LoginMaxAttempts, cfg.LoginLockout)

	var resetMailer mailer.Mailer
	if cfg.SMTPHost != "" {
		resetMailer = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		logger.Warn("SMTP_HOST not set, reset links will only be logged")
		resetMailer = mailer.NewLogMailer(logger)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	auditor := service.NewAuditor(authEventRepo, logger, 1000)
	auditor.Start()

	// Initialize services
	authService := service.NewAuthService(service.AuthDeps{
		Users:   userRepo,
		Tokens:  resetTokenRepo,
		Hasher:  auth.NewBcryptHasher(auth.DefaultBcryptCost),
		Issuer:  jwtService,
		Mailer:  resetMailer,
		Limiter: limiter,
		Audit:   auditor,
		Metrics: collector,
		Logger:  logger,
	}, service.AuthOptions{
		ResetTokenTTL:      cfg.ResetTokenTTL,
		ResetURLBase:       cfg.ResetURLBase,
		RevealUnknownEmail: cfg.RevealUnknownEmail,
	})
	profileService := service.NewProfileService(userRepo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	janitor := service.NewResetTokenJanitor(resetTokenRepo, cfg.ResetCleanupInterval, logger)
	go janitor.Run(ctx)

	e := echo.New()
	e.HideBanner = true

	// Register routes
	router.Register(e, cfg, router.Dependencies{
		AuthHandler:    handler.NewAuthHandler(authService),
		ProfileHandler: handler.NewProfileHandler(profileService),
		JWT:            jwtService,
		Metrics:        collector,
		Gatherer:       reg,
		Logger:         logger,
	})

	swaggerURL := "http://localhost:" + cfg.ServerPort + "/swagger/index.html"
	if cfg.SwaggerHost != "" {
		swaggerURL = cfg.SwaggerHost + "/swagger/index.html"
	}
	logger.Info("swagger documentation available", "url", swaggerURL)

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	auditor.Close()

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
