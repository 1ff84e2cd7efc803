package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "contesthub/docs" // swagger docs

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"contesthub/internal/auth"
	"contesthub/internal/cache"
	"contesthub/internal/config"
	"contesthub/internal/handler"
	"contesthub/internal/logger"
	"contesthub/internal/metrics"
	"contesthub/internal/model"
	"contesthub/internal/payments"
	"contesthub/internal/router"
	"contesthub/internal/service"
	"contesthub/internal/store"
)

func swaggerURL(host string) string {
	if host == "" {
		return "http://localhost:8080/swagger/index.html"
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/") + "/swagger/index.html"
}

// @title Contest Hub API
// @version 1.0
// @description Contest hosting API: creators publish contests, admins approve them, users register, submit and win.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	root := logger.New(cfg.LogLevel, cfg.LogFormat)
	log := logger.Component(root, "server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("store init")
	}
	log.WithField("driver", cfg.StoreDriver).Info("store ready")

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(ctx); err != nil {
		log.WithError(err).Warn("redis unreachable, running without cache")
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	var verifier auth.IdentityVerifier
	if cfg.GoogleClientID != "" {
		verifier = auth.NewGoogleVerifier(cfg.GoogleClientID)
	} else {
		log.Warn("GOOGLE_CLIENT_ID not set, google login trusts body fields for plain social accounts only")
	}

	provider, err := payments.NewProvider(cfg)
	if err != nil {
		log.WithError(err).Fatal("payment provider init")
	}
	if provider == nil {
		log.Warn("payments disabled")
	}

	m := metrics.New()

	authService := service.NewAuthService(st.Users, jwtService, tokenStore, verifier, logger.Component(root, "auth"))
	userService := service.NewUserService(st.Users, cacheClient, model.DefaultCatalog(), m, logger.Component(root, "users"))
	contestService := service.NewContestService(st.Contests, st.Users, m, logger.Component(root, "contests"))
	leaderboardService := service.NewLeaderboardService(st.Contests, st.Users)
	paymentService := service.NewPaymentService(provider, cfg.PaymentCurrency, logger.Component(root, "payments"))

	httpLog := logger.Component(root, "http")
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(e, cfg, httpLog, m, authService, router.Handlers{
		Auth:        handler.NewAuthHandler(authService, userService, httpLog),
		User:        handler.NewUserHandler(userService, httpLog),
		Contest:     handler.NewContestHandler(contestService, httpLog),
		Leaderboard: handler.NewLeaderboardHandler(leaderboardService, httpLog),
		Payment:     handler.NewPaymentHandler(paymentService, httpLog),
		Health:      handler.NewHealthHandler(st.Users, httpLog),
	})

	log.Infof("Swagger documentation available at: %s", swaggerURL(cfg.SwaggerHost))

	go func() {
		addr := ":" + cfg.ServerPort
		log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server start")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	if err := cacheClient.Close(); err != nil {
		log.WithError(err).Warn("redis close")
	}
	if err := st.Close(shutdownCtx); err != nil {
		log.WithError(err).Warn("store close")
	}
}
