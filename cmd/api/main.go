// Package main is the entry point for the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/turnpage/turnpage/internal/ai"
	"github.com/turnpage/turnpage/internal/api"
	"github.com/turnpage/turnpage/internal/auth"
	"github.com/turnpage/turnpage/internal/book"
	"github.com/turnpage/turnpage/internal/cms"
	"github.com/turnpage/turnpage/internal/community"
	"github.com/turnpage/turnpage/internal/config"
	"github.com/turnpage/turnpage/internal/covers"
	"github.com/turnpage/turnpage/internal/event"
	"github.com/turnpage/turnpage/internal/health"
	"github.com/turnpage/turnpage/internal/middleware"
	"github.com/turnpage/turnpage/internal/review"
	"github.com/turnpage/turnpage/internal/search"
	"github.com/turnpage/turnpage/internal/shop"
)

func main() {
	help := flag.Bool("help", false, "display help message")
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	if *help {
		fmt.Println("Turnpage API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "summary", cfg.LogSummary())

	// Content store
	store := cms.New(cfg.CMSBaseURL, cfg.CMSAPIKey)
	books := book.NewCMSRepository(store)
	reviews := review.NewCMSRepository(store)
	events := event.NewCMSRepository(store)
	communityRepo := community.NewCMSRepository(store)
	products := shop.NewCMSProductRepository(store)

	// Redis backs carts and rate limiting
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	carts := shop.NewRedisCartRepository(redisClient)
	rateLimitStore := middleware.NewRedisRateLimitStore(redisClient)

	// Generative text service, optional
	var generator ai.Generator
	if cfg.AIBaseURL != "" {
		generator = ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)
	} else {
		logger.Warn("AI_BASE_URL not set, search and chat run on heuristics only")
	}

	// Sessions and OAuth login
	sessions := auth.NewSessionService(cfg.JWTSecret)
	if cfg.JWTPreviousSecret != "" {
		sessions = sessions.WithPreviousSecret(cfg.JWTPreviousSecret)
	}
	oauthClient := auth.NewOAuthClient(cfg.OAuthBaseURL, cfg.OAuthClientID, cfg.OAuthClientSecret, cfg.OAuthRedirectURL)

	// Stripe checkout, optional
	var checkout *shop.CheckoutService
	if cfg.StripeAPIKey != "" {
		stripeClient := shop.NewLiveStripeClient(cfg.StripeAPIKey)
		checkout = shop.NewCheckoutService(stripeClient, carts, cfg.StripeCheckoutSuccessURL, cfg.StripeCheckoutCancelURL)
	} else {
		logger.Warn("STRIPE_API_KEY not set, checkout disabled")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	metrics := middleware.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		logger.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	coverResolver := covers.NewResolver()

	router := api.NewRouter(api.RouterConfig{
		Logger:   logger,
		Metrics:  metrics,
		Sessions: sessions,

		Books:     api.NewBookHandlers(books, reviews, coverResolver),
		Reviews:   api.NewReviewHandlers(reviews, books),
		Events:    api.NewEventHandlers(events),
		Search:    api.NewSearchHandlers(search.NewService(books, generator)),
		Shop:      api.NewShopHandlers(products, carts, checkout),
		Members:   api.NewMemberHandlers(oauthClient, sessions, reviews, books, cfg.Env == "production"),
		Community: api.NewCommunityHandlers(communityRepo),
		Chat:      api.NewChatHandlers(generator, books, coverResolver, cfg.CORSOrigins),
		Health: api.NewHealthHandlers(api.HealthHandlersConfig{
			CMSChecker:   health.NewCMSChecker(store),
			RedisChecker: health.NewRedisChecker(redisClient),
		}),

		RateLimitStore: rateLimitStore,
		CORSOrigins:    cfg.CORSOrigins,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		logger.Error("failed to close redis client", "error", err)
	}

	logger.Info("server stopped")
}
