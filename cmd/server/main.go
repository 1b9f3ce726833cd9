package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nnvstore/backend/internal/cache"
	"github.com/nnvstore/backend/internal/config"
	"github.com/nnvstore/backend/internal/db"
	"github.com/nnvstore/backend/internal/es"
	"github.com/nnvstore/backend/internal/httpserver"
	"github.com/nnvstore/backend/internal/kv"
	"github.com/nnvstore/backend/internal/logging"
	"github.com/nnvstore/backend/internal/mykafka"
	"github.com/nnvstore/backend/internal/ratelimit"
	"github.com/nnvstore/backend/internal/repo"
	"github.com/nnvstore/backend/internal/service"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	database, err := db.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	redisCtx, redisCancel := context.WithTimeout(context.Background(), 10*time.Second)
	redisClient, err := kv.NewRedisClient(redisCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	redisCancel()

	var store kv.Store
	if err != nil {
		if cfg.IsProduction() {
			log.Fatalf("redis init: %v", err)
		}
		logger.Warn("redis unavailable, falling back to in-process store", "error", err)
		store = kv.NewInMemoryStore()
	} else {
		store = kv.NewRedisStore(redisClient)
	}

	prod := mykafka.NewProducer(cfg.KafkaBrokers)
	if prod == nil {
		logger.Warn("kafka brokers not configured, events disabled")
	}

	var searchSvc *service.SearchService
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			if cfg.IsProduction() {
				log.Fatalf("elasticsearch init: %v", err)
			}
			logger.Warn("elasticsearch unavailable, search disabled", "error", err)
		} else {
			searchSvc = &service.SearchService{ES: esClient, Index: cfg.ESIndex}
		}
	}
	if searchSvc == nil {
		searchSvc = &service.SearchService{Index: cfg.ESIndex}
	}

	r := repo.NewGormRepo(database)
	sharedCache := &cache.Cache{Store: store}
	limiter := &ratelimit.LoginLimiter{Store: store}

	authSvc := &service.AuthService{Repo: r, Limiter: limiter, JWTSecret: cfg.JWTSecret, Producer: prod}
	cartSvc := &service.CartService{Repo: r, Cache: sharedCache, Store: store, Producer: prod}
	orderSvc := &service.OrderService{Repo: r, Cache: sharedCache, Producer: prod}
	catalogSvc := &service.CatalogService{Repo: r, Cache: sharedCache, Search: searchSvc, Producer: prod}
	bestOfferSvc := &service.BestOfferService{Repo: r}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(httpserver.RequestLogger(logger))

	secure := cfg.IsProduction()
	deps := httpserver.Deps{
		JWTSecret:        cfg.JWTSecret,
		AuthHandler:      &httpserver.AuthHandler{Svc: authSvc, SecureCookies: secure},
		CatalogHandler:   &httpserver.CatalogHandler{Svc: catalogSvc},
		CartHandler:      &httpserver.CartHandler{Svc: cartSvc},
		OrderHandler:     &httpserver.OrderHandler{Svc: orderSvc},
		SearchHandler:    &httpserver.SearchHandler{Svc: searchSvc},
		BestOfferHandler: &httpserver.BestOfferHandler{Svc: bestOfferSvc},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
