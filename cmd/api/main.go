package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/staynest/staynest/internal/auth"
	"github.com/staynest/staynest/internal/cache"
	"github.com/staynest/staynest/internal/config"
	"github.com/staynest/staynest/internal/db"
	httpx "github.com/staynest/staynest/internal/http"
	"github.com/staynest/staynest/internal/observability"
	"github.com/staynest/staynest/internal/repo/postgres"
)

func main() {
	// .env is a dev convenience; absence is not an error
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	if cfg.JWTSecret == "" {
		log.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	if cfg.OTLPEndpoint != "" {
		ctx, cancel := config.WithTimeout(5 * time.Second)

		shutdownTracer, err := observability.InitTracer(ctx, "staynest", cfg.OTLPEndpoint)
		cancel()

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()

			if err := shutdownTracer(ctx); err != nil {
				log.Error("tracer shutdown failed", "err", err)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	var listingCache cache.Store

	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.PlacesCacheTTL,
		})

		pingCtx, cancel := config.WithTimeout(2 * time.Second)

		if err := redisCache.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable, using in-process cache", "err", err)
			listingCache = cache.NewMemory(cfg.PlacesCacheTTL)
		} else {
			listingCache = redisCache
			defer redisCache.Close()
		}

		cancel()
	} else {
		listingCache = cache.NewMemory(cfg.PlacesCacheTTL)
	}

	router := httpx.NewRouter(httpx.Deps{
		Cfg:      cfg,
		Log:      log,
		Users:    postgres.NewUsersRepo(pool, prom),
		Places:   postgres.NewPlacesRepo(pool, prom),
		Bookings: postgres.NewBookingsRepo(pool, prom),
		Cache:    listingCache,
		JWT:      auth.NewManager(cfg.JWTSecret, cfg.SessionTTL),
		Prom:     prom,
		Registry: registry,
		Ping: func(ctx context.Context) error {
			return pool.Ping(ctx)
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)

		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
