package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	httpadapter "finmon/internal/adapters/http"
	"finmon/internal/adapters/postgres"
	redisadapter "finmon/internal/adapters/redis"
	"finmon/internal/config"
	"finmon/internal/core/advice"
	"finmon/internal/core/auth"
	"finmon/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	log := logger.New(cfg)

	if len(cfg.JWTSecret) < 32 {
		panic("FATAL: JWT_SECRET must be set and at least 32 characters long")
	}
	if cfg.UsingDefaultSecret() {
		log.Warn("config: using default JWT_SECRET, change it before deploying to production")
	}

	dbPool, err := postgres.InitDB(ctx, cfg.DatabaseURL, log)
	if err != nil {
		if dbPool == nil {
			log.Error("db: invalid database configuration", "error", err)
			os.Exit(1)
		}
		// /health keeps reporting the database as disconnected until it
		// comes back.
		log.Error("db: starting server without database connection", "error", err)
	}
	defer dbPool.Close()

	userRepo := postgres.NewUserRepository(dbPool)

	hasher := auth.NewPasswordHasher(bcrypt.DefaultCost)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	authService := auth.NewService(userRepo, hasher, issuer)

	var adviceCache advice.Cache
	if cfg.RedisURL != "" {
		client, err := redisadapter.NewClient(cfg.RedisURL)
		if err != nil {
			log.Error("redis: disabled advice cache", "error", err)
		} else {
			defer client.Close()
			adviceCache = redisadapter.NewCache(client)
		}
	}
	adviceService := advice.NewService(cfg, adviceCache, log)

	router := httpadapter.NewRouter(cfg, &httpadapter.RouterDeps{
		Auth:   httpadapter.NewAuthHandler(authService, cfg, log),
		Advice: httpadapter.NewAdviceHandler(adviceService, log),
		Health: httpadapter.NewHealthHandler(dbPool),

		Verifier: issuer,
	})

	srv := &http.Server{
		Addr:    cfg.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http: starting server", "address", cfg.Address)
		errCh <- srv.ListenAndServe()
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http: server shutdown error", "error", err)
		}

	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Error("http: server error", "error", err)
		}
	}

	log.Info("server stopped")
}
