package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ignite/marketing-console/internal/analytics"
	"github.com/ignite/marketing-console/internal/api"
	"github.com/ignite/marketing-console/internal/audit"
	"github.com/ignite/marketing-console/internal/auth"
	"github.com/ignite/marketing-console/internal/catalog"
	"github.com/ignite/marketing-console/internal/config"
	"github.com/ignite/marketing-console/internal/repository/postgres"
	"github.com/ignite/marketing-console/internal/service"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	var cache *redis.Client
	if cfg.Redis.Enabled {
		cache = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := cache.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, analytics cache disabled", zap.Error(err))
			cache = nil
		}
		cancel()
	}

	auditLog := audit.NewLogger(db, log)

	services := make(map[string]*service.ResourceService)
	for _, desc := range catalog.All() {
		repo := postgres.NewResourceRepo(db, desc)
		services[desc.Name] = service.NewResourceService(desc, repo, auditLog, log)
	}

	coupons := service.NewCouponService(services["coupons"])
	importer := service.NewImportService(db, services, auditLog, log)
	analyticsSvc := analytics.New(db, cache, log)
	authManager := auth.NewManager(db, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)

	handlers := api.NewHandlers(services, coupons, importer, analyticsSvc, auditLog, log)
	server := api.NewServer(*cfg, handlers, authManager, db)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("addr", addr),
			zap.Int("resources", len(services)),
			zap.Bool("redis", cache != nil))
		errCh <- server.ListenAndServe(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal("server error", zap.Error(err))
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
