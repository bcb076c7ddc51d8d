package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/marketplace/internal/models"
	pkgdb "github.com/Skotchmaster/marketplace/pkg/db"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	loggingmw "github.com/Skotchmaster/marketplace/pkg/middleware/logging"
	"github.com/Skotchmaster/marketplace/pkg/mykafka"

	"github.com/Skotchmaster/marketplace/services/catalog/internal/cache"
	catalogcfg "github.com/Skotchmaster/marketplace/services/catalog/internal/config"
	"github.com/Skotchmaster/marketplace/services/catalog/internal/httpserver"
	"github.com/Skotchmaster/marketplace/services/catalog/internal/repo"
	"github.com/Skotchmaster/marketplace/services/catalog/internal/service"
)

func main() {
	if err := godotenv.Load("services/catalog/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := catalogcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	if cfg.AutoMigrate {
		if err := models.Migrate(db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	svc := &service.CatalogService{Repo: &repo.GormRepo{DB: db}}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		bounds := cache.NewRedisBounds(rdb)
		bounds.TTL = cfg.PriceBoundsTTL
		svc.Bounds = bounds
	}

	producer := mykafka.NewProducer(cfg.KafkaBrokers)
	if producer != nil {
		svc.Events = producer
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echoprometheus.NewMiddleware(cfg.ServiceName))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: &httpserver.CatalogHTTP{Svc: svc},
		JWTSecret:      cfg.JWTAccessSecret,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)

	if producer != nil {
		_ = producer.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	_ = pkgdb.Close(db)

	logger.Info("server_stopped")
}
