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

	"github.com/Skotchmaster/marketplace/internal/models"
	pkgdb "github.com/Skotchmaster/marketplace/pkg/db"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	loggingmw "github.com/Skotchmaster/marketplace/pkg/middleware/logging"
	"github.com/Skotchmaster/marketplace/pkg/mykafka"

	authcfg "github.com/Skotchmaster/marketplace/services/auth/internal/config"
	"github.com/Skotchmaster/marketplace/services/auth/internal/httpserver"
	"github.com/Skotchmaster/marketplace/services/auth/internal/repo"
	"github.com/Skotchmaster/marketplace/services/auth/internal/service"
)

func main() {
	if err := godotenv.Load("services/auth/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := authcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	if cfg.AutoMigrate {
		if err := models.Migrate(db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	svc := &service.AuthService{
		Repo:      &repo.GormRepo{DB: db},
		JWTSecret: cfg.JWTAccessSecret,
		AccessTTL: cfg.AccessTTL,
	}

	producer := mykafka.NewProducer(cfg.KafkaBrokers)
	if producer != nil {
		svc.Events = producer
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echoprometheus.NewMiddleware(cfg.ServiceName))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc},
		JWTSecret:   cfg.JWTAccessSecret,
	})

	go func() {
		if err := e.Start(":" + strconv.Itoa(cfg.ServerPort)); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo_shutdown_failed", "error", err)
	}
	if producer != nil {
		_ = producer.Close()
	}
	_ = pkgdb.Close(db)
}
