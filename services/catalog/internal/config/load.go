package config

import (
	"time"

	"github.com/Skotchmaster/marketplace/pkg/config"
)

type ServiceConfig struct {
	config.Config

	PriceBoundsTTL time.Duration
}

func Load() ServiceConfig {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "catalog"
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	return ServiceConfig{
		Config:         cfg,
		PriceBoundsTTL: time.Duration(config.EnvIntDefault("PRICE_BOUNDS_TTL_SECONDS", 300)) * time.Second,
	}
}
