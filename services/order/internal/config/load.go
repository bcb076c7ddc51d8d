package config

import (
	"log"

	"github.com/Skotchmaster/marketplace/pkg/config"
	"github.com/Skotchmaster/marketplace/services/order/internal/service"
)

type ServiceConfig struct {
	config.Config

	StockMode      service.StockMode
	UnknownSKU     service.UnknownSKUPolicy
	LegacyResponse bool
}

func Load() ServiceConfig {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "order"
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	mode, err := service.ParseStockMode(config.EnvDefault("STOCK_MODE", string(service.StockAtomic)))
	if err != nil {
		log.Fatalf("STOCK_MODE: %v", err)
	}
	policy, err := service.ParseUnknownSKUPolicy(config.EnvDefault("UNKNOWN_SKU_POLICY", string(service.UnknownSKUAbort)))
	if err != nil {
		log.Fatalf("UNKNOWN_SKU_POLICY: %v", err)
	}

	return ServiceConfig{
		Config:         cfg,
		StockMode:      mode,
		UnknownSKU:     policy,
		LegacyResponse: config.EnvBoolDefault("CHECKOUT_LEGACY_RESPONSE", false),
	}
}
