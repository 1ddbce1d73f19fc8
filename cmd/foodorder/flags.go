package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Address            string        `env:"RUN_ADDRESS" envDefault:"localhost:8080"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"INFO"`
	DatabaseConnection string        `env:"DATABASE_URI"`
	JWTSecret          string        `env:"JWT_SECRET"`
	JWTTTL             time.Duration `env:"JWT_TTL" envDefault:"24h"`
	AdminLogins        []string      `env:"ADMIN_LOGINS" envSeparator:","`

	RedisAddress  string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	MenuCacheTTL  time.Duration `env:"MENU_CACHE_TTL" envDefault:"10m"`
	CartTTL       time.Duration `env:"CART_TTL" envDefault:"24h"`

	RabbitURL      string `env:"RABBITMQ_URL"`
	EventsExchange string `env:"EVENTS_EXCHANGE" envDefault:"foodorder.events"`
	EventWorkers   int    `env:"EVENT_WORKERS" envDefault:"4"`
	EventBuffer    int    `env:"EVENT_BUFFER" envDefault:"256"`

	GatewayAddress       string `env:"GATEWAY_ADDRESS" envDefault:"https://api.razorpay.com"`
	GatewayKeyID         string `env:"GATEWAY_KEY_ID"`
	GatewayKeySecret     string `env:"GATEWAY_KEY_SECRET"`
	GatewayWebhookSecret string `env:"GATEWAY_WEBHOOK_SECRET"`
	Currency             string `env:"CURRENCY" envDefault:"INR"`

	TaxRateRaw     string `env:"TAX_RATE" envDefault:"0.18"`
	TakeawayFeeRaw string `env:"TAKEAWAY_FEE" envDefault:"40"`
	ReadyMinutes   int    `env:"READY_MINUTES" envDefault:"30"`

	TaxRate     decimal.Decimal `env:"-"`
	TakeawayFee decimal.Decimal `env:"-"`
}

func NewConfig() (*Config, error) {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return parseConfig(os.Args[1:])
}

func parseConfig(args []string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("foodorder", flag.ContinueOnError)
	fs.StringVar(&cfg.Address, "a", cfg.Address, "{Host:port} for server")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "Log level for server")
	fs.StringVar(&cfg.DatabaseConnection, "d", cfg.DatabaseConnection, "Database connection string")
	fs.DurationVar(&cfg.JWTTTL, "t", cfg.JWTTTL, "TTL for JWT token(e.g. 24h; 30m )")
	fs.StringVar(&cfg.RedisAddress, "r", cfg.RedisAddress, "Redis {host:port} for menu cache and carts")
	fs.StringVar(&cfg.RabbitURL, "q", cfg.RabbitURL, "RabbitMQ URL for order events, empty logs events instead")
	fs.IntVar(&cfg.EventWorkers, "w", cfg.EventWorkers, "Size of event worker pool")
	fs.StringVar(&cfg.GatewayAddress, "g", cfg.GatewayAddress, "Payment gateway base URL")
	fs.IntVar(&cfg.ReadyMinutes, "m", cfg.ReadyMinutes, "Minutes until a new order is estimated ready")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("ENV JWT_SECRET must be set")
	}
	if cfg.GatewayKeySecret == "" {
		return nil, fmt.Errorf("ENV GATEWAY_KEY_SECRET must be set")
	}

	var err error
	if cfg.TaxRate, err = decimal.NewFromString(cfg.TaxRateRaw); err != nil || cfg.TaxRate.IsNegative() {
		return nil, fmt.Errorf("TAX_RATE %q is not a valid rate", cfg.TaxRateRaw)
	}
	if cfg.TakeawayFee, err = decimal.NewFromString(cfg.TakeawayFeeRaw); err != nil || cfg.TakeawayFee.IsNegative() {
		return nil, fmt.Errorf("TAKEAWAY_FEE %q is not a valid amount", cfg.TakeawayFeeRaw)
	}
	if cfg.ReadyMinutes <= 0 {
		return nil, fmt.Errorf("READY_MINUTES must be positive")
	}
	return cfg, nil
}
