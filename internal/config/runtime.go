package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHoldTTL         = "15m"
	defaultConfirmTimeout  = "90s"
	defaultConfirmPoll     = "3s"
	defaultSweepSchedule   = "@every 1m"
	defaultCurrency        = "USD"
	defaultGatewayAttempts = "4"
	defaultAvailabilityTTL = "30s"
	defaultJWTSecret       = "change-me-jwt-secret"
	defaultWebhookToken    = "change-me-webhook-token"
	defaultRelistOnRefund  = "false"
)

// BookingRuntimeConfig carries every tunable of the reservation engine.
// Loaded once at process start; services receive plain values, never
// read the environment themselves.
type BookingRuntimeConfig struct {
	AppEnv string

	DatabaseURL string
	RedisAddr   string

	JWTSecret    string
	WebhookToken string

	PaymentAPIURL    string
	PaymentSecretKey string
	GatewayAttempts  int

	Currency string

	// HoldTTL bounds how long a provisional hold can outlive its
	// booking attempt before the sweep reclaims it.
	HoldTTL time.Duration

	// ConfirmTimeout bounds how long the orchestrator polls the
	// provider before cancelling a pending booking defensively.
	ConfirmTimeout time.Duration
	ConfirmPoll    time.Duration

	SweepSchedule   string
	AvailabilityTTL time.Duration

	// RelistOnRefund decides whether refunding a confirmed booking
	// re-opens its date range for new reservations. Business policy,
	// deliberately a flag rather than a hardcoded answer.
	RelistOnRefund bool
}

func Load() (*BookingRuntimeConfig, error) {
	cfg := &BookingRuntimeConfig{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.WebhookToken = strings.TrimSpace(getEnv("PAYMENT_WEBHOOK_TOKEN", defaultWebhookToken))

	cfg.PaymentAPIURL = strings.TrimSpace(os.Getenv("PAYMENT_API_URL"))
	cfg.PaymentSecretKey = strings.TrimSpace(os.Getenv("PAYMENT_SECRET_KEY"))
	cfg.Currency = strings.TrimSpace(getEnv("CURRENCY", defaultCurrency))
	cfg.SweepSchedule = strings.TrimSpace(getEnv("HOLD_SWEEP_SCHEDULE", defaultSweepSchedule))

	var err error
	cfg.HoldTTL, err = parseDurationEnv("HOLD_TTL", defaultHoldTTL)
	if err != nil {
		return nil, err
	}
	cfg.ConfirmTimeout, err = parseDurationEnv("PAYMENT_CONFIRM_TIMEOUT", defaultConfirmTimeout)
	if err != nil {
		return nil, err
	}
	cfg.ConfirmPoll, err = parseDurationEnv("PAYMENT_CONFIRM_POLL", defaultConfirmPoll)
	if err != nil {
		return nil, err
	}
	cfg.AvailabilityTTL, err = parseDurationEnv("AVAILABILITY_CACHE_TTL", defaultAvailabilityTTL)
	if err != nil {
		return nil, err
	}

	cfg.GatewayAttempts, err = parseIntEnv("PAYMENT_MAX_ATTEMPTS", defaultGatewayAttempts)
	if err != nil {
		return nil, err
	}
	if cfg.GatewayAttempts < 1 {
		return nil, fmt.Errorf("PAYMENT_MAX_ATTEMPTS must be >= 1")
	}

	cfg.RelistOnRefund, err = parseBoolEnv("RELIST_ON_REFUND", defaultRelistOnRefund)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *BookingRuntimeConfig) IsProd() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production"
}

func getEnv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(name, def string) (time.Duration, error) {
	raw := strings.TrimSpace(getEnv(name, def))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", name, raw, err)
	}
	return d, nil
}

func parseIntEnv(name, def string) (int, error) {
	raw := strings.TrimSpace(getEnv(name, def))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", name, raw, err)
	}
	return n, nil
}

func parseBoolEnv(name, def string) (bool, error) {
	raw := strings.TrimSpace(getEnv(name, def))
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s=%q: %w", name, raw, err)
	}
	return b, nil
}
