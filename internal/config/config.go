package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	DataDir         string
	MenuPath        string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	TokenTTL        time.Duration
	PurgeInterval   time.Duration
	GatewayTimeout  time.Duration
	PaymentURL      string
	PaymentKey      string
	EmailURL        string
	EmailDomain     string
	EmailKey        string
	EmailSender     string
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() Config {
	return Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		DataDir:         envOrDefault("DATA_DIR", ".data"),
		MenuPath:        envOrDefault("MENU_PATH", ".data/menu.json"),
		AllowedOrigins:  envList("ALLOWED_ORIGINS"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		TokenTTL:        envDuration("TOKEN_TTL_SECONDS", time.Hour),
		PurgeInterval:   envDuration("PURGE_INTERVAL_SECONDS", time.Minute),
		GatewayTimeout:  envDuration("GATEWAY_TIMEOUT_SECONDS", 10*time.Second),
		PaymentURL:      envOrDefault("PAYMENT_URL", "https://api.stripe.com"),
		PaymentKey:      envOrDefault("PAYMENT_KEY", ""),
		EmailURL:        envOrDefault("EMAIL_URL", "https://api.mailgun.net"),
		EmailDomain:     envOrDefault("EMAIL_DOMAIN", ""),
		EmailKey:        envOrDefault("EMAIL_KEY", ""),
		EmailSender:     envOrDefault("EMAIL_SENDER", "orders@pizzashack.local"),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
