package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "STORE_DRIVER", "SHUTDOWN_TIMEOUT_SECONDS", "ALLOWED_ORIGINS", "PAYMENT_CURRENCY", "JWT_TTL_HOURS"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.StoreDriver != StoreDriverPostgres {
		t.Fatalf("StoreDriver = %q", cfg.StoreDriver)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("ShutdownTimeout = %s", cfg.ShutdownTimeout)
	}
	if cfg.PaymentCurrency != "eur" {
		t.Fatalf("PaymentCurrency = %q", cfg.PaymentCurrency)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Fatalf("JWTTTL = %s", cfg.JWTTTL)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("PAYMENT_CURRENCY", "USD")
	t.Setenv("DB_MAX_CONNS", "not-a-number")

	cfg := FromEnv()
	if cfg.StoreDriver != StoreDriverMemory {
		t.Fatalf("StoreDriver = %q", cfg.StoreDriver)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("ShutdownTimeout = %s", cfg.ShutdownTimeout)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.PaymentCurrency != "usd" {
		t.Fatalf("PaymentCurrency = %q", cfg.PaymentCurrency)
	}
	if cfg.DBMaxConns != 10 {
		t.Fatalf("DBMaxConns = %d", cfg.DBMaxConns)
	}
}
