package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}
	if cfg.App.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.App.Port)
	}
	if !cfg.Cart.ShippingFee.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected default shipping fee 10, got %s", cfg.Cart.ShippingFee)
	}
	unit, err := cfg.Cart.CurrencyUnit()
	if err != nil || unit.String() != "NGN" {
		t.Fatalf("expected NGN currency, got %v (err=%v)", unit, err)
	}
	if got := cfg.Checkout.SubmitDelay; got != 1500*time.Millisecond {
		t.Fatalf("expected submit delay 1.5s, got %v", got)
	}
	if cfg.Checkout.MaxAttempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", cfg.Checkout.MaxAttempts)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("expected redis to be disabled without url")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCartCurrency, "usd")
	t.Setenv(EnvCartShippingFee, "4.99")
	t.Setenv(EnvCheckoutSubmitDelay, "0s")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	unit, err := cfg.Cart.CurrencyUnit()
	if err != nil || unit.String() != "USD" {
		t.Fatalf("expected USD currency, got %v (err=%v)", unit, err)
	}
	if cfg.Cart.ShippingFee.String() != "4.99" {
		t.Fatalf("unexpected shipping fee %s", cfg.Cart.ShippingFee)
	}
	if cfg.Checkout.SubmitDelay != 0 {
		t.Fatalf("expected zero delay, got %v", cfg.Checkout.SubmitDelay)
	}
	if !cfg.Redis.Enabled() {
		t.Fatalf("expected redis to be enabled")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown currency", key: EnvCartCurrency, value: "XYZW"},
		{name: "negative shipping", key: EnvCartShippingFee, value: "-1"},
		{name: "zero attempts", key: EnvCheckoutMaxAttempts, value: "0"},
		{name: "zero attempt timeout", key: EnvCheckoutAttemptTimeout, value: "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setMinimalEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}
