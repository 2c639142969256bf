package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PAYMENT_GATEWAY_ID", "")
	t.Setenv("PAYMENT_ALLOW_PLACEHOLDERS", "")
	t.Setenv("HTTP_TIMEOUT", "")
	t.Setenv("PAYRIX_AUTH_HEADER", "")

	cfg := LoadConfig()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.PaymentGatewayID != "payrix" {
		t.Errorf("PaymentGatewayID = %q, want payrix", cfg.PaymentGatewayID)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	if cfg.AllowPlaceholderPayment {
		t.Error("placeholders should be disabled by default")
	}
	if cfg.PayrixAuthHeader != "APIKEY" {
		t.Errorf("PayrixAuthHeader = %q, want APIKEY", cfg.PayrixAuthHeader)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FIELDROUTES_BASE_URL", "https://crm.example.com/api/")
	t.Setenv("FIELDROUTES_AUTH_KEY", "key")
	t.Setenv("FIELDROUTES_AUTH_TOKEN", "token")
	t.Setenv("PAYRIX_API_KEY", "pk")
	t.Setenv("PAYRIX_MERCHANT_ID", "t1_mer_1")
	t.Setenv("PAYMENT_ALLOW_PLACEHOLDERS", "true")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := LoadConfig()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.FieldRoutesBaseURL != "https://crm.example.com/api" {
		t.Errorf("trailing slash not trimmed: %q", cfg.FieldRoutesBaseURL)
	}
	if cfg.FieldRoutesAuthKey != "key" || cfg.FieldRoutesAuthToken != "token" {
		t.Errorf("unexpected CRM credentials: %q/%q", cfg.FieldRoutesAuthKey, cfg.FieldRoutesAuthToken)
	}
	if cfg.PayrixAPIKey != "pk" || cfg.PayrixMerchantID != "t1_mer_1" {
		t.Errorf("unexpected processor credentials: %q/%q", cfg.PayrixAPIKey, cfg.PayrixMerchantID)
	}
	if !cfg.AllowPlaceholderPayment {
		t.Error("expected placeholders enabled")
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if diff := cmp.Diff(want, cfg.CORSAllowedOrigins); diff != "" {
		t.Errorf("CORSAllowedOrigins mismatch (-want +got):\n%s", diff)
	}
}

func TestIsProduction(t *testing.T) {
	if !(&Config{AppEnv: "Production"}).IsProduction() {
		t.Error("expected production")
	}
	if (&Config{AppEnv: "development"}).IsProduction() {
		t.Error("expected non-production")
	}
}
