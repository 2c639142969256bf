package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration values
type Config struct {
	Port   string
	AppEnv string

	FieldRoutesBaseURL   string
	FieldRoutesAuthKey   string
	FieldRoutesAuthToken string

	PayrixBaseURL    string
	PayrixAuthHeader string
	PayrixAPIKey     string
	PayrixMerchantID string

	// PaymentGatewayID is sent to the CRM with every payment profile
	PaymentGatewayID string
	// AllowPlaceholderPayment submits test card data when the form lacks a
	// card number or expiry instead of rejecting the submission.
	AllowPlaceholderPayment bool

	HTTPTimeout        time.Duration
	SubmissionDBPath   string
	FieldRulesFile     string
	CORSAllowedOrigins []string
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("FIELDROUTES_BASE_URL", "https://demo.pestroutes.com/api")
	v.SetDefault("PAYRIX_BASE_URL", "https://test-api.payrix.com")
	v.SetDefault("PAYRIX_AUTH_HEADER", "APIKEY")
	v.SetDefault("PAYMENT_GATEWAY_ID", "payrix")
	v.SetDefault("PAYMENT_ALLOW_PLACEHOLDERS", false)
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
}

// LoadConfig reads configuration from environment variables.
// Credentials are not validated here; a missing key surfaces as an
// authentication failure on the first upstream call.
func LoadConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	defaults(v)

	return &Config{
		Port:                    v.GetString("PORT"),
		AppEnv:                  v.GetString("APP_ENV"),
		FieldRoutesBaseURL:      strings.TrimRight(v.GetString("FIELDROUTES_BASE_URL"), "/"),
		FieldRoutesAuthKey:      v.GetString("FIELDROUTES_AUTH_KEY"),
		FieldRoutesAuthToken:    v.GetString("FIELDROUTES_AUTH_TOKEN"),
		PayrixBaseURL:           strings.TrimRight(v.GetString("PAYRIX_BASE_URL"), "/"),
		PayrixAuthHeader:        v.GetString("PAYRIX_AUTH_HEADER"),
		PayrixAPIKey:            v.GetString("PAYRIX_API_KEY"),
		PayrixMerchantID:        v.GetString("PAYRIX_MERCHANT_ID"),
		PaymentGatewayID:        v.GetString("PAYMENT_GATEWAY_ID"),
		AllowPlaceholderPayment: v.GetBool("PAYMENT_ALLOW_PLACEHOLDERS"),
		HTTPTimeout:             v.GetDuration("HTTP_TIMEOUT"),
		SubmissionDBPath:        v.GetString("SUBMISSION_DB_PATH"),
		FieldRulesFile:          v.GetString("FIELD_RULES_FILE"),
		CORSAllowedOrigins:      splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
