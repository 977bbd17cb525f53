package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Vendor is the staff account behind a shop: where its pushes go and where
// its money goes.
type Vendor struct {
	Email string `json:"email"`
	UpiID string `json:"upi_id"`
}

type Config struct {
	Port            string
	SupabaseURL     string
	SupabaseAnonKey string
	OneSignalAppID  string
	OneSignalAPIKey string
	CloudinaryURL   string
	Environment     string
	LogLevel        string

	// Vendors maps shop name to its staff account, parsed from SHOP_VENDORS
	// (JSON object keyed by shop name).
	Vendors map[string]Vendor

	PrintAdminEmail string
	PrintUpiID      string
	AdminUpiID      string
	AdminEmails     []string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnvWithDefault("PORT", "8080"),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		OneSignalAppID:  os.Getenv("ONESIGNAL_APP_ID"),
		OneSignalAPIKey: os.Getenv("ONESIGNAL_API_KEY"),
		CloudinaryURL:   os.Getenv("CLOUDINARY_URL"),
		Environment:     getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
		PrintAdminEmail: os.Getenv("PRINT_ADMIN_EMAIL"),
		PrintUpiID:      os.Getenv("PRINT_UPI_ID"),
		AdminUpiID:      os.Getenv("ADMIN_UPI_ID"),
		AdminEmails:     splitList(os.Getenv("ADMIN_EMAILS")),
	}

	if raw := os.Getenv("SHOP_VENDORS"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg.Vendors); err != nil {
			return nil, fmt.Errorf("SHOP_VENDORS is not valid JSON: %v", err)
		}
	}

	// Validate required fields
	if cfg.SupabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}
	if cfg.SupabaseAnonKey == "" {
		return nil, fmt.Errorf("SUPABASE_ANON_KEY is required")
	}
	if cfg.OneSignalAppID == "" || cfg.OneSignalAPIKey == "" {
		return nil, fmt.Errorf("ONESIGNAL_APP_ID and ONESIGNAL_API_KEY are required")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

// VendorShop returns the shop a staff email runs, if any.
func (c *Config) VendorShop(email string) (string, bool) {
	for shop, v := range c.Vendors {
		if strings.EqualFold(v.Email, email) {
			return shop, true
		}
	}
	return "", false
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
