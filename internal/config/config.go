package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the binaries need from the environment.
type Config struct {
	AppEnv              string
	HTTPAddr            string
	RunLocal            bool
	ProductsTable       string
	OrdersTable         string
	MetricsNamespace    string
	StripeSecretKey     string
	StripeWebhookSecret string
}

// Load reads .env (if present) and resolves all settings.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv:              getenv("APP_ENV", "development"),
		HTTPAddr:            getenv("HTTP_ADDR", ":8080"),
		RunLocal:            os.Getenv("RUN_LOCAL") == "true",
		ProductsTable:       getenv("PRODUCTS_TABLE", "products"),
		OrdersTable:         getenv("ORDERS_TABLE", "orders"),
		MetricsNamespace:    getenv("METRICS_NAMESPACE", "CoffeeRoaster/Checkout"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
