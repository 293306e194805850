package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Webhook  WebhookConfig
	Referral ReferralConfig
}

type ServerConfig struct {
	Port          string
	Environment   string
	ServiceAPIKey string
	AdminAPIKey   string
	AllowOrigins  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type WebhookConfig struct {
	Secret string
}

type ReferralConfig struct {
	StorefrontURL string
}

func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:          getEnv("SERVER_PORT", "8080"),
			Environment:   getEnv("ENVIRONMENT", "development"),
			ServiceAPIKey: getEnv("SERVICE_API_KEY", ""),
			AdminAPIKey:   getEnv("ADMIN_API_KEY", ""),
			AllowOrigins:  getEnv("ALLOW_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "ranchbox"),
			Password: getEnv("DB_PASSWORD", "ranchbox"),
			Name:     getEnv("DB_NAME", "ranchbox"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Webhook: WebhookConfig{
			Secret: getEnv("ORDER_WEBHOOK_SECRET", ""),
		},
		Referral: ReferralConfig{
			StorefrontURL: getEnv("STOREFRONT_URL", "https://ranchbox.example.com"),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
