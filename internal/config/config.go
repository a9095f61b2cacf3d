package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURI string
	ZulipSite   string
	ZulipEmail  string
	ZulipAPIKey string
	ServerAddr  string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	return &Config{
		DatabaseURI: os.Getenv("DATABASE_URI"),
		ZulipSite:   os.Getenv("ZULIP_SITE"),
		ZulipEmail:  os.Getenv("ZULIP_EMAIL"),
		ZulipAPIKey: os.Getenv("ZULIP_API_KEY"),
		ServerAddr:  getEnvOrDefault("SERVER_ADDR", ":8000"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
