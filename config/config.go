package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type DiscordConfig struct {
	AppID     string
	PublicKey string
	BotToken  string
	// DisableSignatureChecks skips interaction signature verification for
	// local testing. Never honored in a production environment.
	DisableSignatureChecks bool
}

// IsConfigured returns true if all required Discord configuration is present
func (c DiscordConfig) IsConfigured() bool {
	return c.AppID != "" &&
		c.PublicKey != "" &&
		c.BotToken != ""
}

type AppConfig struct {
	// Core configuration (always required)
	DatabaseURL        string
	DatabaseSchema     string
	Port               string // Optional with default "8080"
	CORSAllowedOrigins string // Optional with default "*"
	Environment        string
	AlertWebhookURL    string
	UseStrictConfig    bool // If true, error when any integration is not fully configured

	DiscordConfig DiscordConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	// Core required configuration
	databaseURL, err := getEnvRequired("DB_URL")
	if err != nil {
		return nil, err
	}

	databaseSchema, err := getEnvRequired("DB_SCHEMA")
	if err != nil {
		return nil, err
	}

	config := &AppConfig{
		DatabaseURL:        databaseURL,
		DatabaseSchema:     databaseSchema,
		Port:               getEnvWithDefault("PORT", "8080"),
		CORSAllowedOrigins: getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*"),
		Environment:        getEnvWithDefault("ENVIRONMENT", "dev"),
		AlertWebhookURL:    getEnvWithDefault("ALERT_WEBHOOK_URL", ""),
		UseStrictConfig:    getEnvWithDefault("USE_STRICT_CONFIG", "true") == "true",

		DiscordConfig: DiscordConfig{
			AppID:                  os.Getenv("DISCORD_APP_ID"),
			PublicKey:              os.Getenv("DISCORD_PUBLIC_KEY"),
			BotToken:               os.Getenv("DISCORD_BOT_TOKEN"),
			DisableSignatureChecks: os.Getenv("DISCORD_DISABLE_SIGNATURE_CHECKS") == "true",
		},
	}

	if config.DiscordConfig.IsConfigured() {
		log.Printf("✅ Discord integration configured")
	} else {
		log.Printf("⚠️ Discord integration not configured - Discord features will be disabled")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("discord integration is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	if config.DiscordConfig.DisableSignatureChecks {
		if config.Environment == "production" {
			return nil, fmt.Errorf("DISCORD_DISABLE_SIGNATURE_CHECKS cannot be enabled in production")
		}
		log.Printf("⚠️ Discord signature checks are DISABLED - do not use outside local testing")
	}

	return config, nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
