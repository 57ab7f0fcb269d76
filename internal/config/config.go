package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/pawcare-app/booking-engine/internal/repository"
)

type Config struct {
	DB       *repository.DBConfig
	HTTPPort int
	Redis    struct {
		Addr string
	}
	SFN struct {
		StateMachineARN string
	}
	EnableTracing bool
}

// Load reads configuration from the environment, defaulting every value so
// a local run needs no setup.
func Load() (*Config, error) {
	cfg := &Config{
		DB: &repository.DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvAsIntOrDefault("DB_PORT", 5432),
			UserName: getEnvOrDefault("DB_USERNAME", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "pawcare"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		},
		HTTPPort: getEnvAsIntOrDefault("HTTP_PORT", 8080),
	}
	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.SFN.StateMachineARN = os.Getenv("NOTIFICATION_STATE_MACHINE_ARN")

	// PAWCARE_ENABLE_TRACING turns on X-Ray. AWS_XRAY_SDK_DISABLED=true
	// always wins and disables tracing.
	enableKey := os.Getenv("PAWCARE_ENABLE_TRACING")
	if !sdkDisabled() && (strings.ToLower(enableKey) == "true" || enableKey == "1") {
		os.Setenv("AWS_XRAY_SDK_DISABLED", "FALSE")
		cfg.EnableTracing = true
	} else {
		os.Setenv("AWS_XRAY_SDK_DISABLED", "TRUE")
		cfg.EnableTracing = false
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	log.Printf("Environment variable %s is not set, using default value", key)
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}

	log.Printf("Environment variable %s is not set, using default value", key)
	return defaultValue
}

func sdkDisabled() bool {
	disableKey := os.Getenv("AWS_XRAY_SDK_DISABLED")
	return strings.ToLower(disableKey) == "true"
}
