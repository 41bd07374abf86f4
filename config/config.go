package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisDraftDB  int    `mapstructure:"REDIS_DRAFT_DB"`
	RedisOTPDB    int    `mapstructure:"REDIS_OTP_DB"`

	// Registration flow tuning.
	DraftTTLMinutes  int    `mapstructure:"DRAFT_TTL_MINUTES"`
	OTPTTLMinutes    int    `mapstructure:"OTP_TTL_MINUTES"`
	StagingDir       string `mapstructure:"STAGING_DIR"`
	ProbeDebounceMS  int    `mapstructure:"PROBE_DEBOUNCE_MS"`
	SendgridAPIKey   string `mapstructure:"SENDGRID_API_KEY"`
	DefaultFromEmail string `mapstructure:"DEFAULT_FROM_EMAIL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_DRAFT_DB", 1)
	viper.SetDefault("REDIS_OTP_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DRAFT_TTL_MINUTES", 60)
	viper.SetDefault("OTP_TTL_MINUTES", 5)
	viper.SetDefault("STAGING_DIR", "")
	viper.SetDefault("PROBE_DEBOUNCE_MS", 400)
	viper.SetDefault("SENDGRID_API_KEY", "")
	viper.SetDefault("DEFAULT_FROM_EMAIL", "no-reply@darisni.app")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
