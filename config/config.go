package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort     string `mapstructure:"APP_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	Env         string `mapstructure:"ENV"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Stripe (card network).
	StripeKey string `mapstructure:"STRIPE_KEY"`

	// M-Pesa Daraja (mobile money network).
	MpesaBaseURL        string `mapstructure:"MPESA_BASE_URL"`
	MpesaConsumerKey    string `mapstructure:"MPESA_CONSUMER_KEY"`
	MpesaConsumerSecret string `mapstructure:"MPESA_CONSUMER_SECRET"`
	MpesaShortcode      string `mapstructure:"MPESA_SHORTCODE"`
	MpesaPasskey        string `mapstructure:"MPESA_PASSKEY"`
	MpesaCallbackURL    string `mapstructure:"MPESA_CALLBACK_URL"`
	MpesaPollInterval   int    `mapstructure:"MPESA_POLL_INTERVAL_SECONDS"`
	MpesaPollTimeout    int    `mapstructure:"MPESA_POLL_TIMEOUT_SECONDS"`

	// External notification sender.
	NotificationURL string `mapstructure:"NOTIFICATION_URL"`
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
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("MPESA_BASE_URL", "https://sandbox.safaricom.co.ke")
	viper.SetDefault("MPESA_POLL_INTERVAL_SECONDS", 5)
	viper.SetDefault("MPESA_POLL_TIMEOUT_SECONDS", 90)
	viper.SetDefault("NOTIFICATION_URL", "")

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

// MpesaPollIntervalDuration returns the status-query poll interval.
func MpesaPollIntervalDuration() time.Duration {
	return time.Duration(AppConfig.MpesaPollInterval) * time.Second
}

// MpesaPollTimeoutDuration returns the hard deadline for resolving a push
// payment before it is marked failed.
func MpesaPollTimeoutDuration() time.Duration {
	return time.Duration(AppConfig.MpesaPollTimeout) * time.Second
}
