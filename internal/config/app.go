package config

import (
	"os"
	"time"
)

// AppConfig holds application-level configuration.
type AppConfig struct {
	WhatsApp  WhatsAppSettings
	Redis     RedisConfig
	AppConfig AppConfigSettings
}

// WhatsAppSettings holds WhatsApp Business API settings. PhoneNumberID and
// AccessToken may come from the environment or from Secrets Manager.
type WhatsAppSettings struct {
	APIEndpoint   string // e.g. "https://graph.facebook.com"
	APIVersion    string
	PhoneNumberID string
	AccessToken   string
	SecretName    string // Secrets Manager secret holding the credentials
	Timeout       time.Duration
}

// RedisConfig holds Redis connection settings. An empty Addr disables the
// webhook dedup store.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
	DedupTTL     time.Duration
}

// AppConfigSettings holds the dispatch-profile endpoint. An empty Endpoint
// disables profile loading.
type AppConfigSettings struct {
	Endpoint string
}

// DefaultAPIVersion is used when no version is configured.
const DefaultAPIVersion = "v22.0"

// LoadFromEnv loads configuration from environment variables with sensible defaults.
func LoadFromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		WhatsApp: WhatsAppSettings{
			APIEndpoint:   getEnvOrDefault("WHATSAPP_API_ENDPOINT", "https://graph.facebook.com"),
			APIVersion:    getEnvOrDefault("WHATSAPP_API_VERSION", DefaultAPIVersion),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			AccessToken:   os.Getenv("WHATSAPP_ACCESS_TOKEN"),
			SecretName:    os.Getenv("WHATSAPP_SECRET_NAME"),
			Timeout:       10 * time.Second,
		},
		Redis: RedisConfig{
			Addr:         os.Getenv("REDIS_ADDR"),
			Password:     os.Getenv("REDIS_PASSWORD"),
			DB:           0,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 2,
			DedupTTL:     24 * time.Hour,
		},
		AppConfig: AppConfigSettings{
			Endpoint: os.Getenv("APPCONFIG_ENDPOINT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
