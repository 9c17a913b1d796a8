// Package config loads service configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the settings read at startup
type Config struct {
	Port              string
	MongoURI          string
	MongoDB           string
	JWTSecret         string
	JWTTTL            time.Duration
	ClientOrigin      string
	RedisAddr         string
	RedisPassword     string
	GatewayBaseURL    string
	GatewayTimeout    time.Duration
	GatewayMaxRetries int
	StoreTimeout      time.Duration
	PostmarkToken     string
	SendGridKey       string
	EmailSender       string
	LogLevel          string

	// DotEnvLoaded reports whether a .env file was found
	DotEnvLoaded bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3001")
	v.SetDefault("MONGO_URI", "mongodb://127.0.0.1:27017")
	v.SetDefault("MONGO_DB", "brilliora")
	v.SetDefault("JWT_SECRET", "devsecret")
	v.SetDefault("JWT_TTL", "168h")
	v.SetDefault("CLIENT_ORIGIN", "http://localhost:5173")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("RAZORPAY_API_BASE", "https://api.razorpay.com")
	v.SetDefault("GATEWAY_TIMEOUT", "10s")
	v.SetDefault("GATEWAY_MAX_RETRIES", 2)
	v.SetDefault("STORE_TIMEOUT", "10s")
	v.SetDefault("POSTMARK_API_TOKEN", "")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("EMAIL_SENDER", "orders@brilliora.local")
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads the given .env files (".env" when none are named) into the
// process environment and resolves the configuration from it. A missing .env
// file is not an error.
func Load(envFiles ...string) (*Config, error) {
	loaded := godotenv.Load(envFiles...) == nil

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port:              v.GetString("PORT"),
		MongoURI:          v.GetString("MONGO_URI"),
		MongoDB:           v.GetString("MONGO_DB"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTTTL:            v.GetDuration("JWT_TTL"),
		ClientOrigin:      v.GetString("CLIENT_ORIGIN"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		GatewayBaseURL:    strings.TrimRight(v.GetString("RAZORPAY_API_BASE"), "/"),
		GatewayTimeout:    v.GetDuration("GATEWAY_TIMEOUT"),
		GatewayMaxRetries: v.GetInt("GATEWAY_MAX_RETRIES"),
		StoreTimeout:      v.GetDuration("STORE_TIMEOUT"),
		PostmarkToken:     v.GetString("POSTMARK_API_TOKEN"),
		SendGridKey:       v.GetString("SENDGRID_API_KEY"),
		EmailSender:       v.GetString("EMAIL_SENDER"),
		LogLevel:          strings.ToLower(v.GetString("LOG_LEVEL")),
		DotEnvLoaded:      loaded,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be a positive duration")
	}
	if c.GatewayTimeout <= 0 {
		return errors.New("GATEWAY_TIMEOUT must be a positive duration")
	}
	if c.StoreTimeout <= 0 {
		return errors.New("STORE_TIMEOUT must be a positive duration")
	}
	if c.GatewayMaxRetries < 0 {
		return errors.New("GATEWAY_MAX_RETRIES must not be negative")
	}
	return nil
}

// Credentials are the payment provider's key pair
type Credentials struct {
	KeyID     string
	KeySecret string
}

// Configured is true iff both halves of the key pair are present
func (c Credentials) Configured() bool {
	return c.KeyID != "" && c.KeySecret != ""
}

// CredentialSource yields the provider credentials in effect right now.
type CredentialSource interface {
	Credentials() Credentials
}

type envCredentials struct{}

// EnvCredentials reads RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET from the
// process environment on every call, so keys can be added or removed without
// a restart.
func EnvCredentials() CredentialSource {
	return envCredentials{}
}

func (envCredentials) Credentials() Credentials {
	return Credentials{
		KeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		KeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
	}
}

// StaticCredentials is a fixed key pair, used by tests and tools.
type StaticCredentials Credentials

func (s StaticCredentials) Credentials() Credentials {
	return Credentials(s)
}
