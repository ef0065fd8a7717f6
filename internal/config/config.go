package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Delivery channels for the welcome message sent on follow events.
const (
	WelcomeDeliveryReply = "reply"
	WelcomeDeliveryPush  = "push"
)

// To-do source backends.
const (
	TodoBackendFile  = "file"
	TodoBackendRedis = "redis"
)

// Config holds application configuration
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	ChannelAccessToken string
	ChannelSecret      string
	LineAPIBaseURL     string
	LineDataAPIBaseURL string
	DeliveryTimeout    time.Duration

	// WelcomeDelivery picks the channel used for the follow-event welcome
	// card: "reply" uses the event's reply token, "push" addresses the
	// user id directly.
	WelcomeDelivery string
	TodoAppURL      string
	WelcomeImageURL string

	TodoBackend  string
	TodoFilePath string
	TodoRedisKey string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		ChannelAccessToken: getEnv("CHANNEL_ACCESS_TOKEN", ""),
		ChannelSecret:      getEnv("CHANNEL_SECRET", ""),
		LineAPIBaseURL:     getEnv("LINE_API_BASE_URL", "https://api.line.me"),
		LineDataAPIBaseURL: getEnv("LINE_DATA_API_BASE_URL", "https://api-data.line.me"),
		DeliveryTimeout:    getEnvAsDuration("DELIVERY_TIMEOUT", 10*time.Second),

		WelcomeDelivery: strings.ToLower(strings.TrimSpace(getEnv("WELCOME_DELIVERY", WelcomeDeliveryReply))),
		TodoAppURL:      getEnv("TODO_APP_URL", "https://line-todo-app-gold.vercel.app"),
		WelcomeImageURL: getEnv("WELCOME_IMAGE_URL", "https://line-todo-app-gold.vercel.app/c3c1.png"),

		TodoBackend:  strings.ToLower(strings.TrimSpace(getEnv("TODO_BACKEND", TodoBackendFile))),
		TodoFilePath: getEnv("TODO_FILE_PATH", "todo.json"),
		TodoRedisKey: getEnv("TODO_REDIS_KEY", "todo:list"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
	}
}

// Validate reports startup-blocking configuration problems. Missing channel
// credentials are fatal: the bot can neither verify webhooks nor talk to the
// LINE API without them.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ChannelAccessToken) == "" {
		return errors.New("CHANNEL_ACCESS_TOKEN is not set")
	}
	if strings.TrimSpace(c.ChannelSecret) == "" {
		return errors.New("CHANNEL_SECRET is not set")
	}
	switch c.WelcomeDelivery {
	case WelcomeDeliveryReply, WelcomeDeliveryPush:
	default:
		return errors.New("WELCOME_DELIVERY must be \"reply\" or \"push\"")
	}
	switch c.TodoBackend {
	case TodoBackendFile:
	case TodoBackendRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return errors.New("TODO_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return errors.New("TODO_BACKEND must be \"file\" or \"redis\"")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
