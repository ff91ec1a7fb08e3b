package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env            string
	ServerPort     int
	Log            LogConfig
	Database       DatabaseConfig
	LegacyDatabase DatabaseConfig
	Redis          RedisConfig
	Session        SessionConfig
	MQ             MQConfig
}

type LogConfig struct {
	Level string
	Dev   bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SessionConfig controls session token signing and cookie issuance.
type SessionConfig struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

// MQConfig selects the event backend. An empty Backend disables publishing.
type MQConfig struct {
	Backend  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
	Durable  bool
}

type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
	TopicPrefix     string
}

const (
	MQBackendRabbitMQ = "rabbitmq"
	MQBackendPubSub   = "pubsub"
)

func LoadConfig() Config {
	env := getEnv("ENV", "production")
	if env == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "seaportal"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "seaportal_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	legacyConfig := DatabaseConfig{
		Host:     getEnv("LEGACY_DB_HOST", "localhost"),
		Port:     getEnvInt("LEGACY_DB_PORT", 5432),
		User:     getEnv("LEGACY_DB_USER", "postgres"),
		Password: getEnv("LEGACY_DB_PASSWORD", "password"),
		DBName:   getEnv("LEGACY_DB_NAME", "postgres"),
		UseSSL:   getEnvBool("LEGACY_DB_USE_SSL", true),
	}

	return Config{
		Env:        env,
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "")),
			Dev:   getEnv("LOG_DEV", "") == "1",
		},
		Database:       dbConfig,
		LegacyDatabase: legacyConfig,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Session: SessionConfig{
			Secret:       strings.TrimSpace(getEnv("JWT_SECRET", "")),
			TTL:          getEnvDuration("SESSION_TTL", 24*time.Hour),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "portal_session"),
			CookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),
		},
		MQ: MQConfig{
			Backend: strings.ToLower(strings.TrimSpace(getEnv("MQ_BACKEND", ""))),
			RabbitMQ: RabbitMQConfig{
				URL:      getEnv("RABBITMQ_URL", ""),
				Exchange: getEnv("RABBITMQ_EXCHANGE", "portal.events"),
				Durable:  getEnvBool("RABBITMQ_DURABLE", true),
			},
			PubSub: PubSubConfig{
				ProjectID:       getEnv("PUBSUB_PROJECT_ID", ""),
				CredentialsFile: getEnv("PUBSUB_CREDENTIALS_FILE", ""),
				TopicPrefix:     getEnv("PUBSUB_TOPIC_PREFIX", "portal-"),
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(valueStr)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := time.ParseDuration(strings.TrimSpace(valueStr))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
