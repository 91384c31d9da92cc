package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. Optional backends (Postgres,
// Redis, Kafka) fall back to in-memory implementations when unset so the
// server runs out of the box in development.
type Server struct {
	Addr          string
	DatabaseURL   string
	RedisURL      string
	KafkaBrokers  []string
	KafkaTopic    string
	JWTSigningKey string
	Issuer        string

	AccessTokenTTL time.Duration
	AuthCodeTTL    time.Duration
	SessionTTL     time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("SIGNET_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	issuer := os.Getenv("SIGNET_ISSUER")
	if issuer == "" {
		issuer = "signet"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}
	topic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "signet.audit"
	}

	return Server{
		Addr:           addr,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		KafkaBrokers:   brokers,
		KafkaTopic:     topic,
		JWTSigningKey:  jwtSigningKey,
		Issuer:         issuer,
		AccessTokenTTL: durationEnv("ACCESS_TOKEN_TTL", time.Hour),
		AuthCodeTTL:    durationEnv("AUTH_CODE_TTL", 10*time.Minute),
		SessionTTL:     durationEnv("SESSION_TTL", 24*time.Hour),
	}
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
