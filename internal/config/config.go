// Package config loads application configuration from environment
// variables.  A .env file in the working directory is read first when
// present; explicit environment always wins.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Durations use Go duration syntax
// ("10m", "8h").
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	Port   string // HTTP port to listen on
	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret    string // secret used to sign JWTs
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing

	AMQPURL string // RabbitMQ connection URL (empty selects localhost)

	HoldTTL             time.Duration // how long an unpaid booking keeps its seats
	ExpirySweepInterval time.Duration // period of the durable expiry re-arm sweep
	ExpiryLookahead     time.Duration // how far ahead a sweep arms in-memory timers
	ReminderInterval    time.Duration // period of the show reminder sweep
	ReminderLookahead   time.Duration // reminder window: shows starting within this
	SeatCacheTTL        time.Duration // lifetime of cached seat availability
}

// Load reads configuration from the environment and returns a Config.
// Required variables are enforced by must() and missing values cause the
// program to exit with a fatal log message; tunables fall back to
// sensible defaults.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Env:    must("APP_ENV"),
		Port:   must("APP_PORT"),
		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:   mustInt("BCRYPT_COST"),

		AMQPURL: os.Getenv("RABBITMQ_URL"),

		HoldTTL:             envDur("BOOKING_HOLD_TTL", 10*time.Minute),
		ExpirySweepInterval: envDur("EXPIRY_SWEEP_INTERVAL", 30*time.Second),
		ExpiryLookahead:     envDur("EXPIRY_LOOKAHEAD", time.Minute),
		ReminderInterval:    envDur("REMINDER_INTERVAL", 8*time.Hour),
		ReminderLookahead:   envDur("REMINDER_LOOKAHEAD", 8*time.Hour),
		SeatCacheTTL:        envDur("SEAT_CACHE_TTL", 30*time.Second),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// envDur reads an optional duration variable, falling back to def when
// unset or unparsable.
func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid duration for %s: %q, using %s", key, v, def)
		return def
	}
	return d
}
