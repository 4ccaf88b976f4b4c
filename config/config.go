package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr          string
	CORSOrigins       string
	DBDriver          string
	DBDSN             string
	JWTSecret         string
	JWKSURL           string
	RedisAddr         string
	RedisPassword     string
	PubSubProject     string
	PubSubTopic       string
	GCSBucket         string
	PubSubCredentials string
	GCSCredentials    string
	InventoryPath     string
	SweepInterval     time.Duration
	DropDebounce      time.Duration
	Currency          string
	PhoneRegion       string
}

func init() {
	// Load env from .env
	godotenv.Load()
}

// Load reads the environment. Every setting has a default that works for a
// single front-desk machine with a local sqlite file.
func Load() Config {
	return Config{
		HTTPAddr:          stringFromEnv("HTTP_ADDR", ":3000"),
		CORSOrigins:       stringFromEnv("CORS_ORIGINS", "http://127.0.0.1:5173"),
		DBDriver:          strings.ToLower(stringFromEnv("DB_DRIVER", "sqlite")),
		DBDSN:             stringFromEnv("DB_DSN", "./frontdesk.db"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWKSURL:           os.Getenv("JWKS_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		PubSubProject:     pubSubProjectID(),
		PubSubTopic:       os.Getenv("PUBSUB_TOPIC"),
		GCSBucket:         os.Getenv("GCS_BUCKET"),
		PubSubCredentials: os.Getenv("PUBSUB_CREDENTIALS_JSON"),
		GCSCredentials:    os.Getenv("GCS_CREDENTIALS_JSON"),
		InventoryPath:     stringFromEnv("ROOM_INVENTORY", "./rooms.json"),
		SweepInterval:     durationFromEnv("SWEEP_INTERVAL", time.Minute),
		DropDebounce:      durationFromEnv("DROP_DEBOUNCE", 400*time.Millisecond),
		Currency:          strings.ToUpper(stringFromEnv("CURRENCY", "EUR")),
		PhoneRegion:       strings.ToUpper(stringFromEnv("PHONE_REGION", "DE")),
	}
}

func pubSubProjectID() string {
	// Prefer explicit override.
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	return os.Getenv("GOOGLE_CLOUD_PROJECT")
}

func stringFromEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// durationFromEnv accepts Go durations ("90s") or plain seconds ("90").
func durationFromEnv(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs := intFromEnv(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}
