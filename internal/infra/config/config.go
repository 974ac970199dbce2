// internal/infra/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds environment-driven settings for the whole application.
type Config struct {
	Port string

	// GCP
	FirestoreProjectID       string
	FirebaseProjectID        string
	FirestoreCredentialsFile string
	GCPCreds                 string

	// Postgres (remote cart store)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	// DBPasswordSecret, when set, is a Secret Manager resource name
	// (projects/*/secrets/*/versions/*) resolved at boot; it takes
	// precedence over DBPassword.
	DBPasswordSecret string
	DBSSLMode        string

	// Pool tuning (zero means the database package defaults apply).
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// Local cart stores (one SQLite file per device) live under this dir.
	LocalCartDir string

	// Catalog image bucket for public URLs.
	ProductImageBucket string

	// Per-call remote store timeout.
	CartRemoteTimeout time.Duration

	// Ops alerts (best-effort; empty disables)
	SendGridAPIKey string
	AlertFromEmail string
	AlertToEmail   string
}

// Load reads the environment and returns a Config.
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "agrimart-store-dev")

	cfg := &Config{
		Port: getenvDefault("PORT", "8080"),

		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		GCPCreds:                 os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		DBHost:           getenvDefault("DB_HOST", "localhost"),
		DBPort:           getenvDefault("DB_PORT", "5432"),
		DBUser:           getenvDefault("DB_USER", "agrimart"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           getenvDefault("DB_NAME", "agrimart"),
		DBPasswordSecret: os.Getenv("DB_PASSWORD_SECRET"),
		DBSSLMode:        getenvDefault("DB_SSLMODE", "disable"),

		DBMaxOpenConns:    getenvInt("DB_MAX_OPEN_CONNS", 0),
		DBMaxIdleConns:    getenvInt("DB_MAX_IDLE_CONNS", 0),
		DBConnMaxLifetime: getenvDuration("DB_CONN_MAX_LIFETIME", 0),

		LocalCartDir:       getenvDefault("LOCAL_CART_DIR", "./data/carts"),
		ProductImageBucket: os.Getenv("PRODUCT_IMAGE_BUCKET"),

		CartRemoteTimeout: getenvDuration("CART_REMOTE_TIMEOUT", 10*time.Second),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		AlertFromEmail: os.Getenv("CART_ALERT_FROM"),
		AlertToEmail:   os.Getenv("CART_ALERT_TO"),
	}

	return cfg
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
