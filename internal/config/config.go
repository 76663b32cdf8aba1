// Package config reads the service configuration from the environment.
// Nothing here is hardcoded: secrets and connection strings are supplied at
// deploy time (a .env file is honored in development).
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

const (
	BackendMongo = "mongo"
	BackendFile  = "file"
)

type Config struct {
	Port string

	// StorageBackend selects the persistence implementation: "mongo" or
	// "file".
	StorageBackend string

	MongoURI      string
	MongoHost     string
	MongoPort     string
	MongoUser     string
	MongoPassword string
	MongoDBName   string
	MongoTimeout  time.Duration

	// DataDir holds the JSON collection files for the file backend.
	DataDir string

	JWTSecret        string
	TokenTTL         time.Duration
	AdminEmailDomain string

	CookieSecure bool
}

func Load() Config {
	return Config{
		Port:             getEnv("PORT", "8080"),
		StorageBackend:   getEnv("STORAGE_BACKEND", BackendMongo),
		MongoURI:         getEnv("MONGO_URI", ""),
		MongoHost:        getEnv("MONGO_HOST", "localhost"),
		MongoPort:        getEnv("MONGO_PORT", "27017"),
		MongoUser:        getEnv("MONGO_USER", ""),
		MongoPassword:    getEnv("MONGO_PASSWORD", ""),
		MongoDBName:      getEnv("MONGO_DBNAME", "ecommerce"),
		MongoTimeout:     15 * time.Second,
		DataDir:          getEnv("DATA_DIR", "./data"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		TokenTTL:         time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		AdminEmailDomain: getEnv("ADMIN_EMAIL_DOMAIN", "admin.com"),
		CookieSecure:     getEnv("COOKIE_SECURE", "false") == "true",
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using %d", key, value, fallback)
		return fallback
	}
	return n
}
