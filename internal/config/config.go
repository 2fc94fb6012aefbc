// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Addr is the serve listen address.
	Addr string
	// DBPath is the sqlite database location.
	DBPath string
	// RedisURL enables the cross-instance broadcast bridge when set.
	RedisURL string
	// ServerURL is where the client finds the service boundary.
	ServerURL string
	// UserName is attributed on status history entries.
	UserName string
}

func Load() Config {
	// Missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	return Config{
		Addr:      getenv("NEWSPAPER_ADDR", ":5000"),
		DBPath:    getenv("NEWSPAPER_DB", "newspaper.sqlite"),
		RedisURL:  getenv("NEWSPAPER_REDIS_URL", ""),
		ServerURL: getenv("NEWSPAPER_SERVER_URL", "http://localhost:5000"),
		UserName:  getenv("NEWSPAPER_USER", defaultUser()),
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func defaultUser() string {
	if u := strings.TrimSpace(os.Getenv("USER")); u != "" {
		return u
	}
	return "desk"
}
