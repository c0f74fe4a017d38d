// Package config loads process configuration from the environment,
// grounded on the teacher's implied cmd/api scaffold (a joho/godotenv
// load followed by os.Getenv reads) reconstructed here since the
// retrieval pack did not include the teacher's own cmd/ or db config.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort            = "3000"
	defaultShutdownTimeout = 10 * time.Second
)

// Config holds everything cmd/server needs to wire up a Server.
type Config struct {
	Port            string
	DatabaseURL     string
	ShutdownTimeout time.Duration
}

// Load reads a .env file if present (missing file is not an error —
// local dev convenience, matching how godotenv.Load() is used
// throughout the pack) and then reads PORT, DATABASE_URL and
// SHUTDOWN_TIMEOUT from the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[config.Load] no .env file loaded: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	timeout := defaultShutdownTimeout
	if raw := os.Getenv("SHUTDOWN_TIMEOUT"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil {
			timeout = time.Duration(secs) * time.Second
		} else {
			log.Printf("[config.Load] invalid SHUTDOWN_TIMEOUT=%q, using default", raw)
		}
	}

	return Config{
		Port:            port,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		ShutdownTimeout: timeout,
	}
}
