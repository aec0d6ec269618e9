package main

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the process configuration, read once at startup.
type Config struct {
	Port        string
	DatabaseURL string
	DBPath      string
	IsDev       bool
}

func loadConfig() *Config {
	// A missing .env is fine; env vars win either way.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        os.Getenv("PORT"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBPath:      os.Getenv("DB_PATH"),
		IsDev:       os.Getenv("DETETIVE_ENV") != "production",
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if cfg.DBPath == "" {
		cfg.DBPath = "clue.db"
	}

	return cfg
}
