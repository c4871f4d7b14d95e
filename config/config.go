package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type Config struct {
	Port     string
	LogLevel zerolog.Level
	Store    string
	DBPath   string

	JWTSecret []byte
	// GeneratedSecret is set when JWT_SECRET was empty and a throwaway
	// secret was made up; tokens will not survive a restart.
	GeneratedSecret bool
	TokenTTL        time.Duration

	ClientDir    string
	ClientOrigin string
}

// Load reads the environment after applying the given .env files, or ./.env
// if none are named. Variables already set in the environment win.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		Store:        strings.ToLower(getEnv("STORE", StoreMemory)),
		DBPath:       getEnv("DB_PATH", "./data/pong.db"),
		ClientDir:    os.Getenv("CLIENT_DIR"),
		ClientOrigin: os.Getenv("CLIENT_ORIGIN"),
	}

	lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = lvl

	switch cfg.Store {
	case StoreMemory, StoreSQLite:
	default:
		return Config{}, fmt.Errorf("STORE: unknown store %q (want %s or %s)", cfg.Store, StoreMemory, StoreSQLite)
	}

	cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL: must be positive, got %v", cfg.TokenTTL)
	}

	if s := os.Getenv("JWT_SECRET"); s != "" {
		cfg.JWTSecret = []byte(s)
	} else {
		cfg.JWTSecret = make([]byte, 32)
		if _, err := rand.Read(cfg.JWTSecret); err != nil {
			return Config{}, fmt.Errorf("generate secret: %w", err)
		}
		cfg.GeneratedSecret = true
	}

	return cfg, nil
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	return ":" + c.Port
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
