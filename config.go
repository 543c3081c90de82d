package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment   string
	Address       string
	JWTSecret     string
	TokenTTL      time.Duration
	DBDriver      string
	DBURL         string
	Storage       string
	ImageDir      string
	MinIOEndpoint string
	MinIOAccess   string
	MinIOSecret   string
	MinIOBucket   string
	EnableSignup  bool
	BodyLimit     string
	LogLevel      string
	WhitelistHost string
}

// loadConfig reads the environment, after loading a .env file if present.
func loadConfig() (Config, error) {
	_ = godotenv.Load()

	env := getenv("ENV", PRO_ENV)
	cfg := Config{
		Environment:   env,
		Address:       os.Getenv("ADDRESS_LISTEN"),
		DBDriver:      os.Getenv("DB_DRIVER"),
		DBURL:         os.Getenv("DB_URL"),
		Storage:       getenv("STORAGE", "local"),
		ImageDir:      getenv("IMAGE_DIR", "images"),
		MinIOEndpoint: os.Getenv("MINIO_ENDPOINT"),
		MinIOAccess:   os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecret:   os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:   os.Getenv("MINIO_BUCKET"),
		EnableSignup:  getenv("ENABLE_SIGNUP", "true") == "true",
		BodyLimit:     getenv("BODY_LIMIT", "10M"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		WhitelistHost: os.Getenv("WHITELIST_HOST"),
	}
	secret, err := fetchSecret(env)
	if err != nil {
		return cfg, err
	}
	cfg.JWTSecret = secret

	cfg.TokenTTL = time.Hour
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return cfg, fmt.Errorf("TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = ttl
	}
	if raw := os.Getenv("PORT"); raw != "" && cfg.Address == "" {
		if _, err := strconv.Atoi(raw); err != nil {
			return cfg, errors.New("PORT must be numeric")
		}
		cfg.Address = ":" + raw
	}
	if env == DEV_ENV && cfg.Address == "" {
		cfg.Address = ":8080"
	}
	return cfg, nil
}

func fetchSecret(env string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" && env == DEV_ENV {
		secret = "unsecure"
	}
	if secret == "" {
		return "", errors.New("no secret defined")
	}
	return secret, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
