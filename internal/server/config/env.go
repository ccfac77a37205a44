package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseEnv overlays values from environment variables:
//
//	HTTP_ADDR, DATABASE_DSN, ACCESS_TOKEN_SECRET, ACCESS_TOKEN_TTL,
//	APP_ENV, BCRYPT_COST, LOG_LEVEL, LOG_FORMAT, COOKIE_NAME,
//	S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET, S3_REGION, S3_ENDPOINT
//
// ACCESS_TOKEN_TTL accepts a Go duration ("30m") or whole seconds ("1800").
func parseEnv(config *Config, getenv func(string) string) error {
	if getenv == nil {
		return nil
	}

	strs := map[string]*string{
		"HTTP_ADDR":           &config.HTTPAddr,
		"DATABASE_DSN":        &config.DatabaseDSN,
		"ACCESS_TOKEN_SECRET": &config.SecretKey,
		"APP_ENV":             &config.Environment,
		"LOG_LEVEL":           &config.LogLevel,
		"LOG_FORMAT":          &config.LogFormat,
		"COOKIE_NAME":         &config.CookieName,
		"S3_ACCESS_KEY":       &config.S3AccessKey,
		"S3_SECRET_KEY":       &config.S3SecretKey,
		"S3_BUCKET":           &config.S3Bucket,
		"S3_REGION":           &config.S3Region,
		"S3_ENDPOINT":         &config.S3BaseEndpoint,
	}
	for key, dst := range strs {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	if v := strings.TrimSpace(getenv("ACCESS_TOKEN_TTL")); v != "" {
		ttl, err := parseSecondsOrDuration(v)
		if err != nil {
			return fmt.Errorf("ACCESS_TOKEN_TTL: %w", err)
		}
		config.TokenTTL = ttl
	}

	if v := strings.TrimSpace(getenv("BCRYPT_COST")); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BCRYPT_COST: %w", err)
		}
		config.BcryptCost = cost
	}

	return nil
}

func parseSecondsOrDuration(v string) (time.Duration, error) {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}
