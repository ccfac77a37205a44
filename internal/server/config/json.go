package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/dealership/internal/flagx"
	"github.com/dmitrijs2005/dealership/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "1h" and integer seconds are accepted. Only fields
// present in the file override the current values.
type JsonConfig struct {
	HTTPAddr        *string         `json:"http_addr"`
	DatabaseDSN     *string         `json:"database_dsn"`
	SecretKey       *string         `json:"secret_key"`
	TokenTTL        *timex.Duration `json:"token_ttl"`
	Environment     *string         `json:"environment"`
	BcryptCost      *int            `json:"bcrypt_cost"`
	LogLevel        *string         `json:"log_level"`
	LogFormat       *string         `json:"log_format"`
	CookieName      *string         `json:"cookie_name"`
	NavCacheTTL     *timex.Duration `json:"nav_cache_ttl"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout"`
	S3AccessKey     *string         `json:"s3_access_key"`
	S3SecretKey     *string         `json:"s3_secret_key"`
	S3Bucket        *string         `json:"s3_bucket"`
	S3Region        *string         `json:"s3_region"`
	S3BaseEndpoint  *string         `json:"s3_base_endpoint"`
	S3PresignTTL    *timex.Duration `json:"s3_presign_ttl"`
}

// parseJSON overlays values from the file named by -c/-config (or the
// CONFIG variable). No path means nothing to load.
func parseJSON(config *Config, args []string, getenv func(string) string) error {
	path := flagx.ConfigPath(args, getenv)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.Environment, c.Environment)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.CookieName, c.CookieName)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	if c.TokenTTL != nil {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.NavCacheTTL != nil {
		config.NavCacheTTL = c.NavCacheTTL.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.S3PresignTTL != nil {
		config.S3PresignTTL = c.S3PresignTTL.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
