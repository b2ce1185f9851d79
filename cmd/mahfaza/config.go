package main

import (
	"encoding/base64"
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"mahfaza/pkg/types"
)

func loadConfig() (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	if err := checkCookieKey("COOKIE_HASH_KEY", c.CookieHashKey, 32, 64); err != nil {
		return nil, err
	}
	if err := checkCookieKey("COOKIE_BLOCK_KEY", c.CookieBlockKey, 16, 24, 32); err != nil {
		return nil, err
	}

	switch c.StorageBackend {
	case "disk":
	case "s3":
		if c.S3Endpoint == "" {
			return nil, fmt.Errorf("set S3_ENDPOINT when STORAGE_BACKEND=s3")
		}
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be disk or s3, got %q", c.StorageBackend)
	}

	if c.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	return c, nil
}

func checkCookieKey(name, value string, sizes ...int) error {
	if value == "" {
		return fmt.Errorf("set %s (openssl rand -base64 32)", name)
	}

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return fmt.Errorf("%s is not valid base64: %w", name, err)
	}

	for _, size := range sizes {
		if len(decoded) == size {
			return nil
		}
	}

	return fmt.Errorf("%s must decode to one of %v bytes, got %d", name, sizes, len(decoded))
}
