// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port     string `env:"MAAGAN_PORT" envDefault:"8080"`
	DBPath   string `env:"MAAGAN_DB_PATH" envDefault:"maagan.db"`
	LogLevel string `env:"MAAGAN_LOG_LEVEL" envDefault:"info"`

	JWTSecret string        `env:"MAAGAN_JWT_SECRET,required"`
	JWTIssuer string        `env:"MAAGAN_JWT_ISSUER" envDefault:"maagan"`
	JWTTTL    time.Duration `env:"MAAGAN_JWT_TTL" envDefault:"24h"`

	// Blob storage: "fs" keeps files under BlobDir, "s3" uses the bucket
	// settings below.
	BlobDriver string `env:"MAAGAN_BLOB_DRIVER" envDefault:"fs"`
	BlobDir    string `env:"MAAGAN_BLOB_DIR" envDefault:"data/files"`

	S3Endpoint  string `env:"MAAGAN_S3_ENDPOINT"`
	S3Bucket    string `env:"MAAGAN_S3_BUCKET"`
	S3Region    string `env:"MAAGAN_S3_REGION" envDefault:"us-east-1"`
	S3AccessKey string `env:"MAAGAN_S3_ACCESS_KEY"`
	S3SecretKey string `env:"MAAGAN_S3_SECRET_KEY"`

	// Bootstrap admin, created on first start when no users exist.
	AdminEmail    string `env:"MAAGAN_ADMIN_EMAIL"`
	AdminPassword string `env:"MAAGAN_ADMIN_PASSWORD"`
	AdminName     string `env:"MAAGAN_ADMIN_NAME" envDefault:"Administrator"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.BlobDriver == "s3" && cfg.S3Bucket == "" {
		return nil, fmt.Errorf("MAAGAN_S3_BUCKET is required when MAAGAN_BLOB_DRIVER=s3")
	}
	return &cfg, nil
}
