package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"recipebox"
	"recipebox/store/storage"
)

// newBackend opens the store backend named in cfg. The returned func releases its connections.
func newBackend(ctx context.Context, cfg recipebox.StoreConfig) (storage.Backend, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "memory":
		return storage.NewMemoryBackend(), noop, nil

	case "file":
		return storage.NewFileBackend(cfg.Dir), noop, nil

	case "s3":
		if cfg.S3Bucket == "" {
			return nil, nil, fmt.Errorf("missing S3 config: STORE_S3_BUCKET must be set")
		}
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return storage.NewS3Backend(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix), noop, nil

	case "redis":
		client, err := storage.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedisBackend(client, cfg.RedisPrefix), client.Close, nil

	case "sqlite", "postgres":
		driver := cfg.Backend
		if driver == "sqlite" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLDSN), 0o755); err != nil {
				return nil, nil, fmt.Errorf("failed to create database dir: %w", err)
			}
		}
		sqlBackend, err := storage.OpenSQL(ctx, driver, cfg.SQLDSN)
		if err != nil {
			return nil, nil, err
		}
		return sqlBackend, sqlBackend.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
