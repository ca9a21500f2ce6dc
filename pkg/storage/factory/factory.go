// Package factory constructs a storage backend from configuration.
package factory

import (
	"fmt"

	"github.com/lookloom/media_vault/pkg/storage"
	"github.com/lookloom/media_vault/pkg/storage/local"
	"github.com/lookloom/media_vault/pkg/storage/s3"
)

// New creates a storage adapter based on configuration.
func New(cfg storage.Config) (storage.Storage, error) {
	switch cfg.Type {
	case "", "local":
		basePath := cfg.Local.BasePath
		if basePath == "" {
			basePath = "data/objects"
		}
		return local.New(basePath)

	case "s3":
		return s3.New(s3.Config{
			Endpoint:     cfg.S3.Endpoint,
			Region:       cfg.S3.Region,
			Bucket:       cfg.S3.Bucket,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			PathStyle:    cfg.S3.PathStyle,
			PublicDomain: cfg.S3.PublicDomain,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
