package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"sceneexport/internal/artifact"
	"sceneexport/internal/config"
)

// openStore builds the artifact store selected by cfg.Publish. The returned
// func releases it.
func openStore(ctx context.Context, cfg *config.Config) (artifact.Store, func(), error) {
	switch cfg.Publish {
	case config.PublishMemory:
		log.Printf("artifact store: in-memory")
		return artifact.NewMemoryStore(), func() {}, nil
	case config.PublishS3:
		s3Cfg := artifact.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		}
		store, err := artifact.NewS3Store(s3Cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize artifact s3 store: %w", err)
		}
		log.Printf("artifact store: s3 bucket=%s endpoint=%s", s3Cfg.Bucket, s3Cfg.Endpoint)
		return store, func() {}, nil
	case config.PublishPostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("DATABASE_URL is required for postgres publishing")
		}
		store, err := artifact.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize artifact postgres store: %w", err)
		}
		log.Printf("artifact store: postgres")
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, errors.New("no publish target; set -publish or SCENEEXPORT_PUBLISH")
	}
}
