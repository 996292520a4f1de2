package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ekip-platform/ekip-api/config"
	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/ekip-platform/ekip-api/internal/notifications/push"
	notifsvc "github.com/ekip-platform/ekip-api/internal/notifications/service"
	"github.com/ekip-platform/ekip-api/internal/storage/objectstore"
)

// OpenRedis returns nil when no URL is configured.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// OpenStore connects to the S3-compatible bucket, or keeps objects in
// memory when no endpoint is configured.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (objectstore.Store, error) {
	if cfg.Endpoint == "" {
		logging.Base().Warn("STORAGE_ENDPOINT not set, keeping uploads in memory")
		return objectstore.NewMemoryStore(), nil
	}
	return objectstore.NewS3Store(ctx, objectstore.S3Options{
		Endpoint:        cfg.Endpoint,
		Region:          cfg.Region,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		Bucket:          cfg.Bucket,
	})
}

// OpenPusher returns a nil Pusher when Firebase is not configured.
func OpenPusher(ctx context.Context, cfg config.FirebaseConfig) (notifsvc.Pusher, error) {
	if cfg.CredentialsPath == "" {
		return nil, nil
	}
	fcm, err := push.NewFCM(ctx, cfg.CredentialsPath)
	if err != nil {
		return nil, err
	}
	return fcm, nil
}
