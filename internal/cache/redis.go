// Package cache keeps the latest fix per device in Redis for live lookups.
// Caching is strictly best-effort: when Redis is absent or down the server
// runs without it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"fleettrack/internal/core/model"
)

const fixTTL = 24 * time.Hour

var (
	redisClient *redis.Client
	enabled     bool
)

// Initialize connects to Redis if a URL is configured. Any failure disables
// caching instead of failing startup; device ingestion does not depend on it.
func Initialize(redisURL string, logger *slog.Logger) {
	if redisURL == "" {
		logger.Info("Redis URL not provided, latest-fix cache disabled")
		enabled = false
		return
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn("failed to parse Redis URL, cache disabled", "error", err)
		enabled = false
		return
	}

	redisClient = redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("failed to connect to Redis, cache disabled", "error", err)
		enabled = false
		return
	}

	enabled = true
	logger.Info("Redis latest-fix cache initialized")
}

func Close() {
	if redisClient != nil {
		_ = redisClient.Close()
	}
}

func fixKey(deviceID string) string {
	return fmt.Sprintf("fix:%s", deviceID)
}

// SetLatestFix stores the newest fix for a device.
func SetLatestFix(ctx context.Context, fix *model.Fix) error {
	if !enabled {
		return nil
	}

	data, err := json.Marshal(fix)
	if err != nil {
		return err
	}
	return redisClient.Set(ctx, fixKey(fix.DeviceID), data, fixTTL).Err()
}

// GetLatestFix returns the cached newest fix for a device, or nil when none
// is cached.
func GetLatestFix(ctx context.Context, deviceID string) (*model.Fix, error) {
	if !enabled {
		return nil, nil
	}

	data, err := redisClient.Get(ctx, fixKey(deviceID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var fix model.Fix
	if err := json.Unmarshal(data, &fix); err != nil {
		return nil, err
	}
	return &fix, nil
}
