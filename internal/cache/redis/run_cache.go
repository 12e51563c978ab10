package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/linescout/linescout/internal/domain"
)

// RunCache implements domain.RunCache using a Redis hash. Each detection
// category's latest run summary lives in one field of "detect:runs", so
// status queries read everything with a single HGETALL.
type RunCache struct {
	rdb *redis.Client
}

// NewRunCache creates a RunCache backed by the given Client.
func NewRunCache(c *Client) *RunCache {
	return &RunCache{rdb: c.Underlying()}
}

const runsKey = "detect:runs"

// SetSummary stores the latest run summary for one category.
func (rc *RunCache) SetSummary(ctx context.Context, s domain.RunSummary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("redis: marshal run summary %s: %w", s.Category, err)
	}
	if err := rc.rdb.HSet(ctx, runsKey, string(s.Category), data).Err(); err != nil {
		return fmt.Errorf("redis: set run summary %s: %w", s.Category, err)
	}
	return nil
}

// GetSummaries returns the latest run summary for every category that has one.
func (rc *RunCache) GetSummaries(ctx context.Context) ([]domain.RunSummary, error) {
	vals, err := rc.rdb.HGetAll(ctx, runsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: get run summaries: %w", err)
	}

	summaries := make([]domain.RunSummary, 0, len(vals))
	for category, raw := range vals {
		var s domain.RunSummary
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("redis: unmarshal run summary %s: %w", category, err)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// Compile-time interface check.
var _ domain.RunCache = (*RunCache)(nil)
