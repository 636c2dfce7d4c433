package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"taskboard/internal/views"

	"github.com/redis/go-redis/v9"
)

const keyDashboard = "taskboard:dashboard:"

// DashboardCache caches dashboard stats in Redis, keyed by store id and
// revision. A mutation bumps the revision, so stale entries are never read
// again and simply expire. Revisions restart at zero in every process; the
// store id keeps processes sharing one Redis apart.
type DashboardCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewDashboardCache returns a new DashboardCache.
func NewDashboardCache(rdb *redis.Client, ttl time.Duration) *DashboardCache {
	return &DashboardCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached stats of store storeID at revision rev, or nil on a miss.
func (c *DashboardCache) Get(ctx context.Context, storeID string, rev uint64) (*views.DashboardStats, error) {
	b, err := c.rdb.Get(ctx, dashboardKey(storeID, rev)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stats views.DashboardStats
	if err := json.Unmarshal(b, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Set stores stats of store storeID at revision rev.
func (c *DashboardCache) Set(ctx context.Context, storeID string, rev uint64, stats views.DashboardStats) error {
	b, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, dashboardKey(storeID, rev), b, c.ttl).Err()
}

func dashboardKey(storeID string, rev uint64) string {
	return keyDashboard + storeID + ":" + strconv.FormatUint(rev, 10)
}
