package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"taskboard/internal/dto"
	"taskboard/internal/store"

	"github.com/redis/go-redis/v9"
)

// ChangesChannel is the Redis pub/sub channel carrying dto.ChangeEvent JSON.
const ChangesChannel = "taskboard:changes"

const publishTimeout = 2 * time.Second

// ChangePublisher fans store changes out to other processes over Redis.
type ChangePublisher struct {
	rdb *redis.Client
	log *slog.Logger
}

// NewChangePublisher returns a new ChangePublisher.
func NewChangePublisher(rdb *redis.Client, log *slog.Logger) *ChangePublisher {
	return &ChangePublisher{rdb: rdb, log: log}
}

// Publish sends one change on ChangesChannel.
func (p *ChangePublisher) Publish(ctx context.Context, c store.Change) error {
	b, err := json.Marshal(dto.FromChange(c))
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, ChangesChannel, b).Err()
}

// Subscriber adapts Publish to a store subscriber. Failures are logged; the
// in-memory mutation stands regardless.
func (p *ChangePublisher) Subscriber() store.Subscriber {
	return func(c store.Change) {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.Publish(ctx, c); err != nil {
			p.log.Warn("publish change", "kind", c.Kind, "task_id", c.Task.ID, "revision", c.Revision, "err", err)
		}
	}
}
