package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"taskboard/internal/store"
)

// Mirror writes store changes through to a TaskRepo. The store stays the
// source of truth: a failed write is logged and the in-memory state kept.
type Mirror struct {
	repo    TaskRepo
	timeout time.Duration
	log     *slog.Logger
}

func NewMirror(r TaskRepo, timeout time.Duration, log *slog.Logger) *Mirror {
	return &Mirror{repo: r, timeout: timeout, log: log}
}

// Apply writes one change.
func (m *Mirror) Apply(ctx context.Context, c store.Change) error {
	switch c.Kind {
	case store.ChangeAdded:
		err := m.repo.Insert(ctx, c.Task)
		if errors.Is(err, ErrDuplicate) {
			return m.repo.Update(ctx, c.Task)
		}
		return err
	case store.ChangeToggled:
		return m.repo.SetCompleted(ctx, c.Task.ID, c.Task.Completed)
	case store.ChangeUpdated:
		return m.repo.Update(ctx, c.Task)
	case store.ChangeDeleted:
		return m.repo.Delete(ctx, c.Task.ID)
	}
	return fmt.Errorf("unknown change kind %q", c.Kind)
}

// Subscriber adapts Apply to a store subscriber with a bounded context.
func (m *Mirror) Subscriber() store.Subscriber {
	return func(c store.Change) {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		if err := m.Apply(ctx, c); err != nil {
			m.log.Error("mirror change", "kind", c.Kind, "task_id", c.Task.ID, "revision", c.Revision, "err", err)
		}
	}
}
