package service

import (
	"context"

	"github.com/iliyamo/pv-site-manager/internal/model"
	"github.com/iliyamo/pv-site-manager/internal/queue"
)

// The store interfaces below are satisfied by the repository package.

type UserStore interface {
	Create(ctx context.Context, username, passwordHash string, role model.Role) (uint64, error)
	GetByUsername(ctx context.Context, username string) (model.Identity, error)
}

type LogStore interface {
	Create(ctx context.Context, l model.DailyLog) (uint64, error)
	ListByUser(ctx context.Context, userID uint64, skip, limit int) ([]model.DailyLogSummary, error)
	GetForUser(ctx context.Context, id, userID uint64) (model.DailyLog, error)
	Exists(ctx context.Context, id uint64) (bool, error)
}

type MaterialStore interface {
	Create(ctx context.Context, m model.Material) (uint64, error)
	ExistsByDDT(ctx context.Context, ddt string) (bool, error)
	Exists(ctx context.Context, id uint64) (bool, error)
	Get(ctx context.Context, id uint64) (model.Material, error)
	List(ctx context.Context, skip, limit int) ([]model.Material, error)
	Update(ctx context.Context, m model.Material) error
}

type ProgressStore interface {
	Create(ctx context.Context, k model.ProgressKPI) (uint64, error)
	Get(ctx context.Context, id uint64) (model.ProgressKPI, error)
	Update(ctx context.Context, k model.ProgressKPI) error
	List(ctx context.Context, skip, limit int) ([]model.ProgressKPI, error)
	ListAll(ctx context.Context) ([]model.ProgressKPI, error)
}

type DocumentStore interface {
	Create(ctx context.Context, d model.Document) (uint64, error)
	Get(ctx context.Context, id uint64) (model.Document, error)
	List(ctx context.Context, skip, limit int) ([]model.Document, error)
	Delete(ctx context.Context, id uint64) error
}

// EventPublisher delivers site events. Failures never fail the operation
// that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}
