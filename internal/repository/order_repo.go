package repository

import (
	"context"

	"github.com/tallerapp/notifier/internal/domain"
)

// OrderViewRepository reads the denormalized order projection the pipeline
// works on. The pgx implementation is in pg_order_repo.go; tests use a
// hand-written mock (mock_order_repo.go).
//
// GetOrderView must be called fresh for every notification attempt — the
// view has to reflect the state transition that triggered it, so no caching
// layer sits in front of it.
type OrderViewRepository interface {
	GetOrderView(ctx context.Context, orderID int64) (*domain.OrderView, error)
}

// DeliveryLogRepository persists notification results for the history
// listing. Writes are best-effort: the pipeline never fails on a log error.
type DeliveryLogRepository interface {
	Record(ctx context.Context, res domain.NotificationResult) error
	Recent(ctx context.Context, limit int) ([]domain.DeliveryLogEntry, error)
}
