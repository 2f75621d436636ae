package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallerapp/notifier/internal/domain"
)

type pgDeliveryLogRepository struct {
	pool *pgxpool.Pool
}

// NewPgDeliveryLogRepository returns a DeliveryLogRepository backed by PostgreSQL.
func NewPgDeliveryLogRepository(pool *pgxpool.Pool) DeliveryLogRepository {
	return &pgDeliveryLogRepository{pool: pool}
}

func (r *pgDeliveryLogRepository) Record(ctx context.Context, res domain.NotificationResult) error {
	outcomes, err := json.Marshal(res.Outcomes)
	if err != nil {
		return fmt.Errorf("marshal outcomes: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO delivery_log (id, order_id, trigger_kind, delivered, failed, skipped, outcomes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		uuid.New().String(), res.OrderID, res.Trigger,
		res.Delivered, res.Failed, res.Skipped, outcomes, res.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert delivery log: %w", err)
	}
	return nil
}

func (r *pgDeliveryLogRepository) Recent(ctx context.Context, limit int) ([]domain.DeliveryLogEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, trigger_kind, delivered, failed, skipped, outcomes, created_at
		FROM delivery_log
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list delivery log: %w", err)
	}
	defer rows.Close()

	var entries []domain.DeliveryLogEntry
	for rows.Next() {
		var e domain.DeliveryLogEntry
		var outcomes []byte
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Trigger, &e.Delivered, &e.Failed, &e.Skipped, &outcomes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan delivery log: %w", err)
		}
		if err := json.Unmarshal(outcomes, &e.Outcomes); err != nil {
			return nil, fmt.Errorf("decode outcomes: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
