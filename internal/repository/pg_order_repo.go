package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallerapp/notifier/internal/domain"
)

type pgOrderViewRepository struct {
	pool *pgxpool.Pool
}

// NewPgOrderViewRepository returns an OrderViewRepository backed by PostgreSQL.
func NewPgOrderViewRepository(pool *pgxpool.Pool) OrderViewRepository {
	return &pgOrderViewRepository{pool: pool}
}

// GetOrderView fetches one order joined with its client, vehicle, service
// type and current state. Left joins keep the query tolerant: any related
// row may be absent and the corresponding fields come back NULL.
func (r *pgOrderViewRepository) GetOrderView(ctx context.Context, orderID int64) (*domain.OrderView, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT o.id, o.received_at, o.client_comment, o.observations,
		       c.name, c.surname, c.tax_id, c.phone, c.email,
		       v.plate, v.make, v.model, v.year, v.color,
		       st.name, st.description,
		       s.name
		FROM service_orders o
		LEFT JOIN clients c        ON c.id  = o.client_id
		LEFT JOIN vehicles v       ON v.id  = o.vehicle_id
		LEFT JOIN service_types st ON st.id = o.service_type_id
		LEFT JOIN order_states s   ON s.id  = o.state_id
		WHERE o.id = $1`, orderID)

	var v domain.OrderView
	err := row.Scan(
		&v.OrderID, &v.ReceivedAt, &v.ClientComment, &v.Observations,
		&v.ClientName, &v.ClientSurname, &v.ClientTaxID, &v.ClientPhone, &v.ClientEmail,
		&v.VehiclePlate, &v.VehicleMake, &v.VehicleModel, &v.VehicleYear, &v.VehicleColor,
		&v.ServiceName, &v.ServiceDescription,
		&v.StateName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch order view %d: %w", orderID, err)
	}
	return &v, nil
}
