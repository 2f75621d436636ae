package repository

import (
	"context"
	"sync"

	"github.com/tallerapp/notifier/internal/domain"
)

// MockOrderViewRepository is a hand-written, in-memory implementation of
// OrderViewRepository used in unit tests. No mock-generation library needed.
type MockOrderViewRepository struct {
	mu     sync.RWMutex
	orders map[int64]*domain.OrderView

	// Optional error override — set in tests to simulate a data-access fault.
	GetErr error
}

func NewMockOrderViewRepository() *MockOrderViewRepository {
	return &MockOrderViewRepository{orders: make(map[int64]*domain.OrderView)}
}

func (m *MockOrderViewRepository) Put(v *domain.OrderView) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *v
	m.orders[v.OrderID] = &clone
}

func (m *MockOrderViewRepository) GetOrderView(_ context.Context, orderID int64) (*domain.OrderView, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *v
	return &clone, nil
}

// MockDeliveryLogRepository records results in memory for assertions.
type MockDeliveryLogRepository struct {
	mu      sync.Mutex
	Results []domain.NotificationResult

	RecordErr error
}

func NewMockDeliveryLogRepository() *MockDeliveryLogRepository {
	return &MockDeliveryLogRepository{}
}

func (m *MockDeliveryLogRepository) Record(_ context.Context, res domain.NotificationResult) error {
	if m.RecordErr != nil {
		return m.RecordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Results = append(m.Results, res)
	return nil
}

func (m *MockDeliveryLogRepository) Recent(_ context.Context, limit int) ([]domain.DeliveryLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]domain.DeliveryLogEntry, 0, len(m.Results))
	for _, r := range m.Results {
		entries = append(entries, domain.DeliveryLogEntry{
			OrderID:   r.OrderID,
			Trigger:   r.Trigger,
			Delivered: r.Delivered,
			Failed:    r.Failed,
			Skipped:   r.Skipped,
			Outcomes:  r.Outcomes,
			CreatedAt: r.Timestamp,
		})
		if len(entries) == limit {
			break
		}
	}
	return entries, nil
}
