package channel

import (
	"context"
	"sync"

	"github.com/tallerapp/notifier/internal/domain"
)

// Mock is a hand-written in-memory Channel for unit tests. Behaviour is
// overridden per test through the function fields; deliveries are recorded
// for assertions.
type Mock struct {
	ChannelName domain.ChannelName
	ChannelKind Kind
	Carries     bool
	ChannelStat domain.ChannelStatus

	RecipientFn func(v *domain.OrderView) (string, error)
	DeliverFn   func(ctx context.Context, d Delivery) (string, error)

	mu         sync.Mutex
	Deliveries []Delivery
}

func (m *Mock) Name() domain.ChannelName     { return m.ChannelName }
func (m *Mock) Kind() Kind                   { return m.ChannelKind }
func (m *Mock) CanCarryArtifact() bool       { return m.Carries }
func (m *Mock) Status() domain.ChannelStatus { return m.ChannelStat }

func (m *Mock) Recipient(v *domain.OrderView) (string, error) {
	if m.RecipientFn != nil {
		return m.RecipientFn(v)
	}
	return "recipient", nil
}

func (m *Mock) Deliver(ctx context.Context, d Delivery) (string, error) {
	m.mu.Lock()
	m.Deliveries = append(m.Deliveries, d)
	m.mu.Unlock()
	if m.DeliverFn != nil {
		return m.DeliverFn(ctx, d)
	}
	return "receipt-1", nil
}

// Delivered returns a copy of the recorded deliveries.
func (m *Mock) Delivered() []Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Delivery, len(m.Deliveries))
	copy(out, m.Deliveries)
	return out
}

var _ Channel = (*Mock)(nil)
