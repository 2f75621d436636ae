// Package event consumes committed order events from Kafka and drives the
// notification pipeline. This is the production Order-Change Trigger path:
// events are published after the order mutation commits, so the pipeline's
// fresh read always sees the new state.
package event

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/tallerapp/notifier/internal/orchestrator"
)

const (
	TypeOrderCreated      = "order.created"
	TypeOrderStateChanged = "order.state_changed"
)

// OrderEvent is the JSON payload published by the shop-management backend.
type OrderEvent struct {
	Type          string `json:"type"`
	OrderID       int64  `json:"order_id"`
	PreviousState string `json:"previous_state,omitempty"`
	NewState      string `json:"new_state,omitempty"`
}

// Consumer reads order events and runs the pipeline synchronously per
// message. A notification failure is a reported result, not a consumer
// error: the offset is committed either way (no redelivery loop).
type Consumer struct {
	reader *kafka.Reader
	orch   *orchestrator.Orchestrator
	logger *zap.Logger
}

func NewConsumer(broker, topic, groupID string, orch *orchestrator.Orchestrator, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{broker},
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
	return &Consumer{reader: reader, orch: orch, logger: logger}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("order event consumer started")
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("order event consumer stopping")
				return
			}
			c.logger.Error("read order event", zap.Error(err))
			continue
		}
		c.handle(ctx, msg.Value)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func (c *Consumer) handle(ctx context.Context, payload []byte) {
	var ev OrderEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		c.logger.Error("malformed order event", zap.Error(err), zap.ByteString("payload", payload))
		return
	}

	switch ev.Type {
	case TypeOrderCreated:
		c.orch.Process(ctx, ev.OrderID)
	case TypeOrderStateChanged:
		c.orch.ProcessStateChange(ctx, ev.OrderID, ev.PreviousState, ev.NewState)
	default:
		c.logger.Warn("ignoring unknown event type", zap.String("type", ev.Type))
	}
}
