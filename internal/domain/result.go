package domain

import (
	"fmt"
	"strings"
	"time"
)

// ChannelName identifies one delivery channel.
type ChannelName string

const (
	ChannelMail     ChannelName = "mail"
	ChannelWhatsApp ChannelName = "whatsapp"
	ChannelTelegram ChannelName = "telegram"

	// ChannelArtifact is the pseudo-channel under which a fetch or render
	// fault is recorded, so a degenerate result is still inspectable.
	ChannelArtifact ChannelName = "artifact"
)

// Trigger says which pipeline entry point produced a result.
type Trigger string

const (
	TriggerCreated      Trigger = "order_created"
	TriggerStateChanged Trigger = "state_changed"
)

// OutcomeKind classifies what happened to one delivery attempt.
// Skips (not ready, no contact info) are deliberately distinct from
// failures so a misconfigured channel is never mistaken for a transport
// error in logs or dashboards.
type OutcomeKind string

const (
	OutcomeDelivered      OutcomeKind = "delivered"
	OutcomeFetchFailed    OutcomeKind = "fetch_failed"
	OutcomeRenderFailed   OutcomeKind = "render_failed"
	OutcomeNotReady       OutcomeKind = "channel_not_ready"
	OutcomeNoContactInfo  OutcomeKind = "no_contact_info"
	OutcomeDeliveryFailed OutcomeKind = "delivery_failed"
)

// ChannelOutcome is the always-populated record of one channel's attempt.
// It replaces raised faults at the channel boundary.
type ChannelOutcome struct {
	Channel   ChannelName `json:"channel"`
	Kind      OutcomeKind `json:"kind"`
	Error     string      `json:"error,omitempty"`
	ReceiptID string      `json:"receipt_id,omitempty"`
}

func (o ChannelOutcome) Delivered() bool {
	return o.Kind == OutcomeDelivered
}

// Skipped reports whether the channel was never attempted (disabled,
// unconfigured or missing a recipient), as opposed to attempted and failed.
func (o ChannelOutcome) Skipped() bool {
	return o.Kind == OutcomeNotReady || o.Kind == OutcomeNoContactInfo
}

// NotificationResult aggregates the per-channel outcomes of one pipeline run.
// Created fresh per call, returned to the trigger, optionally logged; the
// core never persists it itself.
type NotificationResult struct {
	OrderID   int64            `json:"order_id"`
	Trigger   Trigger          `json:"trigger"`
	Timestamp time.Time        `json:"timestamp"`
	Outcomes  []ChannelOutcome `json:"outcomes"`
	Delivered int              `json:"delivered"`
	Failed    int              `json:"failed"`
	Skipped   int              `json:"skipped"`
}

// NewResult builds a result and derives the summary counts from outcomes.
func NewResult(orderID int64, trigger Trigger, outcomes []ChannelOutcome) NotificationResult {
	r := NotificationResult{
		OrderID:   orderID,
		Trigger:   trigger,
		Timestamp: time.Now().UTC(),
		Outcomes:  outcomes,
	}
	for _, o := range outcomes {
		switch {
		case o.Delivered():
			r.Delivered++
		case o.Skipped():
			r.Skipped++
		default:
			r.Failed++
		}
	}
	return r
}

// FetchFailed reports whether the run died before any channel was attempted.
func (r NotificationResult) FetchFailed() bool {
	return len(r.Outcomes) == 1 && r.Outcomes[0].Kind == OutcomeFetchFailed
}

// Summary renders a one-line human-readable account of the run, e.g.
// "order 42: mail=no_contact_info whatsapp=delivered telegram=channel_not_ready".
func (r NotificationResult) Summary() string {
	parts := make([]string, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		parts = append(parts, fmt.Sprintf("%s=%s", o.Channel, o.Kind))
	}
	return fmt.Sprintf("order %d: %s", r.OrderID, strings.Join(parts, " "))
}

// ChannelStatus is the health view of one channel, exposed without
// performing any delivery.
type ChannelStatus struct {
	Enabled bool   `json:"enabled"`
	Ready   bool   `json:"ready"`
	Detail  string `json:"detail,omitempty"`
}

// DeliveryLogEntry is one persisted NotificationResult in the history
// listing. Persistence is best-effort and outside the core contract.
type DeliveryLogEntry struct {
	ID        string           `json:"id"`
	OrderID   int64            `json:"order_id"`
	Trigger   Trigger          `json:"trigger"`
	Delivered int              `json:"delivered"`
	Failed    int              `json:"failed"`
	Skipped   int              `json:"skipped"`
	Outcomes  []ChannelOutcome `json:"outcomes"`
	CreatedAt time.Time        `json:"created_at"`
}
