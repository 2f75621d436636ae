// Package channel holds the delivery channel implementations. Each channel
// initializes from configuration at construction time and reports readiness
// instead of failing: a misconfigured channel is a skipped outcome for the
// orchestrator, never a startup crash.
package channel

import (
	"context"
	"strings"

	"github.com/tallerapp/notifier/internal/domain"
)

// Kind says which content shape a channel consumes.
type Kind string

const (
	KindMail Kind = "mail" // subject + HTML body
	KindChat Kind = "chat" // plain text
)

// Content is the channel-shaped rendered message. Mail channels read
// Subject and HTML; chat channels read Text.
type Content struct {
	Subject string
	HTML    string
	Text    string
}

// Delivery is one send attempt. Artifact is nil when the document could not
// be rendered or the channel cannot carry one.
type Delivery struct {
	Recipient    string
	Content      Content
	Artifact     []byte
	ArtifactName string
}

// Channel is the closed capability set every delivery mechanism implements.
//
// Construction never fails: configuration problems surface through Status.
// Deliver must respect ctx cancellation and return an error rather than
// panic; the orchestrator turns it into a ChannelOutcome.
type Channel interface {
	Name() domain.ChannelName
	Kind() Kind
	Status() domain.ChannelStatus

	// CanCarryArtifact reports whether Deliver can transport the binary
	// document. Text-only channels return false and are still attempted
	// when rendering fails.
	CanCarryArtifact() bool

	// Recipient resolves the channel's addressee from the order view.
	// Returns domain.ErrNoContactInfo when the client lacks the needed field.
	Recipient(v *domain.OrderView) (string, error)

	Deliver(ctx context.Context, d Delivery) (receiptID string, err error)
}

// NormalizePhone reduces a stored phone number to the +<digits> form chat
// gateways address by. Numbers without a country prefix get defaultCC.
// Returns "" when nothing usable remains.
func NormalizePhone(raw, defaultCC string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}

	switch {
	case strings.HasPrefix(digits, "00"):
		return "+" + digits[2:]
	case strings.HasPrefix(strings.TrimSpace(raw), "+"):
		return "+" + digits
	default:
		return defaultCC + digits
	}
}
