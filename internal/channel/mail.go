package channel

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"

	"github.com/tallerapp/notifier/internal/config"
	"github.com/tallerapp/notifier/internal/domain"
)

// Mail delivers notifications over SMTP with the order document attached.
type Mail struct {
	enabled  bool
	from     string
	fromName string
	client   *mail.Client
	detail   string
}

// NewMail builds the mail channel from configuration. Missing transport
// settings leave the channel not-ready; they never produce an error.
func NewMail(cfg *config.Config) *Mail {
	m := &Mail{
		enabled:  cfg.MailEnabled,
		from:     cfg.MailFrom,
		fromName: cfg.MailFromName,
	}

	if !cfg.MailEnabled {
		m.detail = "channel disabled"
		return m
	}
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" || cfg.SMTPPassword == "" {
		m.detail = "smtp transport not configured"
		return m
	}
	if cfg.MailFrom == "" {
		m.detail = "sender address not configured"
		return m
	}

	client, err := mail.NewClient(cfg.SMTPHost,
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTPUser),
		mail.WithPassword(cfg.SMTPPassword),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		m.detail = fmt.Sprintf("smtp client: %v", err)
		return m
	}
	m.client = client
	return m
}

func (m *Mail) Name() domain.ChannelName { return domain.ChannelMail }
func (m *Mail) Kind() Kind               { return KindMail }
func (m *Mail) CanCarryArtifact() bool   { return true }

func (m *Mail) Status() domain.ChannelStatus {
	return domain.ChannelStatus{
		Enabled: m.enabled,
		Ready:   m.client != nil,
		Detail:  m.detail,
	}
}

func (m *Mail) Recipient(v *domain.OrderView) (string, error) {
	addr := domain.OrEmpty(v.ClientEmail)
	if addr == "" {
		return "", domain.ErrNoContactInfo
	}
	return addr, nil
}

// Deliver sends the HTML message with the PDF attached. Transport errors
// are returned as-is so the outcome carries the transport's own text.
func (m *Mail) Deliver(ctx context.Context, d Delivery) (string, error) {
	if m.client == nil {
		return "", domain.ErrNotReady
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.from); err != nil {
		return "", fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(d.Recipient); err != nil {
		return "", fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(d.Content.Subject)
	msg.SetBodyString(mail.TypeTextHTML, d.Content.HTML)

	if d.Artifact != nil {
		if err := msg.AttachReader(d.ArtifactName, bytes.NewReader(d.Artifact)); err != nil {
			return "", fmt.Errorf("attach document: %w", err)
		}
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return uuid.New().String(), nil
}

var _ Channel = (*Mail)(nil)
