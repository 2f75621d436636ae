package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tallerapp/notifier/internal/config"
	"github.com/tallerapp/notifier/internal/domain"
)

// whatsAppRequest is the JSON body posted to the message gateway.
type whatsAppRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// whatsAppResponse maps the gateway's accepted response body.
type whatsAppResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

// WhatsApp delivers plain-text notifications to the client's phone through
// an HTTP message gateway. The gateway URL is injected from config so tests
// can point at a local server.
type WhatsApp struct {
	enabled     bool
	gatewayURL  string
	token       string
	countryCode string
	httpClient  *http.Client
	detail      string
}

func NewWhatsApp(cfg *config.Config) *WhatsApp {
	w := &WhatsApp{
		enabled:     cfg.WhatsAppEnabled,
		gatewayURL:  cfg.WhatsAppGatewayURL,
		token:       cfg.WhatsAppToken,
		countryCode: cfg.DefaultCountryCode,
	}

	if !cfg.WhatsAppEnabled {
		w.detail = "channel disabled"
		return w
	}
	if cfg.WhatsAppGatewayURL == "" {
		w.detail = "gateway url not configured"
		return w
	}

	w.httpClient = &http.Client{Timeout: cfg.DeliveryTimeout}
	return w
}

func (w *WhatsApp) Name() domain.ChannelName { return domain.ChannelWhatsApp }
func (w *WhatsApp) Kind() Kind               { return KindChat }

// CanCarryArtifact is false: the gateway accepts text only, so the document
// is never offered to this channel.
func (w *WhatsApp) CanCarryArtifact() bool { return false }

func (w *WhatsApp) Status() domain.ChannelStatus {
	return domain.ChannelStatus{
		Enabled: w.enabled,
		Ready:   w.httpClient != nil,
		Detail:  w.detail,
	}
}

func (w *WhatsApp) Recipient(v *domain.OrderView) (string, error) {
	phone := NormalizePhone(domain.OrEmpty(v.ClientPhone), w.countryCode)
	if phone == "" {
		return "", domain.ErrNoContactInfo
	}
	return phone, nil
}

func (w *WhatsApp) Deliver(ctx context.Context, d Delivery) (string, error) {
	if w.httpClient == nil {
		return "", domain.ErrNotReady
	}

	body, err := json.Marshal(whatsAppRequest{To: d.Recipient, Message: d.Content.Text})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	start := time.Now()
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway request after %s: %w", time.Since(start).Round(time.Millisecond), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("unexpected gateway status: %d", resp.StatusCode)
	}

	var ack whatsAppResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return "", fmt.Errorf("decode gateway response: %w", err)
	}
	return ack.MessageID, nil
}

var _ Channel = (*WhatsApp)(nil)
