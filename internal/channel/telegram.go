package channel

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-telegram/bot"

	"github.com/tallerapp/notifier/internal/config"
	"github.com/tallerapp/notifier/internal/domain"
)

// Telegram posts plain-text notifications to the workshop's fixed ops chat.
// Unlike the client-facing channels its recipient comes from configuration,
// not from the order, so it is ready whenever the bot token and chat id are
// set.
type Telegram struct {
	enabled bool
	chatID  int64
	b       *bot.Bot
	detail  string
}

func NewTelegram(cfg *config.Config) *Telegram {
	t := &Telegram{
		enabled: cfg.TelegramEnabled,
		chatID:  cfg.TelegramChatID,
	}

	if !cfg.TelegramEnabled {
		t.detail = "channel disabled"
		return t
	}
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		t.detail = "bot token or chat id not configured"
		return t
	}

	// Skip the getMe probe: construction must stay offline so a network
	// hiccup at startup cannot take the channel down permanently.
	b, err := bot.New(cfg.TelegramBotToken, bot.WithSkipGetMe())
	if err != nil {
		t.detail = fmt.Sprintf("telegram bot: %v", err)
		return t
	}
	t.b = b
	return t
}

func (t *Telegram) Name() domain.ChannelName { return domain.ChannelTelegram }
func (t *Telegram) Kind() Kind               { return KindChat }
func (t *Telegram) CanCarryArtifact() bool   { return false }

func (t *Telegram) Status() domain.ChannelStatus {
	return domain.ChannelStatus{
		Enabled: t.enabled,
		Ready:   t.b != nil,
		Detail:  t.detail,
	}
}

func (t *Telegram) Recipient(_ *domain.OrderView) (string, error) {
	if t.chatID == 0 {
		return "", domain.ErrNoContactInfo
	}
	return strconv.FormatInt(t.chatID, 10), nil
}

func (t *Telegram) Deliver(ctx context.Context, d Delivery) (string, error) {
	if t.b == nil {
		return "", domain.ErrNotReady
	}

	msg, err := t.b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   d.Content.Text,
	})
	if err != nil {
		return "", fmt.Errorf("telegram send to chat %d: %w", t.chatID, err)
	}
	return strconv.Itoa(msg.ID), nil
}

var _ Channel = (*Telegram)(nil)
