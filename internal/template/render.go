// Package template produces channel-shaped message content from a resolved
// TemplateContext. Rendering is a pure function of its input: the same
// context always yields byte-identical output.
package template

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/tallerapp/notifier/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer holds the parsed content templates. HTML bodies go through
// html/template on purpose: client-supplied free text (comments,
// observations) is contextually escaped, so markup injection cannot reach
// a mail client.
type Renderer struct {
	mail *htmltemplate.Template
	chat *texttemplate.Template
}

func NewRenderer() (*Renderer, error) {
	mail, err := htmltemplate.ParseFS(templateFS, "templates/mail_*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	chat, err := texttemplate.ParseFS(templateFS, "templates/chat_*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse chat templates: %w", err)
	}
	return &Renderer{mail: mail, chat: chat}, nil
}

// MailSubject builds the subject line for a mail notification.
func (r *Renderer) MailSubject(trigger domain.Trigger, tc domain.TemplateContext) string {
	if trigger == domain.TriggerStateChanged {
		return fmt.Sprintf("Orden #%d actualizada: de %s a %s", tc.OrderID, tc.PreviousState, tc.NewState)
	}
	return fmt.Sprintf("Orden de servicio #%d - %s", tc.OrderID, tc.CompanyName)
}

// MailBody renders the HTML body for a mail notification.
func (r *Renderer) MailBody(trigger domain.Trigger, tc domain.TemplateContext) (string, error) {
	name := "mail_created.html.tmpl"
	if trigger == domain.TriggerStateChanged {
		name = "mail_state_change.html.tmpl"
	}
	var buf bytes.Buffer
	if err := r.mail.ExecuteTemplate(&buf, name, tc); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// ChatText renders the plain-text content for a chat notification.
func (r *Renderer) ChatText(trigger domain.Trigger, tc domain.TemplateContext) (string, error) {
	name := "chat_created.txt.tmpl"
	if trigger == domain.TriggerStateChanged {
		name = "chat_state_change.txt.tmpl"
	}
	var buf bytes.Buffer
	if err := r.chat.ExecuteTemplate(&buf, name, tc); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
