package orchestrator_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tallerapp/notifier/internal/channel"
	"github.com/tallerapp/notifier/internal/domain"
	"github.com/tallerapp/notifier/internal/orchestrator"
	"github.com/tallerapp/notifier/internal/repository"
	"github.com/tallerapp/notifier/internal/template"
)

func strPtr(s string) *string { return &s }

var ready = domain.ChannelStatus{Enabled: true, Ready: true}

// fakeRenderer stands in for the PDF renderer so tests can exercise the
// render-failure path deterministically.
type fakeRenderer struct {
	err error
}

func (f fakeRenderer) Render(_ *domain.OrderView) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-fake"), nil
}

func orderView(id int64) *domain.OrderView {
	return &domain.OrderView{
		OrderID:       id,
		ReceivedAt:    time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
		ClientName:    strPtr("Ana"),
		ClientSurname: strPtr("García"),
		ClientPhone:   strPtr("+34 600 111 222"),
		ClientEmail:   strPtr("ana@example.com"),
		VehiclePlate:  strPtr("1234-ABC"),
		VehicleMake:   strPtr("Seat"),
		VehicleModel:  strPtr("León"),
		ServiceName:   strPtr("Cambio de aceite"),
		StateName:     strPtr("Recibido"),
	}
}

func mailRecipient(v *domain.OrderView) (string, error) {
	if v.ClientEmail == nil || *v.ClientEmail == "" {
		return "", domain.ErrNoContactInfo
	}
	return *v.ClientEmail, nil
}

func chatRecipient(v *domain.OrderView) (string, error) {
	if v.ClientPhone == nil || *v.ClientPhone == "" {
		return "", domain.ErrNoContactInfo
	}
	return *v.ClientPhone, nil
}

func newOrchestrator(t *testing.T, repo repository.OrderViewRepository, r orchestrator.ArtifactRenderer, chans ...channel.Channel) *orchestrator.Orchestrator {
	t.Helper()
	tmpl, err := template.NewRenderer()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	return orchestrator.New(orchestrator.Params{
		Orders:          repo,
		Artifacts:       r,
		Templates:       tmpl,
		Channels:        chans,
		Company:         domain.CompanyProfile{Name: "Taller Norte", Phone: "+34 900 000 000"},
		DeliveryTimeout: 200 * time.Millisecond,
	})
}

func TestProcess_AllChannelsDelivered(t *testing.T) {
	repo := repository.NewMockOrderViewRepository()
	repo.Put(orderView(1))

	mail := &channel.Mock{ChannelName: domain.ChannelMail, ChannelKind: channel.KindMail, Carries: true, ChannelStat: ready, RecipientFn: mailRecipient}
	chat := &channel.Mock{ChannelName: domain.ChannelWhatsApp, ChannelKind: channel.KindChat, ChannelStat: ready, RecipientFn: chatRecipient}

	res := newOrchestrator(t, repo, fakeRenderer{}, mail, chat).Process(context.Background(), 1)

	if res.Delivered != 2 || res.Failed != 0 || res.Skipped != 0 {
		t.Fatalf("expected 2 delivered, got %+v", res)
	}

	mailDeliveries := mail.Delivered()
	if len(mailDeliveries) != 1 {
		t.Fatalf("expected 1 mail delivery, got %d", len(mailDeliveries))
	}
	d := mailDeliveries[0]
	if d.Recipient != "ana@example.com" {
		t.Fatalf("unexpected mail recipient %q", d.Recipient)
	}
	if d.Content.Subject == "" || d.Content.HTML == "" {
		t.Fatal("mail content must carry subject and HTML body")
	}
	if d.Artifact == nil || d.ArtifactName != "orden_1.pdf" {
		t.Fatalf("mail must carry the artifact, got name=%q", d.ArtifactName)
	}

	chatDeliveries := chat.Delivered()
	if len(chatDeliveries) != 1 {
		t.Fatalf("expected 1 chat delivery, got %d", len(chatDeliveries))
	}
	if chatDeliveries[0].Content.Text == "" {
		t.Fatal("chat content must carry plain text")
	}
	if chatDeliveries[0].Artifact != nil {
		t.Fatal("artifact must not be offered to a text-only channel")
	}
}

func TestProcess_OrderNotFound(t *testing.T) {
	repo := repository.NewMockOrderViewRepository()
	ch := &channel.Mock{ChannelName: domain.ChannelMail, ChannelKind: channel.KindMail, ChannelStat: ready}

	res := newOrchestrator(t, repo, fakeRenderer{}, ch).Process(context.Background(), 99)

	if !res.FetchFailed() {
		t.Fatalf("expected a fetch failure result, got %+v", res)
	}
	if len(res.Outcomes) != 1 || res.Outcomes[0].Kind != domain.OutcomeFetchFailed {
		t.Fatalf("expected a single fetch_failed outcome, got %+v", res.Outcomes)
	}
	if len(ch.Delivered()) != 0 {
		t.Fatal("no channel may be attempted when the order cannot be fetched")
	}
}

func TestProcess_DisabledChannelNeverInvoked(t *testing.T) {
	repo := repository.NewMockOrderViewRepository()
	repo.Put(orderView(3))

	disabled := &channel.Mock{
		ChannelName: domain.ChannelMail,
		ChannelKind: channel.KindMail,
		ChannelStat: domain.ChannelStatus{Enabled: false, Detail: "channel disabled"},
	}

	res := newOrchestrator(t, repo, fakeRenderer{}, disabled).Process(context.Background(), 3)

	if res.Skipped != 1 {
		t.Fatalf("expected 1 skipped, got %+v", res)
	}
	if res.Outcomes[0].Kind != domain.OutcomeNotReady {
		t.Fatalf("expected channel_not_ready, got %s", res.Outcomes[0].Kind)
	}
	if len(disabled.Delivered()) != 0 {
		t.Fatal("a disabled channel's Deliver must never be invoked")
	}
}

func TestProcess_FailureDoesNotBlockSibling(t *testing.T) {
	repo := repository.NewMockOrderViewRepository()
	repo.Put(orderView(4))

	failing := &channel.Mock{
		ChannelName: domain.ChannelMail, ChannelKind: channel.KindMail, ChannelStat: ready,
		RecipientFn: mailRecipient,
		DeliverFn: func(context.Context, channel.Delivery) (string, error) {
			return "", errors.New("smtp: connection refused")
		},
	}
	succeeding := &channel.Mock{ChannelName: domain.ChannelWhatsApp, ChannelKind: channel.KindChat, ChannelStat: ready, RecipientFn: chatRecipient}

	res := newOrchestrator(t, repo, fakeRenderer{}, failing, succeeding).Process(context.Background(), 4)

	if res.Outcomes[0].Kind != domain.OutcomeDeliveryFailed {
		t.Fatalf("expected delivery_failed for mail, got %s", res.Outcomes[0].Kind)
	}
	if !strings.Contains(res.Outcomes[0].Error, "connection refused") {
		t.Fatalf("failure outcome must carry the transport error, got %q", res.Outcomes[0].Error)
	}
	if res.Outcomes[1].Kind != domain.OutcomeDelivered {
		t.Fatalf("sibling channel must still deliver, got %s", res.Outcomes[1].Kind)
	}
}

func TestProcess_SlowChannelTimesOut(t *testing.T) {
	repo := repository.NewMockOrderViewRepository()
	repo.Put(orderView(6))

	slow := &channel.Mock{
		ChannelName: domain.ChannelWhatsApp, ChannelKind: channel.KindChat, ChannelStat: ready,
		RecipientFn: chatRecipient,
		DeliverFn: func(ctx context.Context, _ channel.Delivery) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}

	res := newOrchestrator(t, repo, fakeRenderer{}, slow).Process(context.Background(), 6)

	if res.Outcomes[0].Kind != domain.OutcomeDeliveryFailed {
		t.Fatalf("expected delivery_failed, got %s", res.Outcomes[0].Kind)
	}
	if !strings.Contains(res.Outcomes[0].Error, "timed out") {
		t.Fatalf("timeout must be named in the outcome, got %q", res.Outcomes[0].Error)
	}
}

func TestProcess_PanickingChannelIsContained(t *testing.T) {
	repo := repository.NewMockOrderViewRepository()
	repo.Put(orderView(8))

	panicking := &channel.Mock{
		ChannelName: domain.ChannelMail, ChannelKind: channel.KindMail, ChannelStat: ready,
		RecipientFn: mailRecipient,
		DeliverFn: func(context.Context, channel.Delivery) (string, error) {
			panic("boom")
		},
	}
	sibling := &channel.Mock{ChannelName: domain.ChannelWhatsApp, ChannelKind: channel.KindChat, ChannelStat: ready, RecipientFn: chatRecipient}

	res := newOrchestrator(t, repo, fakeRenderer{}, panicking, sibling).Process(context.Background(), 8)

	if res.Outcomes[0].Kind != domain.OutcomeDeliveryFailed || !strings.Contains(res.Outcomes[0].Error, "panic") {
		t.Fatalf("panic must become a failure outcome, got %+v", res.Outcomes[0])
	}
	if res.Outcomes[1].Kind != domain.OutcomeDelivered {
		t.Fatalf("sibling must be unaffected by a panic, got %s", res.Outcomes[1].Kind)
	}
}

// Order 42: client has a phone but no email. Mail skips with a no-contact
// reason distinct from a transport failure; chat succeeds.
func TestProcess_NoEmailSkipsMailOnly(t *testing.T) {
	repo := repository.NewMockOrderViewRepository()
	v := orderView(42)
	v.ClientEmail = nil
	repo.Put(v)

	mail := &channel.Mock{ChannelName: domain.ChannelMail, ChannelKind: channel.KindMail, Carries: true, ChannelStat: ready, RecipientFn: mailRecipient}
	chat := &channel.Mock{ChannelName: domain.ChannelWhatsApp, ChannelKind: channel.KindChat, ChannelStat: ready, RecipientFn: chatRecipient}

	res := newOrchestrator(t, repo, fakeRenderer{}, mail, chat).Process(context.Background(), 42)

	if res.Outcomes[0].Kind != domain.OutcomeNoContactInfo {
		t.Fatalf("expected no_contact_info for mail, got %s", res.Outcomes[0].Kind)
	}
	if res.Outcomes[1].Kind != domain.OutcomeDelivered {
		t.Fatalf("expected chat delivery, got %s", res.Outcomes[1].Kind)
	}
	if len(mail.Delivered()) != 0 {
		t.Fatal("mail Deliver must not run without a recipient")
	}
}

// Order 7: mail enabled but misconfigured. The outcome is a not-ready skip
// and the status query reports enabled=true ready=false.
func TestProcess_MisconfiguredChannelReportsNotReady(t *testing.T) {
	repo := repository.NewMockOrderViewRepository()
	repo.Put(orderView(7))

	mail := &channel.Mock{
		ChannelName: domain.ChannelMail,
		ChannelKind: channel.KindMail,
		ChannelStat: domain.ChannelStatus{Enabled: true, Ready: false, Detail: "smtp transport not configured"},
	}

	orch := newOrchestrator(t, repo, fakeRenderer{}, mail)
	res := orch.Process(context.Background(), 7)

	if res.Outcomes[0].Kind != domain.OutcomeNotReady {
		t.Fatalf("expected channel_not_ready, got %s", res.Outcomes[0].Kind)
	}

	status := orch.ServicesStatus()["mail"]
	if !status.Enabled || status.Ready {
		t.Fatalf("expected enabled=true ready=false, got %+v", status)
	}
}

func TestProcess_RenderFailureSparesTextChannels(t *testing.T) {
	repo := repository.NewMockOrderViewRepository()
	repo.Put(orderView(9))

	mail := &channel.Mock{ChannelName: domain.ChannelMail, ChannelKind: channel.KindMail, Carries: true, ChannelStat: ready, RecipientFn: mailRecipient}
	chat := &channel.Mock{ChannelName: domain.ChannelWhatsApp, ChannelKind: channel.KindChat, ChannelStat: ready, RecipientFn: chatRecipient}

	res := newOrchestrator(t, repo, fakeRenderer{err: errors.New("corrupt embedded font")}, mail, chat).
		Process(context.Background(), 9)

	if res.Outcomes[0].Channel != domain.ChannelArtifact || res.Outcomes[0].Kind != domain.OutcomeRenderFailed {
		t.Fatalf("expected leading artifact render_failed outcome, got %+v", res.Outcomes[0])
	}

	byChannel := map[domain.ChannelName]domain.ChannelOutcome{}
	for _, o := range res.Outcomes {
		byChannel[o.Channel] = o
	}
	if byChannel[domain.ChannelMail].Kind != domain.OutcomeRenderFailed {
		t.Fatalf("artifact-carrying channel must record render failure, got %s", byChannel[domain.ChannelMail].Kind)
	}
	if byChannel[domain.ChannelWhatsApp].Kind != domain.OutcomeDelivered {
		t.Fatalf("text channel must still deliver, got %s", byChannel[domain.ChannelWhatsApp].Kind)
	}
}

func TestProcessStateChange_ContentCarriesBothStates(t *testing.T) {
	repo := repository.NewMockOrderViewRepository()
	repo.Put(orderView(5))

	mail := &channel.Mock{ChannelName: domain.ChannelMail, ChannelKind: channel.KindMail, Carries: true, ChannelStat: ready, RecipientFn: mailRecipient}

	res := newOrchestrator(t, repo, fakeRenderer{}, mail).
		ProcessStateChange(context.Background(), 5, "Received", "Completed")

	if res.Delivered != 1 {
		t.Fatalf("expected delivery, got %+v", res)
	}
	d := mail.Delivered()[0]
	if !strings.Contains(d.Content.HTML, "Received") || !strings.Contains(d.Content.HTML, "Completed") {
		t.Fatalf("state-change body must carry both state labels, got %q", d.Content.HTML)
	}
	if !strings.Contains(d.Content.Subject, "Received") || !strings.Contains(d.Content.Subject, "Completed") {
		t.Fatalf("state-change subject must carry both state labels, got %q", d.Content.Subject)
	}
	if res.Trigger != domain.TriggerStateChanged {
		t.Fatalf("unexpected trigger %s", res.Trigger)
	}
}

func TestProcess_ResultIsRecorded(t *testing.T) {
	repo := repository.NewMockOrderViewRepository()
	repo.Put(orderView(11))
	logRepo := repository.NewMockDeliveryLogRepository()

	chat := &channel.Mock{ChannelName: domain.ChannelWhatsApp, ChannelKind: channel.KindChat, ChannelStat: ready, RecipientFn: chatRecipient}
	tmpl, err := template.NewRenderer()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	orch := orchestrator.New(orchestrator.Params{
		Orders:      repo,
		DeliveryLog: logRepo,
		Artifacts:   fakeRenderer{},
		Templates:   tmpl,
		Channels:    []channel.Channel{chat},
	})
	orch.Process(context.Background(), 11)

	if len(logRepo.Results) != 1 || logRepo.Results[0].OrderID != 11 {
		t.Fatalf("expected one recorded result for order 11, got %+v", logRepo.Results)
	}
}
