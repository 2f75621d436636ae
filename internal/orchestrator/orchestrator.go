// Package orchestrator coordinates one notification run: fetch the order
// view, render the document once, fan the delivery out to every configured
// channel, and fold the per-channel outcomes into a single result. No fault
// of any step escapes Process as an error — everything becomes an outcome.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tallerapp/notifier/internal/channel"
	"github.com/tallerapp/notifier/internal/domain"
	"github.com/tallerapp/notifier/internal/ratelimiter"
	"github.com/tallerapp/notifier/internal/repository"
	"github.com/tallerapp/notifier/internal/template"
)

// ArtifactRenderer produces the order document. render.PDF is the production
// implementation; tests substitute their own to exercise render faults.
type ArtifactRenderer interface {
	Render(v *domain.OrderView) ([]byte, error)
}

// Hooks carries the metric callbacks injected by main. Either may be nil.
type Hooks struct {
	OnOutcome func(o domain.ChannelOutcome, latency time.Duration)
	OnRender  func(d time.Duration)
}

// Params bundles the orchestrator's dependencies. DeliveryLog and Limiter
// are optional; everything else is required.
type Params struct {
	Orders      repository.OrderViewRepository
	DeliveryLog repository.DeliveryLogRepository
	Artifacts   ArtifactRenderer
	Templates   *template.Renderer
	Channels    []channel.Channel
	Limiter     *ratelimiter.ChannelLimiters

	Company         domain.CompanyProfile
	Location        *time.Location
	DeliveryTimeout time.Duration
	Logger          *zap.Logger
	Hooks           Hooks
}

// Orchestrator is constructed once at process start and shared for the
// process lifetime. It holds no per-request mutable state: every run works
// on values scoped to that single call.
type Orchestrator struct {
	orders    repository.OrderViewRepository
	log       repository.DeliveryLogRepository
	artifacts ArtifactRenderer
	tmpl      *template.Renderer
	channels  []channel.Channel
	limiter   *ratelimiter.ChannelLimiters

	company domain.CompanyProfile
	loc     *time.Location
	timeout time.Duration
	logger  *zap.Logger
	hooks   Hooks
}

func New(p Params) *Orchestrator {
	if p.DeliveryTimeout <= 0 {
		p.DeliveryTimeout = 30 * time.Second
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Location == nil {
		p.Location = time.UTC
	}
	if p.Hooks.OnOutcome == nil {
		p.Hooks.OnOutcome = func(domain.ChannelOutcome, time.Duration) {}
	}
	if p.Hooks.OnRender == nil {
		p.Hooks.OnRender = func(time.Duration) {}
	}
	return &Orchestrator{
		orders:    p.Orders,
		log:       p.DeliveryLog,
		artifacts: p.Artifacts,
		tmpl:      p.Templates,
		channels:  p.Channels,
		limiter:   p.Limiter,
		company:   p.Company,
		loc:       p.Location,
		timeout:   p.DeliveryTimeout,
		logger:    p.Logger,
		hooks:     p.Hooks,
	}
}

// Process runs the pipeline for a freshly created order.
func (o *Orchestrator) Process(ctx context.Context, orderID int64) domain.NotificationResult {
	return o.run(ctx, orderID, domain.TriggerCreated, "", "")
}

// ProcessStateChange runs the pipeline for a state transition. The rendered
// content carries both the previous and the new state label.
func (o *Orchestrator) ProcessStateChange(ctx context.Context, orderID int64, previousState, newState string) domain.NotificationResult {
	return o.run(ctx, orderID, domain.TriggerStateChanged, previousState, newState)
}

// ServicesStatus reports each channel's enabled/ready state without
// performing any delivery.
func (o *Orchestrator) ServicesStatus() map[string]domain.ChannelStatus {
	status := make(map[string]domain.ChannelStatus, len(o.channels))
	for _, ch := range o.channels {
		status[string(ch.Name())] = ch.Status()
	}
	return status
}

func (o *Orchestrator) run(ctx context.Context, orderID int64, trigger domain.Trigger, prev, next string) domain.NotificationResult {
	// The order view is fetched fresh on every run: it has to reflect the
	// state transition that triggered the notification.
	view, err := o.orders.GetOrderView(ctx, orderID)
	if err != nil {
		res := domain.NewResult(orderID, trigger, []domain.ChannelOutcome{{
			Channel: domain.ChannelArtifact,
			Kind:    domain.OutcomeFetchFailed,
			Error:   err.Error(),
		}})
		o.finish(ctx, res)
		return res
	}

	tc := template.BuildContext(view, o.company, o.loc)
	tc.PreviousState = prev
	tc.NewState = next

	// One artifact shared by every channel that can carry it. A render
	// fault is recorded but does not suppress artifact-free channels.
	var outcomes []domain.ChannelOutcome
	start := time.Now()
	artifact, renderErr := o.artifacts.Render(view)
	o.hooks.OnRender(time.Since(start))
	if renderErr != nil {
		artifact = nil
		outcomes = append(outcomes, domain.ChannelOutcome{
			Channel: domain.ChannelArtifact,
			Kind:    domain.OutcomeRenderFailed,
			Error:   renderErr.Error(),
		})
	}

	res := domain.NewResult(orderID, trigger,
		append(outcomes, o.fanOut(ctx, trigger, view, tc, artifact, renderErr != nil)...))
	o.finish(ctx, res)
	return res
}

// fanOut attempts every channel concurrently. Each goroutine owns its slot
// in the outcome slice, so the aggregate keeps the configured channel order
// and needs no locking.
func (o *Orchestrator) fanOut(
	ctx context.Context,
	trigger domain.Trigger,
	view *domain.OrderView,
	tc domain.TemplateContext,
	artifact []byte,
	renderFailed bool,
) []domain.ChannelOutcome {
	outcomes := make([]domain.ChannelOutcome, len(o.channels))

	var wg sync.WaitGroup
	for i, ch := range o.channels {
		wg.Add(1)
		go func(i int, ch channel.Channel) {
			defer wg.Done()
			start := time.Now()
			outcomes[i] = o.attempt(ctx, trigger, ch, view, tc, artifact, renderFailed)
			o.hooks.OnOutcome(outcomes[i], time.Since(start))
		}(i, ch)
	}
	wg.Wait()

	return outcomes
}

// attempt runs one channel inside its own fault boundary: a panic, timeout
// or transport error becomes an outcome and can never abort a sibling.
func (o *Orchestrator) attempt(
	ctx context.Context,
	trigger domain.Trigger,
	ch channel.Channel,
	view *domain.OrderView,
	tc domain.TemplateContext,
	artifact []byte,
	renderFailed bool,
) (out domain.ChannelOutcome) {
	out = domain.ChannelOutcome{Channel: ch.Name()}
	defer func() {
		if r := recover(); r != nil {
			out.Kind = domain.OutcomeDeliveryFailed
			out.Error = fmt.Sprintf("channel panic: %v", r)
		}
	}()

	st := ch.Status()
	if !st.Enabled || !st.Ready {
		out.Kind = domain.OutcomeNotReady
		out.Error = st.Detail
		return out
	}

	recipient, err := ch.Recipient(view)
	if err != nil {
		if errors.Is(err, domain.ErrNoContactInfo) {
			out.Kind = domain.OutcomeNoContactInfo
			out.Error = err.Error()
		} else {
			out.Kind = domain.OutcomeDeliveryFailed
			out.Error = fmt.Sprintf("resolve recipient: %v", err)
		}
		return out
	}

	d := channel.Delivery{Recipient: recipient}

	switch ch.Kind() {
	case channel.KindMail:
		d.Content.Subject = o.tmpl.MailSubject(trigger, tc)
		html, err := o.tmpl.MailBody(trigger, tc)
		if err != nil {
			out.Kind = domain.OutcomeRenderFailed
			out.Error = err.Error()
			return out
		}
		d.Content.HTML = html
	case channel.KindChat:
		text, err := o.tmpl.ChatText(trigger, tc)
		if err != nil {
			out.Kind = domain.OutcomeRenderFailed
			out.Error = err.Error()
			return out
		}
		d.Content.Text = text
	}

	if ch.CanCarryArtifact() {
		if renderFailed {
			// The channel's contract includes the document; without it the
			// attempt is a render-level failure, not a transport one.
			out.Kind = domain.OutcomeRenderFailed
			out.Error = "order document unavailable"
			return out
		}
		d.Artifact = artifact
		d.ArtifactName = fmt.Sprintf("orden_%d.pdf", view.OrderID)
	}

	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if o.limiter != nil {
		if err := o.limiter.Wait(cctx, ch.Name()); err != nil {
			out.Kind = domain.OutcomeDeliveryFailed
			out.Error = fmt.Sprintf("rate limit wait: %v", err)
			return out
		}
	}

	receipt, err := ch.Deliver(cctx, d)
	if err != nil {
		out.Kind = domain.OutcomeDeliveryFailed
		if cctx.Err() != nil && errors.Is(cctx.Err(), context.DeadlineExceeded) {
			out.Error = fmt.Sprintf("delivery timed out after %s: %v", o.timeout, err)
		} else {
			out.Error = err.Error()
		}
		return out
	}

	out.Kind = domain.OutcomeDelivered
	out.ReceiptID = receipt
	return out
}

// finish logs the human-readable summary and records the result best-effort.
// The log write survives caller cancellation: a cancelled trigger should not
// erase history of deliveries that already happened.
func (o *Orchestrator) finish(ctx context.Context, res domain.NotificationResult) {
	fields := []zap.Field{
		zap.Int64("order_id", res.OrderID),
		zap.String("trigger", string(res.Trigger)),
		zap.Int("delivered", res.Delivered),
		zap.Int("failed", res.Failed),
		zap.Int("skipped", res.Skipped),
		zap.String("summary", res.Summary()),
	}
	if res.Failed > 0 {
		o.logger.Warn("notification processed with failures", fields...)
	} else {
		o.logger.Info("notification processed", fields...)
	}

	if o.log == nil {
		return
	}
	if err := o.log.Record(context.WithoutCancel(ctx), res); err != nil {
		o.logger.Warn("delivery log write failed",
			zap.Int64("order_id", res.OrderID), zap.Error(err))
	}
}
