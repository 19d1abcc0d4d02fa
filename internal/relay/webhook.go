package relay

import (
	"context"
	"errors"
	"time"

	"faithfeed-relay/internal/domain"
)

// WebhookSender delivers a rendered message to the chat webhook.
type WebhookSender interface {
	Configured() bool
	Send(ctx context.Context, msg domain.WebhookMessage) error
}

// OnMissingConfig decides what a webhook relay does when no webhook URL is set.
type OnMissingConfig int

const (
	// FailMissingConfig answers 500 with a fixed "not configured" message.
	FailMissingConfig OnMissingConfig = iota
	// SucceedMissingConfig logs the omission and answers success.
	SucceedMissingConfig
)

// OnUpstreamFailure decides what a webhook relay does when delivery fails.
type OnUpstreamFailure int

const (
	// Propagate turns a delivery failure into a 500 response.
	Propagate OnUpstreamFailure = iota
	// Suppress logs the failure and answers success anyway.
	Suppress
)

// webhookPolicy is the configuration shared by relays that post to the chat webhook.
type webhookPolicy struct {
	onMissing  OnMissingConfig
	onFailure  OnUpstreamFailure
	render     func(req domain.RelayRequest, now time.Time) domain.WebhookMessage
	success    Outcome
	unexpected func(err error) Outcome
}

type webhookInstance struct {
	sender WebhookSender
	policy webhookPolicy
	relay  *Relay
}

func (w *webhookInstance) process(ctx context.Context, req domain.RelayRequest, now time.Time) (Outcome, error) {
	if !w.sender.Configured() {
		if w.policy.onMissing == SucceedMissingConfig {
			w.relay.log.ErrorContext(ctx, "webhook URL not configured; dropping message", "code", ErrorConfiguration)
			return w.policy.success, nil
		}
		w.relay.logError(ctx, newError(ErrorConfiguration, "webhook_not_configured", nil))
		return ServerError("Webhook not configured", ""), nil
	}

	msg := w.policy.render(req, now)
	if err := w.sender.Send(ctx, msg); err != nil {
		if w.policy.onFailure == Suppress {
			w.relay.log.ErrorContext(ctx, "webhook delivery failed", "code", ErrorUpstream, "status", upstreamStatus(err), "err", err)
			return w.policy.success, nil
		}
		return Outcome{}, newError(ErrorUpstream, "webhook_delivery_failed", err)
	}
	return w.policy.success, nil
}

func (w *webhookInstance) fail(err error) Outcome {
	return w.policy.unexpected(err)
}

func newWebhookRelay(name string, required []string, sender WebhookSender, policy webhookPolicy, opts []Option) (*Relay, error) {
	if sender == nil {
		return nil, errors.New("relay: webhook sender must not be nil")
	}
	inst := &webhookInstance{sender: sender, policy: policy}
	r := newRelay(name, required, inst, opts)
	inst.relay = r
	return r, nil
}

func upstreamStatus(err error) int {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0
	}
	return statusErr.HTTPStatusCode()
}

func internalServerError(error) Outcome {
	return ServerError("Internal server error", "")
}
