package relay

import (
	"errors"
	"time"

	"faithfeed-relay/internal/domain"
)

const (
	SignupRelayName = "discord-webhook"

	signupColor  = 0x3b82f6
	signupFooter = "FaithFeed Beta Signups"
	notProvided  = "Not provided"
	notSpecified = "Not specified"
)

// NewSignupRelay builds the beta-signup relay. Only name and email are
// required; the remaining fields render with placeholder text. A missing
// webhook URL or a failed delivery is reported to the caller as a 500.
func NewSignupRelay(sender WebhookSender, opts ...Option) (*Relay, error) {
	return newWebhookRelay(SignupRelayName, []string{"name", "email"}, sender, webhookPolicy{
		onMissing:  FailMissingConfig,
		onFailure:  Propagate,
		render:     RenderSignup,
		success:    Success(SuccessBody{Success: true, Message: "Posted to Discord successfully"}),
		unexpected: signupFailure,
	}, opts)
}

func signupFailure(err error) Outcome {
	return ServerError("Failed to post to Discord", failureDetails(err))
}

// RenderSignup renders the signup notification.
func RenderSignup(req domain.RelayRequest, now time.Time) domain.WebhookMessage {
	newsletter := "❌ No"
	if req.Get("newsletter") == "yes" {
		newsletter = "✅ Yes"
	}
	return domain.WebhookMessage{Embeds: []domain.Embed{{
		Title: "🎉 New Beta Signup!",
		Color: signupColor,
		Fields: []domain.EmbedField{
			{Name: "Name", Value: orDefault(req.Get("name"), notProvided), Inline: true},
			{Name: "Email", Value: orDefault(req.Get("email"), notProvided), Inline: true},
			{Name: "Church/Ministry", Value: orDefault(req.Get("church"), notProvided), Inline: false},
			{Name: "Platform", Value: orDefault(req.Get("platform"), notSpecified), Inline: true},
			{Name: "Newsletter", Value: newsletter, Inline: true},
		},
		Footer:    &domain.EmbedFooter{Text: signupFooter},
		Timestamp: formatTimestamp(now),
	}}}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// failureDetails unwraps relay errors so callers see the upstream message
// rather than the internal code.
func failureDetails(err error) string {
	var relayErr *Error
	if errors.As(err, &relayErr) && relayErr.Err != nil {
		return relayErr.Err.Error()
	}
	return err.Error()
}
