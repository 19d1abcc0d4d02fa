package relay

import (
	"time"
	"unicode/utf8"

	"faithfeed-relay/internal/domain"
)

const (
	FeedbackRelayName = "ai-feedback"

	// MaxFeedbackLength is the longest feedback text, in characters, embedded verbatim.
	MaxFeedbackLength = 1000

	helpfulColor    = 0x10b981
	concerningColor = 0xef4444
	feedbackFooter  = "FaithFeed AI Demo Feedback"
)

// NewFeedbackRelay builds the AI-demo feedback relay. Feedback loss is
// tolerated: a missing webhook URL or a failed delivery is logged and the
// caller still gets success.
func NewFeedbackRelay(sender WebhookSender, opts ...Option) (*Relay, error) {
	return newWebhookRelay(FeedbackRelayName, []string{"verse", "feedbackType", "feedback"}, sender, webhookPolicy{
		onMissing:  SucceedMissingConfig,
		onFailure:  Suppress,
		render:     RenderFeedback,
		success:    Success(SuccessBody{Success: true}),
		unexpected: internalServerError,
	}, opts)
}

type feedbackStyle struct {
	emoji  string
	label  string
	rating string
	color  int
}

var (
	helpfulStyle    = feedbackStyle{emoji: "✅", label: "Helpful", rating: "✓ Helpful for Study", color: helpfulColor}
	concerningStyle = feedbackStyle{emoji: "⚠️", label: "Concerning", rating: "✗ Concerning/Harmful", color: concerningColor}
)

func styleFor(feedbackType string) feedbackStyle {
	if feedbackType == "helpful" {
		return helpfulStyle
	}
	return concerningStyle
}

// RenderFeedback renders the feedback notification.
func RenderFeedback(req domain.RelayRequest, now time.Time) domain.WebhookMessage {
	style := styleFor(req.Get("feedbackType"))
	return domain.WebhookMessage{Embeds: []domain.Embed{{
		Title: style.emoji + " AI Demo Feedback - " + style.label,
		Color: style.color,
		Fields: []domain.EmbedField{
			{Name: "Verse Analyzed", Value: req.Get("verse"), Inline: true},
			{Name: "Rating", Value: style.rating, Inline: true},
			{Name: "Feedback Details", Value: truncate(req.Get("feedback"), MaxFeedbackLength), Inline: false},
		},
		Footer:    &domain.EmbedFooter{Text: feedbackFooter},
		Timestamp: formatTimestamp(now),
	}}}
}

// truncate cuts s to max runes and appends "..." when anything was dropped.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
