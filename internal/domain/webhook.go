package domain

// WebhookMessage is the chat-webhook document: a message carrying embeds.
type WebhookMessage struct {
	Embeds []Embed `json:"embeds"`
}

// Embed is one rich card inside a WebhookMessage. Field order is preserved
// when marshalled, so rendering the same embed twice yields the same bytes.
type Embed struct {
	Title     string       `json:"title"`
	Color     int          `json:"color"`
	Fields    []EmbedField `json:"fields"`
	Footer    *EmbedFooter `json:"footer,omitempty"`
	Timestamp string       `json:"timestamp"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}
