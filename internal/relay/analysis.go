package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"faithfeed-relay/internal/domain"
)

const (
	AnalysisRelayName = "analyze-verse"

	// DefaultEnrichmentTimeout bounds the passage lookup.
	DefaultEnrichmentTimeout = 5 * time.Second

	passageNotFound = "Verse text not found"
)

// PassageLookup fetches passage text for a reference.
type PassageLookup interface {
	Lookup(ctx context.Context, reference string) (string, error)
}

// Completer generates text from prompt messages.
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

// AnalysisResponse is the success body of the analysis relay.
type AnalysisResponse struct {
	Verse     string `json:"verse"`
	VerseText string `json:"verseText"`
	Analysis  string `json:"analysis"`
	Timestamp string `json:"timestamp"`
}

type analysisInstance struct {
	lookup        PassageLookup
	model         Completer
	enrichTimeout time.Duration
	relay         *Relay
}

// NewAnalysisRelay builds the verse-analysis relay. The passage lookup is
// best effort and bounded by enrichTimeout (DefaultEnrichmentTimeout when
// not positive); the model call is not.
func NewAnalysisRelay(lookup PassageLookup, model Completer, enrichTimeout time.Duration, opts ...Option) (*Relay, error) {
	if lookup == nil {
		return nil, errors.New("relay: passage lookup must not be nil")
	}
	if model == nil {
		return nil, errors.New("relay: completer must not be nil")
	}
	if enrichTimeout <= 0 {
		enrichTimeout = DefaultEnrichmentTimeout
	}
	inst := &analysisInstance{lookup: lookup, model: model, enrichTimeout: enrichTimeout}
	r := newRelay(AnalysisRelayName, []string{"verse"}, inst, opts)
	inst.relay = r
	return r, nil
}

func (a *analysisInstance) process(ctx context.Context, req domain.RelayRequest, now time.Time) (Outcome, error) {
	if !a.model.Configured() {
		a.relay.logError(ctx, newError(ErrorConfiguration, "model_api_key_missing", nil))
		return ServerError("API key not configured", ""), nil
	}

	verse := req.Get("verse")
	verseText := a.enrich(ctx, verse)

	analysis, err := a.model.Complete(ctx, buildAnalysisMessages(verse, verseText))
	if err != nil {
		var malformed malformedResponder
		if errors.As(err, &malformed) && malformed.MalformedResponse() {
			return Outcome{}, newError(ErrorParse, "model_malformed_response", err)
		}
		a.relay.logError(ctx, newError(ErrorUpstream, "model_error", err))
		return UpstreamError("AI analysis failed"), nil
	}

	return Success(AnalysisResponse{
		Verse:     verse,
		VerseText: verseText,
		Analysis:  analysis,
		Timestamp: formatTimestamp(now),
	}), nil
}

// enrich looks up the passage text. It never fails: a missing passage yields
// a fixed marker and any other failure the bracketed reference.
func (a *analysisInstance) enrich(ctx context.Context, verse string) string {
	lookupCtx, cancel := context.WithTimeout(ctx, a.enrichTimeout)
	defer cancel()

	text, err := a.boundedLookup(lookupCtx, verse)
	if err == nil && text != "" {
		return text
	}

	var nf notFounder
	if err == nil || (errors.As(err, &nf) && nf.NotFound()) {
		a.relay.log.InfoContext(ctx, "passage not found", "verse", verse)
		return passageNotFound
	}
	a.relay.log.WarnContext(ctx, "passage lookup failed", "verse", verse, "status", upstreamStatus(err), "err", err)
	return "[" + verse + "]"
}

type lookupResult struct {
	text string
	err  error
}

// boundedLookup returns when ctx is done even if the lookup ignores it.
func (a *analysisInstance) boundedLookup(ctx context.Context, verse string) (string, error) {
	done := make(chan lookupResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- lookupResult{err: fmt.Errorf("relay: passage lookup panic: %v", rec)}
			}
		}()
		text, err := a.lookup.Lookup(ctx, verse)
		done <- lookupResult{text: text, err: err}
	}()
	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (a *analysisInstance) fail(err error) Outcome {
	return internalServerError(err)
}
