package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"faithfeed-relay/internal/domain"
)

// timestampLayout matches the millisecond ISO-8601 form webhook consumers expect.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Inbound is the transport-neutral view of an incoming request.
type Inbound struct {
	Method string
	Body   []byte
}

// instance is the per-endpoint part of a relay: configuration check,
// enrichment, rendering and dispatch. A returned error is an uncaught
// failure and is converted by fail.
type instance interface {
	process(ctx context.Context, req domain.RelayRequest, now time.Time) (Outcome, error)
	fail(err error) Outcome
}

// Relay validates an inbound request and forwards it through its instance.
// A Relay holds no per-request state and is safe for concurrent use.
type Relay struct {
	name     string
	required []string
	inst     instance
	log      *slog.Logger
	now      func() time.Time
}

type Option func(*Relay)

func WithLogger(l *slog.Logger) Option {
	return func(r *Relay) {
		if l != nil {
			r.log = l
		}
	}
}

// WithClock overrides the timestamp source used when rendering payloads.
func WithClock(now func() time.Time) Option {
	return func(r *Relay) {
		if now != nil {
			r.now = now
		}
	}
}

func newRelay(name string, required []string, inst instance, opts []Option) *Relay {
	r := &Relay{
		name:     name,
		required: required,
		inst:     inst,
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("relay", name)
	return r
}

func (r *Relay) Name() string { return r.name }

// RequiredFields returns a copy of the fields that must be present.
func (r *Relay) RequiredFields() []string {
	return append([]string(nil), r.required...)
}

// Handle runs one request through the relay. It never panics and never
// returns an error: every failure is mapped to an Outcome.
func (r *Relay) Handle(ctx context.Context, in Inbound) (out Outcome) {
	switch strings.ToUpper(strings.TrimSpace(in.Method)) {
	case http.MethodOptions:
		return Success(nil)
	case http.MethodPost:
	default:
		return ClientError(http.StatusMethodNotAllowed, "Method not allowed")
	}

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("panic: %v", rec)
			r.logError(ctx, newError(ErrorInternal, "panic", err))
			out = r.inst.fail(err)
		}
	}()

	req, err := DecodeRequest(in.Body)
	if err != nil {
		r.logError(ctx, newError(ErrorInternal, "malformed_body", err))
		return r.inst.fail(err)
	}

	if missing := req.Missing(r.required); len(missing) > 0 {
		r.log.InfoContext(ctx, "rejected request", "code", ErrorInvalidInput, "missing", missing)
		return ClientError(http.StatusBadRequest, "Missing required fields")
	}

	out, err = r.inst.process(ctx, req, r.now().UTC())
	if err != nil {
		var relayErr *Error
		if !errors.As(err, &relayErr) {
			relayErr = newError(ErrorInternal, "unexpected_error", err)
		}
		r.logError(ctx, relayErr)
		return r.inst.fail(err)
	}
	return out
}

func (r *Relay) logError(ctx context.Context, err *Error) {
	r.log.ErrorContext(ctx, "relay failed", "code", err.Code, "reason", err.Reason, "err", err.Err)
}

// DecodeRequest parses a JSON object body into a RelayRequest. Strings are
// kept verbatim, booleans and numbers are stringified, nulls are dropped and
// nested values are kept as their raw JSON text. An empty body is an empty request.
func DecodeRequest(body []byte) (domain.RelayRequest, error) {
	req := domain.RelayRequest{}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return req, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("relay: decode body: %w", err)
	}
	if raw == nil {
		return nil, errors.New("relay: decode body: body is not a JSON object")
	}
	for k, v := range raw {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, fmt.Errorf("relay: decode field %q: %w", k, err)
		}
		switch t := val.(type) {
		case nil:
		case string:
			req[k] = t
		case bool:
			req[k] = strconv.FormatBool(t)
		case float64:
			req[k] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			req[k] = string(v)
		}
	}
	return req, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
