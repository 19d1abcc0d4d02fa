package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"faithfeed-relay/internal/relay"
)

const correlationHeader = "X-Correlation-Id"

// Relay is the relay surface the handler routes to.
type Relay interface {
	Name() string
	Handle(ctx context.Context, in relay.Inbound) relay.Outcome
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler adapts API Gateway proxy events to relays, routing on the last
// path segment (e.g. /api/ai-feedback -> "ai-feedback").
type Handler struct {
	routes map[string]Relay
	log    *slog.Logger
}

func NewHandler(relays ...Relay) (*Handler, error) {
	if len(relays) == 0 {
		return nil, errors.New("handler: at least one relay is required")
	}
	routes := make(map[string]Relay, len(relays))
	for _, r := range relays {
		if r == nil {
			return nil, errors.New("handler: relay must not be nil")
		}
		name := r.Name()
		if _, dup := routes[name]; dup {
			return nil, fmt.Errorf("handler: duplicate relay %q", name)
		}
		routes[name] = r
	}
	return &Handler{routes: routes, log: slog.Default()}, nil
}

// WithLogger returns h logging through l.
func (h *Handler) WithLogger(l *slog.Logger) *Handler {
	if l != nil {
		h.log = l
	}
	return h
}

func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event.Headers)
	log := h.log.With("correlation_id", corrID, "method", event.HTTPMethod, "path", event.Path)

	route := path.Base(strings.TrimRight(event.Path, "/"))
	r, ok := h.routes[route]
	if !ok {
		log.WarnContext(ctx, "no relay for path")
		return respond(corrID, http.StatusNotFound, errorResponse{Error: "Not found"}), nil
	}

	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			log.ErrorContext(ctx, "failed to decode base64 body", "err", err)
			return respond(corrID, http.StatusBadRequest, errorResponse{Error: "Invalid request body"}), nil
		}
		body = decoded
	}

	out := r.Handle(ctx, relay.Inbound{Method: event.HTTPMethod, Body: body})
	log.InfoContext(ctx, "relay completed", "relay", route, "status", out.Status, "outcome", out.Kind.String())
	return respond(corrID, out.Status, out.Body), nil
}

func respond(corrID string, status int, body any) events.APIGatewayProxyResponse {
	headers := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
		correlationHeader:              corrID,
	}
	if body == nil {
		return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers}
	}

	buf, err := json.Marshal(body)
	if err != nil {
		slog.Error("failed to encode response", "err", err)
		status = http.StatusInternalServerError
		buf = []byte(`{"error":"Internal server error"}`)
	}
	headers["Content-Type"] = "application/json"
	return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers, Body: string(buf)}
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return uuid.NewString()
}
