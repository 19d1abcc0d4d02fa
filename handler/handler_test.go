package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"faithfeed-relay/internal/domain"
	"faithfeed-relay/internal/relay"
)

type stubRelay struct {
	name string
	out  relay.Outcome
	in   relay.Inbound
}

func (s *stubRelay) Name() string { return s.name }

func (s *stubRelay) Handle(_ context.Context, in relay.Inbound) relay.Outcome {
	s.in = in
	return s.out
}

type stubSender struct {
	configured bool
	sent       []domain.WebhookMessage
}

func (s *stubSender) Configured() bool { return s.configured }

func (s *stubSender) Send(_ context.Context, msg domain.WebhookMessage) error {
	s.sent = append(s.sent, msg)
	return nil
}

func makeEvent(method, path, body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func parseBody[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(t *testing.T, relays ...Relay) *Handler {
	t.Helper()
	h, err := NewHandler(relays...)
	require.NoError(t, err)
	return h.WithLogger(quietLogger())
}

func TestNewHandler_ValidatesRelays(t *testing.T) {
	_, err := NewHandler()
	require.Error(t, err)

	_, err = NewHandler(nil)
	require.Error(t, err)

	_, err = NewHandler(&stubRelay{name: "a"}, &stubRelay{name: "a"})
	require.ErrorContains(t, err, "duplicate")
}

func TestHandle_RoutesByLastPathSegment(t *testing.T) {
	feedback := &stubRelay{name: "ai-feedback", out: relay.Success(relay.SuccessBody{Success: true})}
	signup := &stubRelay{name: "discord-webhook"}
	h := newTestHandler(t, feedback, signup)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/api/ai-feedback/", `{"verse":"John 3:16"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, http.MethodPost, feedback.in.Method)
	require.Equal(t, `{"verse":"John 3:16"}`, string(feedback.in.Body))
	require.Empty(t, signup.in.Method)

	out := parseBody[relay.SuccessBody](t, resp.Body)
	require.True(t, out.Success)
	require.Equal(t, "application/json", resp.Headers["Content-Type"])
}

func TestHandle_UnknownRoute(t *testing.T) {
	h := newTestHandler(t, &stubRelay{name: "ai-feedback"})

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/api/unknown", `{}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Not found", parseBody[errorResponse](t, resp.Body).Error)
}

func TestHandle_CORSHeadersOnEveryResponse(t *testing.T) {
	h := newTestHandler(t, &stubRelay{name: "ai-feedback", out: relay.ClientError(http.StatusMethodNotAllowed, "Method not allowed")})

	for _, path := range []string{"/api/ai-feedback", "/nope"} {
		resp, err := h.Handle(context.Background(), makeEvent(http.MethodGet, path, ""))
		require.NoError(t, err)
		require.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
		require.Equal(t, "POST, OPTIONS", resp.Headers["Access-Control-Allow-Methods"])
		require.Equal(t, "Content-Type", resp.Headers["Access-Control-Allow-Headers"])
		require.NotEmpty(t, resp.Headers[correlationHeader])
	}
}

func TestHandle_EmptyBodyForPreflight(t *testing.T) {
	h := newTestHandler(t, &stubRelay{name: "ai-feedback", out: relay.Success(nil)})

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodOptions, "/api/ai-feedback", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, resp.Body)
	_, hasContentType := resp.Headers["Content-Type"]
	require.False(t, hasContentType)
}

func TestHandle_Base64Body(t *testing.T) {
	r := &stubRelay{name: "analyze-verse", out: relay.Success(relay.SuccessBody{Success: true})}
	h := newTestHandler(t, r)

	event := makeEvent(http.MethodPost, "/api/analyze-verse", base64.StdEncoding.EncodeToString([]byte(`{"verse":"Psalm 23"}`)))
	event.IsBase64Encoded = true
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, `{"verse":"Psalm 23"}`, string(r.in.Body))

	event.Body = "%%%not-base64"
	resp, err = h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandle_UsesProvidedCorrelationID_CaseInsensitive(t *testing.T) {
	h := newTestHandler(t, &stubRelay{name: "ai-feedback", out: relay.Success(relay.SuccessBody{Success: true})})

	event := makeEvent(http.MethodPost, "/api/ai-feedback", `{}`)
	event.Headers["x-correlation-id"] = "corr-123"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-123", resp.Headers[correlationHeader])
}

func TestHandle_WithRealRelays(t *testing.T) {
	signupSender := &stubSender{configured: false}
	feedbackSender := &stubSender{configured: false}
	signup, err := relay.NewSignupRelay(signupSender, relay.WithLogger(quietLogger()))
	require.NoError(t, err)
	feedback, err := relay.NewFeedbackRelay(feedbackSender, relay.WithLogger(quietLogger()))
	require.NoError(t, err)
	h := newTestHandler(t, signup, feedback)

	cases := []struct {
		name   string
		event  events.APIGatewayProxyRequest
		status int
		body   string
	}{
		{
			name:   "signup without webhook fails loudly",
			event:  makeEvent(http.MethodPost, "/api/discord-webhook", `{"name":"Jane","email":"j@x.com"}`),
			status: http.StatusInternalServerError,
			body:   `{"error":"Webhook not configured"}`,
		},
		{
			name:   "feedback without webhook succeeds silently",
			event:  makeEvent(http.MethodPost, "/api/ai-feedback", `{"verse":"John 3:16","feedbackType":"helpful","feedback":"ok"}`),
			status: http.StatusOK,
			body:   `{"success":true}`,
		},
		{
			name:   "wrong method",
			event:  makeEvent(http.MethodGet, "/api/ai-feedback", ""),
			status: http.StatusMethodNotAllowed,
			body:   `{"error":"Method not allowed"}`,
		},
		{
			name:   "missing fields",
			event:  makeEvent(http.MethodPost, "/api/discord-webhook", `{"name":"Jane"}`),
			status: http.StatusBadRequest,
			body:   `{"error":"Missing required fields"}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := h.Handle(context.Background(), tc.event)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
			require.JSONEq(t, tc.body, resp.Body)
		})
	}
	require.Empty(t, signupSender.sent)
	require.Empty(t, feedbackSender.sent)
}
