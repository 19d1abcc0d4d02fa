package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"faithfeed-relay/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewHandler_NilConfig(t *testing.T) {
	_, err := NewHandler(nil, nil)
	require.Error(t, err)
}

func TestNewHandler_EndToEnd(t *testing.T) {
	var webhookHits int
	var posted map[string]any
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		webhookHits++
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer webhook.Close()

	bible := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer bible.Close()

	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Study notes"}]}`))
	}))
	defer model.Close()

	cfg, err := config.LoadFrom(map[string]string{
		"DISCORD_WEBHOOK_URL": webhook.URL + "/api/webhooks/1/token",
		"ANTHROPIC_API_KEY":   "sk-test",
		"ANTHROPIC_BASE_URL":  model.URL,
		"BIBLE_API_BASE_URL":  bible.URL,
	})
	require.NoError(t, err)

	h, err := NewHandler(cfg, quietLogger())
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/api/discord-webhook",
		Body:       `{"name":"Jane","email":"j@x.com"}`,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"success":true,"message":"Posted to Discord successfully"}`, resp.Body)
	require.Equal(t, 1, webhookHits)
	require.Contains(t, posted, "embeds")

	resp, err = h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/api/analyze-verse",
		Body:       `{"verse":"John 3:16"}`,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	require.Equal(t, "John 3:16", body["verse"])
	require.Equal(t, "[John 3:16]", body["verseText"])
	require.Equal(t, "Study notes", body["analysis"])
	require.NotEmpty(t, body["timestamp"])
}
