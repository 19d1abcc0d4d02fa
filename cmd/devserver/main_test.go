package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"faithfeed-relay/internal/app"
	"faithfeed-relay/internal/config"
)

func TestLambdaAdapter(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{})
	require.NoError(t, err)
	h, err := app.NewHandler(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.HandleFunc("/api/{relay}", lambdaAdapter(h))
	srv := httptest.NewServer(r)
	defer srv.Close()

	res, err := http.Post(srv.URL+"/api/ai-feedback", "application/json",
		strings.NewReader(`{"verse":"John 3:16","feedbackType":"helpful","feedback":"ok"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.JSONEq(t, `{"success":true}`, string(body))
	require.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/analyze-verse", nil)
	require.NoError(t, err)
	res2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res2.Body.Close()
	require.Equal(t, http.StatusOK, res2.StatusCode)

	res3, err := http.Post(srv.URL+"/api/discord-webhook", "application/json", strings.NewReader(`{"name":"Jane","email":"j@x.com"}`))
	require.NoError(t, err)
	defer res3.Body.Close()
	require.Equal(t, http.StatusInternalServerError, res3.StatusCode)
}
