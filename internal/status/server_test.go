package status_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/flemzord/deskbot/internal/provider"
	"github.com/flemzord/deskbot/internal/status"
)

func startServer(t *testing.T, metrics *status.Metrics, sessionFn func() status.SessionInfo) *status.Server {
	t.Helper()

	srv := status.NewServer("127.0.0.1:0", metrics, sessionFn, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})
	return srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	srv := startServer(t, status.NewMetrics(), nil)

	code, body := get(t, fmt.Sprintf("http://%s/healthz", srv.Addr()))
	if code != http.StatusOK {
		t.Fatalf("GET /healthz: status %d, want 200", code)
	}
	if !strings.Contains(body, `"ok"`) {
		t.Errorf("body = %q, want to contain \"ok\"", body)
	}
}

func TestServer_Status(t *testing.T) {
	t.Parallel()

	srv := startServer(t, status.NewMetrics(), func() status.SessionInfo {
		return status.SessionInfo{Model: "gpt-3.5-turbo", Turns: 6}
	})

	code, body := get(t, fmt.Sprintf("http://%s/status", srv.Addr()))
	if code != http.StatusOK {
		t.Fatalf("GET /status: status %d, want 200", code)
	}

	var resp status.StatusResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if resp.Model != "gpt-3.5-turbo" {
		t.Errorf("Model = %q, want gpt-3.5-turbo", resp.Model)
	}
	if resp.Turns != 6 {
		t.Errorf("Turns = %d, want 6", resp.Turns)
	}
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	metrics := status.NewMetrics()
	metrics.RecordExchange(provider.TokenUsage{PromptTokens: 10, CompletionTokens: 5}, 250*time.Millisecond)
	metrics.RecordError("rate_limit")

	srv := startServer(t, metrics, nil)

	code, body := get(t, fmt.Sprintf("http://%s/metrics", srv.Addr()))
	if code != http.StatusOK {
		t.Fatalf("GET /metrics: status %d, want 200", code)
	}

	wantLines := []string{
		"deskbot_exchanges_total 1",
		"deskbot_prompt_tokens_total 10",
		"deskbot_completion_tokens_total 5",
		`deskbot_exchange_errors_total{class="rate_limit"} 1`,
	}
	for _, line := range wantLines {
		if !strings.Contains(body, line) {
			t.Errorf("metrics exposition missing %q", line)
		}
	}
}
