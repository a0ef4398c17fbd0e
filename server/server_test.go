package server_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	exprtree "github.com/jasoncai1227/manipulating-binary-trees-which-represent-arithmetic-expressions"
	"github.com/jasoncai1227/manipulating-binary-trees-which-represent-arithmetic-expressions/server"
)

func newTestServer(t *testing.T, cfg server.Config) *httptest.Server {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ts := httptest.NewServer(server.New(cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postTool(t *testing.T, ts *httptest.Server, body string) (*http.Response, exprtree.ToolResponse) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/tool", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out exprtree.ToolResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp, out
}

func TestTool_Simplify(t *testing.T) {
	ts := newTestServer(t, server.Config{})
	resp, out := postTool(t, ts, `{"tool":"simplify","params":{"expr":"- x + 3 * 7 - 8 9"}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	if out.Prefix != "- x -4" {
		t.Errorf("want '- x -4', got %q (error %q)", out.Prefix, out.Error)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id header")
	}
}

func TestTool_EngineErrorIsJSON(t *testing.T) {
	ts := newTestServer(t, server.Config{})
	resp, out := postTool(t, ts, `{"tool":"parse","params":{"expr":"+ 5 - 4"}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(out.Error, "invalid expression") {
		t.Errorf("want invalid expression error, got %q", out.Error)
	}
}

func TestTool_RejectsBadRequests(t *testing.T) {
	ts := newTestServer(t, server.Config{MaxBody: 64})
	tests := []struct {
		name, body string
	}{
		{"unknown field", `{"tool":"parse","params":{},"extra":1}`},
		{"trailing data", `{"tool":"parse","params":{}} {}`},
		{"too large", `{"tool":"parse","params":{"expr":"` + strings.Repeat("+ 1 ", 40) + `1"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postTool(t, ts, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("want 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestTool_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, server.Config{})
	resp, err := http.Get(ts.URL + "/tool")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("want 405, got %d", resp.StatusCode)
	}
}

func TestSchemaAndHealth(t *testing.T) {
	ts := newTestServer(t, server.Config{})

	resp, err := http.Get(ts.URL + "/schema")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), `"simplify_fancy"`) {
		t.Errorf("schema should list simplify_fancy, got %s", body)
	}

	resp, err = http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	var health map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()
	if health["status"] != "ok" {
		t.Errorf("want status ok, got %v", health)
	}
}
