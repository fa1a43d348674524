package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aalvaropc/numlab/internal/domain"
)

func TestBuildJSONRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected method POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/v1/solve" {
			t.Errorf("expected path /api/v1/solve, got %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected content-type json, got %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		var decoded map[string]any
		if err := json.Unmarshal(body, &decoded); err != nil {
			t.Errorf("expected valid json body: %v", err)
		}
		if decoded["method"] != "newton" {
			t.Errorf("expected json payload, got %v", decoded)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req, err := BuildJSONRequest(context.Background(), http.MethodPost, server.URL+"/api/", "/v1/solve", map[string]any{"method": "newton"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed request: %v", err)
	}
	resp.Body.Close()
}

func TestBuildJSONRequest_NoPayload(t *testing.T) {
	req, err := BuildJSONRequest(context.Background(), http.MethodGet, "http://127.0.0.1:8086", "healthz", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.URL.String() != "http://127.0.0.1:8086/healthz" {
		t.Fatalf("expected joined url, got %s", req.URL)
	}
	if ct := req.Header.Get("Content-Type"); ct != "" {
		t.Fatalf("expected no content-type, got %s", ct)
	}
}

func TestBuildJSONRequest_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		payload any
	}{
		{name: "empty url", base: "  "},
		{name: "unencodable payload", base: "http://localhost", payload: map[string]any{"f": func() {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildJSONRequest(context.Background(), http.MethodPost, tt.base, "/v1/solve", tt.payload)
			if !domain.IsKind(err, domain.KindInvalidConfig) {
				t.Fatalf("expected invalid_config, got %v", err)
			}
		})
	}
}
