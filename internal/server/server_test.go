package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Higerald/OptionPricing/internal/config"
	"github.com/Higerald/OptionPricing/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer() *Server {
	cfg := config.DefaultConfig()
	cfg.Simulation.Paths = 10000
	cfg.Server.MaxPaths = 50000
	return New(cfg, metrics.New())
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestPrice(t *testing.T) {
	s := newTestServer()
	w := do(t, s, http.MethodPost, "/api/v1/price", `{"seed": 5, "paths": 20000}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var resp PriceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Seed != 5 || resp.Paths != 20000 || resp.Generator != "direct" || resp.Sampler != "polar" {
		t.Errorf("response = %+v", resp)
	}
	if resp.Price < 7 || resp.Price > 9 {
		t.Errorf("price = %v", resp.Price)
	}
	if resp.AnalyticPrice == nil {
		t.Errorf("missing analytic price")
	}

	// Same seed, same answer.
	w2 := do(t, s, http.MethodPost, "/api/v1/price", `{"seed": 5, "paths": 20000}`)
	var resp2 PriceResponse
	json.Unmarshal(w2.Body.Bytes(), &resp2)
	if resp2.Price != resp.Price {
		t.Errorf("seeded requests differ: %v vs %v", resp.Price, resp2.Price)
	}
}

func TestPriceBadRequests(t *testing.T) {
	s := newTestServer()
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"paths":`},
		{"one path", `{"paths": 1}`},
		{"over limit", `{"paths": 50001}`},
		{"negative spot", `{"spot": -1}`},
		{"bad option", `{"option_type": "straddle"}`},
		{"bad generator", `{"generator": "weekly"}`},
		{"short monthly", `{"generator": "monthly", "expiry": 0.05}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/v1/price", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, body = %s", w.Code, w.Body)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer()
	do(t, s, http.MethodPost, "/api/v1/price", `{"seed": 1, "paths": 100}`)
	do(t, s, http.MethodPost, "/api/v1/price", `{"paths": 1}`)

	w := do(t, s, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`option_pricer_paths_total{generator="direct"} 100`,
		`option_pricer_runs_total{generator="direct",outcome="error"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestPriceOverflowIsServerError(t *testing.T) {
	w := do(t, newTestServer(), http.MethodPost, "/api/v1/price", `{"rate": 800, "paths": 100}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["error"] == "" {
		t.Fatalf("body = %q (%v), want an error message", w.Body, err)
	}
}

func TestPriceUsesConfiguredSeed(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Simulation.Seed = 2024
	cfg.Server.MaxPaths = 50000
	s := New(cfg, nil)

	var first, second PriceResponse
	json.Unmarshal(do(t, s, http.MethodPost, "/api/v1/price", `{"paths": 5000}`).Body.Bytes(), &first)
	json.Unmarshal(do(t, s, http.MethodPost, "/api/v1/price", `{"paths": 5000}`).Body.Bytes(), &second)
	if first.Seed != 2024 || second.Seed != 2024 {
		t.Fatalf("seeds = %d, %d, want 2024", first.Seed, second.Seed)
	}
	if first.Price != second.Price {
		t.Errorf("configured seed gave %v and %v", first.Price, second.Price)
	}

	// An explicit seed in the body wins.
	var third PriceResponse
	json.Unmarshal(do(t, s, http.MethodPost, "/api/v1/price", `{"paths": 5000, "seed": 7}`).Body.Bytes(), &third)
	if third.Seed != 7 {
		t.Errorf("seed = %d, want 7", third.Seed)
	}
}
