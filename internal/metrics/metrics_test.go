package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fd1az/arbitrage-analyzer/internal/logger"
)

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		in   string
		want map[string]string
	}{
		{"", map[string]string{}},
		{"x-team=abc", map[string]string{"x-team": "abc"}},
		{"a=1, b = 2 ,broken,=x", map[string]string{"a": "1", "b": "2"}},
		{"token=a=b", map[string]string{"token": "a=b"}},
	}
	for _, tt := range tests {
		got := ParseHeaders(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("ParseHeaders(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("ParseHeaders(%q)[%q] = %q, want %q", tt.in, k, got[k], v)
			}
		}
	}
}

func TestNewMetricProvider_NoProviders(t *testing.T) {
	if _, err := NewMetricProvider(context.Background()); err == nil {
		t.Error("expected error without providers")
	}
}

func TestPrometheusProvider_Scrape(t *testing.T) {
	ctx := context.Background()
	mp, err := NewMetricProvider(ctx,
		WithServiceName("arbitrage-test"),
		WithProviderConfig(ProviderCfg{Provider: PrometheusProvider}),
	)
	if err != nil {
		t.Fatalf("NewMetricProvider: %v", err)
	}
	defer func() { _ = mp.Shutdown(ctx) }()

	counter, err := mp.Meter("metrics_test").Int64Counter("arbitrage_test_scans_total")
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	counter.Add(ctx, 3)

	server := NewPrometheusServer(logger.NewDiscard(), WithPort(0))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "arbitrage_test_scans") {
		t.Error("scrape output missing counter")
	}
}
