package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheus_IncCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus("gnap", reg)

	ctx := context.Background()
	p.IncCounter(ctx, "grants.created", 1, map[string]string{"status": "PENDING"})
	p.IncCounter(ctx, "grants.created", 2, map[string]string{"status": "PENDING"})
	p.IncCounter(ctx, "grants.created", 0, map[string]string{"status": "PENDING"})

	c := p.counters["grants_created"]
	if c == nil {
		t.Fatalf("expected counter registered")
	}
	if got := testutil.ToFloat64(c.vec.WithLabelValues("PENDING")); got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
}

func TestPrometheus_SanitizedLabelKeepsValue(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus("gnap-as", reg)

	p.IncCounter(context.Background(), "grant_continuations", 1, map[string]string{"grant-result": "ok"})

	c := p.counters["grant_continuations"]
	if c == nil || len(c.labels) != 1 || c.labels[0] != "grant_result" {
		t.Fatalf("unexpected labels: %+v", c)
	}
	if got := testutil.ToFloat64(c.vec.WithLabelValues("ok")); got != 1 {
		t.Fatalf("expected 1 under label value ok, got %v", got)
	}
}
