package metrics

import (
	"testing"
	"time"
)

// counterValue reads one counter sample from the registry.
func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			matched := 0
			for _, pair := range metric.GetLabel() {
				if labels[pair.GetName()] == pair.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestObserveInstructionCountsByOutcome(t *testing.T) {
	m := New()
	m.ObserveInstruction("purchase_module", "succeeded", time.Millisecond)
	m.ObserveInstruction("purchase_module", "succeeded", time.Millisecond)
	m.ObserveInstruction("purchase_module", "rejected", time.Millisecond)

	succeeded := counterValue(t, m, "metamarket_program_instructions_total", map[string]string{"instruction": "purchase_module", "outcome": "succeeded"})
	if succeeded != 2 {
		t.Fatalf("expected 2 succeeded, got %v", succeeded)
	}
	rejected := counterValue(t, m, "metamarket_program_instructions_total", map[string]string{"instruction": "purchase_module", "outcome": "rejected"})
	if rejected != 1 {
		t.Fatalf("expected 1 rejected, got %v", rejected)
	}
}

func TestOutboxAndRateLimitCounters(t *testing.T) {
	m := New()
	m.OutboxRelayed(3)
	m.RateLimited()
	m.ObserveHTTP("GET", "GET /healthz", 200)

	if got := counterValue(t, m, "metamarket_outbox_relayed_total", nil); got != 3 {
		t.Fatalf("expected 3 relayed, got %v", got)
	}
	if got := counterValue(t, m, "metamarket_http_rate_limited_total", nil); got != 1 {
		t.Fatalf("expected 1 rate limited, got %v", got)
	}
	if got := counterValue(t, m, "metamarket_http_requests_total", map[string]string{"route": "GET /healthz", "status": "200"}); got != 1 {
		t.Fatalf("expected 1 http request, got %v", got)
	}
}
