package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestLoadsTotal_Labels(t *testing.T) {
	c := LoadsTotal.WithLabelValues(SourceRemote, ResultOK)
	before := counterValue(t, c)
	c.Inc()
	if got := counterValue(t, c); got != before+1 {
		t.Errorf("counter = %v, want %v", got, before+1)
	}
}

func TestCollectorsRegistered(t *testing.T) {
	NavigationsTotal.Inc()
	BlobsActive.Set(0)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	for _, name := range []string{"threadplay_navigations_total", "threadplay_blobs_active"} {
		if !found[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}
