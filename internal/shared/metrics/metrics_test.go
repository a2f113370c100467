package metrics

import (
	"strings"
	"testing"
)

func TestHistogramCumulativeBuckets(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	if snap.count != 3 || snap.sum != 555 {
		t.Fatalf("unexpected snapshot count=%d sum=%v", snap.count, snap.sum)
	}
	if snap.counts[0] != 1 || snap.counts[1] != 1 {
		t.Fatalf("expected one value per bucket, got %v", snap.counts)
	}
}

func TestRenderIncludesCounters(t *testing.T) {
	IncTranslationCacheHit()
	ObserveProcessDurationMs(12.5)

	out := Render()
	for _, want := range []string{
		"# TYPE translation_cache_hits_total counter",
		"documents_uploaded_total",
		`process_duration_ms_bucket{le="+Inf"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in metrics output:\n%s", want, out)
		}
	}
}
