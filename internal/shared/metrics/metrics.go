package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

type counter struct {
	name string
	help string
	v    atomic.Uint64
}

var (
	uploadsTotal          = &counter{name: "documents_uploaded_total", help: "Total documents created from uploads"}
	extractionFailedTotal = &counter{name: "extraction_failed_total", help: "Total uploads rejected because text extraction failed"}
	translationsComputed  = &counter{name: "translations_computed_total", help: "Total translations computed and stored"}
	translationCacheHits  = &counter{name: "translation_cache_hits_total", help: "Total process requests served from a stored translation"}
	translationFallbacks  = &counter{name: "translation_fallbacks_total", help: "Total translations produced by the dictionary fallback"}
	summariesComputed     = &counter{name: "summaries_computed_total", help: "Total summaries computed and stored"}
	summaryCacheHits      = &counter{name: "summary_cache_hits_total", help: "Total process requests served from a stored summary"}
	allCounters           = []*counter{uploadsTotal, extractionFailedTotal, translationsComputed, translationCacheHits, translationFallbacks, summariesComputed, summaryCacheHits}
	processDuration       = newHistogram([]float64{5, 25, 100, 250, 500, 1000, 2500, 5000, 10000})
)

// IncUploads increments the uploaded documents counter.
func IncUploads() { uploadsTotal.v.Add(1) }

// IncExtractionFailed increments the extraction failure counter.
func IncExtractionFailed() { extractionFailedTotal.v.Add(1) }

// IncTranslationComputed increments the computed translations counter.
func IncTranslationComputed() { translationsComputed.v.Add(1) }

// IncTranslationCacheHit increments the translation reuse counter.
func IncTranslationCacheHit() { translationCacheHits.v.Add(1) }

// IncTranslationFallback increments the dictionary fallback counter.
func IncTranslationFallback() { translationFallbacks.v.Add(1) }

// IncSummaryComputed increments the computed summaries counter.
func IncSummaryComputed() { summariesComputed.v.Add(1) }

// IncSummaryCacheHit increments the summary reuse counter.
func IncSummaryCacheHit() { summaryCacheHits.v.Add(1) }

// ObserveProcessDurationMs records a process call duration in milliseconds.
func ObserveProcessDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	processDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	for _, c := range allCounters {
		writeCounter(&buf, c.name, c.help, c.v.Load())
	}
	writeHistogram(&buf, "process_duration_ms", "Process request duration in milliseconds", processDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe counts value into the first bucket whose bound it fits.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
