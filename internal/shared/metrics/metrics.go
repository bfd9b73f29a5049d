package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	descargoStartedTotal   atomic.Uint64
	descargoCompletedTotal atomic.Uint64

	failuresMu       sync.Mutex
	descargoFailures = map[string]uint64{}

	descargoDuration = newHistogram([]float64{500, 1000, 2000, 5000, 10000, 20000, 30000, 60000, 120000})
)

// IncDescargoStarted increments the started counter.
func IncDescargoStarted() {
	descargoStartedTotal.Add(1)
}

// IncDescargoCompleted increments the completed counter.
func IncDescargoCompleted() {
	descargoCompletedTotal.Add(1)
}

// IncDescargoFailed increments the failure counter for the stage that failed.
func IncDescargoFailed(stage string) {
	failuresMu.Lock()
	descargoFailures[stage]++
	failuresMu.Unlock()
}

// ObserveDescargoDurationMs records a pipeline duration in milliseconds.
func ObserveDescargoDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	descargoDuration.Observe(value)
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
	writeCounter(&buf, "descargo_started_total", "Total descargo requests started", descargoStartedTotal.Load())
	writeCounter(&buf, "descargo_completed_total", "Total descargo PDFs delivered", descargoCompletedTotal.Load())
	writeLabeledCounter(&buf, "descargo_failed_total", "Total descargo requests failed by stage", "stage", failureSnapshot())
	writeHistogram(&buf, "descargo_duration_ms", "Descargo pipeline duration in milliseconds", descargoDuration.Snapshot())
	return buf.String()
}

func failureSnapshot() map[string]uint64 {
	failuresMu.Lock()
	defer failuresMu.Unlock()
	out := make(map[string]uint64, len(descargoFailures))
	for k, v := range descargoFailures {
		out[k] = v
	}
	return out
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

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeledCounter(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=\"%s\"} %d\n", name, label, k, values[k])
	}
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
