package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	pipelineOutcomes = newCounterVec("domain", "outcome")
	llmCalls         = newCounterVec("provider", "result")
	tasks            = newCounterVec("kind", "status")
	workerMessages   = newCounterVec("kind", "result")
	throttled        = newCounterVec("route")

	llmCallDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
	taskDuration    = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
)

// IncPipelineOutcome counts one orchestrator run by terminal state.
func IncPipelineOutcome(domain, outcome string) {
	pipelineOutcomes.Inc(domain, outcome)
}

// IncLLMCall counts one provider attempt; result is "ok" or an error category.
func IncLLMCall(provider, result string) {
	llmCalls.Inc(provider, result)
}

// IncTask counts a task status transition.
func IncTask(kind, status string) {
	tasks.Inc(kind, status)
}

// IncWorkerMessage counts a delivered queue message by how the worker settled it.
func IncWorkerMessage(kind, result string) {
	workerMessages.Inc(kind, result)
}

// IncThrottled counts a request refused by the submit rate limiter.
func IncThrottled(route string) {
	throttled.Inc(route)
}

// ObserveLLMDurationMs records a provider call duration in milliseconds.
func ObserveLLMDurationMs(value float64) {
	llmCallDuration.Observe(clamp(value))
}

// ObserveTaskDurationMs records a task duration in milliseconds.
func ObserveTaskDurationMs(value float64) {
	taskDuration.Observe(clamp(value))
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
	writeCounterVec(&buf, "pipeline_outcomes_total", "Orchestrator runs by terminal state", pipelineOutcomes)
	writeCounterVec(&buf, "llm_calls_total", "Provider call attempts by result", llmCalls)
	writeCounterVec(&buf, "tasks_total", "Task status transitions", tasks)
	writeCounterVec(&buf, "worker_messages_total", "Queue messages by worker result", workerMessages)
	writeCounterVec(&buf, "http_throttled_total", "Requests refused by the rate limiter", throttled)
	writeHistogram(&buf, "llm_call_duration_ms", "Provider call duration in milliseconds", llmCallDuration.Snapshot())
	writeHistogram(&buf, "task_duration_ms", "Task duration in milliseconds", taskDuration.Snapshot())
	return buf.String()
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

type counterVec struct {
	mu     sync.Mutex
	labels []string
	values map[string]uint64
}

func newCounterVec(labels ...string) *counterVec {
	return &counterVec{labels: labels, values: make(map[string]uint64)}
}

func (c *counterVec) Inc(values ...string) {
	if len(values) != len(c.labels) {
		return
	}
	key := strings.Join(values, "\x00")
	c.mu.Lock()
	c.values[key]++
	c.mu.Unlock()
}

func (c *counterVec) Value(values ...string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[strings.Join(values, "\x00")]
}

func (c *counterVec) snapshot() ([]string, map[string]uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]uint64, len(c.values))
	keys := make([]string, 0, len(c.values))
	for k, v := range c.values {
		out[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, out
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

// Observe stores the value in the first bucket whose bound holds it;
// writeHistogram accumulates buckets when rendering.
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

func writeCounterVec(buf *bytes.Buffer, name, help string, c *counterVec) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys, values := c.snapshot()
	for _, key := range keys {
		parts := strings.Split(key, "\x00")
		labels := make([]string, 0, len(parts))
		for i, p := range parts {
			labels = append(labels, fmt.Sprintf("%s=%q", c.labels[i], p))
		}
		fmt.Fprintf(buf, "%s{%s} %d\n", name, strings.Join(labels, ","), values[key])
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

// SinceMillis returns the elapsed time since start in milliseconds.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
