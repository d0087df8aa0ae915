// Package metrics keeps lightweight local time-series counters in the
// application workdir. Samples survive restarts and feed the admin
// dashboard; this is not a replacement for external monitoring.
package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

const (
	MetricHTTPRequests     = "http_requests"
	MetricOrdersCreated    = "orders_created"
	MetricCheckoutRejected = "checkout_rejected"
	MetricSystemCPU        = "system_cpu_percent"
	MetricSystemMem        = "system_mem_percent"
)

var (
	mu    sync.Mutex
	store tstorage.Storage
)

func InitMetrics(workdir string) error {
	mu.Lock()
	defer mu.Unlock()
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(30*24*time.Hour),
	)
	if err != nil {
		return err
	}
	store = s
	return nil
}

// Record writes one sample for the named metric at the current time.
func Record(name string, value float64) {
	mu.Lock()
	defer mu.Unlock()
	if store == nil {
		return
	}
	_ = store.InsertRows([]tstorage.Row{{
		Metric:    name,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: value},
	}})
}

// Inc records a single-count event sample.
func Inc(name string) {
	Record(name, 1)
}

// Select returns the samples for a metric over [start, end].
func Select(name string, start, end int64) []*tstorage.DataPoint {
	mu.Lock()
	defer mu.Unlock()
	if store == nil {
		return nil
	}
	points, err := store.Select(name, nil, start, end)
	if err != nil {
		return nil
	}
	return points
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if store == nil {
		return nil
	}
	err := store.Close()
	store = nil
	return err
}
