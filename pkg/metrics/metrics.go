// Package metrics keeps lightweight operational gauges (cpu, memory, request
// counters) in an embedded time-series store under the workdir. The dashboard
// reads the latest values; nothing here is exposed to end users.
package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

var (
	mu      sync.RWMutex
	storage tstorage.Storage
	// last value per gauge for cheap dashboard reads
	latest = map[string]int64{}
)

// InitMetrics opens the embedded store under workdir/data/metrics.
func InitMetrics(workdir string) error {
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "data", "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(30*24*time.Hour),
	)
	if err != nil {
		return err
	}
	mu.Lock()
	storage = s
	mu.Unlock()
	return nil
}

// SetGauge records the current value of a named gauge.
func SetGauge(name string, value int64) {
	mu.Lock()
	defer mu.Unlock()
	latest[name] = value
	if storage == nil {
		return
	}
	_ = storage.InsertRows([]tstorage.Row{{
		Metric:    name,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: float64(value)},
	}})
}

// Gauge returns the most recent value of a gauge (0 if never set).
func Gauge(name string) int64 {
	mu.RLock()
	defer mu.RUnlock()
	return latest[name]
}

// Range returns raw datapoints for a gauge between start and end.
func Range(name string, start, end time.Time) []*tstorage.DataPoint {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return nil
	}
	points, err := s.Select(name, nil, start.Unix(), end.Unix())
	if err != nil {
		return nil
	}
	return points
}

// Close flushes and closes the store.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
