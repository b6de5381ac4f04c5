package metrics

import (
	"path"
	"sort"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"github.com/pkg/errors"
)

var (
	mu      sync.Mutex
	storage tstorage.Storage
	values  = map[string]int64{}
)

// InitMetrics opens the time-series store under workdir/data/metrics.
// An empty workdir keeps the series in memory only.
func InitMetrics(workdir string) error {
	opts := []tstorage.Option{
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithPartitionDuration(time.Hour),
		tstorage.WithRetention(7 * 24 * time.Hour),
	}
	if workdir != "" {
		opts = append(opts, tstorage.WithDataPath(path.Join(workdir, "data", "metrics")))
	}
	s, err := tstorage.NewStorage(opts...)
	if err != nil {
		return errors.Wrap(err, "open metrics storage")
	}
	mu.Lock()
	defer mu.Unlock()
	storage = s
	return nil
}

// Close flushes and closes the store.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	values = map[string]int64{}
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}

// SetGauge records the current value of a gauge.
func SetGauge(name string, value int64) {
	mu.Lock()
	defer mu.Unlock()
	values[name] = value
	insert(name, value)
}

// Incr bumps a counter by one and records the new total.
func Incr(name string) {
	mu.Lock()
	defer mu.Unlock()
	values[name]++
	insert(name, values[name])
}

// Value returns the last recorded value of a counter or gauge.
func Value(name string) int64 {
	mu.Lock()
	defer mu.Unlock()
	return values[name]
}

// Snapshot returns the last value of every known metric.
func Snapshot() map[string]int64 {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]int64, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

// Point is a single stored sample.
type Point struct {
	Timestamp int64 `json:"timestamp"`
	Value     int64 `json:"value"`
}

// Series returns the samples of name recorded since the given time.
func Series(name string, since time.Time) ([]Point, error) {
	mu.Lock()
	s := storage
	mu.Unlock()
	if s == nil {
		return nil, nil
	}
	points, err := s.Select(name, nil, since.Unix(), time.Now().Unix()+1)
	if errors.Is(err, tstorage.ErrNoDataPoints) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select %s", name)
	}
	out := make([]Point, 0, len(points))
	for _, p := range points {
		out = append(out, Point{Timestamp: p.Timestamp, Value: int64(p.Value)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// insert must be called with mu held.
func insert(name string, value int64) {
	if storage == nil {
		return
	}
	_ = storage.InsertRows([]tstorage.Row{{
		Metric:    name,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: float64(value)},
	}})
}
