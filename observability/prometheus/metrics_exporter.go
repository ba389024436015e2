package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/Swind/go-wakepool/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	pollDurationSeconds *prom.HistogramVec
	tasksSpawnedTotal   *prom.CounterVec
	tasksCompletedTotal *prom.CounterVec
	taskPanicTotal      *prom.CounterVec
	spawnRejectedTotal  *prom.CounterVec
	queueDepth          *prom.GaugeVec
	wakesTotal          *prom.CounterVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "wakepool"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "poll_duration_seconds",
		Help:      "Duration of one poll attempt in seconds.",
		Buckets:   buckets,
	}, []string{"pool"})
	spawnedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_spawned_total",
		Help:      "Total number of futures accepted into the pending queue.",
	}, []string{"pool"})
	completedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_completed_total",
		Help:      "Total number of futures that reached Ready.",
	}, []string{"pool"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_panic_total",
		Help:      "Total number of task panics recovered at the poll boundary.",
	}, []string{"pool"})
	rejectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "spawn_rejected_total",
		Help:      "Total number of refused spawns.",
	}, []string{"pool", "reason"})
	queueDepthVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Queue depth at drain time, by stage.",
	}, []string{"pool", "stage"})
	wakesVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "wakes_total",
		Help:      "Total number of wake notifications.",
	}, []string{"pool"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if spawnedVec, err = registerCollector(reg, spawnedVec); err != nil {
		return nil, err
	}
	if completedVec, err = registerCollector(reg, completedVec); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}
	if rejectedVec, err = registerCollector(reg, rejectedVec); err != nil {
		return nil, err
	}
	if queueDepthVec, err = registerCollector(reg, queueDepthVec); err != nil {
		return nil, err
	}
	if wakesVec, err = registerCollector(reg, wakesVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		pollDurationSeconds: durationVec,
		tasksSpawnedTotal:   spawnedVec,
		tasksCompletedTotal: completedVec,
		taskPanicTotal:      panicVec,
		spawnRejectedTotal:  rejectedVec,
		queueDepth:          queueDepthVec,
		wakesTotal:          wakesVec,
	}, nil
}

// RecordPollDuration records how long one poll attempt took.
func (m *MetricsExporter) RecordPollDuration(poolName string, duration time.Duration) {
	if m == nil {
		return
	}
	m.pollDurationSeconds.WithLabelValues(normalizeLabel(poolName, "unknown")).Observe(duration.Seconds())
}

// RecordTaskSpawned records an accepted spawn.
func (m *MetricsExporter) RecordTaskSpawned(poolName string) {
	if m == nil {
		return
	}
	m.tasksSpawnedTotal.WithLabelValues(normalizeLabel(poolName, "unknown")).Inc()
}

// RecordTaskCompleted records a future reaching Ready.
func (m *MetricsExporter) RecordTaskCompleted(poolName string) {
	if m == nil {
		return
	}
	m.tasksCompletedTotal.WithLabelValues(normalizeLabel(poolName, "unknown")).Inc()
}

// RecordTaskPanic records a task panic.
func (m *MetricsExporter) RecordTaskPanic(poolName string, panicInfo any) {
	if m == nil {
		return
	}
	m.taskPanicTotal.WithLabelValues(normalizeLabel(poolName, "unknown")).Inc()
}

// RecordSpawnRejected records a refused spawn.
func (m *MetricsExporter) RecordSpawnRejected(poolName string, reason string) {
	if m == nil {
		return
	}
	m.spawnRejectedTotal.WithLabelValues(normalizeLabel(poolName, "unknown"), normalizeLabel(reason, "unknown")).Inc()
}

// RecordQueueDepth records the pending and executing depths at drain time.
func (m *MetricsExporter) RecordQueueDepth(poolName string, pending, executing int) {
	if m == nil {
		return
	}
	pool := normalizeLabel(poolName, "unknown")
	m.queueDepth.WithLabelValues(pool, "pending").Set(float64(pending))
	m.queueDepth.WithLabelValues(pool, "executing").Set(float64(executing))
}

// RecordWake records one wake notification.
func (m *MetricsExporter) RecordWake(poolName string) {
	if m == nil {
		return
	}
	m.wakesTotal.WithLabelValues(normalizeLabel(poolName, "unknown")).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
