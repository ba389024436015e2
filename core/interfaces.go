package core

import (
	"fmt"
	"os"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling task panics
// =============================================================================

// PanicHandler is called when a future panics during a poll, or when an
// event handler panics at a dispatch boundary.
//
// Implementations should be thread-safe; a single handler may serve several
// pools and loops at once.
type PanicHandler interface {
	// HandlePanic is called with the pool (or loop) name, the id of the
	// panicked task (0 when the panic came from an event handler rather
	// than a task), the recovered panic value, and the stack trace captured
	// at recovery time.
	HandlePanic(poolName string, taskID TaskID, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler provides a basic panic handler that logs to stdout.
type DefaultPanicHandler struct{}

// HandlePanic prints panic information to stdout.
func (h *DefaultPanicHandler) HandlePanic(poolName string, taskID TaskID, panicInfo any, stackTrace []byte) {
	if taskID != 0 {
		fmt.Printf("[Pool %s] Task %d panic: %v\nStack trace:\n%s",
			poolName, taskID, panicInfo, stackTrace)
	} else {
		fmt.Printf("[Pool %s] Panic: %v\nStack trace:\n%s",
			poolName, panicInfo, stackTrace)
	}
}

// FatalPanicHandler logs the panic and aborts the process. Intended for
// dispatch boundaries where the panic would otherwise unwind through an
// externally-owned call frame: there is no safe way to resume, so the
// process stops instead.
type FatalPanicHandler struct{}

// HandlePanic writes the panic to stderr and exits.
func (h *FatalPanicHandler) HandlePanic(poolName string, taskID TaskID, panicInfo any, stackTrace []byte) {
	fmt.Fprintf(os.Stderr, "[Pool %s] Fatal panic (task %d): %v\nStack trace:\n%s",
		poolName, taskID, panicInfo, stackTrace)
	os.Exit(2)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting scheduler metrics.
// Implementations can send metrics to monitoring systems (Prometheus,
// StatsD, etc.; see observability/prometheus).
//
// Methods should be non-blocking and fast; several are invoked from inside
// the drain loop.
type Metrics interface {
	// RecordPollDuration records how long one poll attempt took.
	RecordPollDuration(poolName string, duration time.Duration)

	// RecordTaskSpawned records that a future was accepted into the pending queue.
	RecordTaskSpawned(poolName string)

	// RecordTaskCompleted records that a future reached Ready.
	RecordTaskCompleted(poolName string)

	// RecordTaskPanic records that a future panicked during a poll.
	RecordTaskPanic(poolName string, panicInfo any)

	// RecordSpawnRejected records a refused spawn (pool disconnected or poisoned).
	RecordSpawnRejected(poolName string, reason string)

	// RecordQueueDepth records the pending and executing depths at drain time.
	RecordQueueDepth(poolName string, pending, executing int)

	// RecordWake records one wake notification.
	RecordWake(poolName string)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

func (m *NilMetrics) RecordPollDuration(poolName string, duration time.Duration) {}
func (m *NilMetrics) RecordTaskSpawned(poolName string)                          {}
func (m *NilMetrics) RecordTaskCompleted(poolName string)                        {}
func (m *NilMetrics) RecordTaskPanic(poolName string, panicInfo any)             {}
func (m *NilMetrics) RecordSpawnRejected(poolName string, reason string)         {}
func (m *NilMetrics) RecordQueueDepth(poolName string, pending, executing int)   {}
func (m *NilMetrics) RecordWake(poolName string)                                 {}

// =============================================================================
// PoolConfig: Configuration for Pool
// =============================================================================

// PoolConfig holds configuration options for a Pool.
// All fields are optional; zero values select default implementations.
type PoolConfig struct {
	// Name identifies the pool in logs and metrics. Defaults to "pool".
	Name string

	// PanicHandler is called when a polled future panics. Defaults to
	// DefaultPanicHandler.
	PanicHandler PanicHandler

	// Metrics is called to record scheduler metrics. Defaults to NilMetrics.
	Metrics Metrics

	// Logger receives scheduler diagnostics. Defaults to NoOpLogger.
	Logger Logger

	// HistoryCapacity bounds the on-board ring of recent poll records.
	// Defaults to defaultPollHistoryCapacity.
	HistoryCapacity int

	// Wake overrides the pool's wake signal. When nil, the pool builds a
	// ChannelWakeSignal bound to the constructing goroutine. Injecting a
	// signal is how an embedding event loop shares one wake channel with
	// the pool, and how tests count wake deliveries.
	Wake Waker
}

// DefaultPoolConfig returns a config with default handlers.
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		Name:         "pool",
		PanicHandler: &DefaultPanicHandler{},
		Metrics:      &NilMetrics{},
		Logger:       &NoOpLogger{},
	}
}
