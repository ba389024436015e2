package prometheus

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsExporter_RecordMethods(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("wakepool", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	exporter.RecordPollDuration("pool-a", 250*time.Microsecond)
	exporter.RecordTaskSpawned("pool-a")
	exporter.RecordTaskCompleted("pool-a")
	exporter.RecordTaskPanic("pool-a", "boom")
	exporter.RecordSpawnRejected("pool-a", "disconnected")
	exporter.RecordQueueDepth("pool-a", 3, 2)
	exporter.RecordWake("pool-a")

	spawned := testutil.ToFloat64(exporter.tasksSpawnedTotal.WithLabelValues("pool-a"))
	if spawned != 1 {
		t.Fatalf("spawned total = %v, want 1", spawned)
	}

	completed := testutil.ToFloat64(exporter.tasksCompletedTotal.WithLabelValues("pool-a"))
	if completed != 1 {
		t.Fatalf("completed total = %v, want 1", completed)
	}

	panicTotal := testutil.ToFloat64(exporter.taskPanicTotal.WithLabelValues("pool-a"))
	if panicTotal != 1 {
		t.Fatalf("panic total = %v, want 1", panicTotal)
	}

	rejected := testutil.ToFloat64(exporter.spawnRejectedTotal.WithLabelValues("pool-a", "disconnected"))
	if rejected != 1 {
		t.Fatalf("rejected total = %v, want 1", rejected)
	}

	pending := testutil.ToFloat64(exporter.queueDepth.WithLabelValues("pool-a", "pending"))
	if pending != 3 {
		t.Fatalf("pending depth = %v, want 3", pending)
	}
	executing := testutil.ToFloat64(exporter.queueDepth.WithLabelValues("pool-a", "executing"))
	if executing != 2 {
		t.Fatalf("executing depth = %v, want 2", executing)
	}

	wakes := testutil.ToFloat64(exporter.wakesTotal.WithLabelValues("pool-a"))
	if wakes != 1 {
		t.Fatalf("wakes total = %v, want 1", wakes)
	}

	histCount, err := histogramSampleCount(exporter.pollDurationSeconds.WithLabelValues("pool-a"))
	if err != nil {
		t.Fatalf("histogramSampleCount failed: %v", err)
	}
	if histCount != 1 {
		t.Fatalf("poll duration sample count = %d, want 1", histCount)
	}
}

func TestMetricsExporter_AlreadyRegisteredReuse(t *testing.T) {
	reg := prom.NewRegistry()
	first, err := NewMetricsExporter("wakepool", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("first NewMetricsExporter failed: %v", err)
	}
	second, err := NewMetricsExporter("wakepool", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("second NewMetricsExporter failed: %v", err)
	}

	first.RecordTaskPanic("pool-a", nil)
	second.RecordTaskPanic("pool-a", nil)

	got := testutil.ToFloat64(first.taskPanicTotal.WithLabelValues("pool-a"))
	if got != 2 {
		t.Fatalf("shared panic counter = %v, want 2", got)
	}
}

func TestMetricsExporter_NormalizesEmptyLabel(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("wakepool", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	exporter.RecordTaskSpawned("")

	got := testutil.ToFloat64(exporter.tasksSpawnedTotal.WithLabelValues("unknown"))
	if got != 1 {
		t.Fatalf("spawned total for fallback label = %v, want 1", got)
	}
}

func histogramSampleCount(observer prom.Observer) (uint64, error) {
	collector, ok := observer.(prom.Collector)
	if !ok {
		return 0, nil
	}

	metricCh := make(chan prom.Metric, 1)
	collector.Collect(metricCh)
	close(metricCh)
	for metric := range metricCh {
		msg := &dto.Metric{}
		if err := metric.Write(msg); err != nil {
			return 0, err
		}
		if msg.Histogram != nil {
			return msg.Histogram.GetSampleCount(), nil
		}
	}
	return 0, nil
}
