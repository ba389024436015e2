package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-wakepool/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// PoolSnapshotProvider provides current pool stats snapshots.
// *core.Pool and *wakepool.Loop (via its Pool) both qualify.
type PoolSnapshotProvider interface {
	Stats() core.PoolStats
}

// SnapshotPoller periodically exports pool Stats() snapshots into
// Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	poolPending   *prom.GaugeVec
	poolExecuting *prom.GaugeVec
	poolSpawned   *prom.GaugeVec
	poolCompleted *prom.GaugeVec
	poolPanicked  *prom.GaugeVec
	poolRejected  *prom.GaugeVec
	poolWakes     *prom.GaugeVec
	poolClosed    *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	poolPending := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "wakepool",
		Name:      "pool_pending",
		Help:      "Pending futures per pool.",
	}, []string{"pool"})
	poolExecuting := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "wakepool",
		Name:      "pool_executing",
		Help:      "Executing futures per pool.",
	}, []string{"pool"})
	poolSpawned := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "wakepool",
		Name:      "pool_spawned_total",
		Help:      "Spawned future count snapshot.",
	}, []string{"pool"})
	poolCompleted := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "wakepool",
		Name:      "pool_completed_total",
		Help:      "Completed future count snapshot.",
	}, []string{"pool"})
	poolPanicked := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "wakepool",
		Name:      "pool_panicked_total",
		Help:      "Panicked future count snapshot.",
	}, []string{"pool"})
	poolRejected := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "wakepool",
		Name:      "pool_rejected_total",
		Help:      "Rejected spawn count snapshot.",
	}, []string{"pool"})
	poolWakes := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "wakepool",
		Name:      "pool_wakes_total",
		Help:      "Wake notification count snapshot.",
	}, []string{"pool"})
	poolClosed := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "wakepool",
		Name:      "pool_closed",
		Help:      "Pool closed state (1=closed, 0=open).",
	}, []string{"pool"})

	var err error
	if poolPending, err = registerCollector(reg, poolPending); err != nil {
		return nil, err
	}
	if poolExecuting, err = registerCollector(reg, poolExecuting); err != nil {
		return nil, err
	}
	if poolSpawned, err = registerCollector(reg, poolSpawned); err != nil {
		return nil, err
	}
	if poolCompleted, err = registerCollector(reg, poolCompleted); err != nil {
		return nil, err
	}
	if poolPanicked, err = registerCollector(reg, poolPanicked); err != nil {
		return nil, err
	}
	if poolRejected, err = registerCollector(reg, poolRejected); err != nil {
		return nil, err
	}
	if poolWakes, err = registerCollector(reg, poolWakes); err != nil {
		return nil, err
	}
	if poolClosed, err = registerCollector(reg, poolClosed); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:      interval,
		pools:         make(map[string]PoolSnapshotProvider),
		poolPending:   poolPending,
		poolExecuting: poolExecuting,
		poolSpawned:   poolSpawned,
		poolCompleted: poolCompleted,
		poolPanicked:  poolPanicked,
		poolRejected:  poolRejected,
		poolWakes:     poolWakes,
		poolClosed:    poolClosed,
	}, nil
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.poolsMu.RLock()
	defer p.poolsMu.RUnlock()

	for name, provider := range p.pools {
		stats := provider.Stats()
		p.poolPending.WithLabelValues(name).Set(float64(stats.Pending))
		p.poolExecuting.WithLabelValues(name).Set(float64(stats.Executing))
		p.poolSpawned.WithLabelValues(name).Set(float64(stats.Spawned))
		p.poolCompleted.WithLabelValues(name).Set(float64(stats.Completed))
		p.poolPanicked.WithLabelValues(name).Set(float64(stats.Panicked))
		p.poolRejected.WithLabelValues(name).Set(float64(stats.Rejected))
		p.poolWakes.WithLabelValues(name).Set(float64(stats.Wakes))
		if stats.Closed {
			p.poolClosed.WithLabelValues(name).Set(1)
		} else {
			p.poolClosed.WithLabelValues(name).Set(0)
		}
	}
}
