package worker

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of work executed by the pool.
type Task func(ctx context.Context)

// LoadFunc samples system load as a fraction of capacity, where 1.0
// means every core is busy.
type LoadFunc func() (float64, error)

// Config sizes the pool. Zero values fall back to the defaults below.
type Config struct {
	Initial        int
	Min            int
	Max            int
	QueueSize      int
	AdjustInterval time.Duration
	HighLoad       float64
	LowLoad        float64
	Load           LoadFunc
}

const (
	defaultInitial  = 12
	defaultMin      = 2
	defaultMax      = 16
	defaultQueue    = 256
	defaultInterval = 30 * time.Second
	defaultHighLoad = 0.90
	defaultLowLoad  = 0.45
)

// Pool is a bounded worker pool whose size adapts to system load
// between Min and Max: one worker is retired when load crosses the
// high watermark, one is added back when it drops below the low one.
// Running tasks are never interrupted; scaling only affects how many
// queued tasks execute concurrently.
type Pool struct {
	cfg    Config
	tasks  chan Task
	logger *zap.Logger

	mu          sync.Mutex
	stops       []chan struct{}
	started     bool
	adjustments int

	wg   sync.WaitGroup
	done chan struct{}
}

// NewPool creates a pool with the given sizing limits.
func NewPool(cfg Config, logger *zap.Logger) *Pool {
	if cfg.Min <= 0 {
		cfg.Min = defaultMin
	}
	if cfg.Max < cfg.Min {
		cfg.Max = defaultMax
		if cfg.Max < cfg.Min {
			cfg.Max = cfg.Min
		}
	}
	if cfg.Initial <= 0 {
		cfg.Initial = defaultInitial
	}
	if cfg.Initial < cfg.Min {
		cfg.Initial = cfg.Min
	}
	if cfg.Initial > cfg.Max {
		cfg.Initial = cfg.Max
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueue
	}
	if cfg.AdjustInterval <= 0 {
		cfg.AdjustInterval = defaultInterval
	}
	if cfg.HighLoad <= 0 {
		cfg.HighLoad = defaultHighLoad
	}
	if cfg.LowLoad <= 0 {
		cfg.LowLoad = defaultLowLoad
	}
	if cfg.Load == nil {
		cfg.Load = ProcLoad
	}

	return &Pool{
		cfg:    cfg,
		tasks:  make(chan Task, cfg.QueueSize),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the initial workers and the scaling governor.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	for i := 0; i < p.cfg.Initial; i++ {
		p.addWorkerLocked(ctx)
	}
	p.mu.Unlock()

	p.logger.Info("Worker pool started",
		zap.Int("workers", p.cfg.Initial),
		zap.Int("min", p.cfg.Min),
		zap.Int("max", p.cfg.Max))

	go p.govern(ctx)
}

// Submit queues a task, blocking while the queue is full. It returns
// the context error if ctx ends first or the pool is shut down.
func (p *Pool) Submit(ctx context.Context, t Task) error {
	select {
	case <-p.done:
		return fmt.Errorf("pool is shut down")
	default:
	}

	select {
	case p.tasks <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return fmt.Errorf("pool is shut down")
	}
}

// Workers reports the current worker count.
func (p *Pool) Workers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.stops)
}

// Adjustments reports how many times the governor resized the pool.
func (p *Pool) Adjustments() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.adjustments
}

// Shutdown stops accepting tasks, drains the queue and waits for
// running tasks to finish. The task channel is never closed, so a
// Submit racing Shutdown cannot panic; it either queues the task for
// the drain or reports the pool as shut down.
func (p *Pool) Shutdown() {
	close(p.done)
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *Pool) addWorkerLocked(ctx context.Context) {
	stop := make(chan struct{})
	p.stops = append(p.stops, stop)
	p.wg.Add(1)
	go p.work(ctx, stop)
}

func (p *Pool) work(ctx context.Context, stop chan struct{}) {
	defer p.wg.Done()
	for {
		select {
		case <-stop:
			return
		case <-p.done:
			// Finish whatever is already queued, then exit.
			for {
				select {
				case t := <-p.tasks:
					t(ctx)
				default:
					return
				}
			}
		case t := <-p.tasks:
			t(ctx)
		}
	}
}

// govern periodically samples load and resizes by one worker at a
// time, mirroring the cautious scaling of the batch scanner.
func (p *Pool) govern(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.AdjustInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		load, err := p.cfg.Load()
		if err != nil {
			p.logger.Warn("Failed to sample system load", zap.Error(err))
			continue
		}

		p.mu.Lock()
		current := len(p.stops)
		switch {
		case load > p.cfg.HighLoad && current > p.cfg.Min:
			// Retire one worker; it finishes its running task first.
			stop := p.stops[len(p.stops)-1]
			p.stops = p.stops[:len(p.stops)-1]
			close(stop)
			p.adjustments++
			p.logger.Warn("Reducing workers",
				zap.Float64("load", load),
				zap.Int("workers", current-1))
		case load < p.cfg.LowLoad && current < p.cfg.Max:
			p.addWorkerLocked(ctx)
			p.adjustments++
			p.logger.Info("Increasing workers",
				zap.Float64("load", load),
				zap.Int("workers", current+1))
		}
		p.mu.Unlock()
	}
}

// ProcLoad reads the one-minute load average from /proc/loadavg and
// normalizes it by the core count. On platforms without procfs it
// reports an error and the governor keeps the current size.
func ProcLoad() (float64, error) {
	data, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, fmt.Errorf("unexpected /proc/loadavg format")
	}
	avg, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected /proc/loadavg format: %w", err)
	}
	return avg / float64(runtime.NumCPU()), nil
}
