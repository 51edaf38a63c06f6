package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrPoolStopped is returned when work is submitted to a pool that is not running
var ErrPoolStopped = errors.New("worker pool is not running")

// Task is a unit of inference work
type Task func(ctx context.Context) error

type job struct {
	ctx    context.Context
	task   Task
	result chan error
}

// Worker executes tasks from the shared queue one at a time
type Worker struct {
	id     string
	queue  <-chan job
	logger *zap.Logger
	wg     *sync.WaitGroup
}

func (w *Worker) run() {
	defer w.wg.Done()

	w.logger.Debug("worker starting", zap.String("worker", w.id))
	defer w.logger.Debug("worker stopped", zap.String("worker", w.id))

	for j := range w.queue {
		start := time.Now()
		err := w.execute(j)
		w.logger.Debug("task finished",
			zap.String("worker", w.id),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		j.result <- err
	}
}

func (w *Worker) execute(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return j.task(j.ctx)
}

// WorkerPool bounds the number of concurrently running inference tasks
type WorkerPool struct {
	workers []*Worker
	queue   chan job
	logger  *zap.Logger
	wg      sync.WaitGroup
	mu      sync.RWMutex
	started bool
}

// NewWorkerPool creates a pool of workerCount workers
func NewWorkerPool(workerCount int, logger *zap.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerPool{
		workers: make([]*Worker, workerCount),
		logger:  logger,
	}
}

// Size returns the number of workers
func (p *WorkerPool) Size() int {
	return len(p.workers)
}

// Start starts all workers
func (p *WorkerPool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("worker pool already started")
	}

	p.logger.Info("starting worker pool", zap.Int("workers", len(p.workers)))

	p.queue = make(chan job)
	for i := range p.workers {
		p.workers[i] = &Worker{
			id:     fmt.Sprintf("worker-%d", i+1),
			queue:  p.queue,
			logger: p.logger,
			wg:     &p.wg,
		}
		p.wg.Add(1)
		go p.workers[i].run()
	}

	p.started = true
	return nil
}

// Stop waits for running tasks and stops all workers
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.logger.Info("stopping worker pool")

	close(p.queue)
	p.wg.Wait()
	p.started = false
}

// Submit runs task on a free worker and waits for its result. It returns
// ctx.Err() if ctx ends before a worker picks the task up. Once running, the
// task receives ctx and Submit waits for it to return.
func (p *WorkerPool) Submit(ctx context.Context, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started {
		return ErrPoolStopped
	}

	j := job{ctx: ctx, task: task, result: make(chan error, 1)}
	select {
	case p.queue <- j:
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-j.result
}
