package webhook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var (
	// ErrPoolStopped is returned when work is submitted to a stopped pool
	ErrPoolStopped = errors.New("worker pool is stopped")
	// ErrPoolFull is returned when the queue has no room left
	ErrPoolFull = errors.New("worker pool queue is full")
)

// DefaultQueueSize is the capacity of each worker queue
const DefaultQueueSize = 16

// Job is a unit of work run by the pool. The context is cancelled when the
// pool is stopped before the job finishes.
type Job func(ctx context.Context)

// Pool runs jobs on a fixed number of workers. Every worker owns a queue,
// so jobs submitted with the same key run one after another in submission
// order.
type Pool struct {
	queues []chan Job
	next   atomic.Uint64
	ctx    context.Context
	cancel context.CancelFunc
	logger zerolog.Logger

	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPool creates a new pool and starts its workers. queueSize is the
// capacity of each worker queue.
func NewPool(workers, queueSize int, logger zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		queues: make([]chan Job, workers),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}

	for i := range p.queues {
		p.queues[i] = make(chan Job, queueSize)
		p.wg.Add(1)
		go p.worker(p.queues[i])
	}

	return p
}

func (p *Pool) worker(queue <-chan Job) {
	defer p.wg.Done()

	for job := range queue {
		p.run(job)
	}
}

func (p *Pool) run(job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Str("panic", fmt.Sprint(r)).Msg("Recovered from panic in webhook job")
		}
	}()
	job(p.ctx)
}

// Submit queues a job on the next worker without blocking
func (p *Pool) Submit(job Job) error {
	return p.enqueue(p.next.Add(1)-1, job)
}

// SubmitKey queues a job on the worker owning key without blocking. Jobs
// with the same key never run concurrently.
func (p *Pool) SubmitKey(key int64, job Job) error {
	return p.enqueue(uint64(key), job)
}

func (p *Pool) enqueue(slot uint64, job Job) error {
	if job == nil {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.queues[slot%uint64(len(p.queues))] <- job:
		return nil
	default:
		return ErrPoolFull
	}
}

// Stop stops accepting jobs and waits for queued ones to finish. When ctx
// expires first, running jobs are cancelled and ctx.Err() is returned.
func (p *Pool) Stop(ctx context.Context) error {
	var err error

	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		for _, queue := range p.queues {
			close(queue)
		}
		p.mu.Unlock()

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			err = ctx.Err()
			p.cancel()
			<-done
		}
		p.cancel()
	})

	return err
}
