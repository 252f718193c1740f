package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"validation-proxy-service/internal/telemetry"
)

var (
	ErrQueueFull = errors.New("validation queue is full")
	ErrStopped   = errors.New("worker pool is stopped")
)

const shutdownReason = "service shutting down"

// Pool runs tasks on a fixed number of goroutines fed by a bounded queue.
type Pool struct {
	processor *Processor
	workers   int
	queue     chan Task
	log       logrus.FieldLogger

	mu      sync.RWMutex
	stopped bool
}

func NewPool(processor *Processor, workers, queueSize int, log logrus.FieldLogger) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Pool{
		processor: processor,
		workers:   workers,
		queue:     make(chan Task, queueSize),
		log:       log,
	}
}

// Submit enqueues t without blocking.
func (p *Pool) Submit(t Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrStopped
	}
	select {
	case p.queue <- t:
		telemetry.QueueDepthGauge.Set(float64(len(p.queue)))
		return nil
	default:
		return ErrQueueFull
	}
}

// Run processes tasks until ctx is done. Canceling ctx aborts in-flight
// validator calls; tasks still queued are finalized as errors.
func (p *Pool) Run(ctx context.Context) error {
	p.log.WithField("workers", p.workers).Info("worker pool started")

	g := new(errgroup.Group)
	for i := 0; i < p.workers; i++ {
		n := i + 1
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case t := <-p.queue:
					telemetry.QueueDepthGauge.Set(float64(len(p.queue)))
					if ctx.Err() != nil {
						_ = p.processor.Abort(ctx, t, shutdownReason)
						return nil
					}
					if err := p.processor.Process(ctx, t); err != nil {
						p.log.WithFields(logrus.Fields{"worker": n, "job_id": t.JobID}).
							WithError(err).Error("process job")
					}
				}
			}
		})
	}
	_ = g.Wait()

	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	for {
		select {
		case t := <-p.queue:
			_ = p.processor.Abort(ctx, t, shutdownReason)
		default:
			telemetry.QueueDepthGauge.Set(0)
			p.log.Info("worker pool stopped")
			return nil
		}
	}
}
