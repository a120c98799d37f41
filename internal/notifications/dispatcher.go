package notifications

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/orlovm/bidmarket/pkg/logger"
	"github.com/orlovm/bidmarket/pkg/metrics"
)

// Job kinds handled by the dispatcher.
const (
	JobRequestMatched   = "request.matched"
	JobProposalReceived = "proposal.received"
)

// Job describes one notification fan-out unit of work.
type Job struct {
	Kind      string
	RequestID string

	// ProviderIDs carries the matched providers for request.matched jobs.
	ProviderIDs []string

	// ClientID carries the request owner for proposal.received jobs.
	ClientID      string
	ProposalCount int
}

// Sink consumes jobs and turns them into persisted notification rows.
type Sink interface {
	Deliver(ctx context.Context, job Job) error
}

const (
	defaultQueueSize = 256
	defaultWorkers   = 2
)

// Dispatcher is a bounded in-process queue with dedicated consumer
// goroutines. Enqueue never blocks the producer: when the queue is full the
// job is dropped and logged. Delivery failures are logged and counted, never
// propagated.
type Dispatcher struct {
	sink Sink
	jobs chan Job
	log  *zap.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
	closed    chan struct{}
}

// Option customises the Dispatcher.
type Option func(*options)

type options struct {
	queueSize int
	workers   int
}

// WithQueueSize overrides the queue capacity.
func WithQueueSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.queueSize = size
		}
	}
}

// WithWorkers overrides the consumer goroutine count.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// NewDispatcher constructs a Dispatcher and starts its consumers.
func NewDispatcher(sink Sink, opts ...Option) *Dispatcher {
	cfg := options{queueSize: defaultQueueSize, workers: defaultWorkers}
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Dispatcher{
		sink:   sink,
		jobs:   make(chan Job, cfg.queueSize),
		log:    logger.WithModule("dispatcher"),
		closed: make(chan struct{}),
	}

	for i := 0; i < cfg.workers; i++ {
		d.wg.Add(1)
		go d.consume()
	}

	return d
}

// Enqueue hands a job to the queue without ever blocking the caller. The
// return value reports acceptance and exists for tests and metrics only;
// producers ignore it by contract.
func (d *Dispatcher) Enqueue(job Job) bool {
	select {
	case <-d.closed:
		metrics.DispatchJobs.WithLabelValues(job.Kind, "dropped").Inc()
		d.log.Warn("job dropped: dispatcher closed",
			zap.String("kind", job.Kind),
			zap.String("request_id", job.RequestID),
		)
		return false
	default:
	}

	select {
	case d.jobs <- job:
		metrics.DispatchQueueDepth.Set(float64(len(d.jobs)))
		return true
	case <-d.closed:
		metrics.DispatchJobs.WithLabelValues(job.Kind, "dropped").Inc()
		d.log.Warn("job dropped: dispatcher closed",
			zap.String("kind", job.Kind),
			zap.String("request_id", job.RequestID),
		)
		return false
	default:
		metrics.DispatchJobs.WithLabelValues(job.Kind, "dropped").Inc()
		d.log.Warn("job dropped: queue full",
			zap.String("kind", job.Kind),
			zap.String("request_id", job.RequestID),
		)
		return false
	}
}

// Close stops accepting jobs and waits for in-flight work up to the timeout.
// The jobs channel is never closed: racing producers must not panic, so
// shutdown is signalled through the closed channel alone and the consumers
// drain whatever the queue still holds.
func (d *Dispatcher) Close(timeout time.Duration) {
	d.closeOnce.Do(func() {
		close(d.closed)
	})

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		d.log.Warn("shutdown timeout: abandoning in-flight jobs")
	}
}

func (d *Dispatcher) consume() {
	defer d.wg.Done()

	for {
		select {
		case job := <-d.jobs:
			d.deliver(job)
		case <-d.closed:
			// Drain accepted jobs before exiting.
			for {
				select {
				case job := <-d.jobs:
					d.deliver(job)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(job Job) {
	metrics.DispatchQueueDepth.Set(float64(len(d.jobs)))

	// No cancellation: once accepted a job always attempts to complete.
	if err := d.sink.Deliver(context.Background(), job); err != nil {
		metrics.DispatchJobs.WithLabelValues(job.Kind, "failed").Inc()
		d.log.Error("job delivery failed",
			zap.String("kind", job.Kind),
			zap.String("request_id", job.RequestID),
			zap.Strings("provider_ids", job.ProviderIDs),
			zap.String("client_id", job.ClientID),
			zap.Error(err),
		)
		return
	}
	metrics.DispatchJobs.WithLabelValues(job.Kind, "ok").Inc()
}
