package channels

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hoststack/concierge/internal/delivery"
)

// dispatchJob pairs a reply with the client that must deliver it.
type dispatchJob struct {
	client CarrierClient
	reply  OutgoingReply
}

// Dispatcher delivers replies in the background so webhook handlers can
// acknowledge the carrier immediately. Jobs flow through a bounded queue
// into a small worker pool; each attempt is recorded to the delivery store.
type Dispatcher struct {
	queue    chan dispatchJob
	wg       sync.WaitGroup
	inflight sync.WaitGroup
	attempts *delivery.Store
	policy   RetryPolicy
	logger   *zap.Logger

	closeOnce sync.Once
}

// NewDispatcher creates a Dispatcher with the given worker count and queue
// depth, and starts its workers. attempts may be nil to skip bookkeeping.
func NewDispatcher(workers, queueDepth int, policy RetryPolicy, attempts *delivery.Store, logger *zap.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 2
	}
	if queueDepth <= 0 {
		queueDepth = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		queue:    make(chan dispatchJob, queueDepth),
		attempts: attempts,
		policy:   policy,
		logger:   logger,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Enqueue schedules one reply for delivery. It blocks only when the queue is
// full. Returns false after Close.
func (d *Dispatcher) Enqueue(client CarrierClient, reply OutgoingReply) (ok bool) {
	defer func() {
		if recover() != nil {
			d.inflight.Done()
			ok = false
		}
	}()
	d.inflight.Add(1)
	d.queue <- dispatchJob{client: client, reply: reply}
	return true
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.queue {
		d.deliver(job)
		d.inflight.Done()
	}
}

func (d *Dispatcher) deliver(job dispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	observer := func(channel, recipient string, attempt int, err error) {
		if d.attempts == nil {
			return
		}
		outcome := delivery.OutcomeSent
		errMsg := ""
		if err != nil {
			errMsg = err.Error()
			if isTransient(err) && attempt < int(d.policy.Attempts) {
				outcome = delivery.OutcomeRetry
			} else {
				outcome = delivery.OutcomeFailed
			}
		}
		if recordErr := d.attempts.Record(ctx, channel, recipient, attempt, outcome, errMsg); recordErr != nil {
			d.logger.Warn("recording delivery attempt failed", zap.Error(recordErr))
		}
	}

	if err := SendWithRetry(ctx, job.client, job.reply, d.policy, observer, d.logger); err != nil {
		d.logger.Error("delivery failed after retries",
			zap.String("channel", job.client.Channel()),
			zap.String("recipient", job.reply.Recipient),
			zap.Error(err))
	}
}

// Wait blocks until every enqueued job has finished delivering.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}

// Close stops accepting jobs, drains the queue and stops the workers.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
