package submit

import (
	"context"
	"errors"
	"sync"

	productdomain "github.com/kollect-it/catalog/internal/product/domain"
	"go.uber.org/zap"
)

// ErrWorkerStopped is returned for jobs that were queued but never
// submitted because the worker shut down first.
var ErrWorkerStopped = errors.New("submission worker stopped")

// Outcome is the terminal state of one queued submission.
type Outcome struct {
	Payload productdomain.Payload
	Result  *Result
	Err     error
}

type job struct {
	payload productdomain.Payload
	done    chan Outcome
}

// Worker drains queued submissions one at a time, in order. A single
// goroutine owns the client, so submissions never interleave and the
// endpoint sees at most one in-flight request from this process.
type Worker struct {
	client *Client
	log    *zap.Logger

	jobs   chan job
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

func NewWorker(client *Client, log *zap.Logger, queueSize int) *Worker {
	if queueSize <= 0 {
		queueSize = 16
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		client: client,
		log:    log.Named("submit.worker"),
		jobs:   make(chan job, queueSize),
		cancel: cancel,
	}
	w.wg.Add(1)
	go w.run(ctx)
	return w
}

// Enqueue queues a payload and returns a channel that receives exactly
// one Outcome when the submission finishes. It never blocks on the
// network; a full queue is reported immediately.
func (w *Worker) Enqueue(payload productdomain.Payload) (<-chan Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil, ErrWorkerStopped
	}

	j := job{payload: payload, done: make(chan Outcome, 1)}
	select {
	case w.jobs <- j:
		return j.done, nil
	default:
		return nil, errors.New("submission queue full")
	}
}

// Stop cancels the in-flight submission, fails any queued jobs with
// ErrWorkerStopped and waits for the worker goroutine to exit.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.jobs)
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()
	for j := range w.jobs {
		if ctx.Err() != nil {
			j.done <- Outcome{Payload: j.payload, Err: ErrWorkerStopped}
			continue
		}

		result, err := w.client.Submit(ctx, j.payload)
		if err != nil {
			w.log.Warn("submission failed",
				zap.String("sku", j.payload.SKU),
				zap.Error(err),
			)
		}
		j.done <- Outcome{Payload: j.payload, Result: result, Err: err}
	}
}
