// Package queue serializes every call to the external generative AI provider
// behind a single dispatcher, enforcing a minimum spacing between dispatches
// and a bounded number of waiting requests. Both the embedding and generation
// clients route through it; nothing else in the system talks to the provider.
package queue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Call is one provider invocation. It should return a *RateLimitError or
// *ClientError for HTTP-classified failures so the dispatcher can pick the
// right retry behavior; any other error counts as transient.
type Call func(ctx context.Context) (any, error)

// Config tunes the dispatcher. All fields are required.
type Config struct {
	RequestInterval time.Duration // minimum spacing between dispatch starts
	MaxQueueSize    int           // pending requests beyond this are rejected
	MaxRetries      int           // retries per request after the first attempt
	BaseDelay       time.Duration // backoff base: BaseDelay * 2^attempt
}

// Status is a read-only snapshot of the queue, exposed so callers (the UI's
// busy indicator) can look before they leap.
type Status struct {
	QueueLength     int
	Processing      bool
	MaxQueueSize    int
	RequestInterval time.Duration
	LastRequestTime time.Time
}

type outcome struct {
	value any
	err   error
}

type request struct {
	ctx        context.Context
	call       Call
	enqueuedAt time.Time
	done       chan outcome // buffered; dispatcher never blocks on delivery
}

// Queue is the single-flight scheduler. Requests dispatch in FIFO order; a
// retried request is retried in place at the head, so later requests never
// overtake it.
type Queue struct {
	cfg    Config
	logger *slog.Logger

	pending chan *request
	quit    chan struct{}
	done    chan struct{}

	mu           sync.Mutex
	processing   bool
	lastDispatch time.Time

	closeOnce sync.Once
}

// New validates the configuration and starts the dispatcher goroutine.
func New(cfg Config, logger *slog.Logger) (*Queue, error) {
	switch {
	case cfg.RequestInterval < 0:
		return nil, errors.Join(ErrInvalidConfig, errors.New("request interval must not be negative"))
	case cfg.MaxQueueSize <= 0:
		return nil, errors.Join(ErrInvalidConfig, errors.New("max queue size must be positive"))
	case cfg.MaxRetries < 0:
		return nil, errors.Join(ErrInvalidConfig, errors.New("max retries must not be negative"))
	case cfg.BaseDelay <= 0:
		return nil, errors.Join(ErrInvalidConfig, errors.New("base delay must be positive"))
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	q := &Queue{
		cfg:     cfg,
		logger:  logger,
		pending: make(chan *request, cfg.MaxQueueSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go q.run()
	return q, nil
}

// Do enqueues call and blocks until it completes, fails, or ctx is canceled.
// A full queue fails immediately with *QueueFullError, leaving the queue
// untouched. Cancellation after enqueue only abandons the result: the call
// itself is never preempted and still runs (or retries) to completion.
func (q *Queue) Do(ctx context.Context, call Call) (any, error) {
	select {
	case <-q.quit:
		return nil, ErrClosed
	default:
	}

	req := &request{ctx: ctx, call: call, enqueuedAt: time.Now(), done: make(chan outcome, 1)}
	select {
	case q.pending <- req:
	default:
		n := len(q.pending)
		return nil, &QueueFullError{
			QueueLength:   n,
			EstimatedWait: time.Duration(n+1) * q.cfg.RequestInterval,
		}
	}

	select {
	case out := <-req.done:
		return out.value, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Status returns a snapshot of the queue state. No side effects.
func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Status{
		QueueLength:     len(q.pending),
		Processing:      q.processing,
		MaxQueueSize:    q.cfg.MaxQueueSize,
		RequestInterval: q.cfg.RequestInterval,
		LastRequestTime: q.lastDispatch,
	}
}

// Close stops the dispatcher and fails any still-pending requests with
// ErrClosed. Safe to call more than once.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.quit)
		<-q.done
		for {
			select {
			case req := <-q.pending:
				req.done <- outcome{err: ErrClosed}
			default:
				return
			}
		}
	})
}

// run is the dispatcher loop: the only writer of lastDispatch and processing.
func (q *Queue) run() {
	defer close(q.done)
	for {
		// Shutdown wins over pending work.
		select {
		case <-q.quit:
			return
		default:
		}
		select {
		case <-q.quit:
			return
		case req := <-q.pending:
			q.process(req)
		}
	}
}

// process drives one request through its full retry state machine:
// Dispatching -> Succeeded | Retrying -> Dispatching | Failed.
func (q *Queue) process(req *request) {
	q.setProcessing(true)
	defer q.setProcessing(false)

	var lastErr error
	for attempt := 0; ; attempt++ {
		// The caller abandoning before dispatch is the one cooperative
		// cancellation point; an in-flight call always runs to completion.
		if err := req.ctx.Err(); err != nil {
			req.done <- outcome{err: err}
			return
		}

		if !q.waitTurn() {
			req.done <- outcome{err: ErrClosed}
			return
		}
		q.markDispatch()

		value, err := req.call(req.ctx)
		if err == nil {
			req.done <- outcome{value: value}
			return
		}
		lastErr = err

		var clientErr *ClientError
		if errors.As(err, &clientErr) {
			req.done <- outcome{err: err}
			return
		}

		if attempt == q.cfg.MaxRetries {
			break
		}

		delay := q.cfg.BaseDelay << attempt
		var rateErr *RateLimitError
		if errors.As(err, &rateErr) && rateErr.RetryAfter > 0 {
			delay = rateErr.RetryAfter
		}
		q.logger.Warn("provider call failed, retrying",
			"attempt", attempt+1,
			"max_retries", q.cfg.MaxRetries,
			"delay", delay,
			"queued_for", time.Since(req.enqueuedAt),
			"error", err,
		)
		select {
		case <-time.After(delay):
		case <-q.quit:
			req.done <- outcome{err: ErrClosed}
			return
		}
	}

	req.done <- outcome{err: &ProviderError{Attempts: q.cfg.MaxRetries + 1, Err: lastErr}}
}

// waitTurn sleeps until RequestInterval has elapsed since the previous
// dispatch start. Returns false if the queue shut down while waiting.
func (q *Queue) waitTurn() bool {
	q.mu.Lock()
	wait := q.cfg.RequestInterval - time.Since(q.lastDispatch)
	if q.lastDispatch.IsZero() {
		wait = 0
	}
	q.mu.Unlock()

	if wait <= 0 {
		return true
	}
	select {
	case <-time.After(wait):
		return true
	case <-q.quit:
		return false
	}
}

func (q *Queue) markDispatch() {
	q.mu.Lock()
	q.lastDispatch = time.Now()
	q.mu.Unlock()
}

func (q *Queue) setProcessing(v bool) {
	q.mu.Lock()
	q.processing = v
	q.mu.Unlock()
}
