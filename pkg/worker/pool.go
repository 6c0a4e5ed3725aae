// Package worker provides an asynchronous worker pool for persisting
// conversation exchanges: each exchange is summarized, appended to history,
// and published to the event stream.
//
// The pool decouples summarization and storage from the API's HTTP hot path,
// so replies reach the user without waiting on the extra completion call that
// produces each turn's cached summary.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/petalhealth/petal/pkg/convo"
	"github.com/petalhealth/petal/pkg/eventstream"
	"github.com/petalhealth/petal/pkg/history"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is one completed exchange awaiting persistence.
type Job struct {
	UserID string
	Query  string
	Reply  string
}

// Config is the configuration options for the worker pool.
type Config struct {
	// History is the store turns are appended to.
	History history.Driver

	// Summarizer produces each turn's cached one-line summary.
	Summarizer *convo.Summarizer

	// Publisher receives a turn-persisted event per stored turn.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided logger.
	Logger *slog.Logger
}

// Pool processes persistence jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool creates a pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("job queued", "user_id", job.UserID)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped", "user_id", job.UserID)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("persistence worker stopped", "worker_id", id)
}

// processJob persists both turns of an exchange, user first.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	if err := p.storeTurn(ctx, job.UserID, history.RoleUser, job.Query); err != nil {
		p.logger.Error("async turn storage failed",
			"user_id", job.UserID,
			"role", history.RoleUser,
			"error", err,
		)
		return
	}

	if err := p.storeTurn(ctx, job.UserID, history.RoleAssistant, job.Reply); err != nil {
		p.logger.Error("async turn storage failed",
			"user_id", job.UserID,
			"role", history.RoleAssistant,
			"error", err,
		)
		return
	}

	p.logger.Info("exchange stored", "user_id", job.UserID)
}

// storeTurn summarizes and appends one turn, then publishes its event.
// A failed publish is logged but does not fail the stored turn.
func (p *Pool) storeTurn(ctx context.Context, userID, role, content string) error {
	turn := history.Turn{
		Role:    role,
		Content: content,
		Summary: p.config.Summarizer.Summarize(ctx, content),
	}

	id, err := p.config.History.Append(ctx, userID, turn)
	if err != nil {
		return fmt.Errorf("appending %s turn: %w", role, err)
	}
	turn.ID = id

	if err := p.config.Publisher.PublishTurn(ctx, eventstream.NewTurnEvent(userID, turn)); err != nil {
		p.logger.Warn("failed to publish turn event",
			"user_id", userID,
			"turn_id", id,
			"error", err,
		)
	}

	return nil
}
