package warmup

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"tourmap/internal/enrich"
	"tourmap/internal/mapview"
	"tourmap/internal/resolver"
	"tourmap/pkg/logger"
)

// Resolver is the part of *resolver.Resolver the warmer needs.
type Resolver interface {
	Resolve(ctx context.Context, artistID int, surface resolver.Surface) (resolver.Result, error)
}

// Summary is what one warm run achieved.
type Summary struct {
	ArtistID int           `json:"artist_id"`
	Markers  int           `json:"markers"`
	Skipped  int           `json:"skipped"`
	Cached   int           `json:"cached"`
	Geocoded int           `json:"geocoded"`
	Took     time.Duration `json:"took"`
	Err      string        `json:"error,omitempty"`
}

// Job carries one request through the pipeline.
type Job struct {
	Request Request
	View    *mapview.View
	Result  resolver.Result
	Err     error
	Summary Summary

	started time.Time
	// commit acknowledges the source message; nil for direct Warm calls.
	commit func(ctx context.Context) error
}

func newJob(req Request) *Job {
	return &Job{Request: req, View: mapview.New(), started: time.Now()}
}

// Warmer resolves warm requests one at a time. Throttling is left to the
// resolver, which shares its limiter with any other user of it.
type Warmer struct {
	resolver Resolver
	pipeline *enrich.Pipeline[Job]
	log      *zap.Logger
	onDone   func(Summary)

	warmed atomic.Int64
	failed atomic.Int64
}

type Option func(*Warmer)

func WithLogger(log *zap.Logger) Option {
	return func(w *Warmer) { w.log = logger.OrNop(log) }
}

// WithSummaryHook registers fn to be called after every request.
func WithSummaryHook(fn func(Summary)) Option {
	return func(w *Warmer) { w.onDone = fn }
}

func NewWarmer(r Resolver, opts ...Option) *Warmer {
	w := &Warmer{resolver: r, log: zap.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	w.pipeline = enrich.NewPipeline(
		enrich.NewStage(w.resolve),
		enrich.NewStage(w.summarize),
		enrich.NewStage(w.acknowledge),
	).WithLogger(w.log)
	return w
}

func (w *Warmer) resolve(ctx context.Context, job *Job) error {
	job.Result, job.Err = w.resolver.Resolve(ctx, job.Request.ArtistID, job.View)
	return job.Err
}

func (w *Warmer) summarize(_ context.Context, job *Job) error {
	job.Summary = Summary{
		ArtistID: job.Request.ArtistID,
		Markers:  len(job.Result.Markers),
		Skipped:  len(job.Result.Skipped),
		Cached:   job.Result.Cached,
		Geocoded: job.Result.Geocoded,
		Took:     time.Since(job.started),
	}
	if job.Err != nil {
		job.Summary.Err = job.Err.Error()
		w.failed.Add(1)
	} else {
		w.warmed.Add(1)
	}

	w.log.Info("artist warmed",
		zap.Int("artist_id", job.Summary.ArtistID),
		zap.Int("markers", job.Summary.Markers),
		zap.Int("skipped", job.Summary.Skipped),
		zap.Int("cached", job.Summary.Cached),
		zap.Int("geocoded", job.Summary.Geocoded),
		zap.Duration("took", job.Summary.Took),
		zap.String("error", job.Summary.Err))
	if w.onDone != nil {
		w.onDone(job.Summary)
	}
	return nil
}

// acknowledge commits the source message once the request has been warmed.
// A run cut short by shutdown is left uncommitted so it is redelivered.
func (w *Warmer) acknowledge(ctx context.Context, job *Job) error {
	if job.commit == nil {
		return nil
	}
	if errors.Is(job.Err, context.Canceled) || errors.Is(job.Err, context.DeadlineExceeded) {
		return nil
	}
	return job.commit(ctx)
}

// Warm runs one request through the pipeline.
func (w *Warmer) Warm(ctx context.Context, req Request) Summary {
	job := newJob(req)
	_ = w.pipeline.Apply(ctx, job)
	return job.Summary
}

// Run warms every item until the channel is closed or ctx is done. Each
// item's message is committed after its warm run has finished.
func (w *Warmer) Run(ctx context.Context, items <-chan *Item[Request]) {
	jobs := make(chan *Job)
	go func() {
		defer close(jobs)
		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-items:
				if !ok {
					return
				}
				job := newJob(item.Data)
				job.commit = item.Commit
				select {
				case jobs <- job:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	w.pipeline.Process(ctx, jobs)
}

// Stats returns the number of successful and failed requests so far.
func (w *Warmer) Stats() (warmed, failed int64) {
	return w.warmed.Load(), w.failed.Load()
}
