package enrich

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"tourmap/pkg/logger"
)

// Pipeline runs a sequence of stages for every item it receives. Steps of
// one stage run in parallel and stages run one after another. Step errors
// are logged and do not stop the item.
type Pipeline[T any] struct {
	stages []Stage[T]
	log    *zap.Logger
}

func NewPipeline[T any](stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{stages: stages, log: zap.NewNop()}
}

// WithLogger sets the logger used for step failures.
func (p *Pipeline[T]) WithLogger(log *zap.Logger) *Pipeline[T] {
	p.log = logger.OrNop(log)
	return p
}

// Apply runs every stage for a single item and returns the joined step
// errors.
func (p *Pipeline[T]) Apply(ctx context.Context, item *T) error {
	var errs []error
	for i, stage := range p.stages {
		var (
			wg sync.WaitGroup
			mu sync.Mutex
		)
		for _, step := range stage.steps {
			wg.Add(1)
			go func(step Step[T]) {
				defer wg.Done()
				if err := step(ctx, item); err != nil {
					p.log.Warn("step failed", zap.Int("stage", i), zap.Error(err))
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			}(step)
		}
		// stage barrier
		wg.Wait()
	}
	return errors.Join(errs...)
}

// Process applies the pipeline to items from in until the channel is closed.
// Items keep flowing after a cancelled context; steps are expected to observe
// ctx themselves.
func (p *Pipeline[T]) Process(ctx context.Context, in <-chan *T) {
	for item := range in {
		_ = p.Apply(ctx, item)
	}
}
