// Package enrich provides a small generic pipeline: steps within a stage run
// in parallel, stages run sequentially.
package enrich

import (
	"context"
)

// Step mutates item in place. Steps sharing a stage run concurrently on the
// same item and must coordinate writes to shared fields.
type Step[T any] func(ctx context.Context, item *T) error

// Stage groups steps that are safe to execute in parallel for one item.
type Stage[T any] struct {
	steps []Step[T]
}

func NewStage[T any](steps ...Step[T]) Stage[T] {
	return Stage[T]{steps: steps}
}
