// Package warmup fills the persistent geocoding cache ahead of user traffic.
// Warm requests arrive on a Kafka topic; each one runs the normal resolution
// loop against a throwaway view so every location ends up cached.
package warmup

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"tourmap/pkg/logger"
)

// MessageIterator is the consuming side of a Kafka topic. The channel is
// closed by the implementation when the consumer stops.
type MessageIterator interface {
	Messages() <-chan kafka.Message
	CommitOffset(ctx context.Context, msg kafka.Message) error
}

// DecodeFunc turns a message value into an item.
type DecodeFunc[T any] func(value []byte) (T, error)

// Item pairs a decoded value with the message it came from.
type Item[T any] struct {
	Data    T
	Message kafka.Message

	commit func(ctx context.Context, msg kafka.Message) error
}

// Commit acknowledges the item's message. Call it once the item has been
// fully processed; an uncommitted message is redelivered after a restart.
func (i *Item[T]) Commit(ctx context.Context) error {
	if i.commit == nil {
		return nil
	}
	return i.commit(ctx, i.Message)
}

// Iterator decodes messages from a MessageIterator and yields them as items.
type Iterator[T any] struct {
	msgIterator MessageIterator
	decode      DecodeFunc[T]
	log         *zap.Logger
}

func NewIterator[T any](iterator MessageIterator, decode DecodeFunc[T], log *zap.Logger) *Iterator[T] {
	return &Iterator[T]{
		msgIterator: iterator,
		decode:      decode,
		log:         logger.OrNop(log),
	}
}

// Items streams decoded items until the message channel is closed or ctx is
// done. Messages that fail to decode are logged and skipped without a
// commit. Decoded items are not committed here; the receiver calls
// Item.Commit after processing, which gives at-least-once delivery.
func (it *Iterator[T]) Items(ctx context.Context) <-chan *Item[T] {
	out := make(chan *Item[T])
	go func() {
		defer close(out)

		for {
			var (
				msg kafka.Message
				ok  bool
			)
			select {
			case <-ctx.Done():
				return
			case msg, ok = <-it.msgIterator.Messages():
				if !ok {
					return
				}
			}

			data, err := it.decode(msg.Value)
			if err != nil {
				it.log.Warn("skipping undecodable message",
					zap.Int64("offset", msg.Offset), zap.ByteString("value", msg.Value), zap.Error(err))
				continue
			}

			select {
			case out <- &Item[T]{Data: data, Message: msg, commit: it.msgIterator.CommitOffset}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
