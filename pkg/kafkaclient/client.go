package kafkaclient

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"tourmap/pkg/logger"
)

// KafkaReader defines the interface for a Kafka message reader.
// This allows for easy mocking in unit tests.
type KafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer pumps messages from a reader into a channel until stopped.
type KafkaConsumer struct {
	reader      KafkaReader
	log         *zap.Logger
	doneChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
	messageChan chan kafka.Message
	// retryDelay is the pause after a failed read.
	retryDelay time.Duration
}

// NewKafkaConsumer creates a consumer group reader for topic. Offsets are
// committed explicitly through CommitOffset.
func NewKafkaConsumer(topic, groupID, broker string, log *zap.Logger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          topic,
		GroupID:        groupID,
		CommitInterval: 0,
		MinBytes:       1,
		MaxBytes:       10e6,
	})
	return newConsumer(reader, log)
}

func newConsumer(reader KafkaReader, log *zap.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		reader:      reader,
		log:         logger.OrNop(log),
		doneChan:    make(chan struct{}),
		messageChan: make(chan kafka.Message),
		retryDelay:  time.Second,
	}
}

func (kc *KafkaConsumer) Messages() <-chan kafka.Message {
	return kc.messageChan
}

func (kc *KafkaConsumer) CommitOffset(ctx context.Context, msg kafka.Message) error {
	kc.log.Debug("committing offset",
		zap.String("topic", msg.Topic), zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset))
	return kc.reader.CommitMessages(ctx, msg)
}

// StartConsuming runs the read loop in a goroutine. Messages() is closed
// when the loop exits.
func (kc *KafkaConsumer) StartConsuming(ctx context.Context) {
	kc.wg.Add(1)
	go func() {
		defer kc.wg.Done()
		defer close(kc.messageChan)

		kc.log.Info("starting kafka consumer loop")
		for {
			select {
			case <-ctx.Done():
				kc.log.Info("context canceled, stopping consumer loop")
				return
			case <-kc.doneChan:
				kc.log.Info("shutdown requested, stopping consumer loop")
				return
			default:
			}

			msg, err := kc.reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
					return
				}
				kc.log.Warn("error reading message", zap.Error(err))
				select {
				case <-time.After(kc.retryDelay):
				case <-ctx.Done():
					return
				case <-kc.doneChan:
					return
				}
				continue
			}

			select {
			case kc.messageChan <- msg:
				kc.log.Debug("message received",
					zap.String("topic", msg.Topic), zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset))
			case <-ctx.Done():
				return
			case <-kc.doneChan:
				return
			}
		}
	}()
}

// Stop ends the read loop, waits for it and closes the reader.
func (kc *KafkaConsumer) Stop() {
	kc.stopOnce.Do(func() {
		close(kc.doneChan)
		kc.wg.Wait()
		if err := kc.reader.Close(); err != nil {
			kc.log.Warn("failed to close kafka reader", zap.Error(err))
		}
		kc.log.Info("kafka consumer stopped")
	})
}

// KafkaWriter is the subset of *kafka.Writer used by Producer.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes messages to one topic.
type Producer struct {
	writer KafkaWriter
}

func NewProducer(topic, broker string) *Producer {
	return &Producer{writer: &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
