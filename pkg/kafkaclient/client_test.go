package kafkaclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap/zaptest"
)

// mockReader simulates the kafka-go Reader for unit testing.
type mockReader struct {
	messages   chan kafka.Message
	commitChan chan kafka.Message
	wg         sync.WaitGroup
	isClosed   atomic.Bool
	// failures is the number of transient read errors returned first.
	failures atomic.Int32
}

func newMockReader() *mockReader {
	return &mockReader{
		messages:   make(chan kafka.Message, 10),
		commitChan: make(chan kafka.Message, 10),
	}
}

// StartSimulatingConsumption produces count warm requests and then closes
// the stream.
func (mr *mockReader) StartSimulatingConsumption(count int) {
	mr.wg.Add(1)
	go func() {
		defer mr.wg.Done()
		defer close(mr.messages)

		for i := 0; i < count; i++ {
			mr.messages <- kafka.Message{
				Topic:     "tourmap.warm",
				Partition: 0,
				Offset:    int64(i),
				Value:     []byte(fmt.Sprintf(`{"artist_id":%d}`, i+1)),
			}
			time.Sleep(10 * time.Millisecond)
		}
	}()
}

func (mr *mockReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if mr.isClosed.Load() {
		return kafka.Message{}, errors.New("kafka: reader closed")
	}
	if mr.failures.Load() > 0 {
		mr.failures.Add(-1)
		return kafka.Message{}, errors.New("broker not available")
	}
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case msg, ok := <-mr.messages:
		if !ok {
			return kafka.Message{}, io.EOF
		}
		return msg, nil
	}
}

func (mr *mockReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	if mr.isClosed.Load() {
		return errors.New("kafka: reader closed")
	}
	for _, msg := range msgs {
		mr.commitChan <- msg
	}
	return nil
}

func (mr *mockReader) Close() error {
	mr.isClosed.Store(true)
	close(mr.commitChan)
	return nil
}

func TestKafkaConsumer_ConsumeAndCommit(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	reader := newMockReader()
	consumer := newConsumer(reader, zaptest.NewLogger(t))

	const expectedMessages = 3
	reader.StartSimulatingConsumption(expectedMessages)
	consumer.StartConsuming(ctx)

	received := 0
	for msg := range consumer.Messages() {
		want := fmt.Sprintf(`{"artist_id":%d}`, received+1)
		if string(msg.Value) != want {
			t.Errorf("message value = %q, want %q", msg.Value, want)
		}
		if err := consumer.CommitOffset(ctx, msg); err != nil {
			t.Errorf("CommitOffset() failed: %v", err)
		}
		received++
	}

	if received != expectedMessages {
		t.Errorf("received %d messages, want %d", received, expectedMessages)
	}

	consumer.Stop()

	committed := 0
	for range reader.commitChan {
		committed++
	}
	if committed != expectedMessages {
		t.Errorf("committed %d messages, want %d", committed, expectedMessages)
	}
}

func TestKafkaConsumer_RetriesTransientReadErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	reader := newMockReader()
	reader.failures.Store(2)
	consumer := newConsumer(reader, zaptest.NewLogger(t))
	consumer.retryDelay = time.Millisecond

	reader.StartSimulatingConsumption(1)
	consumer.StartConsuming(ctx)

	received := 0
	for range consumer.Messages() {
		received++
	}
	consumer.Stop()

	if received != 1 {
		t.Errorf("received %d messages, want 1", received)
	}
}

func TestKafkaConsumer_GracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	reader := newMockReader()
	consumer := newConsumer(reader, zaptest.NewLogger(t))

	reader.StartSimulatingConsumption(100)
	consumer.StartConsuming(ctx)

	consumed := 0
	for i := 0; i < 5; i++ {
		select {
		case <-consumer.Messages():
			consumed++
		case <-ctx.Done():
			t.Fatal("context canceled unexpectedly")
		case <-time.After(500 * time.Millisecond):
			t.Fatal("timed out waiting for a message")
		}
	}

	consumer.Stop()
	// Stop is idempotent.
	consumer.Stop()

	remaining := 0
	for range consumer.Messages() {
		remaining++
	}
	if remaining > 0 {
		t.Errorf("got %d messages after Stop, want 0", remaining)
	}
	if consumed < 5 {
		t.Errorf("consumed %d messages before stopping, want 5", consumed)
	}
	if !reader.isClosed.Load() {
		t.Error("reader was not closed by Stop")
	}
}

type mockWriter struct {
	mu     sync.Mutex
	sent   []kafka.Message
	closed bool
	err    error
}

func (w *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.sent = append(w.sent, msgs...)
	return nil
}

func (w *mockWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducer_Publish(t *testing.T) {
	w := &mockWriter{}
	p := &Producer{writer: w}

	if err := p.Publish(context.Background(), []byte("7"), []byte(`{"artist_id":7}`)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(w.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(w.sent))
	}
	if string(w.sent[0].Key) != "7" || string(w.sent[0].Value) != `{"artist_id":7}` {
		t.Errorf("unexpected message %+v", w.sent[0])
	}

	w.err = errors.New("leader not available")
	if err := p.Publish(context.Background(), nil, []byte("x")); err == nil {
		t.Error("Publish() error = nil, want writer error")
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Errorf("Close() = %v, closed = %v", err, w.closed)
	}
}
