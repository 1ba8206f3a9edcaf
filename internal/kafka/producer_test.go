package kafka

import (
	"context"
	"testing"
	"time"
)

// Shutdown arrives from two directions at once in cmd/api: Close on the
// producer and cancellation of the run context. Neither order may panic.
func TestProducerCloseAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewProducer([]string{"localhost:0"}, "test.topic", 4)
	p.Start(ctx)

	cancel()
	p.WaitClosed()
	p.Close() // inbox already shut by the cancelled loop
}

func TestProducerCancelAfterClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewProducer([]string{"localhost:0"}, "test.topic", 4)
	p.Start(ctx)

	p.Close()
	cancel()

	done := make(chan struct{})
	go func() {
		p.WaitClosed()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("producer loop did not exit after Close + cancel")
	}
}
