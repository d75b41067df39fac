package messaging

import (
	"context"
	"time"

	"go.uber.org/atomic"
)

// Noop accepts and drops every message. It counts what it dropped.
type Noop struct {
	closed    atomic.Bool
	published atomic.Int64
}

// NewNoop returns a publisher that never reaches a broker.
func NewNoop() *Noop {
	return &Noop{}
}

// Publish drops msg.
func (n *Noop) Publish(ctx context.Context, destination string, _ OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if n.closed.Load() {
		return PublishResult{}, ErrClosed
	}

	n.published.Inc()
	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Published returns how many messages were accepted.
func (n *Noop) Published() int64 {
	return n.published.Load()
}

// Close implements io.Closer.
func (n *Noop) Close() error {
	n.closed.Store(true)
	return nil
}
