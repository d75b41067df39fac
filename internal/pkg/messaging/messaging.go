package messaging

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/samber/lo"
)

var (
	// ErrUnsupported is returned when a driver cannot honor a message option.
	ErrUnsupported = errors.New("pkgmessage: operation not supported by driver")

	// ErrClosed is returned when publishing through a closed client.
	ErrClosed = errors.New("pkgmessage: client is closed")
)

// Messaging is a closable publisher.
type Messaging interface {
	io.Closer
	Publisher
}

// Publisher sends messages to a destination (topic or subject).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// OutgoingMessage is the broker-neutral message shape.
type OutgoingMessage struct {
	Body    []byte
	Key     []byte
	Headers []Header

	// Attributes and OrderingKey are only used by Google Pub/Sub.
	Attributes  map[string]string
	OrderingKey string

	// Delay is only supported by NSQ.
	Delay time.Duration
}

// Header is a single message header. Drivers without header support drop it.
type Header struct {
	Key   string
	Value []byte
}

// HeaderMap flattens the headers into a map, the last value wins.
func (m OutgoingMessage) HeaderMap() map[string]string {
	return lo.FilterSliceToMap(m.Headers, func(h Header) (string, string, bool) {
		return h.Key, string(h.Value), h.Key != ""
	})
}

// PublishResult describes an accepted message.
type PublishResult struct {
	MessageID string
	Topic     string
	Timestamp time.Time
}
