package messaging

import (
	"context"
	"time"
)

// Noop accepts and discards messages.
type Noop struct{}

// NewNoop returns a Publisher that drops everything.
func NewNoop() *Noop { return &Noop{} }

// Publish implements Publisher.
func (*Noop) Publish(ctx context.Context, destination string, _ OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Close implements Publisher.
func (*Noop) Close() error { return nil }
