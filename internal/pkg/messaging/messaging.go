package messaging

import (
	"context"
	"time"
)

// Publisher sends messages to a destination (topic or subject).
type Publisher interface {
	// Publish sends msg to destination and blocks until the broker accepts it.
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)

	// Close flushes pending messages and releases broker connections.
	Close() error
}

// OutgoingMessage is a broker-agnostic message to be published.
type OutgoingMessage struct {
	// Body is the message payload.
	Body []byte

	// Key is used by Kafka for partitioning and by Pub/Sub as the ordering key.
	Key []byte

	// Headers are carried as NATS/Kafka headers and Pub/Sub attributes.
	// NSQ has no header support and drops them.
	Headers map[string]string
}

// PublishResult carries optional broker-specific publish metadata.
type PublishResult struct {
	// MessageID is the broker-assigned message id, when the broker issues one.
	MessageID string
	// Topic is the destination the message was written to.
	Topic string
	// Timestamp is when the message was handed to the broker.
	Timestamp time.Time
}
