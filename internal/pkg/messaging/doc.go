// Package messaging publishes domain events to a message broker.
//
// NATS, NSQ, Kafka and Google Pub/Sub are supported behind the Publisher
// interface. The noop driver discards messages and is the default for local
// runs and tests.
package messaging
