// Package events defines the asynchronous hand-off contract a future
// multi-process deployment would use between the webhook layer and the
// onramp engine, grounded on the teacher's internal/events.Producer
// shape. Only a no-op in-process implementation is provided: no queue
// broker is part of this system's scope, so webhook ingest calls the
// onramp engine's payment-confirmed path directly and publishes only a
// best-effort audit event to a Producer after that hand-off (see
// internal/webhook).
package events

import "context"

// Message mirrors the teacher's events.Message fields this system
// actually has a use for; broker-specific fields (tenant routing,
// handler success/error bookkeeping) are dropped since there is no
// multi-tenant event bus here.
type Message struct {
	Topic string
	Key   string
	Type  string
	Data  any
}

// Producer is the publish side of an asynchronous hand-off. A future
// deployment with a real broker would implement this the way the
// teacher's KafkaProducer implements the same interface; this module
// ships only NoopProducer.
type Producer interface {
	WriteMessages(ctx context.Context, messages ...Message) error
	Close() error
}

// NoopProducer discards every message. It exists so the webhook
// ingestion path can be wired against the Producer interface without
// forcing a broker dependency on the default single-process deployment.
type NoopProducer struct{}

var _ Producer = NoopProducer{}

func (NoopProducer) WriteMessages(ctx context.Context, messages ...Message) error { return nil }
func (NoopProducer) Close() error                                                 { return nil }
