// Package messaging carries saga messages between services. Payloads are JSON
// encoded wire structs; transports are redis streams or an in-process bus.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Message is the transport envelope. Key is the order id so every message of
// one saga lands on the same stream partition.
type Message struct {
	ID      string
	Topic   string
	Key     string
	Payload []byte
	Headers map[string]string
}

type Handler func(ctx context.Context, msg Message) error

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Subscriber delivers messages of a topic to h until ctx is done. A message
// whose handler returns an error is not acknowledged and is delivered again.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, h Handler) error
}

type Bus interface {
	Publisher
	Subscriber
	Close() error
}

// NewMessage encodes payload as JSON.
func NewMessage(id, topic, key string, payload any) (Message, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("messaging: encode %s: %w", topic, err)
	}
	return Message{ID: id, Topic: topic, Key: key, Payload: b, Headers: map[string]string{}}, nil
}

// Decode unmarshals the payload of msg into a T.
func Decode[T any](msg Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("messaging: decode %s message %s: %w", msg.Topic, msg.ID, err)
	}
	return v, nil
}

// InjectTrace writes the span context of ctx into the message headers.
func InjectTrace(ctx context.Context, msg *Message) {
	if msg.Headers == nil {
		msg.Headers = map[string]string{}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(msg.Headers))
}

// ExtractTrace returns ctx carrying the remote span context of msg.
func ExtractTrace(ctx context.Context, msg Message) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(msg.Headers))
}
