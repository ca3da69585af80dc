package event

import (
	"encoding/json"
	"maps"
	"time"

	"github.com/google/uuid"
)

type buildOptions struct {
	id       string
	ts       time.Time
	version  string
	metadata map[string]string
}

type BuildOption func(*buildOptions)

func WithID(id string) BuildOption          { return func(o *buildOptions) { o.id = id } }
func WithTimestamp(t time.Time) BuildOption { return func(o *buildOptions) { o.ts = t } }
func WithVersion(v string) BuildOption      { return func(o *buildOptions) { o.version = v } }
func WithMetadata(m map[string]string) BuildOption {
	return func(o *buildOptions) { o.metadata = maps.Clone(m) }
}

// Build wraps p in a new envelope and validates the result, so a producer
// can never emit an envelope that fails its own schema.
func Build(t Type, p Payload, source string, opts ...BuildOption) (Envelope, error) {
	if p == nil {
		return Envelope{}, &ValidationError{Reason: "nil payload"}
	}
	if p.EventType() != t {
		return Envelope{}, &ValidationError{Reason: "payload is " + string(p.EventType()) + ", not " + string(t)}
	}

	o := buildOptions{id: uuid.NewString(), ts: time.Now(), version: DefaultVersion}
	for _, fn := range opts {
		fn(&o)
	}

	data, err := json.Marshal(p)
	if err != nil {
		return Envelope{}, &ValidationError{Reason: "encode data: " + err.Error()}
	}

	return Validate(Envelope{
		ID:        o.id,
		Type:      t,
		Timestamp: o.ts,
		Version:   o.version,
		Source:    source,
		Data:      data,
		Metadata:  o.metadata,
	})
}

func NewOrderCreated(p OrderCreated, source string, opts ...BuildOption) (Envelope, error) {
	return Build(TypeOrderCreated, p, source, opts...)
}

func NewOrderStatusUpdated(p OrderStatusUpdated, source string, opts ...BuildOption) (Envelope, error) {
	return Build(TypeOrderStatusUpdated, p, source, opts...)
}

func NewOrderCancelled(p OrderCancelled, source string, opts ...BuildOption) (Envelope, error) {
	return Build(TypeOrderCancelled, p, source, opts...)
}
