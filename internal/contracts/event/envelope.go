// Package event defines the order event envelope, its payload variants and
// the validation rules shared by producers and consumers.
package event

import (
	"encoding/json"
	"maps"
	"sort"
	"time"
)

type Type string

const (
	TypeOrderCreated       Type = "ORDER_CREATED"
	TypeOrderStatusUpdated Type = "ORDER_STATUS_UPDATED"
	TypeOrderCancelled     Type = "ORDER_CANCELLED"
)

// DefaultVersion is applied when an envelope carries no version.
const DefaultVersion = "1.0"

// Wire header names carried next to the JSON value.
const (
	HeaderEventType     = "event-type"
	HeaderEventVersion  = "event-version"
	HeaderSourceService = "source-service"
)

// Envelope is the versioned wrapper published for every domain event.
// Treat it as immutable: helpers that add metadata return a copy.
type Envelope struct {
	ID        string            `json:"id"`
	Type      Type              `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version,omitempty"`
	Source    string            `json:"source"`
	Data      json.RawMessage   `json:"data"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (e Envelope) clone() Envelope {
	out := e
	if e.Data != nil {
		out.Data = append(json.RawMessage(nil), e.Data...)
	}
	out.Metadata = maps.Clone(e.Metadata)
	return out
}

// WithMetadata returns a copy of e with kv merged into its metadata.
// The payload is left untouched.
func (e Envelope) WithMetadata(kv map[string]string) Envelope {
	out := e.clone()
	if len(kv) == 0 {
		return out
	}
	if out.Metadata == nil {
		out.Metadata = make(map[string]string, len(kv))
	}
	maps.Copy(out.Metadata, kv)
	return out
}

// SupportedTypes lists every type with a registered payload schema.
func SupportedTypes() []Type {
	out := make([]Type, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func IsSupported(t Type) bool {
	_, ok := registry[t]
	return ok
}
