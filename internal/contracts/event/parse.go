package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// ParseError is returned for wire records that are not a JSON envelope.
type ParseError struct {
	Size int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse envelope (%d bytes): %v", e.Size, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes a wire record. It does not validate the result.
func Parse(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, &ParseError{Size: len(raw), Err: err}
	}
	return env, nil
}

// Fingerprint identifies a logical event for deduplication. A redelivered
// record yields the same fingerprint; a re-publish with a fresh timestamp
// does not.
func Fingerprint(env Envelope, p Payload) string {
	return string(env.Type) + "|" + OrderID(p) + "|" + env.Timestamp.UTC().Format(time.RFC3339Nano)
}
