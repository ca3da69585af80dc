package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrUnsupportedType matches validation failures caused by an unregistered type.
var ErrUnsupportedType = errors.New("unsupported event type")

// ValidationError describes why an envelope was rejected.
type ValidationError struct {
	Reason    string
	Fields    map[string]string
	Supported []Type
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid event: ")
	b.WriteString(e.Reason)
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, " %v", e.Fields)
	}
	if len(e.Supported) > 0 {
		fmt.Fprintf(&b, " (supported: %v)", e.Supported)
	}
	return b.String()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrUnsupportedType && len(e.Supported) > 0
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

// ValidateEnvelope checks the top-level fields only.
func ValidateEnvelope(env Envelope) error {
	fields := map[string]string{}
	if env.ID == "" {
		fields["id"] = "is required"
	} else if _, err := uuid.Parse(env.ID); err != nil {
		fields["id"] = "must be a UUID"
	}
	if env.Type == "" {
		fields["type"] = "is required"
	}
	if env.Timestamp.IsZero() {
		fields["timestamp"] = "is required"
	}
	if strings.TrimSpace(env.Source) == "" {
		fields["source"] = "is required"
	}
	if d := bytes.TrimSpace(env.Data); len(d) == 0 || bytes.Equal(d, []byte("null")) {
		fields["data"] = "is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Reason: "malformed envelope", Fields: fields}
	}
	return nil
}

// Decode returns the typed payload of env after checking it against the
// schema registered for env.Type.
func Decode(env Envelope) (Payload, error) {
	dec, ok := registry[env.Type]
	if !ok {
		return nil, &ValidationError{
			Reason:    fmt.Sprintf("unsupported event type %q", env.Type),
			Supported: SupportedTypes(),
		}
	}
	p, err := dec(env.Data)
	if err != nil {
		return nil, &ValidationError{Reason: "malformed data: " + err.Error()}
	}
	if err := validatePayload(p); err != nil {
		return nil, err
	}
	return p, nil
}

func validatePayload(p Payload) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return &ValidationError{Reason: err.Error()}
	}
	fields := make(map[string]string, len(ves))
	for _, fe := range ves {
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		fields["data."+ns] = fe.Tag()
	}
	return &ValidationError{Reason: fmt.Sprintf("invalid %s payload", p.EventType()), Fields: fields}
}

// Validate runs envelope and payload checks and returns a sanitized copy:
// unknown data fields dropped, version defaulted, timestamp in UTC.
// env itself is never modified.
func Validate(env Envelope) (Envelope, error) {
	if err := ValidateEnvelope(env); err != nil {
		return Envelope{}, err
	}
	p, err := Decode(env)
	if err != nil {
		return Envelope{}, err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return Envelope{}, &ValidationError{Reason: "re-encode data: " + err.Error()}
	}

	out := env.clone()
	out.Data = data
	out.Timestamp = env.Timestamp.UTC()
	if strings.TrimSpace(out.Version) == "" {
		out.Version = DefaultVersion
	}
	return out, nil
}
