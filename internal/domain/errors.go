package domain

import (
	"errors"
	"fmt"
)

type ErrCode string

const (
	CodeValidation ErrCode = "validation_error"
	CodeNotFound   ErrCode = "not_found"
	CodeRepository ErrCode = "repository_error"
	CodePublish    ErrCode = "publish_failed"
	CodeInternal   ErrCode = "internal_error"
)

// AppError is the error shape surfaced to callers of the application layer.
type AppError struct {
	Code    ErrCode
	Message string
	Meta    map[string]string
	Err     error
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if len(e.Meta) > 0 {
		msg = fmt.Sprintf("%s (%v)", msg, e.Meta)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Err }

func ErrValidation(msg string) error { return &AppError{Code: CodeValidation, Message: msg} }
func ErrValidationMeta(msg string, meta map[string]string) error {
	return &AppError{Code: CodeValidation, Message: msg, Meta: meta}
}
func ErrNotFound(msg string) error { return &AppError{Code: CodeNotFound, Message: msg} }

func ErrRepository(op string, err error) error {
	return &AppError{Code: CodeRepository, Message: "order store unavailable", Meta: map[string]string{"op": op}, Err: err}
}

// ErrPublishAfterSave reports an order that was stored but whose event never
// reached the broker.
func ErrPublishAfterSave(orderID string, err error) error {
	return &AppError{
		Code:    CodePublish,
		Message: "order saved but event publish failed",
		Meta:    map[string]string{"order_id": orderID},
		Err:     err,
	}
}

// CodeOf returns the AppError code anywhere in err's chain, or "".
func CodeOf(err error) ErrCode {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

func IsValidation(err error) bool { return CodeOf(err) == CodeValidation }
func IsNotFound(err error) bool   { return CodeOf(err) == CodeNotFound }

// PublishError means an event could not be durably written to the broker
// after the producer's own retries.
type PublishError struct {
	EventType string
	Key       string
	Err       error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s (key=%s): %v", e.EventType, e.Key, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// HandlerError marks a record whose processing failed and must be redelivered.
type HandlerError struct {
	EventID   string
	EventType string
	Err       error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handle %s %s: %v", e.EventType, e.EventID, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// ChannelUnavailableError is a transient failure isolated to one channel.
type ChannelUnavailableError struct {
	Channel string
	Reason  string
}

func (e *ChannelUnavailableError) Error() string {
	return fmt.Sprintf("channel %s unavailable: %s", e.Channel, e.Reason)
}

func (e *ChannelUnavailableError) Temporary() bool { return true }
