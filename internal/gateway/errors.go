package gateway

import (
	"errors"
	"strings"
)

// Kind classifies a gateway failure.
type Kind string

const (
	// KindConfiguration means the service credential is missing or rejected.
	// Every call fails this way until the configuration is corrected.
	KindConfiguration Kind = "configuration"
	// KindValidation means the service answered but the payload lacks
	// required sections.
	KindValidation Kind = "validation"
	// KindService covers every other transport or parse failure.
	KindService Kind = "service"
)

// Error is the single error type returned by Gateway operations.
// Message is human readable and safe to show to the user.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

// Sentinels for errors.Is matching by kind.
var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrValidation    = &Error{Kind: KindValidation}
	ErrService       = &Error{Kind: KindService}
)

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind) + " error"
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches a kind sentinel (an Error with no Op or Message).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Kind == e.Kind
}

// Detail includes the underlying cause, for logs.
func (e *Error) Detail() string {
	if e.Err == nil {
		return e.Op + ": " + e.Error()
	}
	return e.Op + ": " + e.Error() + ": " + e.Err.Error()
}

// KindOf returns the kind of a gateway error, or "" for foreign errors.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}

const configurationMessage = "The API key is invalid or missing. Please check your configuration."

func configurationError(op string, err error) *Error {
	return &Error{Kind: KindConfiguration, Op: op, Message: configurationMessage, Err: err}
}

func validationError(op, message string, err error) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message, Err: err}
}

// serviceError wraps a transport failure. Credential rejections reported by
// the service are promoted to configuration errors.
func serviceError(op, message string, err error) *Error {
	if isCredentialFailure(err) {
		return configurationError(op, err)
	}
	return &Error{Kind: KindService, Op: op, Message: message, Err: err}
}

func isCredentialFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "API key not valid") ||
		strings.Contains(msg, "API_KEY_INVALID") ||
		strings.Contains(msg, "PERMISSION_DENIED")
}
