package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoKeys signals source key-space exhaustion. Fatal to the requested
// create or derive; surfaced, never retried.
var ErrNoKeys = errors.New("no source keys available")

// ErrNoContext signals an operation that requires an owning context on a
// record that has none.
var ErrNoContext = errors.New("record has no owning context")

// IllegalOperationError reports a derivation or replication precondition
// violation. It indicates a workflow error at the call site and is never
// silently ignored.
type IllegalOperationError struct {
	Op     string
	Reason string
}

func (e IllegalOperationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func illegalOp(op, format string, args ...any) error {
	return IllegalOperationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// ValidationMessage is one structured validation finding.
type ValidationMessage struct {
	Field   string
	Message string
}

func (m ValidationMessage) String() string {
	if m.Field == "" {
		return m.Message
	}
	return m.Field + ": " + m.Message
}

// ErrorLog collects validation findings. Every validating operation accepts
// an optional *ErrorLog; passing nil means the caller chose to discard the
// messages, the core never drops them on its own. All methods are nil-safe.
type ErrorLog struct {
	messages []ValidationMessage
}

// Logf appends a finding for the named field.
func (l *ErrorLog) Logf(field, format string, args ...any) {
	if l == nil {
		return
	}
	l.messages = append(l.messages, ValidationMessage{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Merge appends all findings from another log.
func (l *ErrorLog) Merge(other *ErrorLog) {
	if l == nil || other == nil {
		return
	}
	l.messages = append(l.messages, other.messages...)
}

// Messages returns a copy of the collected findings.
func (l *ErrorLog) Messages() []ValidationMessage {
	if l == nil {
		return nil
	}
	return append([]ValidationMessage(nil), l.messages...)
}

// HasErrors reports whether any finding was collected.
func (l *ErrorLog) HasErrors() bool { return l != nil && len(l.messages) > 0 }

// Err returns a ValidationError wrapping the collected findings, or nil when
// the log is empty.
func (l *ErrorLog) Err() error {
	if !l.HasErrors() {
		return nil
	}
	return ValidationError{Messages: l.Messages()}
}

// ValidationError reports per-field validation failures. Always recoverable:
// the caller corrects input and retries.
type ValidationError struct {
	Messages []ValidationMessage
}

func (e ValidationError) Error() string {
	parts := make([]string, len(e.Messages))
	for i, m := range e.Messages {
		parts[i] = m.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
