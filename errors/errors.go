package errors

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyContent        = fmt.Errorf("message content is empty")
	ErrEmptySender         = fmt.Errorf("message sender is empty")
	ErrEmptyDocumentID     = fmt.Errorf("document id is empty")
	ErrInvalidHeadingLevel = fmt.Errorf("heading level must be between 1 and 6")
	ErrInvalidOffset       = fmt.Errorf("insertion offset must be at least 1")
	ErrUnknownSection      = fmt.Errorf("unknown document section")
	ErrNotPlainText        = fmt.Errorf("export is not a plain text file")
	ErrUnsupportedBackend  = fmt.Errorf("unsupported checkpoint backend")
	ErrScopeMismatch       = fmt.Errorf("stored checkpoint belongs to another document or sender")
)

// ValidationError reports malformed construction input. Never retried.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func NewValidationError(field, reason string, err error) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// TransientIOError wraps a failure that may succeed when attempted again:
// file contention, remote throttling or 5xx responses.
type TransientIOError struct {
	Op  string
	Err error
}

func NewTransientIOError(op string, err error) *TransientIOError {
	return &TransientIOError{Op: op, Err: err}
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("transient failure during %s: %v", e.Op, e.Err)
}

func (e *TransientIOError) Unwrap() error {
	return e.Err
}

// CorruptStateError is returned when persisted state cannot be trusted.
// It must never be interpreted as "no state".
type CorruptStateError struct {
	Location string
	Err      error
}

func NewCorruptStateError(location string, err error) *CorruptStateError {
	return &CorruptStateError{Location: location, Err: err}
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt state at %s: %v", e.Location, e.Err)
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}

// RemoteServiceError is a non retryable rejection from the document service.
type RemoteServiceError struct {
	Code int
	Err  error
}

func NewRemoteServiceError(code int, err error) *RemoteServiceError {
	return &RemoteServiceError{Code: code, Err: err}
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("document service rejected request (code %d): %v", e.Code, e.Err)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

type Stage string

const (
	StageLoad        Stage = "load"
	StageCheckpoint  Stage = "checkpoint"
	StageDeduplicate Stage = "deduplicate"
	StageRender      Stage = "render"
	StageSubmit      Stage = "submit"
	StagePersist     Stage = "persist"
)

// StageError tells which step of an archive run failed.
type StageError struct {
	Stage Stage
	Err   error
}

func NewStageError(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func IsTransient(err error) bool {
	var transient *TransientIOError
	return errors.As(err, &transient)
}

func IsCorrupt(err error) bool {
	var corrupt *CorruptStateError
	return errors.As(err, &corrupt)
}

func IsValidation(err error) bool {
	var validation *ValidationError
	return errors.As(err, &validation)
}
