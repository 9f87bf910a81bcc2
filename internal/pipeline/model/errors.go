package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a handled stage failure.
type ErrorKind string

const (
	// KindValidation: the caller's input was unusable.
	KindValidation ErrorKind = "validation"
	// KindDependency: an external collaborator (model, renderer, mail) failed.
	KindDependency ErrorKind = "dependency"
	// KindPrecondition: upstream data the stage needs is missing.
	KindPrecondition ErrorKind = "precondition"
)

// ErrUnexpected marks failures that no stage anticipated. They abort the
// graph invocation and collapse the run into the minimal error state.
var ErrUnexpected = errors.New("unexpected pipeline failure")

// StageError is a failure a stage handled itself. Message is what ends up in
// State.Error; Err keeps the underlying cause for logs.
type StageError struct {
	Stage   string
	Kind    ErrorKind
	Message string
	Err     error
}

// NewStageError builds a StageError.
func NewStageError(stage string, kind ErrorKind, message string, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Message: message, Err: err}
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s (%s): %s", e.Stage, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s (%s): %s: %v", e.Stage, e.Kind, e.Message, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// AsStageError extracts a StageError from err's chain.
func AsStageError(err error) (*StageError, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
