package app

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAlreadyRunning is returned by Run while another Run is active.
	ErrAlreadyRunning = errors.New("editor already running")

	// ErrInitialization wraps the configuration errors collected by New.
	ErrInitialization = errors.New("initialization failed")
)

// OperationError records what the editor was doing, and on what, when an
// error occurred.
type OperationError struct {
	Op     string // open, load, source, create ...
	Target string // file path, buffer or component name
	Err    error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Op
	if e.Target != "" {
		msg += " " + e.Target
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrorList accumulates errors so that startup can report every broken
// config source at once. Not safe for concurrent use.
type ErrorList struct {
	errs []error
}

// NewErrorList creates an empty ErrorList.
func NewErrorList() *ErrorList {
	return &ErrorList{}
}

// Add appends err unless it is nil.
func (l *ErrorList) Add(err error) {
	if err != nil {
		l.errs = append(l.errs, err)
	}
}

// HasErrors reports whether anything was added.
func (l *ErrorList) HasErrors() bool {
	return len(l.errs) > 0
}

// Len returns the number of errors.
func (l *ErrorList) Len() int {
	return len(l.errs)
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (l *ErrorList) Unwrap() []error {
	if l == nil {
		return nil
	}
	return l.errs
}

// Error lists every message, separated by semicolons.
func (l *ErrorList) Error() string {
	switch l.Len() {
	case 0:
		return ""
	case 1:
		return l.errs[0].Error()
	}
	msgs := make([]string, len(l.errs))
	for i, err := range l.errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(l.errs), strings.Join(msgs, "; "))
}

// AsError returns nil for an empty list and the list itself otherwise.
func (l *ErrorList) AsError() error {
	if !l.HasErrors() {
		return nil
	}
	return l
}
