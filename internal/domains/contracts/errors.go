package contracts

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes for the orchestrator's failure taxonomy. Nothing here is
// fatal: invalid input keeps the originating control open, invalid state
// transitions and unknown ids are guarded no-ops that stay observable to
// callers and tests.
const (
	ClassInvalidInput = "invalid_input"
	ClassInvalidState = "invalid_state_transition"
	ClassNotFound     = "not_found"
	ClassInternal     = "internal"
)

type ClassifiedError struct {
	Class string
	Err   error
}

func (e *ClassifiedError) Error() string {
	if e.Err == nil {
		return e.Class
	}
	return e.Err.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

func normalizeClass(class string) string {
	switch strings.ToLower(strings.TrimSpace(class)) {
	case ClassInvalidInput:
		return ClassInvalidInput
	case ClassInvalidState:
		return ClassInvalidState
	case ClassNotFound:
		return ClassNotFound
	default:
		return ClassInternal
	}
}

// Wrap attaches a class to err. An already classified error keeps its
// original class.
func Wrap(class string, err error) error {
	if err == nil {
		return nil
	}
	var existing *ClassifiedError
	if errors.As(err, &existing) {
		return err
	}
	return &ClassifiedError{Class: normalizeClass(class), Err: err}
}

func ErrorClass(err error) string {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return normalizeClass(classified.Class)
	}
	return ClassInternal
}

func InvalidInput(format string, args ...any) error {
	return &ClassifiedError{Class: ClassInvalidInput, Err: fmt.Errorf(format, args...)}
}

func InvalidState(format string, args ...any) error {
	return &ClassifiedError{Class: ClassInvalidState, Err: fmt.Errorf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &ClassifiedError{Class: ClassNotFound, Err: fmt.Errorf(format, args...)}
}

func IsInvalidInput(err error) bool {
	return err != nil && ErrorClass(err) == ClassInvalidInput
}

func IsInvalidState(err error) bool {
	return err != nil && ErrorClass(err) == ClassInvalidState
}

func IsNotFound(err error) bool {
	return err != nil && ErrorClass(err) == ClassNotFound
}
