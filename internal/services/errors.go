package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("resource changed concurrently")
	ErrUpstream     = errors.New("upstream service failed")
)

// InputError carries a client-facing message and matches ErrInvalidInput.
type InputError struct {
	msg string
}

func (e *InputError) Error() string { return e.msg }

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func invalidf(format string, args ...interface{}) error {
	return &InputError{msg: fmt.Sprintf(format, args...)}
}
