package event

import "errors"

var (
	// ErrHandlerPanic wraps a recovered handler panic.
	ErrHandlerPanic = errors.New("event: handler panicked")

	// ErrHandlerFailed wraps an error returned by a handler.
	ErrHandlerFailed = errors.New("event: handler failed")
)
