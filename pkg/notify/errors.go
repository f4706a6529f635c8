package notify

import "errors"

var (
	ErrInvalidConfig    = errors.New("notify: invalid config")
	ErrUnsupportedEvent = errors.New("notify: no template for event")
	ErrMissingRecipient = errors.New("notify: event carries no recipient")
	ErrRenderFailed     = errors.New("notify: failed to render message")
	ErrDeliveryFailed   = errors.New("notify: failed to deliver message")
)
