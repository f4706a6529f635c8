package event

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/accountkit/pkg/logger"
)

// Handler reacts to one event.
type Handler func(ctx context.Context, e Event) error

// Dispatcher is a synchronous, in-process Publisher.
type Dispatcher struct {
	mu     sync.RWMutex
	byKind map[Kind][]Handler
	any    []Handler
	logger *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the logger used for handler failures.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		byKind: make(map[Kind][]Handler),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// On registers h for events of kind.
func (d *Dispatcher) On(kind Kind, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byKind[kind] = append(d.byKind[kind], h)
}

// OnAny registers h for every event. Such handlers run after the kind
// specific ones.
func (d *Dispatcher) OnAny(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.any = append(d.any, h)
}

// Publish runs the handlers of each event in order. Every handler runs even
// if an earlier one fails; the failures are joined.
func (d *Dispatcher) Publish(ctx context.Context, events ...Event) error {
	var errs []error
	for _, e := range events {
		for _, h := range d.handlers(e.Kind) {
			if err := d.run(ctx, h, e); err != nil {
				d.logger.ErrorContext(ctx, "event handler failed",
					logger.Event(string(e.Kind)),
					logger.AccountID(e.AccountID),
					logger.Error(err),
				)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) handlers(kind Kind) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	hs := make([]Handler, 0, len(d.byKind[kind])+len(d.any))
	hs = append(hs, d.byKind[kind]...)
	return append(hs, d.any...)
}

func (d *Dispatcher) run(ctx context.Context, h Handler, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrHandlerPanic, e.Kind, r)
		}
	}()
	if err := h(ctx, e); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrHandlerFailed, e.Kind, err)
	}
	return nil
}
