// Package event carries the typed facts produced by account operations.
//
// An operation appends events to its own Recorder while it runs. The
// recorder is thrown away if the surrounding transaction rolls back, and its
// events are handed to a Publisher only after the commit succeeded, so side
// effects such as mail delivery never observe state that was not persisted.
//
// Dispatcher is the in-process Publisher: handlers subscribe per Kind with On
// or to every kind with OnAny, and run synchronously in registration order.
// A failing or panicking handler does not stop the others; failures are
// joined into the error returned by Publish.
package event
