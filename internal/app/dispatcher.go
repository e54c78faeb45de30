/**
 * @description
 * This file implements the event dispatch table: the mapping from a webhook
 * event-type string to its registered handler, and the ordered, sequential
 * dispatch of one envelope.
 *
 * Key features:
 * - Events are handled strictly in array order; each handler completes before
 *   the next event is processed. Ordering matters: "created" must land before
 *   "verified" for the same entity.
 * - An unregistered event type is a hard error that aborts the remaining
 *   events of the envelope.
 * - Handler failures do not abort the envelope; they are collected per event
 *   so the caller can report exactly which events failed.
 *
 * @dependencies
 * - context, fmt, log: Standard Go libraries.
 * - The service's internal domain package for the envelope and event models.
 */
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/wealthloop/aggregator-service/internal/domain"
)

// HandlerFunc processes a single webhook event.
type HandlerFunc func(ctx context.Context, event domain.Event) error

// NoHandlerError is returned when an envelope contains an event type with no
// registered handler.
type NoHandlerError struct {
	EventType string
}

func (e *NoHandlerError) Error() string {
	return fmt.Sprintf("no handler registered for event type %q", e.EventType)
}

// EventResult is the outcome of handling one event of an envelope.
type EventResult struct {
	EventID   string
	EventType string
	Err       error
}

// Dispatcher routes webhook events to their registered handlers. It is
// stateless and performs no retries.
type Dispatcher struct {
	handlers map[string]HandlerFunc
}

// NewDispatcher creates an empty dispatch table.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

// Register binds an event type to a handler. Registering the same type twice
// replaces the previous handler.
func (d *Dispatcher) Register(eventType string, handler HandlerFunc) {
	d.handlers[eventType] = handler
}

// Dispatch processes the envelope's events in array order. It returns the
// per-event results accumulated so far and, when an event type has no
// registered handler, a NoHandlerError that aborts the remaining events.
func (d *Dispatcher) Dispatch(ctx context.Context, envelope domain.WebhookEnvelope) ([]EventResult, error) {
	results := make([]EventResult, 0, len(envelope.Events))

	for _, event := range envelope.Events {
		handler, ok := d.handlers[event.Type]
		if !ok {
			log.Printf("ERROR: No handler for event type %q (event %s); aborting envelope", event.Type, event.ID)
			return results, &NoHandlerError{EventType: event.Type}
		}

		err := handler(ctx, event)
		if err != nil {
			log.Printf("ERROR: Handler for event %s (%s) failed: %v", event.ID, event.Type, err)
		}
		results = append(results, EventResult{
			EventID:   event.ID,
			EventType: event.Type,
			Err:       err,
		})
	}

	return results, nil
}
