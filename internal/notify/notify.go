// Package notify publishes engine events to an external subscriber, so a
// collaborating UI backend can learn that derived values went stale without
// polling. The engine renders nothing; it only announces invalidations.
package notify

import "context"

// Notifier receives engine lifecycle events. Implementations must tolerate
// being called from the session's serialized mutation path, so a publish
// must never block on downstream consumers.
type Notifier interface {
	// Publish announces one named event with a small payload.
	Publish(ctx context.Context, data map[string]any)
	// Close releases the underlying transport.
	Close()
}

// Nop is the notifier used when no notify block is configured.
type Nop struct{}

// Publish discards the event.
func (Nop) Publish(ctx context.Context, data map[string]any) {}

// Close does nothing.
func (Nop) Close() {}
