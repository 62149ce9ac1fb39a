// Package ports define the EventBus interface for event-driven communication.
package ports

import (
	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// EventBus carries state changes from the player and collection services
// to the media binding, preference persistence and any presentation layer.
//
// Services collect events under their own lock and publish after releasing
// it, so handlers may call back into the publishing service.
//
//	id := bus.Subscribe(domain.EventTrackChanged, func(event domain.Event) {
//	    e := event.(domain.TrackChangedEvent)
//	    render(e.Current)
//	})
//	defer bus.Unsubscribe(id)
//
// Implementations must be safe for concurrent use.
type EventBus interface {
	// Publish delivers event to the subscribers of its type and to wildcard
	// subscribers. Handlers must not block; the media clock publishes too.
	Publish(event domain.Event)

	// Subscribe registers handler for one event type. Every call yields a
	// new SubscriptionID, even for the same handler.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a subscription. Unknown IDs are ignored.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers handler for every event type.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers reports whether an event of eventType would be
	// delivered to anyone. Publishers of high-frequency events such as
	// track progress use it to skip the work.
	HasSubscribers(eventType domain.EventType) bool

	// Close drops all subscriptions; later events are discarded.
	Close() error
}

// EventFilter decides whether an event reaches a filtered subscriber.
type EventFilter func(event domain.Event) bool

// FilteringEventBus is an EventBus with filtered subscriptions.
type FilteringEventBus interface {
	EventBus

	// SubscribeFiltered registers handler for the events of eventType that
	// filter accepts, e.g. progress updates past a given position:
	//
	//	bus.SubscribeFiltered(domain.EventTrackProgress, func(e domain.Event) bool {
	//	    return e.(domain.TrackProgressEvent).Position >= mark
	//	}, handleProgress)
	SubscribeFiltered(eventType domain.EventType, filter EventFilter, handler domain.EventHandler) domain.SubscriptionID
}
