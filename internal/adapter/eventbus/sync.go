// Package eventbus provides the in-process event bus the player services
// publish on.
package eventbus

import (
	"context"
	"log/slog"
	"reflect"
	"runtime"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// wildcard is the event type of SubscribeAll subscriptions.
const wildcard domain.EventType = "*"

// untraced event types arrive several times a second and are left out of
// the debug trace.
var untraced = map[domain.EventType]bool{
	domain.EventTrackProgress: true,
}

// SyncEventBus delivers events on the publishing goroutine.
//
// Handlers run in the order they subscribed, typed and wildcard subscriptions
// interleaved. Delivery works on a snapshot taken without holding the lock
// during handler calls, so handlers may publish, subscribe or unsubscribe.
// A nested Publish is delivered before the outer one returns.
type SyncEventBus struct {
	logger *slog.Logger

	subs   []subscription
	counts map[domain.EventType]int
	closed bool
	mu     sync.RWMutex

	seq atomic.Uint64
}

type subscription struct {
	id        domain.SubscriptionID
	eventType domain.EventType
	handler   domain.EventHandler
	filter    ports.EventFilter
}

func (s subscription) accepts(event domain.Event) bool {
	if s.eventType != wildcard && s.eventType != event.Type() {
		return false
	}
	return s.filter == nil || s.filter(event)
}

var _ ports.FilteringEventBus = (*SyncEventBus)(nil)

// NewSyncEventBus creates an event bus. A nil logger disables tracing and
// panic reporting.
func NewSyncEventBus(logger *slog.Logger) *SyncEventBus {
	if logger != nil {
		logger = logger.With(slog.String("component", "eventbus"))
	}
	return &SyncEventBus{
		logger: logger,
		counts: make(map[domain.EventType]int),
	}
}

// Publish delivers event to every matching subscriber. A nil event and
// events published after Close are dropped. A panicking handler is logged
// and does not stop delivery to the others.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	subs := slices.Clone(bus.subs)
	bus.mu.RUnlock()

	trace := bus.tracing(event.Type())
	for _, sub := range subs {
		if !sub.accepts(event) {
			continue
		}
		if trace {
			bus.logger.Debug("event delivered",
				slog.String("event_type", string(event.Type())),
				slog.String("subscription", string(sub.id)),
				slog.String("handler", handlerName(sub.handler)))
		}
		bus.call(sub, event)
	}
}

func (bus *SyncEventBus) tracing(eventType domain.EventType) bool {
	return bus.logger != nil &&
		!untraced[eventType] &&
		bus.logger.Enabled(context.Background(), slog.LevelDebug)
}

func (bus *SyncEventBus) call(sub subscription, event domain.Event) {
	defer func() {
		if r := recover(); r != nil && bus.logger != nil {
			bus.logger.Error("event handler panicked",
				slog.Any("panic", r),
				slog.String("event_type", string(event.Type())),
				slog.String("subscription", string(sub.id)))
		}
	}()
	sub.handler(event)
}

func handlerName(handler domain.EventHandler) string {
	if fn := runtime.FuncForPC(reflect.ValueOf(handler).Pointer()); fn != nil {
		return fn.Name()
	}
	return "unknown"
}

// Subscribe registers handler for events of eventType.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(eventType, nil, handler)
}

// SubscribeFiltered registers handler for the events of eventType that
// filter accepts. A nil filter accepts everything.
func (bus *SyncEventBus) SubscribeFiltered(eventType domain.EventType, filter ports.EventFilter, handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(eventType, filter, handler)
}

// SubscribeAll registers handler for every event.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(wildcard, nil, handler)
}

// add panics on a nil handler. Subscribing to a closed bus returns an empty
// ID and the handler is never called.
func (bus *SyncEventBus) add(eventType domain.EventType, filter ports.EventFilter, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("eventbus: nil handler")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		if bus.logger != nil {
			bus.logger.Warn("subscribe on closed event bus", slog.String("event_type", string(eventType)))
		}
		return ""
	}

	id := domain.SubscriptionID(string(eventType) + "#" + strconv.FormatUint(bus.seq.Add(1), 10))
	bus.subs = append(bus.subs, subscription{
		id:        id,
		eventType: eventType,
		handler:   handler,
		filter:    filter,
	})
	bus.counts[eventType]++
	return id
}

// Unsubscribe removes a subscription. Unknown IDs are ignored.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	i := slices.IndexFunc(bus.subs, func(s subscription) bool { return s.id == id })
	if i < 0 {
		return
	}
	eventType := bus.subs[i].eventType
	bus.subs = slices.Delete(bus.subs, i, i+1)
	if bus.counts[eventType]--; bus.counts[eventType] == 0 {
		delete(bus.counts, eventType)
	}
}

// HasSubscribers reports whether publishing an event of eventType would
// reach anyone. Wildcard subscriptions count for every type.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return bus.counts[eventType] > 0 || bus.counts[wildcard] > 0
}

// SubscriberCount returns the number of live subscriptions.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subs)
}

// Close drops every subscription. Later events are discarded. A second
// Close returns domain.ErrClosed.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return domain.ErrClosed
	}
	bus.closed = true
	bus.subs = nil
	clear(bus.counts)
	return nil
}
