package eventbus

import (
	"reflect"
	"sync"
)

// Handler is a function that handles an event
type Handler func(event interface{})

// EventBus provides in-process pub/sub. Events are dispatched by their
// exact dynamic type; publish value structs, not pointers.
type EventBus struct {
	handlers map[reflect.Type][]Handler
	mu       sync.RWMutex
}

// New creates a new EventBus
func New() *EventBus {
	return &EventBus{
		handlers: make(map[reflect.Type][]Handler),
	}
}

// Subscribe registers a handler for a specific event type
func (e *EventBus) Subscribe(eventType interface{}, handler Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := reflect.TypeOf(eventType)
	e.handlers[t] = append(e.handlers[t], handler)
}

// SubscribeFunc registers a typed handler function with the
// signature func(EventType).
func (e *EventBus) SubscribeFunc(handler interface{}) {
	handlerValue := reflect.ValueOf(handler)
	handlerType := handlerValue.Type()

	if handlerType.Kind() != reflect.Func {
		panic("handler must be a function")
	}
	if handlerType.NumIn() != 1 {
		panic("handler must have exactly one argument")
	}

	eventType := handlerType.In(0)

	wrapped := func(event interface{}) {
		eventValue := reflect.ValueOf(event)
		if eventValue.Type().AssignableTo(eventType) {
			handlerValue.Call([]reflect.Value{eventValue})
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[eventType] = append(e.handlers[eventType], wrapped)
}

// Publish publishes an event to all subscribers asynchronously
func (e *EventBus) Publish(event interface{}) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if handlers, ok := e.handlers[reflect.TypeOf(event)]; ok {
		for _, handler := range handlers {
			go handler(event)
		}
	}
}

// PublishSync publishes an event synchronously to all subscribers
func (e *EventBus) PublishSync(event interface{}) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if handlers, ok := e.handlers[reflect.TypeOf(event)]; ok {
		for _, handler := range handlers {
			handler(event)
		}
	}
}

// HasSubscribers returns true if there are subscribers for the event type
func (e *EventBus) HasSubscribers(eventType interface{}) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	handlers, ok := e.handlers[reflect.TypeOf(eventType)]
	return ok && len(handlers) > 0
}

// SubscriberCount returns the number of subscribers for an event type
func (e *EventBus) SubscriberCount(eventType interface{}) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.handlers[reflect.TypeOf(eventType)])
}
