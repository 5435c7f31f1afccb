package core

// EventContext carries the payload of a fired event.
type EventContext struct {
	// Path of the asset for asset events, material name for material events,
	// program family for program events.
	Name string
	Data interface{}
}

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// An asset file was created or written.
	/* Context usage:
	 * Name = asset path relative to the assets directory
	 */
	EventCodeAssetChanged SystemEventCode = 0x01

	// An asset file was removed.
	EventCodeAssetRemoved SystemEventCode = 0x02

	// A material had its configuration re-applied.
	/* Context usage:
	 * Name = material name
	 */
	EventCodeMaterialReloaded SystemEventCode = 0x03

	// Cached programs of a family were dropped.
	/* Context usage:
	 * Name = program family
	 */
	EventCodeProgramsInvalidated SystemEventCode = 0x04

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

// This should be more than enough codes...
const MAX_MESSAGE_CODES = 1024

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// EventBus dispatches events synchronously on the caller's goroutine.
type EventBus struct {
	// Lookup table for event codes.
	registered [MAX_MESSAGE_CODES][]*registeredEvent
}

func NewEventBus() *EventBus {
	return &EventBus{}
}

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listeners will not be registered again and will cause this to return false.
 * @param code The event code to listen for.
 * @param listener A pointer to a listener instance. Can be nil.
 * @param onEvent The callback function to be invoked when the event code is fired.
 * @returns true if the event is successfully registered; otherwise false.
 */
func (b *EventBus) Register(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if code < 0 || int(code) >= MAX_MESSAGE_CODES || onEvent == nil {
		return false
	}
	for _, e := range b.registered[code] {
		if e.listener == listener {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	b.registered[code] = append(b.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

/**
 * Unregister from listening for when events are sent with the provided code.
 * @returns true if the event is successfully unregistered; otherwise false.
 */
func (b *EventBus) Unregister(code SystemEventCode, listener interface{}) bool {
	if code < 0 || int(code) >= MAX_MESSAGE_CODES {
		return false
	}
	events := b.registered[code]
	for i, e := range events {
		if e.listener == listener {
			b.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	// Not found.
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 * @returns true if handled, otherwise false.
 */
func (b *EventBus) Fire(code SystemEventCode, sender interface{}, context EventContext) bool {
	if code < 0 || int(code) >= MAX_MESSAGE_CODES {
		return false
	}
	for _, e := range b.registered[code] {
		if e.callback(code, sender, e.listener, context) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}

func (b *EventBus) Shutdown() error {
	for i := range b.registered {
		b.registered[i] = nil
	}
	return nil
}
