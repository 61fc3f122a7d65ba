// File: internal/provision/events.go
// Brief: Structured provisioning events for console renderers.

package provision

import "time"

// EventType enumerates structured provisioning events. They are consumed by
// the console renderer; nothing is persisted.
type EventType string

const (
	RunStarted   EventType = "RUN_STARTED"
	RunCompleted EventType = "RUN_COMPLETED"

	ResetStarted   EventType = "RESET_STARTED"
	ResetCompleted EventType = "RESET_COMPLETED"

	NetworkReady EventType = "NETWORK_READY"

	ServiceStarting EventType = "SERVICE_STARTING"
	ServiceStarted  EventType = "SERVICE_STARTED"
	ServiceFailed   EventType = "SERVICE_FAILED"
	ServiceSettling EventType = "SERVICE_SETTLING"
	ServiceStopped  EventType = "SERVICE_STOPPED"

	HookStarted   EventType = "HOOK_STARTED"
	HookSucceeded EventType = "HOOK_SUCCEEDED"
	HookFailed    EventType = "HOOK_FAILED"
)

// Event is one step of a provisioning run.
type Event struct {
	TS      time.Time
	Type    EventType
	Service string
	Message string
	Err     error
}

// EventObserver receives every event in emission order.
type EventObserver interface {
	ObserveEvent(Event)
}

// EventObserverFunc adapts a function to EventObserver.
type EventObserverFunc func(Event)

func (f EventObserverFunc) ObserveEvent(ev Event) {
	if f == nil {
		return
	}
	f(ev)
}
