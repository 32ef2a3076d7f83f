package qnet

// EventKind identifies the variant of a scheduled Event.
type EventKind string

const (
	EventGenerateNewRequest EventKind = "GenerateNewRequest"
	EventDeviceRelease      EventKind = "DeviceRelease"
	// EventEndOfSimulation is an observer-only sentinel returned by Step
	// when the calendar is empty on entry; it is never scheduled.
	EventEndOfSimulation EventKind = "EndOfSimulation"
)

// eventKindOrdinal fixes the deterministic tie-break between event kinds
// that share a planned time: releases drain before arrivals are admitted,
// so an occupied device can free itself before a new arrival contends for
// it.
var eventKindOrdinal = map[EventKind]int{
	EventDeviceRelease:      0,
	EventGenerateNewRequest: 1,
}

// Event is any scheduled state transition in the calendar.
type Event interface {
	PlannedTime() Time
	Kind() EventKind
	// ID is the source index for GenerateNewRequest, the device index for
	// DeviceRelease. Its meaning is variant-specific.
	ID() int
}

// baseEvent provides the fields common to every calendar event.
type baseEvent struct {
	plannedTime Time
	kind        EventKind
	id          int
}

func (e baseEvent) PlannedTime() Time { return e.plannedTime }
func (e baseEvent) Kind() EventKind   { return e.kind }
func (e baseEvent) ID() int           { return e.id }

// GenerateNewRequestEvent signals that source ID should emit its next
// request at PlannedTime.
type GenerateNewRequestEvent struct {
	baseEvent
}

// NewGenerateNewRequestEvent constructs a GenerateNewRequest event for the
// given source at the given planned time.
func NewGenerateNewRequestEvent(plannedTime Time, sourceID int) *GenerateNewRequestEvent {
	return &GenerateNewRequestEvent{baseEvent{plannedTime: plannedTime, kind: EventGenerateNewRequest, id: sourceID}}
}

// DeviceReleaseEvent signals that device ID finishes processing its
// current request at PlannedTime.
type DeviceReleaseEvent struct {
	baseEvent
}

// NewDeviceReleaseEvent constructs a DeviceRelease event for the given
// device at the given planned time.
func NewDeviceReleaseEvent(plannedTime Time, deviceID int) *DeviceReleaseEvent {
	return &DeviceReleaseEvent{baseEvent{plannedTime: plannedTime, kind: EventDeviceRelease, id: deviceID}}
}

// endOfSimulationEvent is the synthetic value Step returns when popped from
// an empty calendar; it carries no meaningful ID.
type endOfSimulationEvent struct {
	baseEvent
}

func newEndOfSimulationEvent(at Time) *endOfSimulationEvent {
	return &endOfSimulationEvent{baseEvent{plannedTime: at, kind: EventEndOfSimulation, id: -1}}
}
