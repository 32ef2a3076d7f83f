package qnet

import "container/heap"

// Calendar is the event priority queue, ordered deterministically by
// (planned time, event-kind ordinal, id). The kind ordinal puts
// DeviceRelease ahead of GenerateNewRequest at an equal planned time, so
// an occupied device frees itself before a simultaneous arrival contends
// for it.
type Calendar struct {
	events []Event
}

// NewCalendar returns an empty, heap-initialized Calendar.
func NewCalendar() *Calendar {
	c := &Calendar{events: make([]Event, 0)}
	heap.Init(c)
	return c
}

// heap.Interface

func (c *Calendar) Len() int { return len(c.events) }

func (c *Calendar) Less(i, j int) bool {
	ei, ej := c.events[i], c.events[j]
	if ei.PlannedTime() != ej.PlannedTime() {
		return ei.PlannedTime() < ej.PlannedTime()
	}
	oi, oj := eventKindOrdinal[ei.Kind()], eventKindOrdinal[ej.Kind()]
	if oi != oj {
		return oi < oj
	}
	return ei.ID() < ej.ID()
}

func (c *Calendar) Swap(i, j int) { c.events[i], c.events[j] = c.events[j], c.events[i] }

func (c *Calendar) Push(x any) { c.events = append(c.events, x.(Event)) }

func (c *Calendar) Pop() any {
	old := c.events
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	c.events = old[:n-1]
	return item
}

// Schedule schedules e onto the calendar in O(log n).
func (c *Calendar) Schedule(e Event) { heap.Push(c, e) }

// PopTop removes and returns the earliest event, or nil if the calendar is
// empty.
func (c *Calendar) PopTop() Event {
	if c.Len() == 0 {
		return nil
	}
	return heap.Pop(c).(Event)
}

// Peek returns the earliest event without removing it, or nil if the
// calendar is empty.
func (c *Calendar) Peek() Event {
	if c.Len() == 0 {
		return nil
	}
	return c.events[0]
}

// Clear empties the calendar.
func (c *Calendar) Clear() {
	c.events = c.events[:0]
}

// RemoveExcessGenerations drops every pending GenerateNewRequest event and
// re-heapifies. Invoked once the target request count is reached: no
// further arrivals may occur, but in-flight DeviceRelease events must
// still drain.
func (c *Calendar) RemoveExcessGenerations() {
	kept := c.events[:0]
	for _, e := range c.events {
		if e.Kind() != EventGenerateNewRequest {
			kept = append(kept, e)
		}
	}
	c.events = kept
	heap.Init(c)
}
