package qnet

import "fmt"

// Simulator is the event-driven kernel of a queueing system with refusals:
// a fixed set of sources feeding a shared bounded buffer drained by a pool
// of devices. It advances virtual time event to event, dispatching each
// popped calendar event to its handler.
//
// Single-threaded: Simulator owns all mutable state and must only be
// driven from one goroutine at a time.
type Simulator struct {
	sourcePeriods    SourcePeriodProvider
	deviceProcessing DeviceProcessingTimeProvider

	sourceCount int
	deviceCount int

	sources []*SourceStatistics
	devices []*DeviceStatistics
	buffer  *Buffer
	disp    dispatcher

	calendar *Calendar

	clock                   Time
	currentAmountOfRequests int64
	rejectedAmount          int64
	target                  int64
}

// NewSimulator constructs a Simulator for sourceCount sources and
// deviceCount devices, with the given buffer capacity and target request
// count, and schedules each source's first arrival: one GenerateNewRequest
// per source at time SourcePeriod(i), not at time 0.
func NewSimulator(
	sourcePeriods SourcePeriodProvider,
	deviceProcessing DeviceProcessingTimeProvider,
	sourceCount, deviceCount, bufferCapacity int,
	target int64,
) *Simulator {
	s := &Simulator{
		sourcePeriods:    sourcePeriods,
		deviceProcessing: deviceProcessing,
		sourceCount:      sourceCount,
		deviceCount:      deviceCount,
		buffer:           NewBuffer(sourceCount, bufferCapacity),
		calendar:         NewCalendar(),
		target:           target,
	}
	s.sources = make([]*SourceStatistics, sourceCount)
	for i := range s.sources {
		s.sources[i] = newSourceStatistics()
	}
	s.devices = make([]*DeviceStatistics, deviceCount)
	for i := range s.devices {
		s.devices[i] = newDeviceStatistics()
	}
	s.seedInitialArrivals()
	return s
}

func (s *Simulator) seedInitialArrivals() {
	for i := 0; i < s.sourceCount; i++ {
		period := s.sourcePeriods.SourcePeriod(i)
		at := s.clock + period
		s.calendar.Schedule(NewGenerateNewRequestEvent(at, i))
		s.sources[i].NextRequest = at
	}
}

// Clock returns the current simulation time.
func (s *Simulator) Clock() Time { return s.clock }

// CurrentAmountOfRequests returns the total number of requests generated
// across all sources so far.
func (s *Simulator) CurrentAmountOfRequests() int64 { return s.currentAmountOfRequests }

// RejectedAmount returns the total number of requests rejected (evicted
// from the buffer) so far.
func (s *Simulator) RejectedAmount() int64 { return s.rejectedAmount }

// Target returns the configured request-generation cap.
func (s *Simulator) Target() int64 { return s.target }

// SourceStats returns a read-only view of source i's statistics.
func (s *Simulator) SourceStats(i int) *SourceStatistics { return s.sources[i] }

// DeviceStats returns a read-only view of device i's statistics.
func (s *Simulator) DeviceStats(i int) *DeviceStatistics { return s.devices[i] }

// SourceCount returns the number of sources.
func (s *Simulator) SourceCount() int { return s.sourceCount }

// DeviceCount returns the number of devices.
func (s *Simulator) DeviceCount() int { return s.deviceCount }

// FakeBuffer returns the buffer's contents as a flat, generation-time-
// ordered sequence. It does not mutate simulator state.
func (s *Simulator) FakeBuffer() []Request { return s.buffer.FakeBuffer() }

// SubQueue returns source i's sub-queue in the buffer, oldest first.
func (s *Simulator) SubQueue(sourceID int) []Request { return s.buffer.SubQueue(sourceID) }

// BufferSize returns the total number of requests currently buffered.
func (s *Simulator) BufferSize() int { return s.buffer.Size() }

// IsCompleted reports whether the calendar is empty: no further events,
// arrivals or releases, are pending.
func (s *Simulator) IsCompleted() bool { return s.calendar.Len() == 0 }

// Step pops the earliest calendar event, advances the clock to its
// planned time, and dispatches on its kind. If the calendar is empty on
// entry, Step makes no state change and returns a synthetic
// EndOfSimulation event.
func (s *Simulator) Step() Event {
	top := s.calendar.PopTop()
	if top == nil {
		return newEndOfSimulationEvent(s.clock)
	}
	if top.PlannedTime() < s.clock {
		panic(fmt.Sprintf("qnet: calendar time went backwards: %v < %v", top.PlannedTime(), s.clock))
	}
	s.clock = top.PlannedTime()
	switch top.Kind() {
	case EventGenerateNewRequest:
		s.handleGenerateNewRequest(top.ID())
	case EventDeviceRelease:
		s.handleDeviceRelease(top.ID())
	default:
		panic(fmt.Sprintf("qnet: unhandled event kind %q", top.Kind()))
	}
	return top
}

// RunToCompletion steps the simulator until IsCompleted holds.
func (s *Simulator) RunToCompletion() {
	for !s.IsCompleted() {
		s.Step()
	}
}

// Reset zeroes all counters and accumulators, clears the buffer and
// calendar, resets the clock to 0, and re-seeds the initial generation
// events, leaving the simulator as if freshly constructed with the same
// target.
func (s *Simulator) Reset() {
	s.clock = 0
	s.currentAmountOfRequests = 0
	s.rejectedAmount = 0
	for _, src := range s.sources {
		src.reset()
	}
	for _, dev := range s.devices {
		dev.reset()
	}
	s.buffer.reset()
	s.calendar.Clear()
	s.disp = dispatcher{}
	s.seedInitialArrivals()
}

// ResetWithNewAmountOfRequests performs Reset and then sets the target
// request count to target.
func (s *Simulator) ResetWithNewAmountOfRequests(target int64) {
	s.Reset()
	s.target = target
}

// Event handlers

func (s *Simulator) handleGenerateNewRequest(sourceID int) {
	src := s.sources[sourceID]
	src.Generated++
	req := Request{SourceID: sourceID, Serial: src.Generated, GenerationTime: s.clock}
	s.currentAmountOfRequests++

	if _, ok := s.occupyNextDevice(req); !ok {
		if victim := s.buffer.PutInBuffer(req); victim != nil {
			s.handleBufferOverflow(*victim)
		}
	}

	if s.currentAmountOfRequests >= s.target {
		s.calendar.RemoveExcessGenerations()
		for _, other := range s.sources {
			other.NextRequest = NeverTime
		}
		return
	}

	period := s.sourcePeriods.SourcePeriod(sourceID)
	at := s.clock + period
	s.calendar.Schedule(NewGenerateNewRequestEvent(at, sourceID))
	src.NextRequest = at
}

func (s *Simulator) handleDeviceRelease(deviceID int) {
	dev := s.devices[deviceID]
	dev.CurrentRequest = nil

	if req := s.buffer.TakeOutOfBuffer(); req != nil {
		wait := s.clock.Sub(req.GenerationTime)
		s.sources[req.SourceID].addBufferWait(wait)
		if _, ok := s.occupyNextDevice(*req); !ok {
			panic("qnet: device just released could not be re-occupied")
		}
		return
	}
	dev.NextRequest = NeverTime
}

// occupyNextDevice picks an idle device via round robin, samples its
// processing time for request, records the time against both the device
// and the originating source, and schedules the device's release.
func (s *Simulator) occupyNextDevice(request Request) (int, bool) {
	deviceID, ok := s.disp.pickDevice(s.devices)
	if !ok {
		return -1, false
	}
	dev := s.devices[deviceID]
	t := s.deviceProcessing.DeviceProcessingTime(deviceID, request)
	s.sources[request.SourceID].addDeviceTime(t)
	dev.TimeInUsage += t
	dev.CurrentRequest = &request
	at := s.clock + t
	s.calendar.Schedule(NewDeviceReleaseEvent(at, deviceID))
	dev.NextRequest = at
	return deviceID, true
}

func (s *Simulator) handleBufferOverflow(victim Request) {
	wait := s.clock.Sub(victim.GenerationTime)
	src := s.sources[victim.SourceID]
	src.addBufferWait(wait)
	src.Rejected++
	s.rejectedAmount++
}
