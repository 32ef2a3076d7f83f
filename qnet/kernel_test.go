package qnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRun_DeterministicNoRejections runs one source (period 10) against
// one device (deterministic coefficient 5) with no buffer, target 3:
// arrivals and releases interleave with no contention.
func TestRun_DeterministicNoRejections(t *testing.T) {
	sim := NewSimulator(
		FixedPeriods{10},
		&DeterministicProcessingTime{Coefficients: []Time{5}},
		1, 1, 0, 3,
	)
	sim.RunToCompletion()

	assert.Equal(t, Time(35), sim.Clock())
	assert.Equal(t, int64(0), sim.RejectedAmount())
	assert.Equal(t, int64(3), sim.SourceStats(0).Generated)
	assert.Equal(t, Time(15), sim.DeviceStats(0).TimeInUsage)
}

// TestRun_ForcedBuffering overloads one slow device (coefficient
// 10) with a fast source (period 1) and buffer capacity 2, target 4: the
// fourth arrival finds the buffer full and displaces the oldest waiter.
func TestRun_ForcedBuffering(t *testing.T) {
	sim := NewSimulator(
		FixedPeriods{1},
		&DeterministicProcessingTime{Coefficients: []Time{10}},
		1, 1, 2, 4,
	)
	sim.RunToCompletion()

	assert.Equal(t, int64(1), sim.RejectedAmount())
	assert.Equal(t, int64(1), sim.SourceStats(0).Rejected)
}

// TestRun_RoundRobinDispatch drives one source (period 5) against
// three fast devices, buffer 0, target 6. Device indices assigned to
// successive arrivals must be 0,1,2,0,1,2 with no rejections.
func TestRun_RoundRobinDispatch(t *testing.T) {
	var assigned []int
	sim := NewSimulator(
		FixedPeriods{5},
		recordingProcessingTime{inner: &DeterministicProcessingTime{Coefficients: []Time{1, 1, 1}}, record: &assigned},
		1, 3, 0, 6,
	)
	sim.RunToCompletion()

	require.Len(t, assigned, 6)
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, assigned)
	assert.Equal(t, int64(0), sim.RejectedAmount())
}

// recordingProcessingTime wraps a DeviceProcessingTimeProvider to record
// which device ID served each request, in call order — used to observe
// the dispatcher's round-robin assignment from outside the package.
type recordingProcessingTime struct {
	inner  DeviceProcessingTimeProvider
	record *[]int
}

func (r recordingProcessingTime) DeviceProcessingTime(deviceID int, req Request) Time {
	*r.record = append(*r.record, deviceID)
	return r.inner.DeviceProcessingTime(deviceID, req)
}

// TestRun_TwoSourceEvictionDiscipline saturates the buffer from two
// sources (both period 1) behind one very slow device, buffer capacity
// 2, target 4. The victim must be the front of the highest-indexed
// non-empty sub-queue.
func TestRun_TwoSourceEvictionDiscipline(t *testing.T) {
	sim := NewSimulator(
		FixedPeriods{1, 1},
		&DeterministicProcessingTime{Coefficients: []Time{100}},
		2, 1, 2, 4,
	)
	sim.RunToCompletion()

	assert.Equal(t, int64(1), sim.SourceStats(1).Rejected)
	assert.Equal(t, int64(0), sim.SourceStats(0).Rejected)
}

// TestRun_TerminationDrainsDevices hits the generation cap while both
// devices are busy (one source period 1, two devices coefficient 10,
// buffer 0, target 2). The calendar must still drain both releases,
// completing at t=12 with no further generations.
func TestRun_TerminationDrainsDevices(t *testing.T) {
	sim := NewSimulator(
		FixedPeriods{1},
		&DeterministicProcessingTime{Coefficients: []Time{10, 10}},
		1, 2, 0, 2,
	)
	sim.RunToCompletion()

	assert.Equal(t, Time(12), sim.Clock())
	assert.True(t, sim.IsCompleted())
	assert.Equal(t, int64(2), sim.CurrentAmountOfRequests())
}

// TestFakeBuffer_GenerationTimeOrdering checks that FakeBuffer returns
// buffered requests ordered by (generation time, source id) regardless
// of insertion or sub-queue order.
func TestFakeBuffer_GenerationTimeOrdering(t *testing.T) {
	b := NewBuffer(2, 10)
	require.Nil(t, b.PutInBuffer(Request{SourceID: 1, GenerationTime: 3}))
	require.Nil(t, b.PutInBuffer(Request{SourceID: 0, GenerationTime: 5}))

	flat := b.FakeBuffer()
	require.Len(t, flat, 2)
	assert.Equal(t, 1, flat[0].SourceID)
	assert.Equal(t, Time(3), flat[0].GenerationTime)
	assert.Equal(t, 0, flat[1].SourceID)
	assert.Equal(t, Time(5), flat[1].GenerationTime)
}

func TestSimulator_ResetThenRunIsDeterministic(t *testing.T) {
	newSim := func() *Simulator {
		return NewSimulator(
			FixedPeriods{1, 3},
			&DeterministicProcessingTime{Coefficients: []Time{7, 11}},
			2, 2, 3, 50,
		)
	}

	a := newSim()
	a.RunToCompletion()
	firstClock := a.Clock()
	firstRejected := a.RejectedAmount()

	a.Reset()
	a.RunToCompletion()

	assert.Equal(t, firstClock, a.Clock())
	assert.Equal(t, firstRejected, a.RejectedAmount())

	b := newSim()
	b.RunToCompletion()
	assert.Equal(t, a.Clock(), b.Clock())
	assert.Equal(t, a.RejectedAmount(), b.RejectedAmount())
}

func TestSimulator_ResetWithNewAmountOfRequestsMatchesFreshConstruction(t *testing.T) {
	sim := NewSimulator(
		FixedPeriods{1},
		&DeterministicProcessingTime{Coefficients: []Time{3}},
		1, 1, 1, 10,
	)
	sim.RunToCompletion()
	sim.ResetWithNewAmountOfRequests(25)
	sim.RunToCompletion()

	fresh := NewSimulator(
		FixedPeriods{1},
		&DeterministicProcessingTime{Coefficients: []Time{3}},
		1, 1, 1, 25,
	)
	fresh.RunToCompletion()

	assert.Equal(t, fresh.Clock(), sim.Clock())
	assert.Equal(t, fresh.RejectedAmount(), sim.RejectedAmount())
	assert.Equal(t, fresh.SourceStats(0).Generated, sim.SourceStats(0).Generated)
}

// TestSimulator_InvariantsHoldAfterEveryStep walks through a run checking
// the kernel's cross-entity invariants after every Step.
func TestSimulator_InvariantsHoldAfterEveryStep(t *testing.T) {
	sim := NewSimulator(
		FixedPeriods{2, 3},
		&DeterministicProcessingTime{Coefficients: []Time{4, 6}},
		2, 2, 2, 30,
	)

	var lastClock Time
	for !sim.IsCompleted() {
		sim.Step()

		var genSum, rejSum int64
		for i := 0; i < sim.SourceCount(); i++ {
			genSum += sim.SourceStats(i).Generated
			rejSum += sim.SourceStats(i).Rejected
		}
		assert.Equal(t, sim.CurrentAmountOfRequests(), genSum)
		assert.Equal(t, sim.RejectedAmount(), rejSum)
		assert.LessOrEqual(t, sim.RejectedAmount(), sim.CurrentAmountOfRequests())
		assert.LessOrEqual(t, sim.BufferSize(), sim.buffer.Capacity())
		assert.GreaterOrEqual(t, sim.Clock(), lastClock)
		lastClock = sim.Clock()

		for i := 0; i < sim.DeviceCount(); i++ {
			dev := sim.DeviceStats(i)
			assert.Equal(t, dev.IsIdle(), dev.NextRequest.IsNever())
		}
		if sim.CurrentAmountOfRequests() >= sim.Target() {
			for i := 0; i < sim.SourceCount(); i++ {
				assert.True(t, sim.SourceStats(i).NextRequest.IsNever())
			}
		}
	}
}

func TestSimulator_StepOnCompletedCalendarIsNoOpSentinel(t *testing.T) {
	sim := NewSimulator(
		FixedPeriods{1},
		&DeterministicProcessingTime{Coefficients: []Time{1}},
		1, 1, 0, 1,
	)
	sim.RunToCompletion()
	require.True(t, sim.IsCompleted())

	clockBefore := sim.Clock()
	ev := sim.Step()
	assert.Equal(t, EventEndOfSimulation, ev.Kind())
	assert.Equal(t, clockBefore, sim.Clock())
}

func TestSimulator_ExponentialProvidersProduceAValidRun(t *testing.T) {
	sim := NewSimulator(
		FixedPeriods{5, 5},
		NewExponentialProcessingTime([]Time{3, 3}, 7),
		2, 2, 4, 100,
	)
	sim.RunToCompletion()

	assert.True(t, sim.IsCompleted())
	assert.Equal(t, int64(100), sim.CurrentAmountOfRequests())
}
