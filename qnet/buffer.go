package qnet

import "sort"

// Buffer is the bounded two-level storage between sources and devices: one
// FIFO sub-queue per source, a shared capacity across all of them, and an
// extraction cursor that stays on one sub-queue until it is found empty.
type Buffer struct {
	subQueues     [][]Request
	capacity      int
	size          int
	currentPacket int
}

// NewBuffer returns an empty Buffer with one sub-queue per source and the
// given total capacity.
func NewBuffer(sourceCount int, capacity int) *Buffer {
	b := &Buffer{
		subQueues: make([][]Request, sourceCount),
		capacity:  capacity,
	}
	return b
}

// Size returns the total number of requests currently buffered.
func (b *Buffer) Size() int { return b.size }

// Capacity returns the buffer's total capacity.
func (b *Buffer) Capacity() int { return b.capacity }

// PutInBuffer admits request into its source's sub-queue. If the buffer is
// full, the victim is chosen by scanning sub-queues in reverse index order
// and evicting the front element of the first non-empty one found (the
// oldest request belonging to the highest-indexed non-empty source); the
// victim is returned so the caller can route it to HandleBufferOverflow.
// A nil return means no eviction occurred.
//
// A zero-capacity buffer is handled as the degenerate case of the same
// rule: buffer_size == capacity(0) holds before every call, but every
// sub-queue is empty (nothing with capacity 0 is ever retained), so the
// reverse scan finds no existing victim — in that case request itself
// never enters a sub-queue and is returned as the victim directly.
func (b *Buffer) PutInBuffer(request Request) *Request {
	if b.size == b.capacity {
		for i := len(b.subQueues) - 1; i >= 0; i-- {
			if len(b.subQueues[i]) > 0 {
				v := b.subQueues[i][0]
				b.subQueues[i] = b.subQueues[i][1:]
				b.size--
				b.subQueues[request.SourceID] = append(b.subQueues[request.SourceID], request)
				b.size++
				return &v
			}
		}
		return &request
	}
	b.subQueues[request.SourceID] = append(b.subQueues[request.SourceID], request)
	b.size++
	return nil
}

// TakeOutOfBuffer extracts the next request to dispatch to a freed device,
// or nil if the buffer is empty. If the sub-queue at currentPacket is
// empty, currentPacket advances to the first non-empty sub-queue found by
// scanning forward from index 0 (not from currentPacket) before extracting
// — currentPacket is otherwise left untouched; it only moves when found
// empty at the start of a call.
func (b *Buffer) TakeOutOfBuffer() *Request {
	if b.size == 0 {
		return nil
	}
	if len(b.subQueues[b.currentPacket]) == 0 {
		for i := 0; i < len(b.subQueues); i++ {
			if len(b.subQueues[i]) > 0 {
				b.currentPacket = i
				break
			}
		}
	}
	q := b.subQueues[b.currentPacket]
	req := q[0]
	b.subQueues[b.currentPacket] = q[1:]
	b.size--
	return &req
}

// FakeBuffer returns the buffer's contents as a single flat sequence
// sorted by (generation time, source id) ascending. It is a pure function
// of the sub-queues: no state is perturbed.
func (b *Buffer) FakeBuffer() []Request {
	flat := make([]Request, 0, b.size)
	for _, q := range b.subQueues {
		flat = append(flat, q...)
	}
	sort.Slice(flat, func(i, j int) bool {
		if flat[i].GenerationTime != flat[j].GenerationTime {
			return flat[i].GenerationTime < flat[j].GenerationTime
		}
		return flat[i].SourceID < flat[j].SourceID
	})
	return flat
}

// SubQueue returns a read-only view of the sub-queue belonging to the
// given source, for observers such as the interactive REPL's "b" command.
func (b *Buffer) SubQueue(sourceID int) []Request {
	return b.subQueues[sourceID]
}

// reset empties every sub-queue and resets the extraction cursor.
func (b *Buffer) reset() {
	for i := range b.subQueues {
		b.subQueues[i] = nil
	}
	b.size = 0
	b.currentPacket = 0
}
