package qnet

// Request is created exactly once by a source at the time it is generated
// and is never mutated thereafter. Its identity is (SourceID, Serial).
type Request struct {
	SourceID       int
	Serial         int64
	GenerationTime Time
}
