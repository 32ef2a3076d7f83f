// Package qnet provides the discrete-event simulation kernel for a
// finite-capacity queueing system with refusals: a fixed set of request
// sources feeds a shared bounded buffer that is drained by a pool of
// devices.
//
// # Reading Guide
//
// Start with these three files to understand the kernel:
//   - request.go, event.go: the immutable Request record and the calendar
//     event variants (GenerateNewRequest, DeviceRelease)
//   - calendar.go: the priority-ordered event calendar and its
//     deterministic tie-break
//   - kernel.go: the Simulator, its event handlers, and the
//     Step/RunToCompletion/Reset surface
//
// # Architecture
//
// The Simulator owns all mutable state: the calendar, the per-source
// sub-queue buffer (buffer.go), the round-robin device dispatcher
// (dispatcher.go), and the per-source/per-device statistics (stats.go).
// Callers drive it one event at a time through Step and read results
// through the observer accessors; the kernel itself performs no I/O.
//
// Policy hooks are the two provider interfaces in providers.go:
//   - SourcePeriodProvider: a source's inter-arrival period
//   - DeviceProcessingTimeProvider: a device's (possibly sampled)
//     processing time per request
package qnet
