// Package sim provides the generic building blocks for a discrete-event,
// cycle-accurate hardware simulation: bounded FIFOs with registered outputs,
// a multi-bank DDR-style RAM timing model, and a multi-chip, multi-port RAM
// module with per-port reorder buffers.
//
// Every component is a sequential block: within a cycle, callers may inspect
// outputs and schedule requests in any order; NextClockCycle then applies the
// scheduled state change and publishes the outputs for the following cycle.
// The whole network is advanced from a single goroutine; nothing here is
// thread safe.
package sim
