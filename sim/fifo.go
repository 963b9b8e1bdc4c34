package sim

import (
	"github.com/grailbio/base/log"
)

// Fifo is a bounded queue with a one-cycle write/read delay, modelling a
// hardware FIFO with registered outputs. WriteRequest and ReadRequest
// schedule a push and a pop for the next clock edge; ReadData exposes the
// element at the head and is stable for the duration of a cycle.
//
// Within one cycle a producer and a consumer may both act on the same FIFO.
// NextClockCycle applies the write before the pop so that a FIFO of capacity
// one can be traversed in a single cycle.
type Fifo[T any] struct {
	data       []T
	length     int
	almostFull int

	writeRequested bool
	readRequested  bool
	writeData      T
	readData       T

	cycles uint64
}

// NewFifo returns a FIFO holding at most length elements. The almost-full
// watermark defaults to the full capacity.
func NewFifo[T any](length int) *Fifo[T] {
	return NewFifoAlmostFull[T](length, length)
}

// NewFifoAlmostFull returns a FIFO with an explicit almost-full watermark.
func NewFifoAlmostFull[T any](length, almostFull int) *Fifo[T] {
	if length < almostFull {
		log.Panicf("fifo: almost-full watermark %d exceeds capacity %d", almostFull, length)
	}
	return &Fifo[T]{
		data:       make([]T, 0, length),
		length:     length,
		almostFull: almostFull,
	}
}

// IsFull reports whether the FIFO cannot accept another element.
func (f *Fifo[T]) IsFull() bool { return len(f.data) == f.length }

// IsAlmostFull reports whether the occupancy has reached the watermark.
func (f *Fifo[T]) IsAlmostFull() bool { return len(f.data) >= f.almostFull }

// IsEmpty reports whether the FIFO holds no elements.
func (f *Fifo[T]) IsEmpty() bool { return len(f.data) == 0 }

// Len returns the current occupancy.
func (f *Fifo[T]) Len() int { return len(f.data) }

// WriteRequest schedules v to be pushed on the next clock edge. It is the
// caller's responsibility to check IsFull first; writing to a full FIFO is a
// modelling bug and panics, unless a pop was already scheduled this cycle.
func (f *Fifo[T]) WriteRequest(v T) {
	if f.IsFull() && !f.readRequested {
		log.Panicf("fifo: write to full FIFO (capacity %d)", f.length)
	}
	f.writeRequested = true
	f.writeData = v
}

// ReadRequest schedules a pop on the next clock edge. It is the caller's
// responsibility to check IsEmpty first; reading an empty FIFO panics.
func (f *Fifo[T]) ReadRequest() {
	if f.IsEmpty() {
		log.Panicf("fifo: read from empty FIFO")
	}
	f.readRequested = true
}

// ReadData returns the element at the head of the FIFO. The value is only
// meaningful while the FIFO is non-empty.
func (f *Fifo[T]) ReadData() T { return f.readData }

// NextClockCycle services the requests scheduled during the current cycle,
// write before pop, and republishes the head for the next cycle's peek.
func (f *Fifo[T]) NextClockCycle() {
	f.cycles++

	if f.writeRequested {
		f.data = append(f.data, f.writeData)
		f.writeRequested = false
	}
	if f.readRequested {
		copy(f.data, f.data[1:])
		f.data = f.data[:len(f.data)-1]
		f.readRequested = false
	}
	if !f.IsEmpty() {
		f.readData = f.data[0]
	}
}

// Reset empties the FIFO and clears any pending requests.
func (f *Fifo[T]) Reset() {
	f.data = f.data[:0]
	f.writeRequested = false
	f.readRequested = false
}

// CycleCount returns the number of clock cycles this FIFO has seen.
func (f *Fifo[T]) CycleCount() uint64 { return f.cycles }
