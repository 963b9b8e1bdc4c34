package sim

import (
	"github.com/grailbio/base/log"
)

// BurstLength is the fixed DDR burst length in half-cycles. One read or
// write occupies the data bus for BurstLength/2 memory clock periods.
const BurstLength = 8

// RAMConfig describes the geometry and timing of one RAM chip. Addresses
// decompose as bank | row | column, with the bank in the most significant
// bits. The tRCD/tCL/tRP values are in memory clock cycles.
type RAMConfig struct {
	RowWidth  uint
	ColWidth  uint
	BankWidth uint

	SystemClockMHz uint64
	MemoryClockMHz uint64

	TRCDCycles uint64
	TCLCycles  uint64
	TRPCycles  uint64
}

// AddressWidth returns the number of address bits of one chip.
func (c RAMConfig) AddressWidth() uint { return c.RowWidth + c.ColWidth + c.BankWidth }

// Size returns the number of elements one chip holds.
func (c RAMConfig) Size() uint64 { return 1 << c.AddressWidth() }

type ramRequest[T any] struct {
	address uint64
	data    T
	// Remaining wait in picoseconds. The request may retire once this
	// reaches zero and the data bus is free.
	waitPs int64
}

type bankState struct {
	// latencyPs is the residual busy time of the bank in picoseconds.
	latencyPs int64
	// openRow is the currently open row, or -1 when no row is open.
	openRow int64
}

// RAM models a single DDR-style chip with multiple banks sharing one data
// bus. Requests are accepted at any rate; each carries a wait computed from
// the addressed bank's state at issue time (burst-only on a row hit,
// tRCD+tCL+tRP on a row change, queued behind the bank's residual latency).
// The head of the read queue retires when its wait has elapsed and at least
// one burst time has passed since the previous retirement.
//
// Writes share the bank timing model but use a separate queue and emit no
// data. Consistency of reads with post-start writes is not modelled;
// DirectWrite is the only supported way to populate the chip.
type RAM[T any] struct {
	cfg  RAMConfig
	data []T

	readQueue  []ramRequest[T]
	writeQueue []ramRequest[T]
	banks      []bankState

	readReady bool
	readData  T

	// Timing constants, picoseconds.
	tRCD, tCL, tRP, tBurst int64
	systemClockPeriodPs    int64

	timeSinceLastReadPs int64
	accesses            uint64
	cycles              uint64
}

// NewRAM returns a zero-filled chip with the given geometry and timing.
func NewRAM[T any](cfg RAMConfig) *RAM[T] {
	if cfg.SystemClockMHz == 0 || cfg.MemoryClockMHz == 0 {
		log.Panicf("ram: zero clock frequency in config %+v", cfg)
	}
	memoryClockPeriodPs := int64(1000000 / cfg.MemoryClockMHz)
	r := &RAM[T]{
		cfg:                 cfg,
		data:                make([]T, cfg.Size()),
		banks:               make([]bankState, 1<<cfg.BankWidth),
		tRCD:                int64(cfg.TRCDCycles) * memoryClockPeriodPs,
		tCL:                 int64(cfg.TCLCycles) * memoryClockPeriodPs,
		tRP:                 int64(cfg.TRPCycles) * memoryClockPeriodPs,
		tBurst:              BurstLength / 2 * memoryClockPeriodPs,
		systemClockPeriodPs: int64(1000000 / cfg.SystemClockMHz),
	}
	for i := range r.banks {
		r.banks[i].openRow = -1
	}
	return r
}

func (r *RAM[T]) decompose(address uint64) (bank, row uint64) {
	bank = address >> (r.cfg.RowWidth + r.cfg.ColWidth)
	row = (address >> r.cfg.ColWidth) & ((1 << r.cfg.RowWidth) - 1)
	return bank, row
}

// requestWait computes the wait for a new request to the addressed bank and
// updates the bank state. The bank's open row becomes the request's row and
// its residual latency becomes the request's wait.
func (r *RAM[T]) requestWait(address uint64) int64 {
	bank, row := r.decompose(address)
	b := &r.banks[bank]
	wait := b.latencyPs
	if wait < 0 {
		wait = 0
	}
	if int64(row) == b.openRow {
		wait += r.tBurst
	} else {
		wait += r.tRCD + r.tCL + r.tRP
	}
	b.openRow = int64(row)
	b.latencyPs = wait
	return wait
}

func (r *RAM[T]) checkAddress(address uint64) {
	if address >= r.cfg.Size() {
		log.Panicf("ram: address %#x out of range (chip size %d)", address, r.cfg.Size())
	}
}

// DirectWrite stores v at address immediately, bypassing all timing. Used
// only to preload the chip before simulation starts.
func (r *RAM[T]) DirectWrite(address uint64, v T) {
	r.checkAddress(address)
	r.data[address] = v
}

// ReadRequest enqueues a timed read of address.
func (r *RAM[T]) ReadRequest(address uint64) {
	r.checkAddress(address)
	r.accesses++
	r.readQueue = append(r.readQueue, ramRequest[T]{address: address, waitPs: r.requestWait(address)})
}

// WriteRequest enqueues a timed write of v to address.
func (r *RAM[T]) WriteRequest(address uint64, v T) {
	r.checkAddress(address)
	r.accesses++
	r.writeQueue = append(r.writeQueue, ramRequest[T]{address: address, data: v, waitPs: r.requestWait(address)})
}

// ReadReady reports whether a read retired this cycle. It is true for
// exactly one cycle per read.
func (r *RAM[T]) ReadReady() bool { return r.readReady }

// ReadData returns the value of the read that retired this cycle.
func (r *RAM[T]) ReadData() T {
	if !r.readReady {
		log.Panicf("ram: ReadData with no retired read")
	}
	return r.readData
}

// AccessCount returns the number of read and write requests issued to this
// chip since construction or the last Reset.
func (r *RAM[T]) AccessCount() uint64 { return r.accesses }

// CycleCount returns the number of clock cycles this chip has seen.
func (r *RAM[T]) CycleCount() uint64 { return r.cycles }

// NextClockCycle advances time by one system clock period: retires at most
// one read (bus permitting) and one write, then ages every pending request
// and bank.
func (r *RAM[T]) NextClockCycle() {
	r.cycles++
	r.readReady = false

	if len(r.readQueue) > 0 {
		head := r.readQueue[0]
		if head.waitPs <= 0 && r.timeSinceLastReadPs >= r.tBurst {
			copy(r.readQueue, r.readQueue[1:])
			r.readQueue = r.readQueue[:len(r.readQueue)-1]
			r.readReady = true
			r.readData = r.data[head.address]
			r.timeSinceLastReadPs = 0
		}
	}

	// Writes retire on a separate port and emit nothing.
	if len(r.writeQueue) > 0 && r.writeQueue[0].waitPs <= 0 {
		head := r.writeQueue[0]
		copy(r.writeQueue, r.writeQueue[1:])
		r.writeQueue = r.writeQueue[:len(r.writeQueue)-1]
		r.data[head.address] = head.data
	}

	for i := range r.readQueue {
		r.readQueue[i].waitPs -= r.systemClockPeriodPs
	}
	for i := range r.writeQueue {
		r.writeQueue[i].waitPs -= r.systemClockPeriodPs
	}
	for i := range r.banks {
		if r.banks[i].latencyPs > 0 {
			r.banks[i].latencyPs -= r.systemClockPeriodPs
		} else {
			r.banks[i].latencyPs = 0
		}
	}
	r.timeSinceLastReadPs += r.systemClockPeriodPs
}

// Reset drops the pending queues and bank timing state. Stored data is
// preserved, so a preloaded chip stays preloaded.
func (r *RAM[T]) Reset() {
	r.readQueue = r.readQueue[:0]
	r.writeQueue = r.writeQueue[:0]
	r.readReady = false
	r.timeSinceLastReadPs = 0
	r.accesses = 0
	for i := range r.banks {
		r.banks[i] = bankState{openRow: -1}
	}
}
