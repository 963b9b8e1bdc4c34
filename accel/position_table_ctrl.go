package accel

import (
	"github.com/grailbio/seedsim/sim"
)

// PositionTableCtrl streams out every candidate position of its upstream
// ITC's intervals. One in-flight FIFO entry is written per position table
// read (and one per zero-length interval), so arriving data can be paired
// with the subread it belongs to.
//
// Dispatch progress and retirement progress are tracked separately:
// dispatched counts reads issued for the current interval, resultIndex
// counts results consumed, and only the latter decides when the subread
// retires with a Last result. Back-pressure can therefore stall a lane
// mid-interval without corrupting either count.
type PositionTableCtrl struct {
	id     int
	itc    *IntervalTableCtrl
	ram    *sim.RamModule[uint32]
	layout tableLayout

	inflightFifo *sim.Fifo[SubReadInterval]
	outputFifo   *sim.Fifo[PositionTableResult]

	// Current interval being dispatched. active is set while dispatched
	// reads remain below the interval length.
	sri        SubReadInterval
	dispatched uint32
	active     bool

	// resultIndex counts consumed results within the retiring subread.
	resultIndex uint32

	// arrivals banks DRAM completions until the in-flight head catches up.
	// The module publishes each completion for a single cycle, and the head
	// may be a zero-length entry that retires synthetically first.
	arrivals []uint32

	fifoLength int
	cycles     uint64
}

// NewPositionTableCtrl attaches lane id to its ITC and the shared position
// table DRAM.
func NewPositionTableCtrl(id int, itc *IntervalTableCtrl, ram *sim.RamModule[uint32],
	layout tableLayout, opts Opts) *PositionTableCtrl {
	return &PositionTableCtrl{
		id:           id,
		itc:          itc,
		ram:          ram,
		layout:       layout,
		inflightFifo: sim.NewFifo[SubReadInterval](opts.PositionTableFifoLength),
		outputFifo:   sim.NewFifo[PositionTableResult](opts.PositionTableFifoLength),
		fifoLength:   opts.PositionTableFifoLength,
	}
}

// PositionReady reports whether a result is available for the stitcher.
func (c *PositionTableCtrl) PositionReady() bool { return !c.outputFifo.IsEmpty() }

// PositionData peeks at the current result without consuming it.
func (c *PositionTableCtrl) PositionData() PositionTableResult { return c.outputFifo.ReadData() }

// ReadRequest schedules the pop of the current result.
func (c *PositionTableCtrl) ReadRequest() { c.outputFifo.ReadRequest() }

// IsIdle reports whether no subread is anywhere in this controller.
func (c *PositionTableCtrl) IsIdle() bool {
	return !c.active && c.inflightFifo.IsEmpty() && c.outputFifo.IsEmpty() && len(c.arrivals) == 0
}

// CycleCount returns the number of clock cycles seen.
func (c *PositionTableCtrl) CycleCount() uint64 { return c.cycles }

// NextClockCycle issues at most one position read and consumes at most one
// arrival.
func (c *PositionTableCtrl) NextClockCycle() {
	c.cycles++

	// Every in-flight entry is one future output, so gating both FIFOs'
	// occupancy against the FIFO length keeps the output side from
	// overflowing.
	capacityLeft := c.inflightFifo.Len()+c.outputFifo.Len() < c.fifoLength
	if !c.active {
		if c.itc.IntervalReady() && capacityLeft && c.ram.IsPortReady(c.id) {
			c.sri = c.itc.IntervalData()
			c.inflightFifo.WriteRequest(c.sri)
			if c.sri.Interval.Length > 0 {
				c.ram.ReadRequest(c.layout.address(uint64(c.sri.Interval.Start)), c.id)
				c.dispatched = 1
				c.active = c.dispatched < c.sri.Interval.Length
			}
		}
	} else if capacityLeft && c.ram.IsPortReady(c.id) {
		c.inflightFifo.WriteRequest(c.sri)
		c.ram.ReadRequest(c.layout.address(uint64(c.sri.Interval.Start)+uint64(c.dispatched)), c.id)
		c.dispatched++
		c.active = c.dispatched < c.sri.Interval.Length
	}

	if c.ram.ReadReady(c.id) {
		c.arrivals = append(c.arrivals, c.ram.ReadData(c.id))
	}

	if !c.inflightFifo.IsEmpty() && c.inflightFifo.ReadData().Interval.Length == 0 {
		// A subread absent from the reference retires synthetically; no DRAM
		// read was issued for it.
		sri := c.inflightFifo.ReadData()
		c.inflightFifo.ReadRequest()
		c.outputFifo.WriteRequest(PositionTableResult{SR: sri.SR, Last: true, Empty: true})
	} else if !c.inflightFifo.IsEmpty() && len(c.arrivals) > 0 {
		position := uint64(c.arrivals[0])
		c.arrivals = c.arrivals[1:]
		sri := c.inflightFifo.ReadData()
		c.inflightFifo.ReadRequest()

		last := false
		if c.resultIndex == sri.Interval.Length-1 {
			last = true
			c.resultIndex = 0
		} else {
			c.resultIndex++
		}

		// The stitcher subtracts the in-read offset, so positions that
		// would underflow are dropped here. A dropped final position still
		// has to terminate the lane.
		if position >= sri.SR.Length*sri.SR.SubReadOffset {
			c.outputFifo.WriteRequest(PositionTableResult{
				SR:       sri.SR,
				Position: position,
				Last:     last,
			})
		} else if last {
			c.outputFifo.WriteRequest(PositionTableResult{SR: sri.SR, Last: true, Empty: true})
		}
	}

	c.inflightFifo.NextClockCycle()
	c.outputFifo.NextClockCycle()
}

// Reset empties the controller.
func (c *PositionTableCtrl) Reset() {
	c.inflightFifo.Reset()
	c.outputFifo.Reset()
	c.active = false
	c.dispatched = 0
	c.resultIndex = 0
	c.arrivals = c.arrivals[:0]
}
