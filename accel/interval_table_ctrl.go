package accel

import (
	"github.com/grailbio/seedsim/sim"
)

// IntervalTableCtrl turns subreads into position table intervals. Each
// subread needs two interval table lookups, at the subread's seed value and
// at the lexicographically next one; the difference of the two entries is
// the interval length. The controller pipelines the pair: while the first
// lookup of one subread is in flight it can already issue the second, and
// results return strictly in issue order over its private DRAM port.
type IntervalTableCtrl struct {
	id          int
	inputReader *InputReader
	ram         *sim.RamModule[uint32]
	layout      tableLayout

	inflightFifo *sim.Fifo[SubRead]
	outputFifo   *sim.Fifo[SubReadInterval]

	// firstRequest is set when the next lookup to issue starts a new
	// subread; firstRead when the next arriving datum is a first lookup.
	firstRequest    bool
	firstRead       bool
	secondLookup    uint64
	firstLookupData uint32

	fifoLength int
	cycles     uint64
}

// NewIntervalTableCtrl attaches lane id to the input reader and the shared
// interval table DRAM.
func NewIntervalTableCtrl(id int, inputReader *InputReader, ram *sim.RamModule[uint32],
	layout tableLayout, opts Opts) *IntervalTableCtrl {
	return &IntervalTableCtrl{
		id:           id,
		inputReader:  inputReader,
		ram:          ram,
		layout:       layout,
		inflightFifo: sim.NewFifo[SubRead](opts.IntervalTableFifoLength),
		outputFifo:   sim.NewFifo[SubReadInterval](opts.IntervalTableFifoLength),
		firstRequest: true,
		firstRead:    true,
		fifoLength:   opts.IntervalTableFifoLength,
	}
}

// IntervalReady reports whether an interval is available for the PTC.
func (c *IntervalTableCtrl) IntervalReady() bool { return !c.outputFifo.IsEmpty() }

// IntervalData returns the next interval and schedules its pop.
func (c *IntervalTableCtrl) IntervalData() SubReadInterval {
	sri := c.outputFifo.ReadData()
	c.outputFifo.ReadRequest()
	return sri
}

// IsIdle reports whether no subread is anywhere in this controller.
func (c *IntervalTableCtrl) IsIdle() bool {
	return c.inflightFifo.IsEmpty() && c.outputFifo.IsEmpty()
}

// CycleCount returns the number of clock cycles seen.
func (c *IntervalTableCtrl) CycleCount() uint64 { return c.cycles }

// NextClockCycle issues at most one lookup and consumes at most one result.
func (c *IntervalTableCtrl) NextClockCycle() {
	c.cycles++

	// Start a new subread only with output-side capacity for it; the second
	// lookup of a started subread goes out as soon as the port allows.
	if c.firstRequest && c.inputReader.SubReadReady(c.id) &&
		c.inflightFifo.Len()+c.outputFifo.Len() < c.fifoLength &&
		c.ram.IsPortReady(c.id) {
		sr := c.inputReader.SubReadRequest(c.id)
		c.inflightFifo.WriteRequest(sr)
		c.ram.ReadRequest(c.layout.address(sr.Data), c.id)
		c.secondLookup = sr.Data + 1
		c.firstRequest = false
	} else if !c.firstRequest && c.ram.IsPortReady(c.id) {
		c.ram.ReadRequest(c.layout.address(c.secondLookup), c.id)
		c.firstRequest = true
	}

	if c.ram.ReadReady(c.id) {
		data := c.ram.ReadData(c.id)
		if c.firstRead {
			c.firstLookupData = data
			c.firstRead = false
		} else {
			sr := c.inflightFifo.ReadData()
			c.inflightFifo.ReadRequest()
			c.outputFifo.WriteRequest(SubReadInterval{
				SR: sr,
				Interval: PositionTableInterval{
					Start:  c.firstLookupData,
					Length: data - c.firstLookupData,
				},
			})
			c.firstRead = true
		}
	}

	c.inflightFifo.NextClockCycle()
	c.outputFifo.NextClockCycle()
}

// Reset empties the controller.
func (c *IntervalTableCtrl) Reset() {
	c.inflightFifo.Reset()
	c.outputFifo.Reset()
	c.firstRequest = true
	c.firstRead = true
}
