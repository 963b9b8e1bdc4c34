package accel

import (
	"github.com/grailbio/seedsim/encoding/seqio"
	"github.com/grailbio/seedsim/sim"
	"github.com/pkg/errors"
)

// Stats summarises one simulation run.
type Stats struct {
	// Cycles is the total clock cycle count of the run.
	Cycles uint64
	// Matches is the number of stitched read positions emitted.
	Matches int
	// Per-chip DRAM request counts for the three memory blocks.
	InputReaderAccesses   []uint64
	IntervalTableAccesses []uint64
	PositionTableAccesses []uint64
}

// System owns a full accelerator instance: the input reader, the two table
// DRAM modules, one ITC+PTC lane per subread slot, and the stitchers. It is
// the only caller of Clock.
type System struct {
	inputReader      *InputReader
	intervalTableRam *sim.RamModule[uint32]
	positionTableRam *sim.RamModule[uint32]
	itcs             []*IntervalTableCtrl
	ptcs             []*PositionTableCtrl
	stitchers        []*Stitcher
}

// NewSystem builds and preloads an accelerator for the given workload and
// tables. numStitchers stitchers run in parallel, each owning one lane per
// subread of a read.
func NewSystem(workload seqio.SubReads, intervalTable, positionTable []uint32,
	numStitchers int, opts Opts) (*System, error) {
	if numStitchers < 1 {
		return nil, errors.Errorf("need at least one stitcher, got %d", numStitchers)
	}
	if len(intervalTable) == 0 || len(positionTable) == 0 {
		return nil, errors.New("empty lookup table")
	}
	numITCs := workload.SubReadsPerRead * numStitchers

	inputReader, err := NewInputReader(workload, numITCs, opts)
	if err != nil {
		return nil, err
	}

	intervalLayout := newTableLayout(len(intervalTable), opts.IntervalTable)
	if !intervalLayout.fits() {
		return nil, errors.Errorf("interval table of %d entries does not fit %d interval table chips",
			len(intervalTable), opts.IntervalTable.NumRams)
	}
	intervalTableRam := sim.NewRamModule[uint32](opts.moduleConfig(opts.IntervalTable, numITCs))
	intervalLayout.preload(intervalTableRam, intervalTable)

	positionLayout := newTableLayout(len(positionTable), opts.PositionTable)
	if !positionLayout.fits() {
		return nil, errors.Errorf("position table of %d entries does not fit %d position table chips",
			len(positionTable), opts.PositionTable.NumRams)
	}
	positionTableRam := sim.NewRamModule[uint32](opts.moduleConfig(opts.PositionTable, numITCs))
	positionLayout.preload(positionTableRam, positionTable)

	s := &System{
		inputReader:      inputReader,
		intervalTableRam: intervalTableRam,
		positionTableRam: positionTableRam,
		itcs:             make([]*IntervalTableCtrl, numITCs),
		ptcs:             make([]*PositionTableCtrl, numITCs),
		stitchers:        make([]*Stitcher, numStitchers),
	}
	for i := 0; i < numITCs; i++ {
		s.itcs[i] = NewIntervalTableCtrl(i, inputReader, intervalTableRam, intervalLayout, opts)
		s.ptcs[i] = NewPositionTableCtrl(i, s.itcs[i], positionTableRam, positionLayout, opts)
	}
	perStitcher := numITCs / numStitchers
	for i := 0; i < numStitchers; i++ {
		s.stitchers[i] = NewStitcher(s.ptcs[i*perStitcher:(i+1)*perStitcher], opts)
	}
	return s, nil
}

// Clock advances every component by one cycle, in an order that fixes whose
// previous-cycle outputs each component observes.
func (s *System) Clock() {
	s.inputReader.NextClockCycle()
	s.intervalTableRam.NextClockCycle()
	s.positionTableRam.NextClockCycle()
	for _, ptc := range s.ptcs {
		ptc.NextClockCycle()
	}
	for _, itc := range s.itcs {
		itc.NextClockCycle()
	}
	for _, st := range s.stitchers {
		st.NextClockCycle()
	}
}

// done reports whether the workload is fully fetched and every pipeline
// stage has drained.
func (s *System) done() bool {
	if !s.inputReader.Done() {
		return false
	}
	for _, itc := range s.itcs {
		if !itc.IsIdle() {
			return false
		}
	}
	for _, ptc := range s.ptcs {
		if !ptc.IsIdle() {
			return false
		}
	}
	for _, st := range s.stitchers {
		if !st.IsIdle() {
			return false
		}
	}
	return true
}

// Run clocks the system until it drains, calling emit for every stitched
// match in the cycle it is drained.
func (s *System) Run(emit func(ReadPosition)) Stats {
	matches := 0
	startCycles := s.inputReader.CycleCount()
	for {
		done := s.done()
		for _, st := range s.stitchers {
			if st.ReadPositionReady() {
				rp := st.ReadPositionData()
				st.ReadRequest()
				emit(rp)
				matches++
			}
		}
		if done {
			break
		}
		s.Clock()
	}
	return Stats{
		Cycles:                s.inputReader.CycleCount() - startCycles,
		Matches:               matches,
		InputReaderAccesses:   s.inputReader.AccessCounts(),
		IntervalTableAccesses: s.intervalTableRam.AccessCounts(),
		PositionTableAccesses: s.positionTableRam.AccessCounts(),
	}
}

// Reset restores the post-preload state of every component.
func (s *System) Reset() {
	s.inputReader.Reset()
	s.intervalTableRam.Reset()
	s.positionTableRam.Reset()
	for _, itc := range s.itcs {
		itc.Reset()
	}
	for _, ptc := range s.ptcs {
		ptc.Reset()
	}
	for _, st := range s.stitchers {
		st.Reset()
	}
}
