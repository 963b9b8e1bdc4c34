package accel

import (
	"github.com/grailbio/seedsim/sim"
)

type stitcherState int

const (
	stitching stitcherState = iota
	flushing
)

// Stitcher merges the position streams of the PTC lanes holding one read's
// subreads. A position list entry only means "read starts here" after the
// subread's in-read offset is subtracted; when all lanes agree on the
// adjusted position the read matches there. Lanes advance only when every
// PTC exposes a result, so the K-way comparison always sees one candidate
// per subread of the same read.
//
// When any lane reports an empty subread, or a lane's last candidate is
// consumed, the remaining lanes are flushed forward until all of them sit
// on their Last entry, which is then popped everywhere at once. That
// realigns every lane on the next read boundary.
type Stitcher struct {
	ptcs       []*PositionTableCtrl
	state      stitcherState
	outputFifo *sim.Fifo[ReadPosition]
	cycles     uint64
}

// NewStitcher stitches the given PTC lanes, one per subread offset of a
// read, in offset order.
func NewStitcher(ptcs []*PositionTableCtrl, opts Opts) *Stitcher {
	return &Stitcher{
		ptcs:       ptcs,
		state:      stitching,
		outputFifo: sim.NewFifo[ReadPosition](opts.StitcherFifoLength),
	}
}

// ReadPositionReady reports whether a stitched match is available.
func (s *Stitcher) ReadPositionReady() bool { return !s.outputFifo.IsEmpty() }

// ReadPositionData peeks at the current match without consuming it.
func (s *Stitcher) ReadPositionData() ReadPosition { return s.outputFifo.ReadData() }

// ReadRequest schedules the pop of the current match.
func (s *Stitcher) ReadRequest() { s.outputFifo.ReadRequest() }

// IsIdle reports whether no match is waiting to be drained.
func (s *Stitcher) IsIdle() bool { return s.outputFifo.IsEmpty() }

// CycleCount returns the number of clock cycles seen.
func (s *Stitcher) CycleCount() uint64 { return s.cycles }

func adjusted(r PositionTableResult) uint64 {
	return r.Position - r.SR.SubReadOffset*r.SR.Length
}

// flushIteration advances lanes toward the read boundary and returns the
// next state. Only called when every PTC is ready.
func (s *Stitcher) flushIteration() stitcherState {
	allLast := true
	for _, ptc := range s.ptcs {
		if !ptc.PositionData().Last {
			allLast = false
			break
		}
	}
	if allLast {
		for _, ptc := range s.ptcs {
			ptc.ReadRequest()
		}
		return stitching
	}
	for _, ptc := range s.ptcs {
		if !ptc.PositionData().Last {
			ptc.ReadRequest()
		}
	}
	return flushing
}

// NextClockCycle performs one stitching step if every lane has a result,
// then ticks the output FIFO.
func (s *Stitcher) NextClockCycle() {
	s.cycles++

	allValid := true
	for _, ptc := range s.ptcs {
		if !ptc.PositionReady() {
			allValid = false
			break
		}
	}
	if allValid {
		switch s.state {
		case stitching:
			s.stitchStep()
		case flushing:
			s.state = s.flushIteration()
		}
	}

	s.outputFifo.NextClockCycle()
}

func (s *Stitcher) stitchStep() {
	// An empty lane means this read cannot match anywhere: flush.
	for _, ptc := range s.ptcs {
		if ptc.PositionData().Empty {
			s.state = s.flushIteration()
			return
		}
	}

	allMatch := true
	for i := 0; i+1 < len(s.ptcs); i++ {
		if adjusted(s.ptcs[i].PositionData()) != adjusted(s.ptcs[i+1].PositionData()) {
			allMatch = false
			break
		}
	}

	if allMatch {
		head := s.ptcs[0].PositionData()
		s.outputFifo.WriteRequest(ReadPosition{ReadID: head.SR.ReadID, Position: head.Position})
		for _, ptc := range s.ptcs {
			if ptc.PositionData().Last {
				// The read is finished on some lane; realign all of them.
				s.state = s.flushIteration()
				return
			}
			ptc.ReadRequest()
		}
		return
	}

	// Lanes disagree: everything strictly below the maximum adjusted
	// position can never match and is discarded.
	var maxAdjusted uint64
	for _, ptc := range s.ptcs {
		if a := adjusted(ptc.PositionData()); a > maxAdjusted {
			maxAdjusted = a
		}
	}
	for _, ptc := range s.ptcs {
		r := ptc.PositionData()
		if adjusted(r) < maxAdjusted {
			if r.Last {
				s.state = s.flushIteration()
				return
			}
			ptc.ReadRequest()
		}
	}
}

// Reset empties the stitcher.
func (s *Stitcher) Reset() {
	s.outputFifo.Reset()
	s.state = stitching
}
