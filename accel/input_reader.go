package accel

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/seedsim/encoding/seqio"
	"github.com/grailbio/seedsim/sim"
	"github.com/pkg/errors"
)

// InputReader owns the workload DRAM and feeds each interval table
// controller its stream of subreads. Lane i serves subread offset
// i mod subreadsPerRead, so the ITCs attached to one stitcher walk the same
// reads in lockstep; reads are striped across the lane groups.
type InputReader struct {
	numReads        int
	subreadsPerRead int
	numITCs         int
	subreadLength   int

	ram          *sim.RamModule[uint64]
	subreadFifos []*sim.Fifo[SubRead]
	requestFifos []*sim.Fifo[uint64]
	readCounters []int
	done         []bool

	fillThreshold int
	cycles        uint64
}

// NewInputReader preloads the subread workload into a fresh DRAM module
// with one port per ITC. Subreads are interleaved across every bank of
// every chip so that the per-lane fetch streams spread evenly.
func NewInputReader(workload seqio.SubReads, numITCs int, opts Opts) (*InputReader, error) {
	if workload.SubReadsPerRead == 0 || numITCs%workload.SubReadsPerRead != 0 {
		return nil, errors.Errorf("%d ITCs is not a multiple of %d subreads per read",
			numITCs, workload.SubReadsPerRead)
	}
	cfg := opts.moduleConfig(opts.InputReader, numITCs)
	ram := sim.NewRamModule[uint64](cfg)
	totalBanks := ram.NumBanks()
	numSubreads := workload.NumReads * workload.SubReadsPerRead
	if maxOffset := (numSubreads + totalBanks - 1) / totalBanks; maxOffset > 1<<(opts.InputReader.RowWidth+opts.InputReader.ColWidth) {
		return nil, errors.Errorf("workload of %d subreads does not fit %d banks of %d cells",
			numSubreads, totalBanks, 1<<(opts.InputReader.RowWidth+opts.InputReader.ColWidth))
	}

	r := &InputReader{
		numReads:        workload.NumReads,
		subreadsPerRead: workload.SubReadsPerRead,
		numITCs:         numITCs,
		subreadLength:   workload.SubReadLength,
		ram:             ram,
		subreadFifos:    make([]*sim.Fifo[SubRead], numITCs),
		requestFifos:    make([]*sim.Fifo[uint64], numITCs),
		readCounters:    make([]int, numITCs),
		done:            make([]bool, numITCs),
		fillThreshold:   opts.InputReaderFifoLength,
	}
	for i := 0; i < numITCs; i++ {
		r.subreadFifos[i] = sim.NewFifo[SubRead](opts.InputReaderFifoLength)
		r.requestFifos[i] = sim.NewFifo[uint64](opts.InputReaderFifoLength)
	}

	image := make([]uint64, ram.Size())
	for id := 0; id < numSubreads; id++ {
		image[r.subreadAddress(id)] = workload.Words[id]
	}
	ram.Preload(image)
	return r, nil
}

// subreadAddress interleaves subread ids across all banks: consecutive ids
// land in consecutive banks, wrapping to the next cell only after every
// bank received one.
func (r *InputReader) subreadAddress(subreadID int) uint64 {
	totalBanks := r.ram.NumBanks()
	ramBanks := totalBanks / r.ram.NumRams()
	bankID := subreadID % totalBanks
	ramID := bankID / ramBanks
	ramBank := bankID % ramBanks
	offset := subreadID / totalBanks
	rowColWidth := r.ram.RamAddressWidth() - uint(log2(ramBanks))
	return uint64(ramID)<<r.ram.RamAddressWidth() | uint64(ramBank)<<rowColWidth | uint64(offset)
}

func log2(n int) int {
	k := 0
	for 1<<uint(k+1) <= n {
		k++
	}
	return k
}

// SubReadReady reports whether lane itc has a subread available.
func (r *InputReader) SubReadReady(itc int) bool { return !r.subreadFifos[itc].IsEmpty() }

// SubReadRequest returns the next subread for lane itc and schedules its
// pop. Calling it while SubReadReady is false is a modelling bug.
func (r *InputReader) SubReadRequest(itc int) SubRead {
	if !r.SubReadReady(itc) {
		log.Panicf("input reader: SubReadRequest on empty lane %d", itc)
	}
	sr := r.subreadFifos[itc].ReadData()
	r.subreadFifos[itc].ReadRequest()
	return sr
}

// Done reports whether every lane has fetched its whole share of the
// workload and drained its queues.
func (r *InputReader) Done() bool {
	for i := 0; i < r.numITCs; i++ {
		if !r.done[i] || !r.requestFifos[i].IsEmpty() || !r.subreadFifos[i].IsEmpty() {
			return false
		}
	}
	return true
}

// CycleCount returns the number of clock cycles seen.
func (r *InputReader) CycleCount() uint64 { return r.cycles }

// AccessCounts returns the workload DRAM's per-chip request counts.
func (r *InputReader) AccessCounts() []uint64 { return r.ram.AccessCounts() }

// NextClockCycle completes arrived fetches, issues new ones up to the fill
// threshold, and ticks the owned FIFOs and DRAM.
func (r *InputReader) NextClockCycle() {
	r.cycles++
	parallelReads := r.numITCs / r.subreadsPerRead

	for i := 0; i < r.numITCs; i++ {
		// A completed DRAM read plus the request FIFO head reassemble the
		// subread.
		if r.ram.ReadReady(i) {
			sr := SubRead{
				ReadID:        r.requestFifos[i].ReadData(),
				SubReadOffset: uint64(i % r.subreadsPerRead),
				Length:        uint64(r.subreadLength),
				Data:          r.ram.ReadData(i),
			}
			r.requestFifos[i].ReadRequest()
			r.subreadFifos[i].WriteRequest(sr)
		}

		if r.ram.IsPortReady(i) &&
			r.requestFifos[i].Len()+r.subreadFifos[i].Len() < r.fillThreshold {
			readID := r.readCounters[i]*parallelReads + i/r.subreadsPerRead
			if readID < r.numReads {
				subreadID := r.readCounters[i]*r.numITCs + i
				r.requestFifos[i].WriteRequest(uint64(readID))
				r.ram.ReadRequest(r.subreadAddress(subreadID), i)
				r.readCounters[i]++
			} else {
				r.done[i] = true
			}
		}

		r.subreadFifos[i].NextClockCycle()
		r.requestFifos[i].NextClockCycle()
	}
	r.ram.NextClockCycle()
}

// Reset restores the post-preload state.
func (r *InputReader) Reset() {
	for i := 0; i < r.numITCs; i++ {
		r.subreadFifos[i].Reset()
		r.requestFifos[i].Reset()
		r.readCounters[i] = 0
		r.done[i] = false
	}
	r.ram.Reset()
}
