package accel

import (
	"github.com/grailbio/seedsim/sim"
)

// RAMOpts configures one DRAM block: chip count, per-chip geometry, and
// timing. The three width fields must sum to the block's chip address width.
type RAMOpts struct {
	NumRams   int
	RowWidth  uint
	ColWidth  uint
	BankWidth uint

	SystemClockMHz uint64
	MemoryClockMHz uint64

	TRCDCycles uint64
	TCLCycles  uint64
	TRPCycles  uint64
}

func (o RAMOpts) ramConfig() sim.RAMConfig {
	return sim.RAMConfig{
		RowWidth:       o.RowWidth,
		ColWidth:       o.ColWidth,
		BankWidth:      o.BankWidth,
		SystemClockMHz: o.SystemClockMHz,
		MemoryClockMHz: o.MemoryClockMHz,
		TRCDCycles:     o.TRCDCycles,
		TCLCycles:      o.TCLCycles,
		TRPCycles:      o.TRPCycles,
	}
}

// Opts carries every tunable of the accelerator model. Thread it through
// NewSystem; components never consult global state.
type Opts struct {
	// InputReaderFifoLength bounds each lane's subread and request FIFOs
	// and doubles as the outstanding-fetch fill threshold.
	InputReaderFifoLength int
	InputReader           RAMOpts

	// IntervalTableFifoLength bounds each ITC's in-flight and output FIFOs.
	IntervalTableFifoLength int
	IntervalTable           RAMOpts

	// PositionTableFifoLength bounds each PTC's in-flight and output FIFOs.
	PositionTableFifoLength int
	PositionTable           RAMOpts

	// StitcherFifoLength bounds each stitcher's output FIFO.
	StitcherFifoLength int

	// RamModulePortFifoLength, RamModuleROBSize and
	// RamModuleInflightFifoLength size the queues of every DRAM module.
	RamModulePortFifoLength     int
	RamModuleROBSize            int
	RamModuleInflightFifoLength int
}

func (o Opts) moduleConfig(ram RAMOpts, numPorts int) sim.RamModuleConfig {
	return sim.RamModuleConfig{
		NumRams:            ram.NumRams,
		NumPorts:           numPorts,
		RAM:                ram.ramConfig(),
		PortFifoLength:     o.RamModulePortFifoLength,
		ROBSize:            o.RamModuleROBSize,
		InflightFifoLength: o.RamModuleInflightFifoLength,
	}
}

// DefaultOpts is the baseline hardware configuration. The NumRams fields
// are the knobs most runs override.
var DefaultOpts = Opts{
	InputReaderFifoLength: 64,
	InputReader: RAMOpts{
		NumRams:        8,
		RowWidth:       5,
		ColWidth:       5,
		BankWidth:      3,
		SystemClockMHz: 200,
		MemoryClockMHz: 400,
		TRCDCycles:     8,
		TCLCycles:      7,
		TRPCycles:      8,
	},
	IntervalTableFifoLength: 16,
	IntervalTable: RAMOpts{
		NumRams:        8,
		RowWidth:       5,
		ColWidth:       5,
		BankWidth:      3,
		SystemClockMHz: 200,
		MemoryClockMHz: 400,
		TRCDCycles:     8,
		TCLCycles:      7,
		TRPCycles:      8,
	},
	PositionTableFifoLength: 16,
	PositionTable: RAMOpts{
		NumRams:        8,
		RowWidth:       5,
		ColWidth:       5,
		BankWidth:      3,
		SystemClockMHz: 200,
		MemoryClockMHz: 400,
		TRCDCycles:     8,
		TCLCycles:      7,
		TRPCycles:      8,
	},
	StitcherFifoLength:          16,
	RamModulePortFifoLength:     64,
	RamModuleROBSize:            64,
	RamModuleInflightFifoLength: 64,
}
