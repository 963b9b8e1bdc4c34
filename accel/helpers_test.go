package accel

import (
	"github.com/grailbio/seedsim/encoding/seqio"
	"github.com/grailbio/seedsim/refindex"
	"github.com/grailbio/seedsim/sim"
)

// testOpts shrinks the hardware so unit tests stay fast: tiny chips, short
// queues, low DRAM latency.
func testOpts() Opts {
	ram := RAMOpts{
		NumRams:        2,
		RowWidth:       3,
		ColWidth:       3,
		BankWidth:      1,
		SystemClockMHz: 400,
		MemoryClockMHz: 400,
		TRCDCycles:     4,
		TCLCycles:      4,
		TRPCycles:      4,
	}
	return Opts{
		InputReaderFifoLength:       8,
		InputReader:                 ram,
		IntervalTableFifoLength:     8,
		IntervalTable:               ram,
		PositionTableFifoLength:     8,
		PositionTable:               ram,
		StitcherFifoLength:          8,
		RamModulePortFifoLength:     16,
		RamModuleROBSize:            16,
		RamModuleInflightFifoLength: 16,
	}
}

// testWorkload splits the given ACGT queries into a subread workload.
func testWorkload(queries []string, subreadLength int) seqio.SubReads {
	q := seqio.Queries{}
	for _, s := range queries {
		seq, err := seqio.ParseSeq(s)
		if err != nil {
			panic(err)
		}
		q.Length = len(seq)
		q.Seqs = append(q.Seqs, seq)
	}
	workload, err := seqio.SplitQueries(q, subreadLength)
	if err != nil {
		panic(err)
	}
	return workload
}

// testTables indexes an ACGT reference.
func testTables(ref string, seedLength int) refindex.Tables {
	seq, err := seqio.ParseSeq(ref)
	if err != nil {
		panic(err)
	}
	tables, err := refindex.Build(seq, seedLength)
	if err != nil {
		panic(err)
	}
	return tables
}

// testBench wires ITC (and optionally PTC) lanes over shared table RAMs
// for component tests, clocked in the same order as the full system.
type testBench struct {
	inputReader *InputReader
	intervalRam *sim.RamModule[uint32]
	positionRam *sim.RamModule[uint32]
	itcs        []*IntervalTableCtrl
	ptcs        []*PositionTableCtrl
}

func newTestBench(workload seqio.SubReads, tables refindex.Tables, numITCs int, withPTCs bool, opts Opts) *testBench {
	inputReader, err := NewInputReader(workload, numITCs, opts)
	if err != nil {
		panic(err)
	}
	intervalLayout := newTableLayout(len(tables.Interval), opts.IntervalTable)
	intervalRam := sim.NewRamModule[uint32](opts.moduleConfig(opts.IntervalTable, numITCs))
	intervalLayout.preload(intervalRam, tables.Interval)
	positionLayout := newTableLayout(len(tables.Position), opts.PositionTable)
	positionRam := sim.NewRamModule[uint32](opts.moduleConfig(opts.PositionTable, numITCs))
	positionLayout.preload(positionRam, tables.Position)

	b := &testBench{
		inputReader: inputReader,
		intervalRam: intervalRam,
		positionRam: positionRam,
	}
	for i := 0; i < numITCs; i++ {
		itc := NewIntervalTableCtrl(i, inputReader, intervalRam, intervalLayout, opts)
		b.itcs = append(b.itcs, itc)
		if withPTCs {
			b.ptcs = append(b.ptcs, NewPositionTableCtrl(i, itc, positionRam, positionLayout, opts))
		}
	}
	return b
}

func (b *testBench) clock() {
	b.inputReader.NextClockCycle()
	b.intervalRam.NextClockCycle()
	b.positionRam.NextClockCycle()
	for _, ptc := range b.ptcs {
		ptc.NextClockCycle()
	}
	for _, itc := range b.itcs {
		itc.NextClockCycle()
	}
}
