package sim_test

import (
	"testing"

	"github.com/grailbio/seedsim/sim"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

// testRAMConfig matches the DDR timing scenarios used throughout: system and
// memory clocks equal at 400MHz, tRCD=tCL=tRP=8, so a row change costs 24
// system cycles and a burst 4.
var testRAMConfig = sim.RAMConfig{
	RowWidth:       2,
	ColWidth:       2,
	BankWidth:      1,
	SystemClockMHz: 400,
	MemoryClockMHz: 400,
	TRCDCycles:     8,
	TCLCycles:      8,
	TRPCycles:      8,
}

// cyclesToReady ticks until a read retires and returns the tick count and
// the delivered value.
func cyclesToReady(t *testing.T, r *sim.RAM[uint32], limit int) (int, uint32) {
	t.Helper()
	for i := 1; i <= limit; i++ {
		r.NextClockCycle()
		if r.ReadReady() {
			return i, r.ReadData()
		}
	}
	t.Fatalf("no read retired within %d cycles", limit)
	return 0, 0
}

func TestRAMSameRowBurstSpacing(t *testing.T) {
	r := sim.NewRAM[uint32](testRAMConfig)
	r.DirectWrite(0, 100)
	r.DirectWrite(1, 101)

	// Two reads to row 0 of bank 0. The first opens the row and pays
	// tRCD+tCL+tRP (24 cycles, retiring on tick 25); the second is a row hit
	// and retires one burst (4 cycles) later.
	r.ReadRequest(0)
	r.ReadRequest(1)
	n1, v1 := cyclesToReady(t, r, 100)
	expect.EQ(t, n1, 25)
	expect.EQ(t, v1, uint32(100))
	n2, v2 := cyclesToReady(t, r, 100)
	expect.EQ(t, n2, 4)
	expect.EQ(t, v2, uint32(101))
}

func TestRAMRowChangePenalty(t *testing.T) {
	r := sim.NewRAM[uint32](testRAMConfig)
	r.DirectWrite(0, 100)
	r.DirectWrite(4, 104) // row 1, bank 0

	r.ReadRequest(0)
	r.ReadRequest(4)
	n1, _ := cyclesToReady(t, r, 100)
	expect.EQ(t, n1, 25)
	// The second read changed rows on the same bank: full tRCD+tCL+tRP
	// behind the first.
	n2, v2 := cyclesToReady(t, r, 100)
	expect.EQ(t, n2, 24)
	expect.EQ(t, v2, uint32(104))
}

func TestRAMBankParallelism(t *testing.T) {
	r := sim.NewRAM[uint32](testRAMConfig)
	r.DirectWrite(0, 100)
	r.DirectWrite(16, 116) // bank 1

	// Both banks open their rows concurrently; the bus serialises the two
	// retirements one burst apart.
	r.ReadRequest(0)
	r.ReadRequest(16)
	n1, _ := cyclesToReady(t, r, 100)
	expect.EQ(t, n1, 25)
	n2, v2 := cyclesToReady(t, r, 100)
	expect.EQ(t, n2, 4)
	expect.EQ(t, v2, uint32(116))
}

func TestRAMWriteThenReadBack(t *testing.T) {
	r := sim.NewRAM[uint32](testRAMConfig)
	r.WriteRequest(3, 42)
	// Let the write retire well before the read is issued.
	for i := 0; i < 50; i++ {
		r.NextClockCycle()
	}
	r.ReadRequest(3)
	_, v := cyclesToReady(t, r, 100)
	expect.EQ(t, v, uint32(42))
}

func TestRAMAddressRange(t *testing.T) {
	r := sim.NewRAM[uint32](testRAMConfig)
	require.Panics(t, func() { r.ReadRequest(testRAMConfig.Size()) })
	require.Panics(t, func() { r.DirectWrite(testRAMConfig.Size(), 0) })
}

func TestRAMAccessCount(t *testing.T) {
	r := sim.NewRAM[uint32](testRAMConfig)
	r.ReadRequest(0)
	r.ReadRequest(1)
	r.WriteRequest(2, 9)
	expect.EQ(t, r.AccessCount(), uint64(3))
	r.Reset()
	expect.EQ(t, r.AccessCount(), uint64(0))
}

func TestRAMResetKeepsData(t *testing.T) {
	r := sim.NewRAM[uint32](testRAMConfig)
	r.DirectWrite(5, 55)
	r.ReadRequest(5)
	r.Reset()
	// The pending read is gone but the preloaded data survives.
	for i := 0; i < 30; i++ {
		r.NextClockCycle()
		expect.False(t, r.ReadReady())
	}
	r.ReadRequest(5)
	_, v := cyclesToReady(t, r, 100)
	expect.EQ(t, v, uint32(55))
}
