package accel

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

// drainPTC collects results for the given number of subreads (each subread
// contributes results up to and including one with Last set).
func drainPTC(t *testing.T, b *testBench, lane, numSubreads int) []PositionTableResult {
	t.Helper()
	ptc := b.ptcs[lane]
	var got []PositionTableResult
	lasts := 0
	for cycle := 0; lasts < numSubreads; cycle++ {
		if cycle > 100000 {
			t.Fatal("PTC wedged")
		}
		if ptc.PositionReady() {
			r := ptc.PositionData()
			ptc.ReadRequest()
			got = append(got, r)
			if r.Last {
				lasts++
			}
		}
		b.clock()
	}
	return got
}

func TestPositionTableCtrlStreamsIntervals(t *testing.T) {
	tables := testTables("TCGACGAT", 2)
	workload := testWorkload([]string{"CG", "AT", "GA"}, 2)
	b := newTestBench(workload, tables, 1, true, testOpts())

	got := drainPTC(t, b, 0, 3)
	// CG: positions {1,4}; AT: {6}; GA: {2,5}.
	want := []PositionTableResult{
		{SR: SubRead{ReadID: 0, Length: 2, Data: 6}, Position: 1},
		{SR: SubRead{ReadID: 0, Length: 2, Data: 6}, Position: 4, Last: true},
		{SR: SubRead{ReadID: 1, Length: 2, Data: 3}, Position: 6, Last: true},
		{SR: SubRead{ReadID: 2, Length: 2, Data: 8}, Position: 2},
		{SR: SubRead{ReadID: 2, Length: 2, Data: 8}, Position: 5, Last: true},
	}
	expect.EQ(t, got, want)
	expect.True(t, b.ptcs[0].IsIdle())
}

// A subread absent from the reference yields exactly one empty, last result
// and touches no DRAM.
func TestPositionTableCtrlEmptyInterval(t *testing.T) {
	tables := testTables("TCGACGAT", 2)
	workload := testWorkload([]string{"TT"}, 2)
	b := newTestBench(workload, tables, 1, true, testOpts())

	got := drainPTC(t, b, 0, 1)
	require.Equal(t, 1, len(got))
	expect.True(t, got[0].Empty)
	expect.True(t, got[0].Last)
	counts := b.positionRam.AccessCounts()
	for _, n := range counts {
		expect.EQ(t, n, uint64(0))
	}
}

// Empty subreads sandwiched between populated ones must not swallow the
// populated ones' DRAM completions.
func TestPositionTableCtrlEmptySandwich(t *testing.T) {
	tables := testTables("TCGACGAT", 2)
	workload := testWorkload([]string{"CG", "TT", "GA", "TT", "CG"}, 2)
	b := newTestBench(workload, tables, 1, true, testOpts())

	got := drainPTC(t, b, 0, 5)
	var byRead [5][]PositionTableResult
	for _, r := range got {
		byRead[r.SR.ReadID] = append(byRead[r.SR.ReadID], r)
	}
	for _, read := range []int{0, 4} { // CG
		require.Equal(t, 2, len(byRead[read]))
		expect.EQ(t, byRead[read][0].Position, uint64(1))
		expect.EQ(t, byRead[read][1].Position, uint64(4))
		expect.True(t, byRead[read][1].Last)
	}
	require.Equal(t, 1, len(byRead[1]))
	expect.True(t, byRead[1][0].Empty)
	require.Equal(t, 2, len(byRead[2])) // GA
	require.Equal(t, 1, len(byRead[3]))
	expect.True(t, byRead[3][0].Empty)
}

// Positions below the lane's in-read offset are filtered, and a filtered
// final position still terminates the subread.
func TestPositionTableCtrlUnderflowFilter(t *testing.T) {
	tables := testTables("TCGACGAT", 2)
	// Reads of two subreads; lane 1 serves offset 1, whose positions must be
	// >= 2. TC occurs only at 0, so lane 1's TC subread gives an empty
	// placeholder; CG occurs at {1,4}, so position 1 is filtered and only 4
	// survives.
	workload := testWorkload([]string{"GATC", "ATCG"}, 2)
	b := newTestBench(workload, tables, 2, true, testOpts())

	lane1 := drainPTC(t, b, 1, 2)
	var byRead [2][]PositionTableResult
	for _, r := range lane1 {
		byRead[r.SR.ReadID] = append(byRead[r.SR.ReadID], r)
	}
	require.Equal(t, 1, len(byRead[0]))
	expect.True(t, byRead[0][0].Empty)
	expect.True(t, byRead[0][0].Last)
	require.Equal(t, 1, len(byRead[1]))
	expect.False(t, byRead[1][0].Empty)
	expect.EQ(t, byRead[1][0].Position, uint64(4))
	expect.True(t, byRead[1][0].Last)
}
