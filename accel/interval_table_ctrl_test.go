package accel

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestIntervalTableCtrlLookups(t *testing.T) {
	tables := testTables("TCGACGAT", 2)
	// Single-subread reads, one lane: CG occurs twice, GA twice, TT never.
	workload := testWorkload([]string{"CG", "GA", "TT", "AT"}, 2)
	b := newTestBench(workload, tables, 1, false, testOpts())
	itc := b.itcs[0]

	var got []SubReadInterval
	for cycle := 0; len(got) < workload.NumReads; cycle++ {
		if cycle > 100000 {
			t.Fatal("ITC wedged")
		}
		if itc.IntervalReady() {
			got = append(got, itc.IntervalData())
		}
		b.clock()
	}

	for i, sri := range got {
		seed := workload.Word(i, 0)
		expect.EQ(t, sri.SR.ReadID, uint64(i))
		expect.EQ(t, sri.SR.Data, seed)
		expect.EQ(t, sri.Interval.Start, tables.Interval[seed])
		expect.EQ(t, sri.Interval.Length, tables.Interval[seed+1]-tables.Interval[seed])
	}
	// CG and GA have two candidates, TT none, AT one.
	expect.EQ(t, got[0].Interval.Length, uint32(2))
	expect.EQ(t, got[1].Interval.Length, uint32(2))
	expect.EQ(t, got[2].Interval.Length, uint32(0))
	expect.EQ(t, got[3].Interval.Length, uint32(1))

	expect.True(t, itc.IsIdle())
}

func TestIntervalTableCtrlManyLanes(t *testing.T) {
	tables := testTables("TCGACGAT", 2)
	// Two-subread reads on two lanes sharing the interval table RAM.
	workload := testWorkload([]string{"CGGA", "ATCG", "GAAT", "TCAC"}, 2)
	b := newTestBench(workload, tables, 2, false, testOpts())

	got := make([][]SubReadInterval, 2)
	for cycle := 0; len(got[0]) < workload.NumReads || len(got[1]) < workload.NumReads; cycle++ {
		if cycle > 100000 {
			t.Fatal("ITC wedged")
		}
		for lane := 0; lane < 2; lane++ {
			if b.itcs[lane].IntervalReady() {
				got[lane] = append(got[lane], b.itcs[lane].IntervalData())
			}
		}
		b.clock()
	}

	for lane := 0; lane < 2; lane++ {
		for i, sri := range got[lane] {
			seed := workload.Word(i, lane)
			expect.EQ(t, sri.SR.SubReadOffset, uint64(lane))
			expect.EQ(t, sri.Interval.Start, tables.Interval[seed], "lane %d read %d", lane, i)
			expect.EQ(t, sri.Interval.Length, tables.Interval[seed+1]-tables.Interval[seed])
		}
	}
}

// The interval of every seed agrees with a direct table lookup even when
// seeds repeat back to back, which puts several reads of the same address
// in flight on one port.
func TestIntervalTableCtrlRepeatedSeeds(t *testing.T) {
	tables := testTables("TCGACGAT", 2)
	workload := testWorkload([]string{"CG", "CG", "CG"}, 2)
	b := newTestBench(workload, tables, 1, false, testOpts())
	itc := b.itcs[0]

	var intervals []PositionTableInterval
	for cycle := 0; len(intervals) < 3; cycle++ {
		if cycle > 100000 {
			t.Fatal("ITC wedged")
		}
		if itc.IntervalReady() {
			intervals = append(intervals, itc.IntervalData().Interval)
		}
		b.clock()
	}
	for _, iv := range intervals {
		expect.EQ(t, iv, PositionTableInterval{Start: 2, Length: 2})
	}
}
