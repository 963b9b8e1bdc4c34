package accel

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestInputReaderDeliversWorkload(t *testing.T) {
	// Four reads of two subreads each, two lanes: every lane sees every
	// read, lane 0 carrying offset 0 and lane 1 offset 1.
	workload := testWorkload([]string{"ACGTAC", "TTTAAA", "CGCGCG", "GATTAC"}, 3)
	require.Equal(t, 2, workload.SubReadsPerRead)

	r, err := NewInputReader(workload, 2, testOpts())
	require.NoError(t, err)

	got := make([][]SubRead, 2)
	for cycle := 0; !r.Done(); cycle++ {
		if cycle > 100000 {
			t.Fatal("input reader wedged")
		}
		for lane := 0; lane < 2; lane++ {
			if r.SubReadReady(lane) {
				got[lane] = append(got[lane], r.SubReadRequest(lane))
			}
		}
		r.NextClockCycle()
	}

	for lane := 0; lane < 2; lane++ {
		require.Equal(t, workload.NumReads, len(got[lane]))
		for i, sr := range got[lane] {
			expect.EQ(t, sr.ReadID, uint64(i), "lane %d", lane)
			expect.EQ(t, sr.SubReadOffset, uint64(lane))
			expect.EQ(t, sr.Length, uint64(3))
			expect.EQ(t, sr.Data, workload.Word(i, lane), "lane %d read %d", lane, i)
		}
	}
}

func TestInputReaderStripesReadsAcrossLaneGroups(t *testing.T) {
	// Four lanes over two-subread reads: lanes {0,1} walk even reads,
	// lanes {2,3} odd reads.
	workload := testWorkload([]string{"ACGTAC", "TTTAAA", "CGCGCG", "GATTAC"}, 3)
	r, err := NewInputReader(workload, 4, testOpts())
	require.NoError(t, err)

	got := make([][]SubRead, 4)
	for cycle := 0; !r.Done(); cycle++ {
		if cycle > 100000 {
			t.Fatal("input reader wedged")
		}
		for lane := 0; lane < 4; lane++ {
			if r.SubReadReady(lane) {
				got[lane] = append(got[lane], r.SubReadRequest(lane))
			}
		}
		r.NextClockCycle()
	}

	for lane := 0; lane < 4; lane++ {
		require.Equal(t, 2, len(got[lane]), "lane %d", lane)
		for i, sr := range got[lane] {
			wantRead := uint64(i*2 + lane/2)
			expect.EQ(t, sr.ReadID, wantRead, "lane %d", lane)
			expect.EQ(t, sr.SubReadOffset, uint64(lane%2))
		}
	}
}

func TestInputReaderRejectsBadLaneCount(t *testing.T) {
	workload := testWorkload([]string{"ACGTAC"}, 3) // 2 subreads per read
	_, err := NewInputReader(workload, 3, testOpts())
	require.Error(t, err)
}

func TestInputReaderBackpressure(t *testing.T) {
	// Never draining lane FIFOs must not overflow anything; the reader just
	// stops fetching at its fill threshold.
	opts := testOpts()
	// More reads per lane than the fill threshold, so fetching has to stop.
	queries := make([]string, 3*opts.InputReaderFifoLength)
	for i := range queries {
		queries[i] = "ACGTACGTACGTACGTACGTACGT"
	}
	workload := testWorkload(queries, 3)
	r, err := NewInputReader(workload, workload.SubReadsPerRead, testOpts())
	require.NoError(t, err)
	for i := 0; i < 2000; i++ {
		r.NextClockCycle()
	}
	expect.False(t, r.Done())
	for lane := 0; lane < workload.SubReadsPerRead; lane++ {
		expect.True(t, r.SubReadReady(lane))
		expect.LE(t, r.subreadFifos[lane].Len(), opts.InputReaderFifoLength)
	}
}
