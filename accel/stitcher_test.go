package accel

import (
	"sort"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

// runSystem builds a System from ACGT inputs and returns the matches per
// read.
func runSystem(t *testing.T, ref string, queries []string, subreadLength, numStitchers int, opts Opts) (map[uint64][]uint64, Stats) {
	t.Helper()
	tables := testTables(ref, subreadLength)
	workload := testWorkload(queries, subreadLength)
	s, err := NewSystem(workload, tables.Interval, tables.Position, numStitchers, opts)
	require.NoError(t, err)

	matches := map[uint64][]uint64{}
	stats := s.Run(func(rp ReadPosition) {
		matches[rp.ReadID] = append(matches[rp.ReadID], rp.Position)
	})
	for _, ps := range matches {
		sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
	}
	return matches, stats
}

// A single-subread read degenerates to a plain position table lookup.
func TestStitcherSingleLane(t *testing.T) {
	matches, stats := runSystem(t, "TCGACGAT", []string{"CGA"}, 3, 1, testOpts())
	expect.EQ(t, matches, map[uint64][]uint64{0: {1, 4}})
	expect.EQ(t, stats.Matches, 2)
}

// A read with an absent subread produces no match and the system still
// drains.
func TestStitcherNoMatchTerminates(t *testing.T) {
	matches, _ := runSystem(t, "TCGACGAT", []string{"ACGT"}, 2, 1, testOpts())
	expect.EQ(t, len(matches), 0)
}

// A read occurring at several offsets is reported at every offset at which
// all subreads line up.
func TestStitcherMultiMatch(t *testing.T) {
	matches, _ := runSystem(t, "ACACACAC", []string{"ACAC"}, 2, 1, testOpts())
	expect.EQ(t, matches, map[uint64][]uint64{0: {0, 2, 4}})
}

// Several reads in sequence resynchronise cleanly at each read boundary.
func TestStitcherReadBoundaries(t *testing.T) {
	matches, _ := runSystem(t, "TCGACGATTCGACGAT",
		[]string{"TCGA", "CGAT", "TTTT", "GATT"}, 2, 1, testOpts())
	expect.EQ(t, matches[0], []uint64{0, 8})
	expect.EQ(t, matches[1], []uint64{4, 12})
	expect.EQ(t, len(matches[2]), 0)
	expect.EQ(t, matches[3], []uint64{5})
}

// Single-base subreads degenerate the stitcher into a K-way intersection of
// per-base position lists adjusted by their offsets.
func TestStitcherSingleBaseSubreads(t *testing.T) {
	matches, _ := runSystem(t, "ACGT", []string{"CGT"}, 1, 1, testOpts())
	expect.EQ(t, matches, map[uint64][]uint64{0: {1}})
}

func TestStitcherParallelStitchers(t *testing.T) {
	matches, _ := runSystem(t, "TCGACGATTCGACGAT",
		[]string{"TCGA", "CGAT", "TTTT", "GATT"}, 2, 2, testOpts())
	expect.EQ(t, matches[0], []uint64{0, 8})
	expect.EQ(t, matches[1], []uint64{4, 12})
	expect.EQ(t, len(matches[2]), 0)
	expect.EQ(t, matches[3], []uint64{5})
}
