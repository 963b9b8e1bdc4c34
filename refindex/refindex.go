// Package refindex builds the seed lookup tables the alignment accelerator
// consumes: a position table grouping every seed's occurrences in the
// reference, and an interval table mapping each seed to its group.
package refindex

import (
	"encoding/binary"

	farm "github.com/dgryski/go-farm"
	"github.com/pkg/errors"
)

// MaxSeedLength bounds the seed length so the interval table (4^k+1 32-bit
// entries) stays addressable in memory.
const MaxSeedLength = 15

// Tables is the pair of lookup tables for one reference sequence and seed
// length.
//
// Position holds the positions 0..refLen−seedLen, grouped by seed value and
// sorted ascending within each group. Interval has 4^k+1 entries: entry i is
// the index in Position where seed i's group starts, and the final entry is
// the total group length, so seed i occupies Position[Interval[i]:
// Interval[i+1]].
type Tables struct {
	Interval []uint32
	Position []uint32

	RefSeqLength uint32
	SeedLength   uint32
}

// Build indexes ref (one base per byte, 2-bit codes) with the given seed
// length.
func Build(ref []byte, seedLength int) (Tables, error) {
	if seedLength < 1 || seedLength > MaxSeedLength {
		return Tables{}, errors.Errorf("seed length %d out of range [1,%d]", seedLength, MaxSeedLength)
	}
	if len(ref) < seedLength {
		return Tables{}, errors.Errorf("reference of %d bases is shorter than seed length %d", len(ref), seedLength)
	}
	numSeeds := 1 << uint(2*seedLength)
	numPositions := len(ref) - seedLength + 1

	// Count each seed's occurrences with a rolling 2-bit window, then place
	// positions by prefix sum. The left-to-right scan emits each group in
	// ascending position order.
	counts := make([]uint32, numSeeds)
	mask := uint32(numSeeds - 1)
	var seed uint32
	for i, c := range ref {
		seed = (seed<<2 | uint32(c&3)) & mask
		if i >= seedLength-1 {
			counts[seed]++
		}
	}

	t := Tables{
		Interval:     make([]uint32, numSeeds+1),
		Position:     make([]uint32, numPositions),
		RefSeqLength: uint32(len(ref)),
		SeedLength:   uint32(seedLength),
	}
	var start uint32
	for i, n := range counts {
		t.Interval[i] = start
		start += n
	}
	t.Interval[numSeeds] = start

	next := make([]uint32, numSeeds)
	copy(next, t.Interval[:numSeeds])
	seed = 0
	for i, c := range ref {
		seed = (seed<<2 | uint32(c&3)) & mask
		if i >= seedLength-1 {
			t.Position[next[seed]] = uint32(i - (seedLength - 1))
			next[seed]++
		}
	}
	return t, nil
}

// Lookup returns the sorted positions of the given seed value in the
// reference.
func (t Tables) Lookup(seed uint32) []uint32 {
	return t.Position[t.Interval[seed]:t.Interval[seed+1]]
}

// Fingerprint returns a farm hash over both tables. Logged at build time
// and again after the simulator preloads its DRAM images, it catches a
// mismatched table file pairing before a long run produces garbage.
func (t Tables) Fingerprint() uint64 {
	buf := make([]byte, 8+4*(len(t.Interval)+len(t.Position)))
	binary.LittleEndian.PutUint32(buf[0:], t.RefSeqLength)
	binary.LittleEndian.PutUint32(buf[4:], t.SeedLength)
	off := 8
	for _, v := range t.Interval {
		binary.LittleEndian.PutUint32(buf[off:], v)
		off += 4
	}
	for _, v := range t.Position {
		binary.LittleEndian.PutUint32(buf[off:], v)
		off += 4
	}
	return farm.Hash64(buf)
}
