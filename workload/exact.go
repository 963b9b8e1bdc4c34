package workload

import (
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/seedsim/encoding/seqio"
	"github.com/grailbio/seedsim/refindex"
	"github.com/pkg/errors"
)

// ExactMatch is the software oracle: for every query it returns the sorted
// reference positions at which all of the query's subreads match exactly.
// Partial tail subreads are truncated, so a match only covers the first
// subreadsPerRead·subreadLength bases of the query, mirroring the hardware.
//
// Queries are processed in parallel; each one intersects its subreads'
// sorted position lists after shifting out the in-read offsets.
func ExactMatch(tables refindex.Tables, q seqio.Queries, subreadLength int) (seqio.Results, error) {
	if int(tables.SeedLength) != subreadLength {
		return nil, errors.Errorf("tables were built for seed length %d, want %d", tables.SeedLength, subreadLength)
	}
	perRead := q.Length / subreadLength
	if perRead == 0 {
		return nil, errors.Errorf("subread length %d exceeds query length %d", subreadLength, q.Length)
	}
	results := make(seqio.Results, len(q.Seqs))
	err := traverse.Each(len(q.Seqs), func(i int) error {
		seq := q.Seqs[i]
		candidates := tables.Lookup(uint32(seqio.PackWord(seq[:subreadLength])))
		for j := 1; j < perRead && len(candidates) > 0; j++ {
			seed := uint32(seqio.PackWord(seq[j*subreadLength : (j+1)*subreadLength]))
			candidates = mergeOffset(candidates, tables.Lookup(seed), uint32(j*subreadLength))
		}
		// candidates may alias the position table; results are fresh.
		results[i] = append([]uint32{}, candidates...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// mergeOffset intersects two ascending position lists, keeping p from a
// when p+offset appears in b.
func mergeOffset(a, b []uint32, offset uint32) []uint32 {
	var out []uint32
	i, j := 0, 0
	for j < len(b) && b[j] < offset {
		j++
	}
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]-offset:
			out = append(out, a[i])
			i++
			j++
		case a[i] > b[j]-offset:
			j++
		default:
			i++
		}
	}
	return out
}
