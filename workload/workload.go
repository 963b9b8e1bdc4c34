// Package workload generates simulator inputs (random references, query
// lists drawn from a reference, SNP-corrupted variants) and provides the
// exact-match software oracle the hardware results are checked against.
package workload

import (
	"math/rand"

	"github.com/grailbio/seedsim/encoding/seqio"
	"github.com/pkg/errors"
)

// RandomRef returns n uniformly random bases.
func RandomRef(n int, rng *rand.Rand) []byte {
	ref := make([]byte, n)
	for i := range ref {
		ref[i] = byte(rng.Intn(4))
	}
	return ref
}

// AllQueries returns every length-queryLength substring of ref, in offset
// order.
func AllQueries(ref []byte, queryLength int) (seqio.Queries, error) {
	if queryLength < 1 || queryLength > len(ref) {
		return seqio.Queries{}, errors.Errorf("query length %d out of range for reference of %d bases", queryLength, len(ref))
	}
	q := seqio.Queries{Length: queryLength}
	for i := 0; i+queryLength <= len(ref); i++ {
		q.Seqs = append(q.Seqs, ref[i:i+queryLength])
	}
	return q, nil
}

// SampleQueries returns n distinct random offsets' substrings of ref.
func SampleQueries(ref []byte, queryLength, n int, rng *rand.Rand) (seqio.Queries, error) {
	if queryLength < 1 || queryLength > len(ref) {
		return seqio.Queries{}, errors.Errorf("query length %d out of range for reference of %d bases", queryLength, len(ref))
	}
	total := len(ref) - queryLength + 1
	if n > total {
		return seqio.Queries{}, errors.Errorf("%d queries requested but only %d offsets exist", n, total)
	}
	mask := make([]bool, total)
	picked := 0
	for picked < n {
		off := rng.Intn(total)
		if !mask[off] {
			mask[off] = true
			picked++
		}
	}
	q := seqio.Queries{Length: queryLength}
	for off, set := range mask {
		if set {
			q.Seqs = append(q.Seqs, ref[off:off+queryLength])
		}
	}
	return q, nil
}

// InjectSNPs returns a copy of q with single-nucleotide substitutions at the
// given percentage rate. Each base independently draws r uniform in [0,1);
// r < rate/4 substitutes A, r < rate/2 C, r < 3·rate/4 G, r < rate T. A
// quarter of the draws therefore substitute the base already present, so the
// effective error rate is 3/4 of the nominal one.
func InjectSNPs(q seqio.Queries, ratePct float64, rng *rand.Rand) seqio.Queries {
	rate := ratePct / 100
	out := seqio.Queries{Length: q.Length, Seqs: make([][]byte, len(q.Seqs))}
	for i, seq := range q.Seqs {
		mutated := make([]byte, len(seq))
		copy(mutated, seq)
		for j := range mutated {
			r := rng.Float64()
			switch {
			case r < rate/4:
				mutated[j] = 0
			case r < rate/2:
				mutated[j] = 1
			case r < 3*rate/4:
				mutated[j] = 2
			case r < rate:
				mutated[j] = 3
			}
		}
		out.Seqs[i] = mutated
	}
	return out
}
