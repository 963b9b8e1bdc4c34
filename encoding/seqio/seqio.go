// Package seqio reads and writes the binary workload files shared by the
// alignment accelerator simulator and its preprocessing tools: packed
// reference sequences, query lists, subread lists, the interval and position
// lookup tables, and the whitespace-separated results text format.
//
// All binary formats are little-endian. Nucleotides are encoded in two bits
// (A=0, C=1, G=2, T=3) and packed four to a byte, most significant pair
// first. Paths ending in ".gz" are read and written through gzip
// transparently.
package seqio

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Bases per packed byte in the on-disk sequence formats.
const basesPerByte = 4

var baseChars = [4]byte{'A', 'C', 'G', 'T'}

// ParseSeq converts an ACGT string into a base slice with one 2-bit code per
// byte.
func ParseSeq(s string) ([]byte, error) {
	seq := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'a':
			seq[i] = 0
		case 'C', 'c':
			seq[i] = 1
		case 'G', 'g':
			seq[i] = 2
		case 'T', 't':
			seq[i] = 3
		default:
			return nil, errors.Errorf("invalid nucleotide %q at position %d", s[i], i)
		}
	}
	return seq, nil
}

// FormatSeq converts a base slice back into an ACGT string.
func FormatSeq(seq []byte) string {
	var b strings.Builder
	b.Grow(len(seq))
	for _, c := range seq {
		b.WriteByte(baseChars[c&3])
	}
	return b.String()
}

// PackWord packs up to 32 bases into a right-justified 2-bit integer, first
// base in the most significant pair.
func PackWord(seq []byte) uint64 {
	if len(seq) > 32 {
		panic("seqio: more than 32 bases in one word")
	}
	var w uint64
	for _, c := range seq {
		w = w<<2 | uint64(c&3)
	}
	return w
}

// UnpackWord expands a right-justified 2-bit packed word into length bases.
func UnpackWord(w uint64, length int) []byte {
	seq := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		seq[i] = byte(w & 3)
		w >>= 2
	}
	return seq
}

// packBytes packs a base slice four to a byte, most significant pair first,
// zero-padding the final byte.
func packBytes(seq []byte) []byte {
	packed := make([]byte, (len(seq)+basesPerByte-1)/basesPerByte)
	for i, c := range seq {
		packed[i/basesPerByte] |= (c & 3) << uint((3-i%basesPerByte)*2)
	}
	return packed
}

// unpackBytes expands length bases from a packed byte slice.
func unpackBytes(packed []byte, length int) []byte {
	seq := make([]byte, length)
	for i := range seq {
		seq[i] = (packed[i/basesPerByte] >> uint((3-i%basesPerByte)*2)) & 3
	}
	return seq
}

// openFile opens path for reading, layering a gzip reader for ".gz" paths.
// The returned closer closes both layers.
func openFile(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", path)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, f.Close, nil
	}
	z, err := gzip.NewReader(f)
	if err != nil {
		f.Close() // nolint: errcheck
		return nil, nil, errors.Wrapf(err, "gunzip %s", path)
	}
	return z, func() error {
		if err := z.Close(); err != nil {
			f.Close() // nolint: errcheck
			return err
		}
		return f.Close()
	}, nil
}

// createFile creates path for writing, layering a gzip writer for ".gz"
// paths.
func createFile(path string) (io.Writer, func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "create %s", path)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, f.Close, nil
	}
	z := gzip.NewWriter(f)
	return z, func() error {
		if err := z.Close(); err != nil {
			f.Close() // nolint: errcheck
			return err
		}
		return f.Close()
	}, nil
}
