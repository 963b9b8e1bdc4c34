package seqio

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Queries is a fixed-length query list: every sequence has the same length
// and is byte-aligned in the on-disk packing.
type Queries struct {
	Length int
	Seqs   [][]byte
}

// ReadQueries parses a query file: u32 count, u32 length, then count packed
// sequences of ceil(length/4) bytes each.
func ReadQueries(r io.Reader) (Queries, error) {
	var header struct{ NumQueries, QueryLength uint32 }
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return Queries{}, errors.Wrap(err, "query header")
	}
	q := Queries{
		Length: int(header.QueryLength),
		Seqs:   make([][]byte, header.NumQueries),
	}
	packed := make([]byte, (q.Length+basesPerByte-1)/basesPerByte)
	for i := range q.Seqs {
		if _, err := io.ReadFull(r, packed); err != nil {
			return Queries{}, errors.Wrapf(err, "query %d of %d", i, header.NumQueries)
		}
		q.Seqs[i] = unpackBytes(packed, q.Length)
	}
	return q, nil
}

// WriteQueries writes q in the query file format.
func WriteQueries(w io.Writer, q Queries) error {
	header := struct{ NumQueries, QueryLength uint32 }{uint32(len(q.Seqs)), uint32(q.Length)}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return errors.Wrap(err, "query header")
	}
	for i, seq := range q.Seqs {
		if len(seq) != q.Length {
			return errors.Errorf("query %d has length %d, want %d", i, len(seq), q.Length)
		}
		if _, err := w.Write(packBytes(seq)); err != nil {
			return errors.Wrapf(err, "query %d", i)
		}
	}
	return nil
}

// ReadQueriesFile reads a query list from path.
func ReadQueriesFile(path string) (Queries, error) {
	r, closer, err := openFile(path)
	if err != nil {
		return Queries{}, err
	}
	defer closer() // nolint: errcheck
	return ReadQueries(r)
}

// WriteQueriesFile writes a query list to path.
func WriteQueriesFile(path string, q Queries) error {
	w, closer, err := createFile(path)
	if err != nil {
		return err
	}
	if err := WriteQueries(w, q); err != nil {
		closer() // nolint: errcheck
		return err
	}
	return closer()
}
