package seqio

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// SubReads is the accelerator's workload: every query split into
// equal-length subreads, each packed right-justified into a 64-bit word.
// Words are stored query-major: all subreads of query 0, then query 1, and
// so on.
type SubReads struct {
	NumReads        int
	SubReadsPerRead int
	SubReadLength   int
	Words           []uint64
}

// Word returns the packed subread at (read, offset).
func (s SubReads) Word(read, offset int) uint64 {
	return s.Words[read*s.SubReadsPerRead+offset]
}

// SplitQueries slices every query into subreads of subreadLength bases,
// truncating a partial subread at the tail. subreadLength must be at most
// 32 so a subread fits one word.
func SplitQueries(q Queries, subreadLength int) (SubReads, error) {
	if subreadLength < 1 || subreadLength > 32 {
		return SubReads{}, errors.Errorf("subread length %d out of range [1,32]", subreadLength)
	}
	perRead := q.Length / subreadLength
	if perRead == 0 {
		return SubReads{}, errors.Errorf("subread length %d exceeds query length %d", subreadLength, q.Length)
	}
	s := SubReads{
		NumReads:        len(q.Seqs),
		SubReadsPerRead: perRead,
		SubReadLength:   subreadLength,
		Words:           make([]uint64, 0, len(q.Seqs)*perRead),
	}
	for _, seq := range q.Seqs {
		for j := 0; j < perRead; j++ {
			s.Words = append(s.Words, PackWord(seq[j*subreadLength:(j+1)*subreadLength]))
		}
	}
	return s, nil
}

// ReadSubReads parses a subread file: u32 reads, u32 subreads per read,
// u32 subread length, then one u64 word per subread.
func ReadSubReads(r io.Reader) (SubReads, error) {
	var header struct{ NumReads, SubReadsPerRead, SubReadLength uint32 }
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return SubReads{}, errors.Wrap(err, "subread header")
	}
	if header.SubReadLength > 32 {
		return SubReads{}, errors.Errorf("subread length %d exceeds 32", header.SubReadLength)
	}
	s := SubReads{
		NumReads:        int(header.NumReads),
		SubReadsPerRead: int(header.SubReadsPerRead),
		SubReadLength:   int(header.SubReadLength),
		Words:           make([]uint64, int(header.NumReads)*int(header.SubReadsPerRead)),
	}
	if err := binary.Read(r, binary.LittleEndian, s.Words); err != nil {
		return SubReads{}, errors.Wrapf(err, "subread body (%d words)", len(s.Words))
	}
	return s, nil
}

// WriteSubReads writes s in the subread file format.
func WriteSubReads(w io.Writer, s SubReads) error {
	header := struct{ NumReads, SubReadsPerRead, SubReadLength uint32 }{
		uint32(s.NumReads), uint32(s.SubReadsPerRead), uint32(s.SubReadLength),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return errors.Wrap(err, "subread header")
	}
	if err := binary.Write(w, binary.LittleEndian, s.Words); err != nil {
		return errors.Wrap(err, "subread body")
	}
	return nil
}

// ReadSubReadsFile reads a subread workload from path.
func ReadSubReadsFile(path string) (SubReads, error) {
	r, closer, err := openFile(path)
	if err != nil {
		return SubReads{}, err
	}
	defer closer() // nolint: errcheck
	return ReadSubReads(r)
}

// WriteSubReadsFile writes a subread workload to path.
func WriteSubReadsFile(path string, s SubReads) error {
	w, closer, err := createFile(path)
	if err != nil {
		return err
	}
	if err := WriteSubReads(w, s); err != nil {
		closer() // nolint: errcheck
		return err
	}
	return closer()
}
