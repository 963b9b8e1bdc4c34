package seqio

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// ReadIntervalTable parses an interval table file: u32 size, then size u32
// entries. For seed length k the size is 4^k+1; the final entry is the
// position table length.
func ReadIntervalTable(r io.Reader) ([]uint32, error) {
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, errors.Wrap(err, "interval table header")
	}
	table := make([]uint32, size)
	if err := binary.Read(r, binary.LittleEndian, table); err != nil {
		return nil, errors.Wrapf(err, "interval table body (%d entries)", size)
	}
	return table, nil
}

// WriteIntervalTable writes an interval table file.
func WriteIntervalTable(w io.Writer, table []uint32) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(table))); err != nil {
		return errors.Wrap(err, "interval table header")
	}
	if err := binary.Write(w, binary.LittleEndian, table); err != nil {
		return errors.Wrap(err, "interval table body")
	}
	return nil
}

// ReadPositionTable parses a position table file: u32 reference length, u32
// seed length, then refLen−seedLen+1 u32 positions.
func ReadPositionTable(r io.Reader) (refLen, seedLen uint32, table []uint32, err error) {
	var header struct{ RefSeqLength, SeedLength uint32 }
	if err = binary.Read(r, binary.LittleEndian, &header); err != nil {
		return 0, 0, nil, errors.Wrap(err, "position table header")
	}
	if header.SeedLength == 0 || header.SeedLength > header.RefSeqLength {
		return 0, 0, nil, errors.Errorf("position table header inconsistent: ref length %d, seed length %d",
			header.RefSeqLength, header.SeedLength)
	}
	table = make([]uint32, header.RefSeqLength-header.SeedLength+1)
	if err = binary.Read(r, binary.LittleEndian, table); err != nil {
		return 0, 0, nil, errors.Wrapf(err, "position table body (%d entries)", len(table))
	}
	return header.RefSeqLength, header.SeedLength, table, nil
}

// WritePositionTable writes a position table file.
func WritePositionTable(w io.Writer, refLen, seedLen uint32, table []uint32) error {
	header := struct{ RefSeqLength, SeedLength uint32 }{refLen, seedLen}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return errors.Wrap(err, "position table header")
	}
	if err := binary.Write(w, binary.LittleEndian, table); err != nil {
		return errors.Wrap(err, "position table body")
	}
	return nil
}

// ReadIntervalTableFile reads an interval table from path.
func ReadIntervalTableFile(path string) ([]uint32, error) {
	r, closer, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer closer() // nolint: errcheck
	return ReadIntervalTable(r)
}

// WriteIntervalTableFile writes an interval table to path.
func WriteIntervalTableFile(path string, table []uint32) error {
	w, closer, err := createFile(path)
	if err != nil {
		return err
	}
	if err := WriteIntervalTable(w, table); err != nil {
		closer() // nolint: errcheck
		return err
	}
	return closer()
}

// ReadPositionTableFile reads a position table from path.
func ReadPositionTableFile(path string) (refLen, seedLen uint32, table []uint32, err error) {
	r, closer, err := openFile(path)
	if err != nil {
		return 0, 0, nil, err
	}
	defer closer() // nolint: errcheck
	return ReadPositionTable(r)
}

// WritePositionTableFile writes a position table to path.
func WritePositionTableFile(path string, refLen, seedLen uint32, table []uint32) error {
	w, closer, err := createFile(path)
	if err != nil {
		return err
	}
	if err := WritePositionTable(w, refLen, seedLen, table); err != nil {
		closer() // nolint: errcheck
		return err
	}
	return closer()
}
