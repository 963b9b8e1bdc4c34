package seqio

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// ReadRef parses a packed reference sequence and returns one base per byte.
// Format: u32 length, then ceil(length/4) packed bytes.
func ReadRef(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, errors.Wrap(err, "reference header")
	}
	packed := make([]byte, (int(length)+basesPerByte-1)/basesPerByte)
	if _, err := io.ReadFull(r, packed); err != nil {
		return nil, errors.Wrapf(err, "reference body (%d bases)", length)
	}
	return unpackBytes(packed, int(length)), nil
}

// WriteRef writes seq in the packed reference sequence format.
func WriteRef(w io.Writer, seq []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(seq))); err != nil {
		return errors.Wrap(err, "reference header")
	}
	if _, err := w.Write(packBytes(seq)); err != nil {
		return errors.Wrap(err, "reference body")
	}
	return nil
}

// ReadRefFile reads a reference sequence from path.
func ReadRefFile(path string) ([]byte, error) {
	r, closer, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer closer() // nolint: errcheck
	return ReadRef(r)
}

// WriteRefFile writes a reference sequence to path.
func WriteRefFile(path string, seq []byte) error {
	w, closer, err := createFile(path)
	if err != nil {
		return err
	}
	if err := WriteRef(w, seq); err != nil {
		closer() // nolint: errcheck
		return err
	}
	return closer()
}
