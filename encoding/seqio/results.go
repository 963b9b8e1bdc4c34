package seqio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Results holds the candidate positions for each query, sorted ascending.
// The text format is one decimal count line followed by one whitespace-
// separated positions line per query (possibly empty).
type Results [][]uint32

// ReadResults parses the results text format.
func ReadResults(r io.Reader) (Results, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1<<20), 1<<26)
	if !scanner.Scan() {
		return nil, errors.New("results: missing count line")
	}
	n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return nil, errors.Wrap(err, "results count line")
	}
	results := make(Results, n)
	for i := 0; i < n; i++ {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, errors.Wrapf(err, "results line %d", i)
			}
			return nil, errors.Errorf("results: %d of %d query lines missing", n-i, n)
		}
		fields := strings.Fields(scanner.Text())
		positions := make([]uint32, 0, len(fields))
		for _, f := range fields {
			p, err := strconv.ParseUint(f, 10, 32)
			if err != nil {
				return nil, errors.Wrapf(err, "results line %d", i)
			}
			positions = append(positions, uint32(p))
		}
		results[i] = positions
	}
	return results, nil
}

// WriteResults writes results in the text format.
func WriteResults(w io.Writer, results Results) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, len(results)); err != nil {
		return errors.Wrap(err, "results count line")
	}
	for i, positions := range results {
		for j, p := range positions {
			if j > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return errors.Wrapf(err, "results line %d", i)
				}
			}
			if _, err := bw.WriteString(strconv.FormatUint(uint64(p), 10)); err != nil {
				return errors.Wrapf(err, "results line %d", i)
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return errors.Wrapf(err, "results line %d", i)
		}
	}
	return errors.Wrap(bw.Flush(), "results flush")
}

// ReadResultsFile reads results from path.
func ReadResultsFile(path string) (Results, error) {
	r, closer, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer closer() // nolint: errcheck
	return ReadResults(r)
}

// WriteResultsFile writes results to path.
func WriteResultsFile(path string, results Results) error {
	w, closer, err := createFile(path)
	if err != nil {
		return err
	}
	if err := WriteResults(w, results); err != nil {
		closer() // nolint: errcheck
		return err
	}
	return closer()
}
