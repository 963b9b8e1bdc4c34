// seedsim-tables builds the interval and position lookup tables for a
// packed reference sequence file.
//
// Usage:
//
//	seedsim-tables [-ascii-interval=F] [-ascii-position=F] \
//	    <ref_seq> <seed_length> <interval_table_out> <position_table_out>
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/seedsim/encoding/seqio"
	"github.com/grailbio/seedsim/refindex"
)

var (
	asciiInterval = flag.String("ascii-interval", "", "Also dump the interval table as text to this path")
	asciiPosition = flag.String("ascii-position", "", "Also dump the position table as text to this path")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	args := flag.Args()
	if len(args) != 4 {
		fmt.Fprintf(os.Stderr,
			"Usage: %s [flags] <ref_seq> <seed_length> <interval_table_out> <position_table_out>\n",
			os.Args[0])
		os.Exit(1)
	}
	seedLength, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: bad seed length %q\n", os.Args[0], args[1])
		os.Exit(1)
	}

	ref, err := seqio.ReadRefFile(args[0])
	if err != nil {
		log.Fatalf("read reference: %v", err)
	}
	log.Printf("indexing %d bases with %d-base seeds", len(ref), seedLength)
	tables, err := refindex.Build(ref, seedLength)
	if err != nil {
		log.Fatalf("build tables: %v", err)
	}
	log.Printf("tables built: %d interval entries, %d positions, fingerprint %016x",
		len(tables.Interval), len(tables.Position), tables.Fingerprint())

	if err := seqio.WriteIntervalTableFile(args[2], tables.Interval); err != nil {
		log.Fatalf("write interval table: %v", err)
	}
	if err := seqio.WritePositionTableFile(args[3], tables.RefSeqLength, tables.SeedLength, tables.Position); err != nil {
		log.Fatalf("write position table: %v", err)
	}

	if *asciiInterval != "" {
		if err := dumpASCII(*asciiInterval, []uint32{uint32(len(tables.Interval))}, tables.Interval); err != nil {
			log.Fatalf("write %s: %v", *asciiInterval, err)
		}
	}
	if *asciiPosition != "" {
		if err := dumpASCII(*asciiPosition, []uint32{tables.RefSeqLength, tables.SeedLength}, tables.Position); err != nil {
			log.Fatalf("write %s: %v", *asciiPosition, err)
		}
	}
}

// dumpASCII writes one header value per line, then the table entries on one
// space-separated line.
func dumpASCII(path string, header, table []uint32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, h := range header {
		fmt.Fprintln(w, h)
	}
	for i, v := range table {
		if i > 0 {
			w.WriteByte(' ') // nolint: errcheck
		}
		w.WriteString(strconv.FormatUint(uint64(v), 10)) // nolint: errcheck
	}
	w.WriteByte('\n') // nolint: errcheck
	if err := w.Flush(); err != nil {
		f.Close() // nolint: errcheck
		return err
	}
	return f.Close()
}
