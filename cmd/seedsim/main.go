// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// seedsim runs the alignment accelerator simulation over a prebuilt
// workload: a subread file plus the interval and position tables of the
// reference it is aligned against.
//
// Usage:
//
//	seedsim <subread> <interval_table> <position_table> <results> \
//	        <input_reader_rams> <interval_table_rams> <position_table_rams> \
//	        <num_stitchers>
//
// Matches are written to the results file as one read-id/position line per
// match; the cycle count is logged at the end of the run.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/seedsim/accel"
	"github.com/grailbio/seedsim/encoding/seqio"
	"github.com/grailbio/seedsim/refindex"
)

func usage() {
	fmt.Fprintf(os.Stderr,
		"Usage: %s <subread> <interval_table> <position_table> <results> "+
			"<input_reader_rams> <interval_table_rams> <position_table_rams> <num_stitchers>\n",
		os.Args[0])
	os.Exit(1)
}

func parseCount(arg, name string) int {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		fmt.Fprintf(os.Stderr, "%s: bad %s %q\n", os.Args[0], name, arg)
		os.Exit(1)
	}
	return n
}

func main() {
	shutdown := grail.Init()
	defer shutdown()

	args := flag.Args()
	if len(args) != 8 {
		usage()
	}
	subreadPath, intervalPath, positionPath, resultsPath := args[0], args[1], args[2], args[3]

	opts := accel.DefaultOpts
	opts.InputReader.NumRams = parseCount(args[4], "input reader RAM count")
	opts.IntervalTable.NumRams = parseCount(args[5], "interval table RAM count")
	opts.PositionTable.NumRams = parseCount(args[6], "position table RAM count")
	numStitchers := parseCount(args[7], "stitcher count")

	workload, err := seqio.ReadSubReadsFile(subreadPath)
	if err != nil {
		log.Fatalf("read subreads: %v", err)
	}
	intervalTable, err := seqio.ReadIntervalTableFile(intervalPath)
	if err != nil {
		log.Fatalf("read interval table: %v", err)
	}
	refLen, seedLen, positionTable, err := seqio.ReadPositionTableFile(positionPath)
	if err != nil {
		log.Fatalf("read position table: %v", err)
	}
	if int(seedLen) != workload.SubReadLength {
		log.Fatalf("tables built for seed length %d but subreads are %d bases",
			seedLen, workload.SubReadLength)
	}
	if seedLen > 15 {
		log.Fatalf("seed length %d too large for a direct interval table", seedLen)
	}
	if want := (1 << (2 * seedLen)) + 1; len(intervalTable) != want {
		log.Fatalf("interval table has %d entries, want %d for seed length %d",
			len(intervalTable), want, seedLen)
	}
	log.Printf("workload: %d reads x %d subreads of %d bases; reference %d bases",
		workload.NumReads, workload.SubReadsPerRead, workload.SubReadLength, refLen)

	system, err := accel.NewSystem(workload, intervalTable, positionTable, numStitchers, opts)
	if err != nil {
		log.Fatalf("configure system: %v", err)
	}
	tables := refindex.Tables{
		Interval:     intervalTable,
		Position:     positionTable,
		RefSeqLength: refLen,
		SeedLength:   seedLen,
	}
	log.Printf("tables preloaded, fingerprint %016x", tables.Fingerprint())

	ctx := vcontext.Background()
	out, err := file.Create(ctx, resultsPath)
	if err != nil {
		log.Fatalf("create %s: %v", resultsPath, err)
	}
	w := tsv.NewWriter(out.Writer(ctx))
	stats := system.Run(func(rp accel.ReadPosition) {
		w.WriteString(strconv.FormatUint(rp.ReadID, 10))
		w.WriteString(strconv.FormatUint(rp.Position, 10))
		if err := w.EndLine(); err != nil {
			log.Fatalf("write %s: %v", resultsPath, err)
		}
	})
	if err := w.Flush(); err != nil {
		log.Fatalf("flush %s: %v", resultsPath, err)
	}
	if err := out.Close(ctx); err != nil {
		log.Fatalf("close %s: %v", resultsPath, err)
	}

	log.Printf("%d matches in %d cycles", stats.Matches, stats.Cycles)
	for i, n := range stats.InputReaderAccesses {
		log.Debug.Printf("input reader chip %d: %d accesses", i, n)
	}
	for i, n := range stats.IntervalTableAccesses {
		log.Debug.Printf("interval table chip %d: %d accesses", i, n)
	}
	for i, n := range stats.PositionTableAccesses {
		log.Debug.Printf("position table chip %d: %d accesses", i, n)
	}
}
