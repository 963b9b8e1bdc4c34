// seedsim-exact is the software reference matcher: it aligns every query
// through the same interval/position tables the hardware uses and writes
// the per-query candidate positions as a results text file. Its output is
// the functional oracle for the simulator.
//
// Usage:
//
//	seedsim-exact <subread_length> <interval_table> <position_table> \
//	              <queries> <results_out>
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/seedsim/encoding/seqio"
	"github.com/grailbio/seedsim/refindex"
	"github.com/grailbio/seedsim/workload"
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	args := flag.Args()
	if len(args) != 5 {
		fmt.Fprintf(os.Stderr,
			"Usage: %s <subread_length> <interval_table> <position_table> <queries> <results_out>\n",
			os.Args[0])
		os.Exit(1)
	}
	subreadLength, err := strconv.Atoi(args[0])
	if err != nil || subreadLength < 1 {
		fmt.Fprintf(os.Stderr, "%s: bad subread length %q\n", os.Args[0], args[0])
		os.Exit(1)
	}

	intervalTable, err := seqio.ReadIntervalTableFile(args[1])
	if err != nil {
		log.Fatalf("read interval table: %v", err)
	}
	refLen, seedLen, positionTable, err := seqio.ReadPositionTableFile(args[2])
	if err != nil {
		log.Fatalf("read position table: %v", err)
	}
	queries, err := seqio.ReadQueriesFile(args[3])
	if err != nil {
		log.Fatalf("read queries: %v", err)
	}

	tables := refindex.Tables{
		Interval:     intervalTable,
		Position:     positionTable,
		RefSeqLength: refLen,
		SeedLength:   seedLen,
	}
	log.Printf("matching %d queries of %d bases, table fingerprint %016x",
		len(queries.Seqs), queries.Length, tables.Fingerprint())

	results, err := workload.ExactMatch(tables, queries, subreadLength)
	if err != nil {
		log.Fatalf("match: %v", err)
	}
	if err := seqio.WriteResultsFile(args[4], results); err != nil {
		log.Fatalf("write results: %v", err)
	}

	matched := 0
	for _, r := range results {
		if len(r) > 0 {
			matched++
		}
	}
	log.Printf("%d of %d queries matched somewhere", matched, len(results))
}
