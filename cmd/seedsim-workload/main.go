// seedsim-workload generates simulator inputs. Subcommands:
//
//	seedsim-workload ref -length=N <ref_out>
//	    Generate a random packed reference.
//	seedsim-workload queries [-num=N] -length=L <ref_seq> <queries_out>
//	    Extract query sequences from a reference: every offset, or N random
//	    distinct offsets.
//	seedsim-workload snp -rate=R <queries_in> <queries_out>
//	    Introduce single-nucleotide substitutions at R percent per base.
//	seedsim-workload subreads -length=L <queries_in> <subreads_out>
//	    Split queries into packed subread words.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/seedsim/encoding/seqio"
	"github.com/grailbio/seedsim/workload"
)

var (
	length = flag.Int("length", 0, "Sequence length in bases (ref, queries, subreads)")
	num    = flag.Int("num", 0, "Number of queries to sample; 0 takes every offset")
	rate   = flag.Float64("rate", 1.0, "SNP rate in percent per base")
	seed   = flag.Int64("seed", 0, "Random seed; 0 derives one from the clock")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s {ref|queries|snp|subreads} [flags] <in...> <out>\n", os.Args[0])
	os.Exit(1)
}

func main() {
	shutdown := grail.Init()
	defer shutdown()

	args := flag.Args()
	if len(args) < 1 {
		usage()
	}
	// Flags follow the subcommand, so parse them again from there.
	cmd := args[0]
	if err := flag.CommandLine.Parse(args[1:]); err != nil {
		usage()
	}
	rest := flag.Args()
	src := *seed
	if src == 0 {
		src = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(src))

	switch cmd {
	case "ref":
		if len(rest) != 1 || *length < 1 {
			usage()
		}
		ref := workload.RandomRef(*length, rng)
		if err := seqio.WriteRefFile(rest[0], ref); err != nil {
			log.Fatalf("write reference: %v", err)
		}
		log.Printf("wrote %d-base reference to %s", *length, rest[0])

	case "queries":
		if len(rest) != 2 || *length < 1 {
			usage()
		}
		ref, err := seqio.ReadRefFile(rest[0])
		if err != nil {
			log.Fatalf("read reference: %v", err)
		}
		var q seqio.Queries
		if *num > 0 {
			q, err = workload.SampleQueries(ref, *length, *num, rng)
		} else {
			q, err = workload.AllQueries(ref, *length)
		}
		if err != nil {
			log.Fatalf("generate queries: %v", err)
		}
		if err := seqio.WriteQueriesFile(rest[1], q); err != nil {
			log.Fatalf("write queries: %v", err)
		}
		log.Printf("wrote %d queries of %d bases to %s", len(q.Seqs), q.Length, rest[1])

	case "snp":
		if len(rest) != 2 {
			usage()
		}
		q, err := seqio.ReadQueriesFile(rest[0])
		if err != nil {
			log.Fatalf("read queries: %v", err)
		}
		mutated := workload.InjectSNPs(q, *rate, rng)
		if err := seqio.WriteQueriesFile(rest[1], mutated); err != nil {
			log.Fatalf("write queries: %v", err)
		}
		log.Printf("wrote %d queries with %.2f%% SNPs to %s", len(mutated.Seqs), *rate, rest[1])

	case "subreads":
		if len(rest) != 2 || *length < 1 {
			usage()
		}
		q, err := seqio.ReadQueriesFile(rest[0])
		if err != nil {
			log.Fatalf("read queries: %v", err)
		}
		s, err := seqio.SplitQueries(q, *length)
		if err != nil {
			log.Fatalf("split queries: %v", err)
		}
		if err := seqio.WriteSubReadsFile(rest[1], s); err != nil {
			log.Fatalf("write subreads: %v", err)
		}
		log.Printf("wrote %d x %d subreads of %d bases to %s",
			s.NumReads, s.SubReadsPerRead, s.SubReadLength, rest[1])

	default:
		usage()
	}
}
