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
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/eaglevariant/eagle/config"
	"github.com/eaglevariant/eagle/encoding/bamprovider"
	"github.com/eaglevariant/eagle/encoding/fasta"
	"github.com/eaglevariant/eagle/hypothesis"
	"github.com/eaglevariant/eagle/refcache"
	"github.com/eaglevariant/eagle/variant"
	"github.com/eaglevariant/eagle/workpool"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
)

var (
	vcfPath    = flag.String("v", "", "Input VCF path (required)")
	bamPath    = flag.String("a", "", "Input BAM path (required)")
	fastaPath  = flag.String("r", "", "Input indexed FASTA path (required)")
	bedPath    = flag.String("bed", "", "Optional BED file restricting evaluation to its intervals")
	outPath    = flag.String("o", "", "Output path; stdout if unset")
	numProc    = flag.Int("t", 1, "Number of worker threads")
	distLim    = flag.Int("n", 10, "Variant-set grouping distance limit, in bp; 0 disables grouping")
	chainMode  = flag.Int("s", 0, "Chain mode (accepted for compatibility; unused)")
	window     = flag.Int("w", 0, "Local realignment window (accepted for compatibility; unused)")
	maxH       = flag.Int("maxh", 1024, "Upper bound on enumerated combinations beyond the mandatory singletons and full set")
	mvh        = flag.Bool("mvh", false, "Maximum-variant-hypothesis mode: report only the single best combination")
	pao        = flag.Bool("pao", false, "Primary-alignments-only mode")
	isc        = flag.Bool("isc", false, "Accepted for compatibility; unused")
	nodup      = flag.Bool("nodup", false, "Accepted for compatibility; unused")
	splice     = flag.Bool("splice", false, "Accepted for compatibility; unused")
	dp         = flag.Bool("dp", false, "Accepted for compatibility; unused")
	match      = flag.Int("match", 1, "Accepted for compatibility; unused")
	mismatch   = flag.Int("mismatch", 4, "Accepted for compatibility; unused")
	gapOpen    = flag.Int("gap_op", 6, "Accepted for compatibility; unused")
	gapExtend  = flag.Int("gap_ex", 1, "Accepted for compatibility; unused")
	verbose    = flag.Bool("verbose", false, "Write the per-read likelihood trace to stderr")
	hetBias    = flag.Float64("hetbias", 0.5, "Heterozygous-allele prior weight, in [0,1]")
	omega      = flag.Float64("omega", hypothesis.OmegaDefault, "Outside-paralog mixture prior")
	configYAML = flag.String("c", "", "Optional YAML file supplying defaults for the flags above")
)

func eagleUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s -v vcf -a bam -r fasta [options]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = eagleUsage
	shutdown := grail.Init()
	defer shutdown()
	flag.Parse()

	cfg := config.Defaults()
	if *configYAML != "" {
		var err error
		cfg, err = config.LoadYAML(*configYAML, cfg)
		if err != nil {
			log.Fatalf("%v", err)
		}
	}
	applyFlags(&cfg)

	if cfg.VCFPath == "" || cfg.BAMPath == "" || cfg.FastaPath == "" {
		eagleUsage()
		log.Fatalf("eagle: -v, -a, and -r are all required")
	}

	if err := run(cfg); err != nil {
		log.Fatalf("eagle: %v", err)
	}
}

// applyFlags overlays onto cfg only the flags the user actually passed on
// the command line, leaving every other field at whatever Defaults()/the
// YAML file already resolved it to. It never falls back to "cfg's current
// value is the flag's zero value" as a proxy for "the user didn't set this
// flag": several fields (DistLim, HetBias) have a legitimate zero value of
// their own (e.g. distlim=0 disables variant-set grouping), and overloading
// the zero value that way would silently clobber it.
func applyFlags(cfg *config.Config) {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["v"] {
		cfg.VCFPath = *vcfPath
	}
	if set["a"] {
		cfg.BAMPath = *bamPath
	}
	if set["r"] {
		cfg.FastaPath = *fastaPath
	}
	if set["bed"] {
		cfg.BEDPath = *bedPath
	}
	if set["o"] {
		cfg.OutPath = *outPath
	}
	if set["t"] {
		cfg.NumProc = *numProc
	}
	if set["n"] {
		cfg.DistLim = *distLim
	}
	if set["maxh"] {
		cfg.MaxH = *maxH
	}
	if set["mvh"] {
		cfg.MVH = *mvh
	}
	if set["pao"] {
		cfg.PAO = *pao
	}
	if set["verbose"] {
		cfg.Verbose = *verbose
	}
	if set["hetbias"] {
		cfg.HetBias = *hetBias
	}
	if set["omega"] {
		cfg.Omega = *omega
	}
	if set["s"] {
		cfg.ChainMode = *chainMode
	}
	if set["w"] {
		cfg.Window = *window
	}
	if set["isc"] {
		cfg.ISC = *isc
	}
	if set["nodup"] {
		cfg.NoDup = *nodup
	}
	if set["splice"] {
		cfg.Splice = *splice
	}
	if set["dp"] {
		cfg.DP = *dp
	}
	if set["match"] {
		cfg.Match = *match
	}
	if set["mismatch"] {
		cfg.Mismatch = *mismatch
	}
	if set["gap_op"] {
		cfg.GapOpen = *gapOpen
	}
	if set["gap_ex"] {
		cfg.GapExtend = *gapExtend
	}
}

func run(cfg config.Config) error {
	vcfFile, err := os.Open(cfg.VCFPath)
	if err != nil {
		return err
	}
	defer vcfFile.Close()

	variants, err := variant.Load(vcfFile)
	if err != nil {
		return err
	}
	if cfg.BEDPath != "" {
		region, err := variant.LoadBED(cfg.BEDPath)
		if err != nil {
			return err
		}
		variants = variant.FilterByBED(variants, region)
	}
	sets := variant.Partition(variants, cfg.DistLim)

	refFa, err := openIndexedFasta(cfg.FastaPath)
	if err != nil {
		return err
	}

	provider := bamprovider.NewProvider(cfg.BAMPath)
	defer provider.Close()

	eval := &hypothesis.Evaluator{
		Reads: &hypothesis.BAMFetcher{Provider: provider},
		Refs:  refcache.New(refFa),
		Opts: hypothesis.Opts{
			HetBias: cfg.HetBias,
			MVH:     cfg.MVH,
			PAO:     cfg.PAO,
			Omega:   cfg.Omega,
			MaxH:    cfg.MaxH,
		},
	}

	pool := &workpool.Pool{Eval: eval, NumProc: cfg.NumProc}
	if cfg.Verbose {
		pool.Trace = func(set variant.Set, lines []hypothesis.TraceLine) {
			hypothesis.WriteTrace(os.Stderr, set, lines)
		}
	}

	rows, err := pool.Run(sets)
	if err != nil {
		return err
	}

	out := os.Stdout
	if cfg.OutPath != "" {
		f, err := os.Create(cfg.OutPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	for _, row := range rows {
		fmt.Fprintln(out, row)
	}
	return nil
}

// openIndexedFasta opens path as a random-access indexed FASTA, reading its
// ".fai" index from alongside it.
func openIndexedFasta(path string) (fasta.Fasta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	indexFile, err := os.Open(path + ".fai")
	if err != nil {
		f.Close()
		return nil, err
	}
	defer indexFile.Close()
	return fasta.NewIndexed(f, indexFile)
}
