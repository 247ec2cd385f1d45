package hypothesis

import "math"

// OmegaDefault is the outside-paralog prior used when Opts.Omega is unset.
// The documentation for this model describes a default of 1e-5; the value
// actually wired through the evaluator (and through the CLI flag) is 1e-4,
// and this implementation keeps that as the real contract.
const OmegaDefault = 1e-4

// Opts configures one Evaluate call.
type Opts struct {
	// HetBias is the heterozygous-allele prior weight, in [0, 1]. The
	// command-line default is 0.5; a negative value also selects 0.5.
	HetBias float64
	// MVH selects maximum-variant-hypothesis mode: priors favor a single
	// best combination rather than being spread uniformly across all
	// enumerated combinations, and a caller may choose to emit only the
	// highest-posterior combination.
	MVH bool
	// PAO restricts evaluation to primary alignments: secondary/supplementary
	// reads are skipped, and XA multi-mapper entries are not folded in.
	PAO bool
	// Omega is the outside-paralog mixture prior, in (0, 1).
	Omega float64
	// MaxH bounds the number of enumerated combinations beyond the
	// mandatory singletons and full set.
	MaxH int
}

// refPrior is ln(0.5), the prior on the reference hypothesis.
var refPrior = math.Log(0.5)

func (o Opts) omega() float64 {
	if o.Omega <= 0 {
		return OmegaDefault
	}
	return o.Omega
}

func (o Opts) lambda() float64 {
	w := o.omega()
	return math.Log(w) - math.Log1p(-w)
}

// hetBias returns o.HetBias, or 0.5 if it is negative. 0 is a
// legitimate weight in [0, 1] and is not treated as "unset": only a
// negative value (impossible for a caller to set through config.Config's
// documented range) is.
func (o Opts) hetBias() float64 {
	if o.HetBias < 0 {
		return 0.5
	}
	return o.HetBias
}

func (o Opts) maxH() int {
	if o.MaxH <= 0 {
		return 1024
	}
	return o.MaxH
}
