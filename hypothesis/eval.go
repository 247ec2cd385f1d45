package hypothesis

import (
	"math"

	"github.com/eaglevariant/eagle/altseq"
	"github.com/eaglevariant/eagle/combo"
	"github.com/eaglevariant/eagle/likelihood"
	"github.com/eaglevariant/eagle/refcache"
	"github.com/eaglevariant/eagle/variant"
)

const ln2 = 0.6931471805599453 // math.Log(2)
const ln10 = 2.302585092994046 // math.Log(10)

// ReadFetcher returns the reads overlapping a 0-based half-open region of a
// chromosome. The BAM collaborator is reached through this interface so the
// evaluator itself stays free of I/O concerns.
type ReadFetcher interface {
	Fetch(chr string, start, end int) ([]*Read, error)
}

// Evaluator runs the per-variant-set Bayesian evaluation.
type Evaluator struct {
	Reads ReadFetcher
	Refs  *refcache.Cache
	Opts  Opts
}

// VariantResult is one output row: the per-variant statistics produced by
// marginalizing across a variant set's combinations.
type VariantResult struct {
	Variant     variant.Variant
	ReadCount   int
	HasAltCount int
	Prob        float64
	Odds        float64
}

// Result is the outcome of evaluating one variant set.
type Result struct {
	Set  variant.Set
	Rows []VariantResult
	// Trace holds the verbose per-(combination,read) records; only
	// EvaluateTraced populates it.
	Trace []TraceLine
}

// combState holds the running accumulators for a single enumerated
// combination.
type combState struct {
	alt      float64
	het      float64
	altCount int
	refCount int
}

// Evaluate runs the full procedure described for a single variant set:
// region fetch, combination enumeration, per-combination read accumulation,
// and per-variant marginalization.
func (e *Evaluator) Evaluate(set variant.Set) (*Result, error) {
	return e.evaluate(set, nil)
}

func (e *Evaluator) evaluate(set variant.Set, trace *[]TraceLine) (*Result, error) {
	chr := set[0].Chr
	posFirst, posLast := set[0].Pos, set[len(set)-1].Pos

	reads, err := e.Reads.Fetch(chr, posFirst-1, posLast)
	if err != nil {
		return nil, err
	}
	if len(reads) == 0 {
		return nil, nil
	}

	refEntry, err := e.Refs.Fetch(chr)
	if err != nil {
		return nil, err
	}
	refseq := refEntry.Seq

	n := len(set)
	combos := combo.Enumerate(n, e.Opts.maxH())
	K := len(combos)

	refPriorV, altPrior, hetPrior := e.priors(n, K)

	var ref float64
	states := make([]combState, K)

	pout := make([]float64, len(reads))
	prgu := make([]float64, len(reads))
	lambda := e.Opts.lambda()

	for s, c := range combos {
		alt := altseq.Build(refseq, set, c)
		firstPos := set[c[0]].Pos

		for ri, r := range reads {
			if r.Unmapped {
				continue
			}
			if e.Opts.PAO && r.Secondary {
				continue
			}

			m := likelihood.BuildMatrix(r.Qseq, r.Qual)

			var elsewhereVal float64
			if s == 0 {
				elsewhereVal = likelihood.Elsewhere(m, r.InferredLength)
				pout[ri] = elsewhereVal
				prgu[ri] = likelihood.ScoreWindowed(m, refseq, r.Pos)
			}
			prgv := likelihood.ScoreWindowed(m, alt, r.Pos)

			if !e.Opts.PAO {
				for _, xa := range r.Multimap {
					xaRef, err := e.Refs.Fetch(xa.Chr)
					if err != nil {
						continue
					}
					xaModel := m
					xaStrand := xa.Pos < 0
					if xaStrand != r.Reverse {
						xaModel = m.Reverse()
					}
					xaPos := abs(xa.Pos) - 1
					readprob := likelihood.ScoreWindowed(xaModel, xaRef.Seq, xaPos)

					if s == 0 {
						pout[ri] = likelihood.LogAddExp(pout[ri], elsewhereVal)
						prgu[ri] = likelihood.LogAddExp(prgu[ri], readprob)
					}
					if xa.Chr == r.Chr && abs(xaPos-firstPos) < 50 {
						readprob = likelihood.ScoreWindowed(m, alt, xaPos)
					}
					prgv = likelihood.LogAddExp(prgv, readprob)
				}
			}

			if s == 0 {
				prgu[ri] = likelihood.LogAddExp(lambda+pout[ri], prgu[ri])
			}
			prgv = likelihood.LogAddExp(lambda+pout[ri], prgv)

			phet := math.Max(
				likelihood.LogAddExp(math.Log(0.5)+prgv, math.Log(0.5)+prgu[ri]),
				math.Max(
					likelihood.LogAddExp(math.Log(0.1)+prgv, math.Log(0.9)+prgu[ri]),
					likelihood.LogAddExp(math.Log(0.9)+prgv, math.Log(0.1)+prgu[ri]),
				),
			)

			if prgv-prgu[ri] > ln2 {
				states[s].altCount++
			} else if prgu[ri]-prgv > ln2 {
				states[s].refCount++
			}

			if s == 0 {
				ref += prgu[ri] + refPriorV
			}
			states[s].alt += prgv + altPrior
			states[s].het += phet + hetPrior

			if trace != nil {
				*trace = append(*trace, TraceLine{
					Combination: c,
					Read:        r.Name,
					Prgu:        prgu[ri],
					Prgv:        prgv,
					Phet:        phet,
					Pout:        pout[ri],
					AltCount:    states[s].altCount,
				})
			}
		}
	}

	// total uses the alt/het accumulators of the last enumerated combination
	// only; the other combinations do not enter it.
	last := K - 1
	total := likelihood.LogAddExp(ref, likelihood.LogAddExp(states[last].alt, states[last].het))

	maxRefCount, maxAltCount := 0, 0
	for _, st := range states {
		if st.refCount > maxRefCount {
			maxRefCount = st.refCount
		}
		if st.altCount > maxAltCount {
			maxAltCount = st.altCount
		}
	}
	readCount := maxRefCount + maxAltCount

	rows := make([]VariantResult, n)
	for i := range set {
		var containing, notContaining []float64
		hasAltCount := 0
		for s, c := range combos {
			v := likelihood.LogAddExp(states[s].alt, states[s].het)
			if c.Contains(i) {
				containing = append(containing, v)
				if states[s].altCount > hasAltCount {
					hasAltCount = states[s].altCount
				}
			} else {
				notContaining = append(notContaining, v)
			}
		}
		hasAlt := guardedAccumulate(containing)
		notAlt := ref + guardedAccumulate(notContaining)

		rows[i] = VariantResult{
			Variant:     set[i],
			ReadCount:   readCount,
			HasAltCount: hasAltCount,
			Prob:        (hasAlt - total) / ln10,
			Odds:        (hasAlt - notAlt) / ln10,
		}
	}

	return &Result{Set: set, Rows: rows}, nil
}

// priors computes REFPRIOR (always ln 0.5), and the alt/het priors. When
// n==1 or MVH is set, the priors are the plain heterozygous-bias split;
// otherwise both are divided by K, spreading the prior mass uniformly
// across the enumerated combinations. Division (not log-subtraction) of the
// already-logarithmic prior is intentional: it mirrors the source's literal
// arithmetic rather than a probabilistically "correct" log(K) subtraction.
func (e *Evaluator) priors(n, K int) (refPriorOut, altPrior, hetPrior float64) {
	hetbias := e.Opts.hetBias()
	altPrior = math.Log(0.5 * (1 - hetbias))
	hetPrior = math.Log(0.5 * hetbias)
	if n != 1 && !e.Opts.MVH {
		altPrior /= float64(K)
		hetPrior /= float64(K)
	}
	return refPrior, altPrior, hetPrior
}

// guardedAccumulate folds vals via log-add-exp, but literally replaces
// (rather than folds) the accumulator on any step where the accumulator is
// still exactly 0 -- reproducing the source's has_alt/not_alt accumulation,
// which uses a "== 0" check to mean "nothing accumulated yet" even though
// 0.0 is itself a valid log-probability (prob = 1). A combination whose
// log_add_exp(alt,het) happens to equal exactly 0.0 can therefore overwrite
// rather than fold into a nonzero running value; this is preserved as
// documented rather than fixed.
func guardedAccumulate(vals []float64) float64 {
	acc := 0.0
	for _, v := range vals {
		if acc == 0 {
			acc = v
		} else {
			acc = likelihood.LogAddExp(acc, v)
		}
	}
	return acc
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
