// Package likelihood implements the quality-weighted read-likelihood model:
// building a position x base log-probability matrix from a read's bases and
// quality string, scoring it against a candidate sequence at a position, and
// the log-space marginalization helpers the hypothesis evaluator needs.
package likelihood

import "math"

// NBase is the width of the probability matrix: {A,T,G,C,N}.
const NBase = 5

// baseIndex maps an uppercase nucleotide byte to its column in Model.M. Any
// byte outside {A,T,G,C} maps to N (column 4).
var baseIndex [256]int

func init() {
	for i := range baseIndex {
		baseIndex[i] = 4
	}
	baseIndex['A'] = 0
	baseIndex['T'] = 1
	baseIndex['G'] = 2
	baseIndex['C'] = 3
}

// Index returns the 5-way base column for an uppercase nucleotide byte.
func Index(b byte) int {
	return baseIndex[b]
}

// Matrix is an L x NBase log-probability table: Matrix[i][j] is the log
// probability of observing base j at read position i, given the read's
// reported base and quality at i.
type Matrix [][NBase]float64

const ln3 = 1.0986122886681098 // math.Log(3)

// Model bundles the probability matrix for a read with the per-position
// is_match/no_match terms it was built from, since the elsewhere-probability
// computation (and the XA reversal step) needs direct access to both.
type Model struct {
	M       Matrix
	IsMatch []float64
	NoMatch []float64
}

// BuildMatrix constructs the probability model for a read of bases qseq
// (uppercase A/T/G/C/N) with per-base natural-log error rate logq (values
// must be <= 0; a stored value of exactly 0 is treated as -0.01, matching
// the contract that qual is never exactly zero going into the matrix step).
//
// is_match[i] = ln(1 - exp(logq[i]))
// no_match[i] = logq[i] - ln(3)
// M[i][j] = is_match[i] when j == Index(qseq[i]), else no_match[i].
func BuildMatrix(qseq []byte, logq []float64) *Model {
	l := len(qseq)
	m := make(Matrix, l)
	isMatch := make([]float64, l)
	noMatch := make([]float64, l)
	for i := 0; i < l; i++ {
		q := logq[i]
		if q == 0 {
			q = -0.01
		}
		im := math.Log1p(-math.Exp(q))
		nm := q - ln3
		isMatch[i] = im
		noMatch[i] = nm

		var row [NBase]float64
		for j := range row {
			row[j] = nm
		}
		row[Index(qseq[i])] = im
		m[i] = row
	}
	return &Model{M: m, IsMatch: isMatch, NoMatch: noMatch}
}

// Reverse returns a copy of d with rows/positions in reverse order, for
// scoring a read against the opposite strand at a multi-mapped site.
func (d *Model) Reverse() *Model {
	l := len(d.M)
	out := &Model{
		M:       make(Matrix, l),
		IsMatch: make([]float64, l),
		NoMatch: make([]float64, l),
	}
	for i := 0; i < l; i++ {
		j := l - 1 - i
		out.M[j] = d.M[i]
		out.IsMatch[j] = d.IsMatch[i]
		out.NoMatch[j] = d.NoMatch[i]
	}
	return out
}

// LogAddExp computes ln(exp(a) + exp(b)) in a numerically stable way.
func LogAddExp(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	if a > b {
		return a + math.Log1p(math.Exp(b-a))
	}
	return b + math.Log1p(math.Exp(a-b))
}
