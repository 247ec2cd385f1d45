package likelihood

import "math"

// LgAlpha is ln(1.3), the per-base length-mismatch penalty rate used by
// Elsewhere.
var LgAlpha = math.Log(1.3)

// Elsewhere approximates the log-probability that a read originated from an
// unobserved paralogous locus rather than any candidate position considered
// by the evaluator:
//
//	A = sum(is_match[i])
//	elsewhere = log_add_exp(A, A + logSumExp(no_match[i] - is_match[i])) - LgAlpha*(L - inferredLength)
//
// The final term penalizes reads whose reported length L exceeds the query
// length their CIGAR actually consumes (inferredLength).
func Elsewhere(m *Model, inferredLength int) float64 {
	a := 0.0
	for _, v := range m.IsMatch {
		a += v
	}

	terms := make([]float64, len(m.IsMatch))
	for i := range terms {
		terms[i] = m.NoMatch[i] - m.IsMatch[i]
	}
	sum := logSumExp(terms)

	l := len(m.M)
	return LogAddExp(a, a+sum) - LgAlpha*float64(l-inferredLength)
}

// logSumExp returns ln(sum(exp(v))) for v, computed in a numerically stable
// way via the running-max trick.
func logSumExp(v []float64) float64 {
	total := math.Inf(-1)
	for _, x := range v {
		total = LogAddExp(total, x)
	}
	return total
}
