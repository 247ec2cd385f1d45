package likelihood

import "math"

// maxDrop bounds the early-termination window: once the running score has
// fallen this many nats below its running peak, further bases contribute
// under ~1% of the total probability mass and accumulation stops.
const maxDrop = 10

// Score computes the log-probability of m's read aligning at 0-based
// reference-strand position p against sequence s:
//
//	score = sum_{i=0..L-1, 0<=p+i<len(s)} m.M[i][Index(s[p+i])]
//
// p may be negative or run past len(s); positions outside [0, len(s)) are
// skipped. Accumulation stops early once the running score has dropped more
// than maxDrop nats below its running peak.
func Score(m *Model, s []byte, p int) float64 {
	score := 0.0
	peak := math.Inf(-1)
	started := false
	for i := 0; i < len(m.M); i++ {
		pos := p + i
		if pos < 0 || pos >= len(s) {
			continue
		}
		score += m.M[i][Index(s[pos])]
		started = true
		if score > peak {
			peak = score
		}
		if score < peak-maxDrop {
			break
		}
	}
	if !started {
		return math.Inf(-1)
	}
	return score
}

// ScoreWindowed sums, in log space, Score(m, s, q) over every candidate
// start position q in [p-L, p+L) clipped to [0, len(s)), where L is the
// read length. This approximates the probability mass of the read having
// originated anywhere in a small positional neighborhood of its reported
// alignment, accounting for alignment-start uncertainty.
func ScoreWindowed(m *Model, s []byte, p int) float64 {
	l := len(m.M)
	lo, hi := p-l, p+l
	if lo < 0 {
		lo = 0
	}
	if hi > len(s) {
		hi = len(s)
	}

	total := math.Inf(-1)
	for q := lo; q < hi; q++ {
		total = LogAddExp(total, Score(m, s, q))
	}
	return total
}
