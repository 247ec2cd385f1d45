// Package seqcode provides dense lookup tables between nucleotide letters
// and the 5-way index space {A,T,G,C,N} used throughout the likelihood
// engine.
package seqcode

// NBase is the number of distinct base codes: A, T, G, C, and N (anything
// else, including ambiguity codes).
const NBase = 5

const (
	A = 0
	T = 1
	G = 2
	C = 3
	N = 4
)

// index maps an uppercase ASCII byte to its base code. Lowercase letters and
// anything not in {A,T,G,C} land on N, matching the reference cache's
// upper-casing contract.
var index [256]byte

// complement maps a base byte to its Watson-Crick complement. Bytes outside
// {A,T,G,C,a,t,g,c} map to themselves.
var complement [256]byte

func init() {
	for i := range index {
		index[i] = N
	}
	index['A'] = A
	index['T'] = T
	index['G'] = G
	index['C'] = C

	for i := range complement {
		complement[i] = byte(i)
	}
	complement['A'], complement['T'] = 'T', 'A'
	complement['G'], complement['C'] = 'C', 'G'
	complement['a'], complement['t'] = 't', 'a'
	complement['g'], complement['c'] = 'c', 'g'
}

// Index returns the 5-way base code for an uppercase nucleotide byte. Any
// byte not in {A,T,G,C} returns N.
func Index(b byte) byte {
	return index[b]
}

// Complement returns the Watson-Crick complement of a single base byte,
// preserving case.
func Complement(b byte) byte {
	return complement[b]
}

// ReverseComplement returns the reverse complement of seq. The input is not
// modified.
func ReverseComplement(seq []byte) []byte {
	n := len(seq)
	out := make([]byte, n)
	for i, b := range seq {
		out[n-1-i] = Complement(b)
	}
	return out
}
