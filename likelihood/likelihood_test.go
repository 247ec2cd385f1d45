package likelihood

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogAddExpStability(t *testing.T) {
	cases := [][2]float64{
		{-1, -2}, {0, 0}, {-100, -1}, {-1e-3, -1e3}, {-5, -5},
	}
	for _, c := range cases {
		got := LogAddExp(c[0], c[1])
		want := math.Log(math.Exp(c[0]) + math.Exp(c[1]))
		assert.InDelta(t, want, got, 1e-9)
	}
}

func TestLogAddExpCommutative(t *testing.T) {
	assert.Equal(t, LogAddExp(-3, -7), LogAddExp(-7, -3))
}

func TestLogAddExpNegInfIdentity(t *testing.T) {
	assert.Equal(t, -5.0, LogAddExp(math.Inf(-1), -5))
	assert.Equal(t, -5.0, LogAddExp(-5, math.Inf(-1)))
}

func TestBuildMatrixPerfectMatch(t *testing.T) {
	qseq := []byte("ACGT")
	logq := []float64{-4.6, -4.6, -4.6, -4.6} // Phred 40-ish
	m := BuildMatrix(qseq, logq)
	for i, row := range m.M {
		best := Index(qseq[i])
		for j, v := range row {
			if j == best {
				assert.True(t, v > row[(j+1)%NBase])
			} else {
				assert.Equal(t, m.NoMatch[i], v)
			}
		}
	}
}

func TestBuildMatrixZeroQualReplaced(t *testing.T) {
	m := BuildMatrix([]byte("A"), []float64{0})
	assert.False(t, math.IsNaN(m.IsMatch[0]))
	assert.False(t, math.IsInf(m.IsMatch[0], 0))
}

func TestScorePerfectVsMismatch(t *testing.T) {
	qseq := []byte("ACGA")
	logq := []float64{-4.6, -4.6, -4.6, -4.6}
	m := BuildMatrix(qseq, logq)

	refMatch := []byte("ACGA")
	refMismatch := []byte("ACGT")
	assert.True(t, Score(m, refMatch, 0) > Score(m, refMismatch, 0))
}

func TestScoreOutOfRangeSkipped(t *testing.T) {
	qseq := []byte("AC")
	logq := []float64{-4.6, -4.6}
	m := BuildMatrix(qseq, logq)
	s := []byte("AC")
	// p=-1 means position 0 of the read falls at s[-1] (skipped), position 1
	// falls at s[0].
	got := Score(m, s, -1)
	assert.False(t, math.IsInf(got, 0))
}

func TestElsewhereIdempotent(t *testing.T) {
	qseq := []byte("ACGT")
	logq := []float64{-4.6, -4.6, -4.6, -4.6}
	m := BuildMatrix(qseq, logq)
	e1 := Elsewhere(m, len(qseq))
	e2 := Elsewhere(m, len(qseq))
	assert.Equal(t, e1, e2)
}

func TestReversePreservesLength(t *testing.T) {
	qseq := []byte("ACGTAC")
	logq := []float64{-4.6, -4.6, -4.6, -4.6, -4.6, -4.6}
	m := BuildMatrix(qseq, logq)
	r := m.Reverse()
	assert.Len(t, r.M, len(m.M))
	assert.Equal(t, m.IsMatch[0], r.IsMatch[len(r.IsMatch)-1])
}
