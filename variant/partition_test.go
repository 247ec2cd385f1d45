package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mkv(chr string, pos int) Variant {
	return Variant{Chr: chr, Pos: pos, Ref: "A", Alt: "T"}
}

func TestPartitionGapBound(t *testing.T) {
	vs := []Variant{mkv("chr1", 4), mkv("chr1", 6), mkv("chr1", 100)}
	sets := Partition(vs, 10)
	assert.Len(t, sets, 2)
	assert.Len(t, sets[0], 2)
	assert.Len(t, sets[1], 1)
}

func TestPartitionZeroDisablesGrouping(t *testing.T) {
	vs := []Variant{mkv("chr1", 4), mkv("chr1", 5)}
	sets := Partition(vs, 0)
	assert.Len(t, sets, 2)
	for _, s := range sets {
		assert.Len(t, s, 1)
	}
}

func TestPartitionSamePositionSplit(t *testing.T) {
	vs := []Variant{
		{Chr: "chr1", Pos: 4, Ref: "T", Alt: "A"},
		{Chr: "chr1", Pos: 4, Ref: "T", Alt: "G"},
		{Chr: "chr1", Pos: 6, Ref: "C", Alt: "G"},
	}
	sets := Partition(vs, 10)
	assert.Len(t, sets, 2)
	for _, s := range sets {
		assert.Len(t, s, 2)
		seen := map[int]bool{}
		for _, v := range s {
			assert.False(t, seen[v.Pos])
			seen[v.Pos] = true
		}
	}
}

func TestPartitionChromosomeBoundary(t *testing.T) {
	vs := []Variant{mkv("chr1", 100), mkv("chr2", 101)}
	sets := Partition(vs, 10)
	assert.Len(t, sets, 2)
}
