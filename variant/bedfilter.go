package variant

import (
	"github.com/eaglevariant/eagle/interval"
)

// FilterByBED returns the subset of vs whose 0-based position falls inside
// region, in their original relative order. A nil region passes every
// variant through unchanged.
func FilterByBED(vs []Variant, region *interval.BEDUnion) []Variant {
	if region == nil {
		return vs
	}
	out := make([]Variant, 0, len(vs))
	for _, v := range vs {
		if region.ContainsByName(v.Chr, interval.PosType(v.Pos-1)) {
			out = append(out, v)
		}
	}
	return out
}

// LoadBED loads a BED file's interval union from path, for use with
// FilterByBED. Chromosome names are matched by name, not by BAM header ID.
func LoadBED(path string) (*interval.BEDUnion, error) {
	u, err := interval.NewBEDUnionFromPath(path, interval.NewBEDOpts{})
	if err != nil {
		return nil, err
	}
	return &u, nil
}
