// Package altseq constructs an alternative-genome sequence by applying a
// combination of variants to a reference sequence.
package altseq

import (
	"github.com/eaglevariant/eagle/combo"
	"github.com/eaglevariant/eagle/variant"
)

// Build returns the sequence obtained by applying the variants in set at the
// indices named by c, in ascending position order, to a copy of refseq.
//
// refseq is the full chromosome sequence (or any window that covers every
// variant in c plus enough margin for downstream read alignment). The
// variants in set must already be sorted by position; Build does not
// re-sort.
//
// A running offset tracks the cumulative length delta introduced by
// variants applied so far, so that each subsequent edit site is computed
// against the growing/shrinking buffer rather than the original reference
// coordinates. A "-" ref allele denotes a pure insertion: the edit site is
// advanced by one base and the ref allele contributes nothing to the
// splice. A "-" alt allele denotes a pure deletion: the alt contributes
// nothing. Equal-length alleles (SNPs, MNPs) overwrite in place; all other
// combinations splice (prefix + alt + suffix).
func Build(refseq []byte, set variant.Set, c combo.Combination) []byte {
	out := make([]byte, len(refseq))
	copy(out, refseq)

	offset := 0
	for _, idx := range c {
		v := set[idx]
		refLen := v.RefLen()
		altLen := v.AltLen()

		site := v.Pos - 1 + offset
		if v.IsInsertion() {
			site++
		}
		if site < 0 || site > len(out) {
			continue
		}
		end := site + refLen
		if end > len(out) {
			end = len(out)
			refLen = end - site
		}

		if refLen == altLen {
			copy(out[site:end], v.Alt)
		} else {
			spliced := make([]byte, 0, len(out)-refLen+altLen)
			spliced = append(spliced, out[:site]...)
			if !v.IsDeletion() {
				spliced = append(spliced, v.Alt...)
			}
			spliced = append(spliced, out[end:]...)
			out = spliced
		}
		offset += altLen - refLen
	}
	return out
}
