package hypothesis

import (
	"fmt"
	"strings"

	"github.com/eaglevariant/eagle/variant"
)

// Header is the output TSV header line.
const Header = "#SEQ\tPOS\tREF\tALT\tReads\tAltReads\tProb\tOdds\tSet"

// Row formats one output row: chr, pos, ref, alt, read_count, has_alt_count,
// prob (%e), odds (%f), a trailing tab, then the bracketed set field.
func (r VariantResult) Row(set variant.Set) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\t%d\t%s\t%s\t%d\t%d\t%e\t%f\t",
		r.Variant.Chr, r.Variant.Pos, r.Variant.Ref, r.Variant.Alt, r.ReadCount, r.HasAltCount, r.Prob, r.Odds)
	sb.WriteByte('[')
	if len(set) > 1 {
		for _, v := range set {
			fmt.Fprintf(&sb, "%d,%s,%s;", v.Pos, v.Ref, v.Alt)
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

// OutputRows formats every row of res as a TSV output line.
func (res *Result) OutputRows() []string {
	lines := make([]string, len(res.Rows))
	for i, row := range res.Rows {
		lines[i] = row.Row(res.Set)
	}
	return lines
}
