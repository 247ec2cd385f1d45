// Package variant holds the candidate variant store: loading from VCF,
// natural-order sorting, and grouping into hypothesis sets.
package variant

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/eaglevariant/eagle/natural"
	"github.com/pkg/errors"
)

// Variant is a single candidate edit: (chr, 1-based pos, ref allele, alt
// allele). A single "-" in either allele denotes an empty allele (pure
// insertion or deletion). Immutable after construction.
type Variant struct {
	Chr string
	Pos int
	Ref string
	Alt string
}

// IsInsertion reports whether v is a pure insertion (empty ref allele).
func (v Variant) IsInsertion() bool {
	return v.Ref == "-"
}

// IsDeletion reports whether v is a pure deletion (empty alt allele).
func (v Variant) IsDeletion() bool {
	return v.Alt == "-"
}

// RefLen returns the length of the ref allele, treating "-" as empty.
func (v Variant) RefLen() int {
	if v.Ref == "-" {
		return 0
	}
	return len(v.Ref)
}

// AltLen returns the length of the alt allele, treating "-" as empty.
func (v Variant) AltLen() int {
	if v.Alt == "-" {
		return 0
	}
	return len(v.Alt)
}

// Load reads variants from a whitespace-tokenized VCF-like stream. Only
// columns 1 (chr), 2 (pos), 4 (ref), and 5 (alt) are consumed; lines
// beginning with '#' and blank lines are skipped. A comma-separated alt
// field is expanded into one Variant per alt allele.
func Load(r io.Reader) ([]Variant, error) {
	var out []Variant
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return nil, errors.Errorf("variant: line %d: expected at least 5 whitespace-separated columns, got %d", lineno, len(fields))
		}
		chr := fields[0]
		pos, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.Wrapf(err, "variant: line %d: bad position %q", lineno, fields[1])
		}
		ref := fields[3]
		for _, alt := range strings.Split(fields[4], ",") {
			out = append(out, Variant{Chr: chr, Pos: pos, Ref: ref, Alt: alt})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "variant: read error")
	}
	Sort(out)
	return out, nil
}

// Sort orders vs in place by natural order over (chr, pos).
func Sort(vs []Variant) {
	sort.SliceStable(vs, func(i, j int) bool {
		if vs[i].Chr != vs[j].Chr {
			return natural.Less(vs[i].Chr, vs[j].Chr)
		}
		return vs[i].Pos < vs[j].Pos
	})
}
