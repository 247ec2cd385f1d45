package hypothesis

import (
	"strconv"
	"strings"

	"github.com/grailbio/hts/sam"
)

// XAHit is one alternative-alignment entry from a read's XA aux tag:
// (chr, signed 1-based position, cigar string, edit distance). The sign of
// Pos records the alternative alignment's strand.
type XAHit struct {
	Chr          string
	Pos          int
	Cigar        string
	EditDistance int
}

// Read is the subset of a BAM record the likelihood engine consumes.
type Read struct {
	Name string
	Chr  string
	// Pos is the 0-based alignment start.
	Pos int
	// Qseq is the uppercase A/T/G/C/N read sequence.
	Qseq []byte
	// Qual is the per-base natural-log error rate, derived from Phred
	// quality by dividing by -10 (to get log10) and converting to natural
	// log; see qualToLogErr.
	Qual []float64

	Unmapped  bool
	Reverse   bool
	Secondary bool

	// InferredLength is the query length consumed by the CIGAR (M/I/S/=/X
	// ops), as opposed to len(Qseq) which is the full stored read length.
	InferredLength int

	Multimap []XAHit
}

var xaTag = sam.NewTag("XA")

// qualToLogErr converts a Phred quality byte Q into a natural-log error
// rate: dividing by -10 gives the log10 error rate; multiplying by ln(10)
// yields the natural-log value the probability matrix expects.
func qualToLogErr(phred byte) float64 {
	return -float64(phred) / 10 * ln10
}

// FromRecord converts a sam.Record into the Read shape the evaluator
// operates on. chr is the reference name to record, since rec.Ref may be
// nil for an unmapped record.
func FromRecord(rec *sam.Record, chr string) *Read {
	r := &Read{
		Name:      rec.Name,
		Chr:       chr,
		Pos:       rec.Pos,
		Qseq:      []byte(strings.ToUpper(string(rec.Seq.Expand()))),
		Unmapped:  rec.Flags&sam.Unmapped != 0,
		Reverse:   rec.Flags&sam.Reverse != 0,
		Secondary: rec.Flags&(sam.Secondary|sam.Supplementary) != 0,
	}

	r.Qual = make([]float64, len(rec.Qual))
	for i, q := range rec.Qual {
		r.Qual[i] = qualToLogErr(q)
	}

	_, queryConsumed := rec.Cigar.Lengths()
	r.InferredLength = queryConsumed

	if aux := rec.AuxFields.Get(xaTag); aux != nil {
		r.Multimap = parseXA(aux.String())
	}
	return r
}

// parseXA parses a BWA-style XA tag value: semicolon-delimited tuples of
// (chr, signed pos, cigar, edit distance) joined by commas, with a trailing
// empty tuple from the final semicolon ignored.
func parseXA(v string) []XAHit {
	var hits []XAHit
	for _, tuple := range strings.Split(v, ";") {
		if tuple == "" {
			continue
		}
		parts := strings.Split(tuple, ",")
		if len(parts) != 4 {
			continue
		}
		pos, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		nm, err := strconv.Atoi(parts[3])
		if err != nil {
			continue
		}
		hits = append(hits, XAHit{
			Chr:          parts[0],
			Pos:          pos,
			Cigar:        parts[2],
			EditDistance: nm,
		})
	}
	return hits
}
