package hypothesis

import (
	"fmt"
	"io"

	"github.com/eaglevariant/eagle/combo"
	"github.com/eaglevariant/eagle/variant"
)

// TraceLine is one verbose per-(combination, read) record. This is the
// machine-readable contract consumed by the downstream read-classification
// tool, so its fields are written in a fixed order rather than through a
// general-purpose struct formatter.
type TraceLine struct {
	Combination combo.Combination
	Read        string
	Prgu        float64
	Phet        float64
	Prgv        float64
	Pout        float64
	AltCount    int
}

// EvaluateTraced runs Evaluate while additionally recording one TraceLine
// per (combination, read) pair processed, for the verbose per-read trace.
func (e *Evaluator) EvaluateTraced(set variant.Set) (*Result, error) {
	var trace []TraceLine
	res, err := e.evaluate(set, &trace)
	if err != nil || res == nil {
		return res, err
	}
	res.Trace = trace
	return res, nil
}

// WriteTrace writes t's verbose lines to w, one line per (combination,
// read): numeric fields for prgu, phet, prgv, pout, alt_count, the read
// name, and the combination's variant list.
func WriteTrace(w io.Writer, set variant.Set, t []TraceLine) error {
	for _, l := range t {
		if _, err := fmt.Fprintf(w, "%f\t%f\t%f\t%f\t%d\t%s\t%s\n",
			l.Prgu, l.Phet, l.Prgv, l.Pout, l.AltCount, l.Read, comboVariants(set, l.Combination)); err != nil {
			return err
		}
	}
	return nil
}

func comboVariants(set variant.Set, c combo.Combination) string {
	s := ""
	for _, i := range c {
		v := set[i]
		s += fmt.Sprintf("%d,%s,%s;", v.Pos, v.Ref, v.Alt)
	}
	return s
}
