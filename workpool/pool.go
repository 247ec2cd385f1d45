// Package workpool fans variant sets out to a fixed pool of worker threads
// and collects their output strings under a separate mutex, so that slow
// result-string assembly never blocks task dispatch.
package workpool

import (
	"sort"
	"sync"

	"github.com/eaglevariant/eagle/hypothesis"
	"github.com/eaglevariant/eagle/natural"
	"github.com/eaglevariant/eagle/variant"
	"github.com/grailbio/base/errorreporter"
	"github.com/grailbio/base/log"
)

// Pool evaluates a list of variant sets across NumProc worker goroutines.
// The queue and the results slice are guarded by independent mutexes, and
// the Evaluator's own reference cache carries its own mutex independently
// of both: an I/O-bound cache miss never serializes queue operations.
type Pool struct {
	Eval    *hypothesis.Evaluator
	NumProc int

	// Trace, if non-nil, receives the verbose per-read trace for every
	// evaluated set, in whatever order workers happen to finish.
	Trace func(set variant.Set, lines []hypothesis.TraceLine)
}

// Run evaluates every set in sets and returns the formatted output rows,
// sorted by natural order, with the header line first. A fatal error in any
// worker is recorded and returned; results from other workers are not
// guaranteed meaningful in that case.
func (p *Pool) Run(sets []variant.Set) ([]string, error) {
	numProc := p.NumProc
	if numProc <= 0 {
		numProc = 1
	}

	var queueMu sync.Mutex
	queue := sets
	next := 0

	var resultsMu sync.Mutex
	var results []string

	var errs errorreporter.T

	var wg sync.WaitGroup
	for i := 0; i < numProc; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				queueMu.Lock()
				if next >= len(queue) {
					queueMu.Unlock()
					return
				}
				set := queue[next]
				next++
				queueMu.Unlock()

				p.process(set, &resultsMu, &results, &errs)
			}
		}()
	}
	wg.Wait()

	if err := errs.Err(); err != nil {
		return nil, err
	}

	sortResults(results)
	out := make([]string, 0, len(results)+1)
	out = append(out, hypothesis.Header)
	out = append(out, results...)
	return out, nil
}

func (p *Pool) process(set variant.Set, resultsMu *sync.Mutex, results *[]string, errs *errorreporter.T) {
	var res *hypothesis.Result
	var err error
	if p.Trace != nil {
		res, err = p.Eval.EvaluateTraced(set)
	} else {
		res, err = p.Eval.Evaluate(set)
	}
	if err != nil {
		log.Printf("workpool: variant set %v: %v", set, err)
		errs.Set(err)
		return
	}
	if res == nil {
		return
	}
	if p.Trace != nil {
		p.Trace(set, res.Trace)
	}

	rows := res.OutputRows()
	resultsMu.Lock()
	*results = append(*results, rows...)
	resultsMu.Unlock()
}

// sortResults sorts rows by natural order over their leading (chr, pos)
// columns, matching the single-threaded restore-determinism pass before
// emission.
func sortResults(rows []string) {
	sort.SliceStable(rows, func(i, j int) bool {
		return natural.Less(rows[i], rows[j])
	})
}
