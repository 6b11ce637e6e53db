package harness

import (
	"fmt"
	"io"
	"time"

	"github.com/davecgh/go-spew/spew"
)

// Summary counts verdicts.
type Summary struct {
	Passed       int
	Failed       int
	Inconclusive int
}

// Summarize counts the verdicts of reports.
func Summarize(reports []CaseReport) Summary {
	var s Summary
	for _, r := range reports {
		switch r.Verdict {
		case Pass:
			s.Passed++
		case Fail:
			s.Failed++
		default:
			s.Inconclusive++
		}
	}
	return s
}

// Total returns the number of cases.
func (s Summary) Total() int {
	return s.Passed + s.Failed + s.Inconclusive
}

func (s Summary) String() string {
	return fmt.Sprintf("passed=%d failed=%d inconclusive=%d", s.Passed, s.Failed, s.Inconclusive)
}

// ExitCode returns 0 when every case passed, 1 when any case failed and 2
// when nothing failed but some cases were inconclusive.
func (s Summary) ExitCode() int {
	switch {
	case s.Failed > 0:
		return 1
	case s.Inconclusive > 0:
		return 2
	default:
		return 0
	}
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// PrintReport writes one block per case and a final summary line. Every
// compared component gets its own line. With verbose set, the full ISS and
// hardware snapshots of cases that did not pass are dumped too.
func PrintReport(w io.Writer, reports []CaseReport, verbose bool) Summary {
	for _, r := range reports {
		_, _ = fmt.Fprintf(w, "== %s: %s (stop=%s steps=%d wall=%s)\n",
			r.Name, r.Verdict, r.Stop, r.Steps, r.WallTime.Round(time.Microsecond))

		if r.Oracle != nil {
			for _, e := range r.Oracle.Entries {
				_, _ = fmt.Fprintf(w, "  oracle %s\n", e.Format("want", "iss"))
			}
		}

		for _, e := range r.Result.Entries {
			_, _ = fmt.Fprintf(w, "  %s\n", e.Format("iss", "hw"))
		}

		if r.CacheStats != nil {
			cs := r.CacheStats
			_, _ = fmt.Fprintf(w, "  dcache hits=%d misses=%d evictions=%d writebacks=%d\n",
				cs.Hits, cs.Misses, cs.Evictions, cs.Writebacks)
		}

		if r.ISSErr != nil {
			_, _ = fmt.Fprintf(w, "  iss error: %v\n", r.ISSErr)
		}

		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "  error: %v\n", r.Err)
		}

		if verbose && r.Verdict != Pass {
			_, _ = fmt.Fprintln(w, "  iss snapshot:")
			dumpConfig.Fdump(w, r.ISS)
			_, _ = fmt.Fprintln(w, "  hw snapshot:")
			dumpConfig.Fdump(w, r.HW)
		}
	}

	s := Summarize(reports)
	_, _ = fmt.Fprintln(w, s)
	return s
}
