// Package harness runs Z32 regression suites: every case is executed on the
// instruction-set simulator and, when a hardware simulator is configured,
// on the hardware model too, and the final states are compared.
package harness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/z32sim/cache"
	"github.com/sarchlab/z32sim/compare"
	"github.com/sarchlab/z32sim/cosim"
	"github.com/sarchlab/z32sim/emu"
	"github.com/sarchlab/z32sim/gen"
	"github.com/sarchlab/z32sim/loader"
)

// Oracle holds literal expected results for a case.
type Oracle struct {
	Regs   map[int]uint32
	Output []byte
}

// Case is one program to check.
type Case struct {
	Name    string
	Program loader.Program

	// Oracle is optional. When set, the ISS result is also checked
	// against it.
	Oracle *Oracle
}

// ScenarioCase turns a directed scenario into a case with its oracle.
func ScenarioCase(s gen.Scenario) Case {
	return Case{
		Name:    s.Name,
		Program: s.Program,
		Oracle:  &Oracle{Regs: s.ExpectedRegs, Output: s.ExpectedOutput},
	}
}

// Verdict is the outcome of a case.
type Verdict int

// Verdicts.
const (
	// Pass means every observed component matched.
	Pass Verdict = iota
	// Fail means the models disagreed, the ISS missed its oracle or the
	// ISS stopped on an error.
	Fail
	// Inconclusive means the hardware run timed out, failed or produced
	// unusable output.
	Inconclusive
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case Inconclusive:
		return "INCONCLUSIVE"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// CaseReport holds everything known about one case after it ran.
type CaseReport struct {
	Name    string
	Verdict Verdict

	// Result compares the ISS (expected) with the hardware (actual). It
	// is empty when no hardware simulator is configured or the hardware
	// run was inconclusive.
	Result compare.Result

	// Oracle is the ISS check against the case's oracle, if it has one.
	Oracle *compare.Result

	ISS compare.Snapshot
	HW  compare.Snapshot

	// Err is the reason for an inconclusive verdict.
	Err error

	// ISSErr is set when the ISS could not load or finish the program.
	// Such a case is aborted before the hardware runs and fails.
	ISSErr error

	// Stop and Steps describe how the ISS run ended.
	Stop  emu.StopReason
	Steps uint64

	// Output is what the ISS wrote to its output port.
	Output []byte

	// CacheStats is set when the ISS ran with a data cache.
	CacheStats *cache.Statistics

	WallTime time.Duration
}

// Simulator runs a program on the hardware model. *cosim.Adapter
// implements it.
type Simulator interface {
	Run(ctx context.Context, p loader.Program) (cosim.Result, error)
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// WithSimulator sets the hardware simulator. Without one, cases are only
// checked against their oracles.
func WithSimulator(sim Simulator) Option {
	return func(h *Harness) {
		h.sim = sim
	}
}

// Harness runs cases and reports results.
type Harness struct {
	config *Config
	sim    Simulator
	logger logrus.FieldLogger
	cases  []Case
}

// NewHarness creates a new harness.
func NewHarness(config *Config, opts ...Option) *Harness {
	h := &Harness{
		config: config.Clone(),
		logger: logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// NewSimulator builds the co-simulation adapter a Config describes, or nil
// if it names no simulator.
func NewSimulator(config *Config, logger logrus.FieldLogger) Simulator {
	if config.Simulator == "" {
		return nil
	}
	return cosim.NewAdapter(config.Simulator,
		cosim.WithArgs(config.Args...),
		cosim.WithEnv(config.Env...),
		cosim.WithTimeout(config.Timeout),
		cosim.WithLogger(logger),
	)
}

// AddCase adds a case to the harness.
func (h *Harness) AddCase(c Case) {
	h.cases = append(h.cases, c)
}

// AddCases adds multiple cases to the harness.
func (h *Harness) AddCases(cases []Case) {
	h.cases = append(h.cases, cases...)
}

// RunAll runs every case on a pool of Config.Workers workers and returns
// one report per case, in the order the cases were added. A failing or
// inconclusive case never stops the others. Cases not started before ctx
// is done are reported inconclusive.
func (h *Harness) RunAll(ctx context.Context) []CaseReport {
	reports := make([]CaseReport, len(h.cases))

	var g errgroup.Group
	g.SetLimit(h.config.Workers)

	var mu sync.Mutex
	done := 0

	for i, c := range h.cases {
		g.Go(func() error {
			reports[i] = h.runCase(ctx, c)

			mu.Lock()
			done++
			n := done
			mu.Unlock()

			h.logger.WithFields(logrus.Fields{
				"case":     c.Name,
				"verdict":  reports[i].Verdict,
				"progress": fmt.Sprintf("%d/%d", n, len(h.cases)),
			}).Debug("case finished")

			return nil
		})
	}

	_ = g.Wait()

	return reports
}

func (h *Harness) runCase(ctx context.Context, c Case) CaseReport {
	start := time.Now()
	report := CaseReport{Name: c.Name}
	log := h.logger.WithField("case", c.Name)

	if err := ctx.Err(); err != nil {
		report.Verdict = Inconclusive
		report.Err = err
		return report
	}

	e := h.runISS(c, &report)
	report.ISS = compare.FromEmulator(e)
	report.Output = report.ISS.Output

	if c.Oracle != nil {
		oracle := compare.CheckOracle(report.ISS, c.Oracle.Regs, c.Oracle.Output)
		report.Oracle = &oracle
	}

	if report.ISSErr == nil && h.sim != nil {
		hw, err := h.sim.Run(ctx, c.Program)
		if err != nil {
			report.Err = err
		} else {
			report.HW = hw.Snapshot
			report.Result = compare.Compare(report.ISS, report.HW)
		}
	}

	report.Verdict = verdict(report)
	report.WallTime = time.Since(start)

	switch report.Verdict {
	case Inconclusive:
		log.WithError(report.Err).Warn("case inconclusive")
	case Fail:
		log.WithError(report.ISSErr).Info("case failed")
	}

	return report
}

func (h *Harness) runISS(c Case, report *CaseReport) *emu.Emulator {
	opts := []emu.EmulatorOption{emu.WithMaxInstructions(h.config.MaxSteps)}
	if h.config.Cache != nil {
		opts = append(opts, emu.WithDataPort(cache.NewDataPort(*h.config.Cache)))
	}

	e := emu.NewEmulator(opts...)
	if err := e.LoadProgram(c.Program.Words()); err != nil {
		report.Stop = emu.StopError
		report.ISSErr = fmt.Errorf("load program: %w", err)
		return e
	}

	result := e.Run()
	report.Stop = result.Reason
	report.Steps = result.Steps
	report.ISSErr = result.Err

	if stats, ok := cache.StatsOf(e.DataPort()); ok {
		report.CacheStats = &stats
	}

	return e
}

// verdict never reports a pass for a case whose hardware run could not be
// evaluated. ISS errors and oracle misses are failures regardless of the
// hardware.
func verdict(r CaseReport) Verdict {
	if r.ISSErr != nil {
		return Fail
	}
	if r.Oracle != nil && !r.Oracle.Passed() {
		return Fail
	}
	if r.Err != nil {
		return Inconclusive
	}
	if !r.Result.Passed() {
		return Fail
	}
	return Pass
}
