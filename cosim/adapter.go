// Package cosim runs an external Z32 hardware simulation on a program and
// extracts its final register state.
//
// The simulator is invoked as
//
//	<simulator> +rom=<path to hex file>
//
// and must print one REGDUMP line per register before exiting. Everything
// else it prints is treated as log noise.
package cosim

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/z32sim/compare"
	"github.com/sarchlab/z32sim/loader"
)

// Errors that make a co-simulation inconclusive.
var (
	// ErrSimulationTimeout is returned when the simulator does not exit in
	// time. The process is killed.
	ErrSimulationTimeout = errors.New("simulation timeout")

	// ErrMalformedOutput is returned when the register dump is incomplete
	// or cannot be parsed.
	ErrMalformedOutput = errors.New("malformed simulator output")

	// ErrSimulatorFailed is returned when the simulator cannot be started,
	// or exits non-zero without a complete dump.
	ErrSimulatorFailed = errors.New("simulator failed")
)

// RomPlaceholder is replaced by the hex file path in argument templates.
const RomPlaceholder = "{rom}"

// Defaults.
const (
	DefaultTimeout   = 10 * time.Second
	DefaultWaitDelay = time.Second
)

// DefaultArgs is the default argument template.
var DefaultArgs = []string{"+rom=" + RomPlaceholder}

// Option configures an Adapter.
type Option func(*Adapter)

// WithTimeout bounds each simulator run.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		a.timeout = d
	}
}

// WithArgs replaces the argument template. Every occurrence of
// RomPlaceholder is replaced by the hex file path.
func WithArgs(args ...string) Option {
	return func(a *Adapter) {
		a.args = append([]string(nil), args...)
	}
}

// WithEnv adds KEY=VALUE entries to the simulator's environment.
func WithEnv(env ...string) Option {
	return func(a *Adapter) {
		a.env = append(a.env, env...)
	}
}

// WithTempDir sets the directory for hex files. The default is the system
// temp directory.
func WithTempDir(dir string) Option {
	return func(a *Adapter) {
		a.tempDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Adapter) {
		a.logger = l
	}
}

// Adapter runs programs on an external hardware simulator. It is safe for
// concurrent use; each run owns its hex file and process.
type Adapter struct {
	simulator string
	args      []string
	env       []string
	timeout   time.Duration
	waitDelay time.Duration
	tempDir   string
	logger    logrus.FieldLogger
}

// NewAdapter creates an adapter for the simulator executable at path.
func NewAdapter(simulator string, opts ...Option) *Adapter {
	a := &Adapter{
		simulator: simulator,
		args:      DefaultArgs,
		timeout:   DefaultTimeout,
		waitDelay: DefaultWaitDelay,
		logger:    logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Simulator returns the simulator executable path.
func (a *Adapter) Simulator() string {
	return a.simulator
}

// Result is the outcome of one simulator run.
type Result struct {
	Snapshot compare.Snapshot
	Noise    []string
	Elapsed  time.Duration
}

// Run writes p to a temporary hex file, runs the simulator on it and
// parses the register dump. The hex file is removed on every path.
func (a *Adapter) Run(ctx context.Context, p loader.Program) (Result, error) {
	path, err := loader.SaveTemp(a.tempDir, p)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrSimulatorFailed, err)
	}
	defer func() {
		_ = os.Remove(path)
	}()

	log := a.logger.WithFields(logrus.Fields{
		"case": p.Name(),
		"rom":  path,
	})

	runCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, a.simulator, a.expandArgs(path)...)
	cmd.WaitDelay = a.waitDelay
	setProcessGroup(cmd)
	if len(a.env) > 0 {
		cmd.Env = append(os.Environ(), a.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)
	_ = killProcessGroup(cmd)
	log = log.WithField("elapsed", elapsed)

	if runCtx.Err() != nil {
		if ctx.Err() != nil {
			return Result{Elapsed: elapsed}, ctx.Err()
		}
		log.Warn("simulator timed out")
		return Result{Elapsed: elapsed}, fmt.Errorf("%w after %s", ErrSimulationTimeout, a.timeout)
	}

	dump, parseErr := ParseDump(&stdout)
	result := Result{
		Snapshot: compare.FromRegisters(dump.Regs),
		Noise:    dump.Noise,
		Elapsed:  elapsed,
	}

	var exitErr *exec.ExitError
	switch {
	case runErr != nil && !errors.As(runErr, &exitErr):
		return result, fmt.Errorf("%w: %v", ErrSimulatorFailed, runErr)
	case runErr != nil && parseErr != nil:
		return result, fmt.Errorf("%w: %v: %s", ErrSimulatorFailed, runErr, lastLine(stderr.String()))
	case parseErr != nil:
		return result, parseErr
	case runErr != nil:
		log.WithError(runErr).Warn("simulator exited non-zero after a complete dump")
	}

	log.Debug("simulation finished")

	return result, nil
}

func (a *Adapter) expandArgs(path string) []string {
	args := make([]string, len(a.args))
	for i, arg := range a.args {
		args[i] = strings.ReplaceAll(arg, RomPlaceholder, path)
	}
	return args
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
