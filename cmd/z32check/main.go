// Package main provides z32check, the Z32 differential regression runner.
//
// Every directed scenario and a batch of random programs is run on the
// instruction-set simulator and, with -sim, on the hardware simulator. The
// exit code is 0 when all cases pass, 1 when any fails, 2 when some were
// inconclusive and 3 on setup errors.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/z32sim/cache"
	"github.com/sarchlab/z32sim/gen"
	"github.com/sarchlab/z32sim/harness"
)

const exitSetup = 3

var (
	configPath = flag.String("config", "", "Path to harness configuration YAML file")
	saveConfig = flag.String("save-config", "", "Write the effective configuration to this file and exit")
	simulator  = flag.String("sim", "", "Hardware simulator executable (empty: oracles only)")
	timeout    = flag.Duration("timeout", 10*time.Second, "Per-case simulator timeout")
	workers    = flag.Int("workers", 0, "Parallel cases (0: number of CPUs)")
	maxSteps   = flag.Uint64("max-steps", 200, "ISS instruction budget per case")
	seed       = flag.Uint64("seed", 1, "Fuzzer seed")
	fuzz       = flag.Int("fuzz", 20, "Number of random programs")
	fuzzLen    = flag.Int("fuzz-len", 128, "Random instructions per program")
	narrowImm  = flag.Bool("narrow-imm", false, "Draw random immediates from [-128, 127] instead of the full field width")
	scenarios  = flag.String("scenarios", "", "Comma-separated directed scenarios (empty: all)")
	useCache   = flag.Bool("cache", false, "Run the ISS with the default data cache")
	verbose    = flag.Bool("v", false, "Verbose logging and snapshot dumps for failing cases")
)

func main() {
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	config, err := loadConfig()
	if err != nil {
		logger.WithError(err).Error("invalid configuration")
		os.Exit(exitSetup)
	}

	if *saveConfig != "" {
		if err := config.SaveConfig(*saveConfig); err != nil {
			logger.WithError(err).Error("cannot save configuration")
			os.Exit(exitSetup)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	h := harness.NewHarness(config,
		harness.WithLogger(logger),
		harness.WithSimulator(harness.NewSimulator(config, logger)),
	)
	h.AddCases(config.Cases())

	logger.WithFields(logrus.Fields{
		"simulator": config.Simulator,
		"workers":   config.Workers,
		"seed":      config.Seed,
	}).Info("running regression")

	start := time.Now()
	reports := h.RunAll(ctx)
	summary := harness.PrintReport(os.Stdout, reports, *verbose)

	logger.WithField("elapsed", time.Since(start)).Info(summary.String())

	os.Exit(summary.ExitCode())
}

// loadConfig starts from the config file, if any, and applies every flag
// that was set explicitly on the command line.
func loadConfig() (*harness.Config, error) {
	config := harness.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = harness.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sim":
			config.Simulator = *simulator
		case "timeout":
			config.Timeout = *timeout
		case "workers":
			if *workers > 0 {
				config.Workers = *workers
			}
		case "max-steps":
			config.MaxSteps = *maxSteps
		case "seed":
			config.Seed = *seed
		case "fuzz":
			config.FuzzCases = *fuzz
		case "fuzz-len":
			config.FuzzLength = *fuzzLen
		case "narrow-imm":
			if *narrowImm {
				imms := gen.NarrowImms
				config.FuzzImm = &imms
			} else {
				config.FuzzImm = nil
			}
		case "scenarios":
			config.Scenarios = splitList(*scenarios)
		case "cache":
			if *useCache {
				c := cache.DefaultConfig()
				config.Cache = &c
			} else {
				config.Cache = nil
			}
		}
	})

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return config, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
