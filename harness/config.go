package harness

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/sarchlab/z32sim/cache"
	"github.com/sarchlab/z32sim/cosim"
	"github.com/sarchlab/z32sim/gen"
)

// Config configures a regression run.
type Config struct {
	// Simulator is the hardware simulator executable. Empty runs the
	// suite against the ISS oracles only.
	Simulator string `yaml:"simulator"`

	// Args is the simulator argument template. "{rom}" is replaced by
	// the hex file path.
	Args []string `yaml:"args"`

	// Env holds extra KEY=VALUE entries for the simulator's environment.
	Env []string `yaml:"env,omitempty"`

	// Timeout bounds each simulator run. Default: 10s.
	Timeout time.Duration `yaml:"timeout"`

	// Workers is the number of cases run at once. Default: number of CPUs.
	Workers int `yaml:"workers"`

	// MaxSteps is the ISS instruction budget per case. Default: 200, the
	// hardware simulation's cycle bound.
	MaxSteps uint64 `yaml:"max_steps"`

	// Scenarios selects directed scenarios by name. Empty selects all.
	Scenarios []string `yaml:"scenarios,omitempty"`

	// SkipDirected leaves out the directed scenarios.
	SkipDirected bool `yaml:"skip_directed,omitempty"`

	// Seed seeds the fuzzer.
	Seed uint64 `yaml:"seed"`

	// FuzzCases is the number of random programs. Default: 20.
	FuzzCases int `yaml:"fuzz_cases"`

	// FuzzLength is the number of random instructions per program,
	// not counting the final HALT. Default: 128.
	FuzzLength int `yaml:"fuzz_length"`

	// FuzzImm limits random immediates. Nil draws over each field's full
	// width.
	FuzzImm *gen.ImmRange `yaml:"fuzz_imm,omitempty"`

	// Cache, if set, runs the ISS with a data cache in front of memory.
	Cache *cache.Config `yaml:"cache,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Args:       append([]string(nil), cosim.DefaultArgs...),
		Timeout:    cosim.DefaultTimeout,
		Workers:    runtime.NumCPU(),
		MaxSteps:   200,
		Seed:       1,
		FuzzCases:  20,
		FuzzLength: 128,
	}
}

// LoadConfig loads a Config from a YAML file. Fields missing from the file
// keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read harness config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse harness config: %w", err)
	}

	return config, nil
}

// SaveConfig writes the Config to a YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize harness config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write harness config file: %w", err)
	}

	return nil
}

// Validate checks that the Config can be run.
func (c *Config) Validate() error {
	if c.Simulator != "" && len(c.Args) == 0 {
		return errors.New("args must not be empty when a simulator is set")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be > 0")
	}
	if c.Workers <= 0 {
		return errors.New("workers must be > 0")
	}
	if c.MaxSteps == 0 {
		return errors.New("max_steps must be > 0")
	}
	if c.FuzzCases < 0 {
		return errors.New("fuzz_cases must be >= 0")
	}
	if c.FuzzCases > 0 && c.FuzzLength <= 0 {
		return errors.New("fuzz_length must be > 0")
	}
	if c.FuzzImm != nil && c.FuzzImm.Min > c.FuzzImm.Max {
		return errors.New("fuzz_imm min must be <= max")
	}
	for _, name := range c.Scenarios {
		if _, ok := gen.DirectedByName(name); !ok {
			return fmt.Errorf("unknown scenario %q", name)
		}
	}
	if c.Cache != nil {
		if err := c.Cache.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Args = append([]string(nil), c.Args...)
	clone.Env = append([]string(nil), c.Env...)
	clone.Scenarios = append([]string(nil), c.Scenarios...)
	if c.Cache != nil {
		cacheConfig := *c.Cache
		clone.Cache = &cacheConfig
	}
	if c.FuzzImm != nil {
		imms := *c.FuzzImm
		clone.FuzzImm = &imms
	}
	return &clone
}

// Cases builds the directed and fuzz cases the Config selects.
func (c *Config) Cases() []Case {
	var cases []Case

	if !c.SkipDirected {
		for _, s := range gen.Directed() {
			if len(c.Scenarios) > 0 && !slices.Contains(c.Scenarios, s.Name) {
				continue
			}
			cases = append(cases, ScenarioCase(s))
		}
	}

	var opts []gen.FuzzerOption
	if c.FuzzImm != nil {
		opts = append(opts, gen.WithImmRange(*c.FuzzImm))
	}
	fuzzer := gen.NewFuzzer(c.Seed, opts...)
	for i := 0; i < c.FuzzCases; i++ {
		p := fuzzer.Program(c.FuzzLength)
		cases = append(cases, Case{Name: p.Name(), Program: p})
	}

	return cases
}
