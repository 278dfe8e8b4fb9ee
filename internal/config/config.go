// Package config loads HCL run profiles for the simulator.
package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/montyhall/internal/montyhall"
)

// Config represents a complete run profile.
type Config struct {
	Simulation SimulationSettings
	Output     OutputSettings
}

// SimulationSettings control the trial batch itself.
type SimulationSettings struct {
	Iterations uint64
	Seed       int64
	Workers    int
	Strategies []string
}

// OutputSettings control how results are presented.
type OutputSettings struct {
	Color    bool
	Progress bool
}

// fileConfig mirrors Config for HCL decoding. Blocks and scalar attributes
// are pointers so an absent block or field is distinguishable from an
// explicit zero value and falls back to the default.
type fileConfig struct {
	Simulation *simulationBlock `hcl:"simulation,block"`
	Output     *outputBlock     `hcl:"output,block"`
}

type simulationBlock struct {
	Iterations *uint64  `hcl:"iterations,optional"`
	Seed       *int64   `hcl:"seed,optional"`
	Workers    *int     `hcl:"workers,optional"`
	Strategies []string `hcl:"strategies,optional"`
}

type outputBlock struct {
	Color    *bool `hcl:"color,optional"`
	Progress *bool `hcl:"progress,optional"`
}

// Default returns the default run profile.
func Default() *Config {
	return &Config{
		Simulation: SimulationSettings{
			Iterations: 1_000_000,
			Seed:       0, // 0 means derive from wall clock at run time
			Workers:    0, // 0 means all CPUs
			Strategies: []string{"switch", "stay"},
		},
		Output: OutputSettings{
			Color:    true,
			Progress: true,
		},
	}
}

// Load reads a run profile from an HCL file. A missing file yields the
// defaults; a present file is merged over them field by field, so a profile
// that only tunes the seed keeps every other default.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var decoded fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &decoded)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config := Default()
	if sim := decoded.Simulation; sim != nil {
		if sim.Iterations != nil {
			config.Simulation.Iterations = *sim.Iterations
		}
		if sim.Seed != nil {
			config.Simulation.Seed = *sim.Seed
		}
		if sim.Workers != nil {
			config.Simulation.Workers = *sim.Workers
		}
		if len(sim.Strategies) > 0 {
			config.Simulation.Strategies = sim.Strategies
		}
	}
	if out := decoded.Output; out != nil {
		if out.Color != nil {
			config.Output.Color = *out.Color
		}
		if out.Progress != nil {
			config.Output.Progress = *out.Progress
		}
	}

	return config, nil
}

// Validate validates the run profile.
func (c *Config) Validate() error {
	if c.Simulation.Iterations == 0 {
		return fmt.Errorf("iterations must be positive")
	}
	if c.Simulation.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if c.Simulation.Workers > 8*runtime.NumCPU() {
		return fmt.Errorf("workers %d is more than 8x the CPU count", c.Simulation.Workers)
	}
	if len(c.Simulation.Strategies) == 0 {
		return fmt.Errorf("at least one strategy is required")
	}
	for _, name := range c.Simulation.Strategies {
		if _, err := montyhall.ParseStrategy(name); err != nil {
			return err
		}
	}
	return nil
}

// Strategies returns the parsed strategy list.
func (c *Config) Strategies() ([]montyhall.Strategy, error) {
	strategies := make([]montyhall.Strategy, 0, len(c.Simulation.Strategies))
	for _, name := range c.Simulation.Strategies {
		s, err := montyhall.ParseStrategy(name)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}
	return strategies, nil
}
