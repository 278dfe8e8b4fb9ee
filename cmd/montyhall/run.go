package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/montyhall/internal/config"
	"github.com/lox/montyhall/internal/display"
	"github.com/lox/montyhall/internal/montyhall"
	"github.com/lox/montyhall/internal/simulator"
	"github.com/lox/montyhall/internal/statistics"
)

type RunCmd struct {
	Iterations uint64 `short:"n" default:"0" help:"Number of trials per strategy (default from profile: 1000000)"`
	Strategy   string `short:"s" default:"" help:"Player strategy: switch, stay or both (default: both)"`
	Seed       int64  `default:"0" help:"RNG seed (0 for time-derived)"`
	Workers    int    `short:"w" default:"0" help:"Worker goroutines (0 for all CPUs)"`
	Config     string `short:"c" type:"path" help:"HCL run profile to load"`
	Live       bool   `help:"Show a live progress bar"`
	NoProgress bool   `help:"Disable progress output"`
	NoColor    bool   `help:"Disable colored output"`
}

func (c *RunCmd) Run(logger *log.Logger) error {
	profile := config.Default()
	if c.Config != "" {
		loaded, err := config.Load(c.Config)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid profile %s: %w", c.Config, err)
		}
		profile = loaded
	}

	iterations := c.Iterations
	if iterations == 0 {
		iterations = profile.Simulation.Iterations
	}
	seed := c.Seed
	if seed == 0 {
		seed = profile.Simulation.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	workers := c.Workers
	if workers == 0 {
		workers = profile.Simulation.Workers
	}

	strategies, err := c.strategies(profile)
	if err != nil {
		return err
	}

	if c.NoColor || !profile.Output.Color {
		display.DisableColor()
	} else {
		display.AutoColor()
	}

	var reporter simulator.ProgressReporter
	showProgress := profile.Output.Progress && !c.NoProgress && !c.Live
	if showProgress {
		reporter = NewDotProgressReporter(os.Stdout)
	}

	sim := simulator.New(simulator.Config{
		Trials:   iterations,
		Seed:     seed,
		Workers:  workers,
		Logger:   logger,
		Reporter: reporter,
	})

	fmt.Printf("Starting simulation: %d trials per strategy (seed: %d)\n\n", iterations, seed)

	ctx := context.Background()
	results := statistics.NewResults()
	rows := make([]display.Row, 0, len(strategies))

	for _, strategy := range strategies {
		start := time.Now()
		result, err := c.runStrategy(ctx, sim, strategy)
		if err != nil {
			return err
		}
		rows = append(rows, display.Row{Result: result, Elapsed: time.Since(start)})
		*results.ByStrategy(strategy) = result
	}

	fmt.Println()
	display.RenderResults(os.Stdout, rows)

	if len(strategies) == 2 {
		fmt.Println()
		fmt.Println(display.Summary(results))
	}
	return nil
}

func (c *RunCmd) runStrategy(ctx context.Context, sim *simulator.Simulator, strategy montyhall.Strategy) (statistics.StrategyResult, error) {
	if !c.Live {
		return sim.Run(ctx, strategy)
	}

	var result statistics.StrategyResult
	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, runErr = sim.Run(ctx, strategy)
	}()

	// Force the view to its end state once the run returns, error or not.
	poll := func() (uint64, uint64) {
		select {
		case <-done:
			return 1, 1
		default:
			return sim.Completed(), sim.Total()
		}
	}
	if err := display.RunLive(poll); err != nil {
		return statistics.StrategyResult{}, err
	}
	<-done
	return result, runErr
}

func (c *RunCmd) strategies(profile *config.Config) ([]montyhall.Strategy, error) {
	switch c.Strategy {
	case "", "both":
		if c.Strategy == "" {
			return profile.Strategies()
		}
		return montyhall.Strategies(), nil
	default:
		strategy, err := montyhall.ParseStrategy(c.Strategy)
		if err != nil {
			return nil, err
		}
		return []montyhall.Strategy{strategy}, nil
	}
}
