// Package simulator drives large batches of Monty Hall trials, sequentially
// or fanned out across workers, and reduces the outcomes into statistics.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/montyhall/internal/montyhall"
	"github.com/lox/montyhall/internal/randutil"
	"github.com/lox/montyhall/internal/statistics"
)

const (
	// parallelThreshold is the trial count below which fan-out overhead
	// outweighs the win and the run stays on one goroutine.
	parallelThreshold = 100_000

	// defaultChunkSize is the granularity of cancellation checks and
	// progress updates inside a worker.
	defaultChunkSize = 65_536

	progressInterval = 250 * time.Millisecond
)

// ErrNoTrials is returned when a run is requested with zero trials.
var ErrNoTrials = errors.New("no trials requested")

// ProgressReporter receives periodic completion updates during a run.
type ProgressReporter interface {
	OnProgress(completed, total uint64)
}

// Config holds configuration for running simulations.
type Config struct {
	Trials    uint64
	Seed      int64
	Workers   int    // 0 uses all CPUs
	ChunkSize uint64 // 0 uses the default
	Logger    *log.Logger
	Clock     quartz.Clock     // nil uses the real clock
	Reporter  ProgressReporter // optional
}

// Simulator runs Monty Hall trial batches.
type Simulator struct {
	config    Config
	completed atomic.Uint64
	total     atomic.Uint64
}

// New creates a new simulator with the given configuration.
func New(config Config) *Simulator {
	return &Simulator{config: config}
}

// Completed returns the number of trials finished so far in the current run.
func (s *Simulator) Completed() uint64 { return s.completed.Load() }

// Total returns the number of trials the current run will perform.
func (s *Simulator) Total() uint64 { return s.total.Load() }

// Run executes Config.Trials independent trials under one strategy and
// returns the tallied result. Trials either all complete or the run aborts
// with an error; cancellation is honoured at chunk granularity.
func (s *Simulator) Run(ctx context.Context, strategy montyhall.Strategy) (statistics.StrategyResult, error) {
	if err := s.validate(strategy); err != nil {
		return statistics.StrategyResult{}, err
	}

	s.total.Store(s.config.Trials)
	s.completed.Store(0)

	result, err := s.runStrategy(ctx, strategy)
	if err != nil {
		return statistics.StrategyResult{}, err
	}
	if err := result.Validate(); err != nil {
		return statistics.StrategyResult{}, fmt.Errorf("result validation failed: %w", err)
	}
	s.report(result.Trials, s.config.Trials)
	return result, nil
}

// RunAll executes Config.Trials trials per strategy, switch first, and
// returns both tallies.
func (s *Simulator) RunAll(ctx context.Context) (statistics.Results, error) {
	results := statistics.NewResults()
	for _, strategy := range montyhall.Strategies() {
		if err := s.validate(strategy); err != nil {
			return results, err
		}
	}

	s.total.Store(2 * s.config.Trials)
	s.completed.Store(0)

	for _, strategy := range montyhall.Strategies() {
		result, err := s.runStrategy(ctx, strategy)
		if err != nil {
			return results, err
		}
		*results.ByStrategy(strategy) = result
	}
	if err := results.Validate(); err != nil {
		return results, fmt.Errorf("result validation failed: %w", err)
	}
	s.report(results.TotalTrials(), s.total.Load())
	return results, nil
}

func (s *Simulator) validate(strategy montyhall.Strategy) error {
	if s.config.Trials == 0 {
		return ErrNoTrials
	}
	if !strategy.Valid() {
		return fmt.Errorf("invalid strategy %d", uint8(strategy))
	}
	if s.config.Workers < 0 {
		return fmt.Errorf("negative worker count %d", s.config.Workers)
	}
	return nil
}

func (s *Simulator) runStrategy(ctx context.Context, strategy montyhall.Strategy) (statistics.StrategyResult, error) {
	workers := s.workers()

	// Keep the progress ticker scoped to this strategy's trials.
	if s.config.Reporter != nil {
		tickCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go s.tickProgress(tickCtx)
	}

	s.logger().Debug("starting trials",
		"strategy", strategy, "trials", s.config.Trials,
		"seed", s.config.Seed, "workers", workers)

	if workers == 1 || s.config.Trials < parallelThreshold {
		return s.runSequential(ctx, strategy)
	}
	return s.runParallel(ctx, strategy, workers)
}

func (s *Simulator) runSequential(ctx context.Context, strategy montyhall.Strategy) (statistics.StrategyResult, error) {
	rng := randutil.New(s.config.Seed)
	result := statistics.StrategyResult{Strategy: strategy}
	wins, err := s.countWins(ctx, strategy, s.config.Trials, rng)
	if err != nil {
		return result, err
	}
	result.Trials = s.config.Trials
	result.Wins = wins
	return result, nil
}

func (s *Simulator) runParallel(ctx context.Context, strategy montyhall.Strategy, workers int) (statistics.StrategyResult, error) {
	trialsPerWorker := s.config.Trials / uint64(workers)
	remainder := s.config.Trials % uint64(workers)

	type tally struct {
		trials uint64
		wins   uint64
	}
	tallies := make(chan tally, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		workerTrials := trialsPerWorker
		if uint64(w) < remainder {
			workerTrials++ // Distribute remainder trials
		}
		if workerTrials == 0 {
			continue
		}

		// Independent RNG stream per worker to avoid contention and
		// correlated sequences.
		worker := w
		g.Go(func() error {
			rng := randutil.ForWorker(s.config.Seed, worker)
			wins, err := s.countWins(gctx, strategy, workerTrials, rng)
			if err != nil {
				return err
			}
			tallies <- tally{trials: workerTrials, wins: wins}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return statistics.StrategyResult{}, err
	}
	close(tallies)

	result := statistics.StrategyResult{Strategy: strategy}
	for t := range tallies {
		result.Trials += t.trials
		result.Wins += t.wins
	}
	return result, nil
}

// countWins is the hot loop: no allocation per trial, cancellation checked
// once per chunk.
func (s *Simulator) countWins(ctx context.Context, strategy montyhall.Strategy, trials uint64, rng *rand.Rand) (uint64, error) {
	chunkSize := s.config.ChunkSize
	if chunkSize == 0 {
		chunkSize = defaultChunkSize
	}

	var wins uint64
	for done := uint64(0); done < trials; {
		select {
		case <-ctx.Done():
			return wins, ctx.Err()
		default:
		}

		chunk := min(chunkSize, trials-done)
		for i := uint64(0); i < chunk; i++ {
			if montyhall.PlayTrial(strategy, rng) {
				wins++
			}
		}
		done += chunk
		s.completed.Add(chunk)
	}
	return wins, nil
}

func (s *Simulator) tickProgress(ctx context.Context) {
	ticker := s.clock().NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.report(s.completed.Load(), s.total.Load())
		}
	}
}

func (s *Simulator) report(completed, total uint64) {
	if s.config.Reporter != nil {
		s.config.Reporter.OnProgress(completed, total)
	}
}

func (s *Simulator) workers() int {
	if s.config.Workers > 0 {
		return s.config.Workers
	}
	return runtime.NumCPU()
}

func (s *Simulator) clock() quartz.Clock {
	if s.config.Clock != nil {
		return s.config.Clock
	}
	return quartz.NewReal()
}

func (s *Simulator) logger() *log.Logger {
	if s.config.Logger != nil {
		return s.config.Logger
	}
	return log.New(io.Discard)
}

// RunSimulation is a convenience function for running both strategies with
// basic parameters.
func RunSimulation(ctx context.Context, trials uint64, seed int64, workers int, logger *log.Logger) (statistics.Results, error) {
	sim := New(Config{
		Trials:  trials,
		Seed:    seed,
		Workers: workers,
		Logger:  logger,
	})
	return sim.RunAll(ctx)
}
