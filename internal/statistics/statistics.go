// Package statistics accumulates win/loss tallies per player strategy and
// derives the empirical win rate with its sampling error.
package statistics

import (
	"fmt"
	"math"

	"github.com/lox/montyhall/internal/montyhall"
)

// StrategyResult tracks the outcome counts for one strategy.
type StrategyResult struct {
	Strategy montyhall.Strategy
	Trials   uint64
	Wins     uint64
}

// AddOutcome incorporates a single trial outcome.
func (r *StrategyResult) AddOutcome(won bool) {
	r.Trials++
	if won {
		r.Wins++
	}
}

// Losses returns the number of losing trials.
func (r StrategyResult) Losses() uint64 {
	return r.Trials - r.Wins
}

// WinRate returns wins/trials, or NaN when no trials were run.
func (r StrategyResult) WinRate() float64 {
	if r.Trials == 0 {
		return math.NaN()
	}
	return float64(r.Wins) / float64(r.Trials)
}

// StdError returns the binomial standard error of the win rate estimate,
// sqrt(p*(1-p)/n). Zero trials yields NaN.
func (r StrategyResult) StdError() float64 {
	if r.Trials == 0 {
		return math.NaN()
	}
	p := r.WinRate()
	return math.Sqrt(p * (1 - p) / float64(r.Trials))
}

// ConfidenceInterval95 returns the 95% confidence interval for the win rate.
func (r StrategyResult) ConfidenceInterval95() (float64, float64) {
	p := r.WinRate()
	margin := 1.96 * r.StdError() // 95% confidence
	return p - margin, p + margin
}

// Merge folds another result for the same strategy into this one.
func (r *StrategyResult) Merge(other StrategyResult) error {
	if other.Strategy != r.Strategy {
		return fmt.Errorf("cannot merge %s results into %s", other.Strategy, r.Strategy)
	}
	r.Trials += other.Trials
	r.Wins += other.Wins
	return nil
}

// Validate checks internal consistency before results are reported.
func (r StrategyResult) Validate() error {
	if !r.Strategy.Valid() {
		return fmt.Errorf("invalid strategy %d", uint8(r.Strategy))
	}
	if r.Wins > r.Trials {
		return fmt.Errorf("%s: %d wins exceed %d trials", r.Strategy, r.Wins, r.Trials)
	}
	return nil
}

// Results holds the outcome counts for both strategies of a run.
type Results struct {
	Switched StrategyResult
	Stayed   StrategyResult
}

// NewResults returns an empty Results with the strategy tags set.
func NewResults() Results {
	return Results{
		Switched: StrategyResult{Strategy: montyhall.Switch},
		Stayed:   StrategyResult{Strategy: montyhall.Stay},
	}
}

// ByStrategy returns a pointer to the tally for the given strategy.
func (rs *Results) ByStrategy(s montyhall.Strategy) *StrategyResult {
	if s == montyhall.Switch {
		return &rs.Switched
	}
	return &rs.Stayed
}

// Merge folds another Results into this one.
func (rs *Results) Merge(other Results) error {
	if err := rs.Switched.Merge(other.Switched); err != nil {
		return err
	}
	return rs.Stayed.Merge(other.Stayed)
}

// Validate checks both tallies.
func (rs Results) Validate() error {
	if err := rs.Switched.Validate(); err != nil {
		return err
	}
	return rs.Stayed.Validate()
}

// TotalTrials returns the combined trial count across both strategies.
func (rs Results) TotalTrials() uint64 {
	return rs.Switched.Trials + rs.Stayed.Trials
}
