package main

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/montyhall/internal/montyhall"
	"github.com/lox/montyhall/internal/randutil"
)

// DoorsCmd plays a handful of seeded trials and prints every step, which
// makes it easy to eyeball that the host never opens the prize door or the
// player's pick.
type DoorsCmd struct {
	Trials   int    `short:"n" default:"10" help:"Number of trials to show"`
	Strategy string `short:"s" default:"switch" enum:"switch,stay" help:"Player strategy"`
	Seed     int64  `default:"1" help:"RNG seed"`
}

func (c *DoorsCmd) Run(logger *log.Logger) error {
	strategy, err := montyhall.ParseStrategy(c.Strategy)
	if err != nil {
		return err
	}

	logger.Debug("showing trials", "strategy", strategy, "trials", c.Trials, "seed", c.Seed)

	rng := randutil.New(c.Seed)
	wins := 0
	for i := 0; i < c.Trials; i++ {
		trial := montyhall.PlayTrialDetailed(strategy, rng)
		outcome := "loss"
		if trial.Won {
			outcome = "win"
			wins++
		}
		fmt.Printf("trial %2d: prize=%d pick=%d host opens %d final=%d → %s\n",
			i+1, trial.Prize, trial.Choice, trial.Revealed, trial.Final, outcome)
	}

	fmt.Printf("\n%d/%d wins with %s\n", wins, c.Trials, strategy)
	return nil
}
