// Package montyhall implements a single trial of the Monty Hall game:
// a prize behind one of three doors, a player's blind pick, the host's
// reveal of a goat door, and a final choice made by a fixed strategy.
package montyhall

import (
	"fmt"
	rand "math/rand/v2"
	"strings"
)

// NumDoors is the number of doors in play.
const NumDoors = 3

// Door identifies one of the three doors (0, 1 or 2).
type Door uint8

// Strategy is the player's fixed policy applied after the host's reveal.
type Strategy uint8

const (
	// Stay keeps the initial choice.
	Stay Strategy = iota
	// Switch takes the remaining unrevealed door.
	Switch
)

// String returns the lowercase name of the strategy.
func (s Strategy) String() string {
	switch s {
	case Stay:
		return "stay"
	case Switch:
		return "switch"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	return s == Stay || s == Switch
}

// ParseStrategy converts a name like "stay" or "switch" to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "stay", "keep":
		return Stay, nil
	case "switch":
		return Switch, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q (want stay or switch)", name)
	}
}

// Strategies returns both strategies in reporting order.
func Strategies() []Strategy {
	return []Strategy{Switch, Stay}
}

// Trial records every door of one complete game.
type Trial struct {
	Prize    Door
	Choice   Door
	Revealed Door
	Final    Door
	Won      bool
}

// PlayTrial plays one game under the given strategy and reports whether the
// player's final choice matched the prize door. It performs no heap
// allocation; rng is consumed for the prize door, the initial choice, and
// (only when the player picked the prize) the host's coin flip.
func PlayTrial(strategy Strategy, rng *rand.Rand) bool {
	return play(strategy, rng).Won
}

// PlayTrialDetailed plays one game and returns every door involved.
// Intended for invariant checks and step-by-step inspection, not the hot loop.
func PlayTrialDetailed(strategy Strategy, rng *rand.Rand) Trial {
	return play(strategy, rng)
}

func play(strategy Strategy, rng *rand.Rand) Trial {
	prize := Door(rng.IntN(NumDoors))
	choice := Door(rng.IntN(NumDoors))

	// The host opens a door that is neither the prize nor the player's pick.
	// When the player picked the prize both other doors qualify and the host
	// chooses between them uniformly; otherwise the reveal is forced. The
	// three door identifiers always sum to 3, which gives the forced door
	// without a search.
	var revealed Door
	if choice == prize {
		revealed = (choice + 1 + Door(rng.IntN(2))) % NumDoors
	} else {
		revealed = 3 - prize - choice
	}

	final := choice
	if strategy == Switch {
		final = 3 - choice - revealed
	}

	return Trial{
		Prize:    prize,
		Choice:   choice,
		Revealed: revealed,
		Final:    final,
		Won:      final == prize,
	}
}
