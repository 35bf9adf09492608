package monty

import (
	"fmt"
	"math"
	"strings"
)

// Strategy is the fixed policy applied to every simulated trial.
type Strategy string

const (
	// Always move to the other closed door after the reveal.
	StrategySwitch Strategy = "switch"
	// Always stay with the first pick.
	StrategyKeep Strategy = "keep"
)

// ParseStrategy accepts "switch" or "keep" in any case.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategySwitch:
		return StrategySwitch, nil
	case StrategyKeep:
		return StrategyKeep, nil
	}
	return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidInput, s)
}

func (s Strategy) valid() bool { return s == StrategySwitch || s == StrategyKeep }

// SimulationResult is the immutable record of one simulator invocation.
type SimulationResult struct {
	Trials        int      `json:"trials"`
	Strategy      Strategy `json:"strategy"`
	Wins          int      `json:"wins"`
	WinPercentage float64  `json:"win_percentage"` // one decimal place
}

// WinPercentage rounds wins/trials*100 to one decimal place.
func WinPercentage(wins, trials int) float64 {
	if trials <= 0 {
		return 0
	}
	return math.Round(float64(wins)*1000/float64(trials)) / 10
}

func validateRun(trials int, strategy Strategy) error {
	if trials < 1 {
		return fmt.Errorf("%w: trial count must be >= 1, got %d", ErrInvalidInput, trials)
	}
	if !strategy.valid() {
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidInput, strategy)
	}
	return nil
}

// Simulate runs trials abstract games under a fixed strategy.
// The reveal is skipped: switching wins iff the first pick missed the car,
// keeping wins iff it hit. If rng is nil the crypto source is used.
func Simulate(trials int, strategy Strategy, rng RandomSource) (SimulationResult, error) {
	if err := validateRun(trials, strategy); err != nil {
		return SimulationResult{}, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	wins := countWins(trials, strategy, rng)
	return SimulationResult{
		Trials:        trials,
		Strategy:      strategy,
		Wins:          wins,
		WinPercentage: WinPercentage(wins, trials),
	}, nil
}

func countWins(trials int, strategy Strategy, rng RandomSource) int {
	wins := 0
	for i := 0; i < trials; i++ {
		car := pickIndex(rng, NumDoors)
		pick := pickIndex(rng, NumDoors)
		if (strategy == StrategySwitch) == (pick != car) {
			wins++
		}
	}
	return wins
}

// SimulateExplicit plays every trial through a full Engine round, reveal
// included. It is slower than Simulate and exists to cross-check it.
func SimulateExplicit(trials int, strategy Strategy, rng RandomSource) (SimulationResult, error) {
	if err := validateRun(trials, strategy); err != nil {
		return SimulationResult{}, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	e := NewEngine(rng)
	wins := 0
	for i := 0; i < trials; i++ {
		if i > 0 {
			e.Reset()
		}
		if _, err := e.Pick(pickIndex(rng, NumDoors)); err != nil {
			return SimulationResult{}, err
		}
		var (
			r   Round
			err error
		)
		if strategy == StrategySwitch {
			r, err = e.Switch()
		} else {
			r, err = e.Keep()
		}
		if err != nil {
			return SimulationResult{}, err
		}
		if r.Won {
			wins++
		}
	}
	return SimulationResult{
		Trials:        trials,
		Strategy:      strategy,
		Wins:          wins,
		WinPercentage: WinPercentage(wins, trials),
	}, nil
}
