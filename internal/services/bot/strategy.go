package bot

import (
	"slices"

	"github.com/mcoot/gameofchests/internal/dependencies/random"
	"github.com/mcoot/gameofchests/internal/model"
)

// Strategy defines how a bot chooses baskets and coins
type Strategy interface {
	// ChooseBasket selects a basket to offer
	ChooseBasket(state *model.GameState) int
	// ChooseCoin selects one of the remaining coins to place
	ChooseCoin(state *model.GameState) int
}

// Strategy names
const (
	StrategyRandom = "random"
	StrategyGreedy = "greedy"
)

// DefaultStrategies returns every built-in strategy keyed by name
func DefaultStrategies(rnd random.Random) map[string]Strategy {
	return map[string]Strategy{
		StrategyRandom: NewRandomStrategy(rnd),
		StrategyGreedy: GreedyStrategy{},
	}
}

// RandomStrategy offers a random basket and places a random remaining coin
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// ChooseBasket returns a random basket index
func (s *RandomStrategy) ChooseBasket(state *model.GameState) int {
	return s.random.Intn(model.BasketCount)
}

// ChooseCoin returns a random remaining coin
func (s *RandomStrategy) ChooseCoin(state *model.GameState) int {
	if len(state.Remaining) == 0 {
		return 0
	}
	return random.Pick(s.random, state.Remaining)
}

// GreedyStrategy makes the locally best move. As presenter it offers the
// lightest basket; as placer it drops its largest coin into a basket that
// already leads and its smallest anywhere else.
type GreedyStrategy struct{}

// ChooseBasket returns the basket with the lowest sum, lowest index first
func (GreedyStrategy) ChooseBasket(state *model.GameState) int {
	best := 0
	for i := 1; i < model.BasketCount; i++ {
		if state.Sums[i] < state.Sums[best] {
			best = i
		}
	}
	return best
}

// ChooseCoin returns the largest remaining coin if the offered basket holds
// the highest sum, else the smallest
func (GreedyStrategy) ChooseCoin(state *model.GameState) int {
	if len(state.Remaining) == 0 {
		return 0
	}
	if !state.CurrentOffered.Valid {
		return slices.Min(state.Remaining)
	}
	offered := state.Sums[state.CurrentOffered.Index]
	if offered >= slices.Max(state.Sums[:]) {
		return slices.Max(state.Remaining)
	}
	return slices.Min(state.Remaining)
}
