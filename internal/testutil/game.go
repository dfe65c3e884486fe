package testutil

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thoas/go-funk"

	"github.com/mcoot/gameofchests/internal/model"
)

// AssertGameConsistent checks the cached fields of state against a fresh
// recomputation: sums match baskets, every coin is either remaining or
// placed exactly once, and turn matches the move log.
func AssertGameConsistent(t *testing.T, state *model.GameState) {
	t.Helper()

	placed := []int{}
	for i, basket := range state.Baskets {
		assert.Equal(t, funk.SumInt(basket), state.Sums[i], "sums[%d] out of step with basket %v", i, basket)
		placed = append(placed, basket...)
	}

	all := append(slices.Clone(state.Remaining), placed...)
	slices.Sort(all)
	want := make([]int, 0, state.CoinCount)
	for v := 1; v <= state.CoinCount; v++ {
		want = append(want, v)
	}
	assert.Equal(t, want, all, "coins lost or duplicated")

	assert.Equal(t, len(placed), state.Turn)
	assert.Len(t, state.Moves, state.Turn)
	assert.LessOrEqual(t, state.Turn, state.CoinCount)
	assert.Equal(t, state.Turn == state.CoinCount, state.Phase == model.PhaseFinished)
	switch state.Phase {
	case model.PhasePlacing:
		assert.True(t, state.CurrentOffered.Valid, "placing without an offered basket")
	case model.PhaseOffering, model.PhaseFinished:
		assert.False(t, state.CurrentOffered.Valid, "basket offered in phase %s", state.Phase)
	}
}

// AssertRolesExclusive checks no identity holds both roles
func AssertRolesExclusive(t *testing.T, room *model.Room) {
	t.Helper()
	if !room.Presenter.IsEmpty() {
		assert.NotEqual(t, room.Presenter.Occupant, room.Placer.Occupant, "identity holds both roles")
	}
}
