package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- damage and downgrade ---

func TestApplyDamage_BlueSurvivesThenPopsIntoRed(t *testing.T) {
	f := testFactory(t, 100)
	b, err := f.Spawn(Blue)
	require.NoError(t, err)
	b.PathIndex = 40
	b.Pos = Point{X: 40, Y: 300}

	children, err := b.ApplyDamage(1)
	require.NoError(t, err)
	assert.Empty(t, children)
	assert.Equal(t, 1, b.Health)
	assert.False(t, b.Popped())

	children, err = b.ApplyDamage(1)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Health)
	require.Len(t, children, 1)
	c := children[0]
	assert.Equal(t, Red, c.Tier)
	assert.Equal(t, 40, c.PathIndex)
	assert.Equal(t, b.Pos, c.Pos)
}

func TestApplyDamage_RedPopsWithoutChildren(t *testing.T) {
	b, err := testFactory(t, 10).Spawn(Red)
	require.NoError(t, err)
	children, err := b.ApplyDamage(1)
	require.NoError(t, err)
	assert.Empty(t, children)
	assert.True(t, b.Popped())
}

func TestApplyDamage_ChildrenInheritRewardAndLeak(t *testing.T) {
	b, err := testFactory(t, 10).Spawn(Pink)
	require.NoError(t, err)
	children, err := b.ApplyDamage(5)
	require.NoError(t, err)
	require.NotEmpty(t, children)
	for _, c := range children {
		assert.Equal(t, b.BaseReward, c.BaseReward)
		assert.Equal(t, b.LeakDamage, c.LeakDamage)
	}
}

func TestApplyDamage_OverkillCascades(t *testing.T) {
	b, err := testFactory(t, 10).Spawn(Pink)
	require.NoError(t, err)
	// overkill 3: yellow (4) absorbs it all
	children, err := b.ApplyDamage(8)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, Yellow, children[0].Tier)

	b, err = testFactory(t, 10).Spawn(Pink)
	require.NoError(t, err)
	// overkill 6: yellow (4), green (3)
	children, err = b.ApplyDamage(11)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, Yellow, children[0].Tier)
	assert.Equal(t, Green, children[1].Tier)
}

func TestApplyDamage_CascadeStopsAtRed(t *testing.T) {
	b, err := testFactory(t, 10).Spawn(Pink)
	require.NoError(t, err)
	children, err := b.ApplyDamage(1000)
	require.NoError(t, err)
	tiers := make([]Tier, len(children))
	for i, c := range children {
		tiers[i] = c.Tier
	}
	assert.Equal(t, []Tier{Yellow, Green, Blue, Red}, tiers)
	for _, c := range children {
		assert.Greater(t, c.Health, 0, "children spawn at full health")
	}
}

func TestApplyDamage_ChildTierAlwaysLower(t *testing.T) {
	for tier := Blue; tier <= Pink; tier++ {
		for dmg := 1; dmg <= 20; dmg++ {
			b, err := testFactory(t, 10).Spawn(tier)
			require.NoError(t, err)
			children, err := b.ApplyDamage(dmg)
			require.NoError(t, err)
			for _, c := range children {
				assert.Less(t, int(c.Tier), int(tier))
			}
		}
	}
}

func TestApplyDamage_UnknownTier(t *testing.T) {
	b, err := testFactory(t, 10).Spawn(Red)
	require.NoError(t, err)
	b.Tier = Tier(42)
	_, err = b.ApplyDamage(5)
	assert.ErrorIs(t, err, ErrUnknownTier)
}

// --- boss burst ---

func TestApplyDamage_BossBursts(t *testing.T) {
	f := testFactory(t, 100)
	boss, err := f.Spawn(Moab)
	require.NoError(t, err)
	boss.PathIndex = 10
	boss.Pos = Point{X: 10, Y: 300}

	children, err := boss.ApplyDamage(999)
	require.NoError(t, err)
	require.Len(t, children, 40)

	green, err := DefaultTierTable().Stats(Green)
	require.NoError(t, err)
	seen := map[Offset]bool{}
	for _, c := range children {
		assert.Equal(t, Green, c.Tier)
		assert.Equal(t, 10, c.PathIndex)
		assert.Greater(t, c.FrozenTicks, 0)
		assert.Equal(t, green.Reward, c.BaseReward)
		assert.False(t, seen[c.RenderOffset], "duplicate offset %v", c.RenderOffset)
		seen[c.RenderOffset] = true
		r := math.Hypot(float64(c.RenderOffset.DX), float64(c.RenderOffset.DY))
		assert.LessOrEqual(t, r, 20.0)
	}
}

func TestScatter_TerminatesWhenDiscIsFull(t *testing.T) {
	f := testFactory(t, 10)
	used := map[Offset]bool{}
	for i := 0; i < 30; i++ {
		off := f.scatter(1, used)
		assert.False(t, used[off])
		used[off] = true
	}
	assert.Len(t, used, 30)
}

// --- movement ---

func TestAdvance_MovesBySpeed(t *testing.T) {
	b, err := testFactory(t, 100).Spawn(Yellow)
	require.NoError(t, err)
	assert.False(t, b.Advance(2))
	assert.Equal(t, 14, b.PathIndex)
	assert.Equal(t, Point{X: 14, Y: 300}, b.Pos)
}

func TestAdvance_LeaksAtPathEnd(t *testing.T) {
	b, err := testFactory(t, 10).Spawn(Red)
	require.NoError(t, err)
	assert.False(t, b.Advance(9))
	assert.True(t, b.Advance(1))
}

func TestAdvance_FrozenHoldsPosition(t *testing.T) {
	b, err := testFactory(t, 100).Spawn(Green)
	require.NoError(t, err)
	b.FrozenTicks = 3
	assert.False(t, b.Advance(2))
	assert.Equal(t, 0, b.PathIndex)
	assert.Equal(t, 1, b.FrozenTicks)
	b.Advance(5)
	assert.Equal(t, 0, b.FrozenTicks)
	assert.Equal(t, 4, b.PathIndex)
	b.Advance(1)
	assert.Equal(t, 5, b.PathIndex)
}

func TestAdvance_FreezeEndsMidBatch(t *testing.T) {
	b, err := testFactory(t, 100).Spawn(Green)
	require.NoError(t, err)
	b.FrozenTicks = 1
	assert.False(t, b.Advance(3))
	assert.Equal(t, 0, b.FrozenTicks)
	assert.Equal(t, 2, b.PathIndex, "matches three single-tick calls")

	c, err := testFactory(t, 100).Spawn(Green)
	require.NoError(t, err)
	c.FrozenTicks = 1
	for i := 0; i < 3; i++ {
		c.Advance(1)
	}
	assert.Equal(t, b.PathIndex, c.PathIndex)
	assert.Equal(t, b.Pos, c.Pos)
}

func TestAdvance_FractionalSpeedNeverMoves(t *testing.T) {
	b, err := testFactory(t, 100).Spawn(Red)
	require.NoError(t, err)
	b.Speed = 0.5
	for i := 0; i < 10; i++ {
		b.Advance(1)
	}
	assert.Equal(t, 0, b.PathIndex)
}

func TestSpawn_UniqueIDs(t *testing.T) {
	f := testFactory(t, 10)
	a, err := f.Spawn(Red)
	require.NoError(t, err)
	b, err := f.Spawn(Red)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}
