package engine

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Offset is a render-only displacement in whole pixels.
type Offset struct {
	DX int
	DY int
}

// Balloon is one live enemy. Tier, BaseReward, LeakDamage and RenderOffset
// never change after spawn.
type Balloon struct {
	ID           uint64
	Tier         Tier
	Health       int
	PathIndex    int
	Pos          Point
	Speed        float64
	BaseReward   int
	LeakDamage   int
	RenderOffset Offset
	FrozenTicks  int

	factory *BalloonFactory
}

// Popped reports whether the balloon's health has reached zero.
func (b *Balloon) Popped() bool { return b.Health <= 0 }

// Advance moves the balloon floor(speed) waypoints per elapsed tick and
// reports whether it ran off the end of the path. A speed below 1 never moves.
// Frozen ticks are spent first; the rest of the batch still moves.
func (b *Balloon) Advance(ticks int) bool {
	if ticks <= 0 {
		return false
	}
	if b.FrozenTicks > 0 {
		hold := min(b.FrozenTicks, ticks)
		b.FrozenTicks -= hold
		ticks -= hold
		if ticks == 0 {
			return false
		}
	}
	path := b.factory.path
	b.PathIndex += int(b.Speed) * ticks
	if b.PathIndex >= path.Len() {
		return true
	}
	b.Pos = path.At(b.PathIndex)
	return false
}

// ApplyDamage subtracts amount from health. A survivor returns no children
// and stays on the field. A popped linear tier cascades the overkill down
// through lower tiers, one child per tier, until the overkill is spent or Red
// is reached. A popped boss bursts into splinters.
func (b *Balloon) ApplyDamage(amount int) ([]*Balloon, error) {
	b.Health -= amount
	if b.Health > 0 {
		return nil, nil
	}
	if !b.Tier.Valid() {
		return nil, fmt.Errorf("apply damage to balloon %d: %w: %s", b.ID, ErrUnknownTier, b.Tier)
	}
	if b.Tier.IsBoss() {
		return b.factory.burst(b)
	}

	overkill := -b.Health
	var children []*Balloon
	cur := b.Tier
	for {
		lower, ok := cur.Lower()
		if !ok {
			break
		}
		child, err := b.factory.downgrade(b, lower)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
		overkill -= child.Health
		if overkill <= 0 {
			break
		}
		cur = lower
	}
	return children, nil
}

// BalloonFactory creates balloons for one match: fresh spawns at the path
// start, downgrade children and boss splinters.
type BalloonFactory struct {
	path   *Path
	tiers  *TierTable
	rng    *rand.Rand
	nextID uint64
}

// NewBalloonFactory seeds the splinter scatter with seed; 0 uses the clock.
func NewBalloonFactory(path *Path, tiers *TierTable, seed int64) *BalloonFactory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &BalloonFactory{
		path:  path,
		tiers: tiers,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Spawn creates a fresh balloon of tier t at the start of the path.
func (f *BalloonFactory) Spawn(t Tier) (*Balloon, error) {
	s, err := f.tiers.Stats(t)
	if err != nil {
		return nil, err
	}
	f.nextID++
	return &Balloon{
		ID:         f.nextID,
		Tier:       t,
		Health:     s.Health,
		PathIndex:  0,
		Pos:        f.path.Start(),
		Speed:      s.Speed,
		BaseReward: s.Reward,
		LeakDamage: s.LeakDamage,
		factory:    f,
	}, nil
}

// downgrade spawns a lower-tier child in the parent's place. The child keeps
// the parent's reward and leak damage.
func (f *BalloonFactory) downgrade(parent *Balloon, t Tier) (*Balloon, error) {
	child, err := f.Spawn(t)
	if err != nil {
		return nil, err
	}
	child.PathIndex = parent.PathIndex
	child.Pos = parent.Pos
	child.BaseReward = parent.BaseReward
	child.LeakDamage = parent.LeakDamage
	return child, nil
}

// burst scatters the boss's splinters around its death position. No two
// splinters of one burst share an integer offset. Splinters keep their own
// tier's reward.
func (f *BalloonFactory) burst(boss *Balloon) ([]*Balloon, error) {
	cfg := f.tiers.Burst
	used := make(map[Offset]bool, cfg.Count)
	children := make([]*Balloon, 0, cfg.Count)
	for len(children) < cfg.Count {
		child, err := f.Spawn(cfg.Child)
		if err != nil {
			return nil, err
		}
		off := f.scatter(cfg.Spread, used)
		used[off] = true
		child.PathIndex = boss.PathIndex
		child.Pos = boss.Pos
		child.RenderOffset = off
		child.FrozenTicks = cfg.HoldTicks
		children = append(children, child)
	}
	return children, nil
}

// scatter draws a uniform angle and radius in [0, spread] and rejects offsets
// that round onto one already used or land outside the spread. Once the disc
// is exhausted it walks outwards so the loop always terminates.
func (f *BalloonFactory) scatter(spread float64, used map[Offset]bool) Offset {
	for attempt := 0; attempt < 1000; attempt++ {
		angle := f.rng.Float64() * 2 * math.Pi
		r := f.rng.Float64() * spread
		off := Offset{
			DX: int(math.Round(r * math.Cos(angle))),
			DY: int(math.Round(r * math.Sin(angle))),
		}
		if !used[off] && math.Hypot(float64(off.DX), float64(off.DY)) <= spread {
			return off
		}
	}
	for ring := 0; ; ring++ {
		for dx := -ring; dx <= ring; dx++ {
			for dy := -ring; dy <= ring; dy++ {
				off := Offset{DX: dx, DY: dy}
				if !used[off] {
					return off
				}
			}
		}
	}
}
