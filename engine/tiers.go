package engine

import (
	"fmt"
	"strings"
)

// Tier identifies a balloon type. Red..Pink form the linear strength order;
// Moab is the boss and sits outside it.
type Tier int

const (
	Red Tier = iota
	Blue
	Green
	Yellow
	Pink
	Moab
)

var tierNames = [...]string{"red", "blue", "green", "yellow", "pink", "moab"}

func (t Tier) String() string {
	if t < 0 || int(t) >= len(tierNames) {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// IsBoss reports whether t bursts into splinters instead of downgrading.
func (t Tier) IsBoss() bool { return t == Moab }

// Valid reports whether t names a tier in the closed set.
func (t Tier) Valid() bool { return t >= Red && t <= Moab }

// Lower returns the next tier down the linear order. Red has nothing below
// it; the boss downgrades into the top linear tier.
func (t Tier) Lower() (Tier, bool) {
	switch {
	case t == Moab:
		return Pink, true
	case t > Red && t <= Pink:
		return t - 1, true
	default:
		return 0, false
	}
}

// ParseTier maps a wave-table name ("red", "moab", "boss", ...) to a Tier.
func ParseTier(name string) (Tier, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "boss" {
		return Moab, nil
	}
	for i, s := range tierNames {
		if s == n {
			return Tier(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTier, name)
}

// TierStats are the base stats a balloon of a tier spawns with.
type TierStats struct {
	Health     int
	Speed      float64
	Reward     int
	LeakDamage int
}

// BurstConfig describes what a boss leaves behind when it dies.
type BurstConfig struct {
	Count     int
	Child     Tier
	Spread    float64
	HoldTicks int
}

// TierTable is the read-only stat table shared by every balloon of a match.
type TierTable struct {
	stats map[Tier]TierStats
	Burst BurstConfig
}

// DefaultTierTable returns the stock balloon stats.
func DefaultTierTable() *TierTable {
	return &TierTable{
		stats: map[Tier]TierStats{
			Red:    {Health: 1, Speed: 1, Reward: 3, LeakDamage: 1},
			Blue:   {Health: 2, Speed: 1, Reward: 5, LeakDamage: 2},
			Green:  {Health: 3, Speed: 1, Reward: 7, LeakDamage: 3},
			Yellow: {Health: 4, Speed: 7, Reward: 10, LeakDamage: 5},
			Pink:   {Health: 5, Speed: 12, Reward: 15, LeakDamage: 10},
			Moab:   {Health: 50, Speed: 1, Reward: 100, LeakDamage: 50},
		},
		Burst: BurstConfig{Count: 40, Child: Green, Spread: 20, HoldTicks: 20},
	}
}

// NewTierTable builds a table from explicit stats. It is validated before use.
func NewTierTable(stats map[Tier]TierStats, burst BurstConfig) (*TierTable, error) {
	cp := make(map[Tier]TierStats, len(stats))
	for t, s := range stats {
		cp[t] = s
	}
	tt := &TierTable{stats: cp, Burst: burst}
	if err := tt.Validate(); err != nil {
		return nil, err
	}
	return tt, nil
}

// Stats looks up the base stats of t.
func (tt *TierTable) Stats(t Tier) (TierStats, error) {
	s, ok := tt.stats[t]
	if !ok {
		return TierStats{}, fmt.Errorf("%w: %s", ErrUnknownTier, t)
	}
	return s, nil
}

// Validate checks that every tier is present with positive health and that
// reward and leak damage strictly increase with tier index.
func (tt *TierTable) Validate() error {
	prev := TierStats{Reward: -1, LeakDamage: -1}
	for t := Red; t <= Moab; t++ {
		s, ok := tt.stats[t]
		if !ok {
			return fmt.Errorf("%w: missing stats for %s", ErrBadConfig, t)
		}
		if s.Health <= 0 {
			return fmt.Errorf("%w: %s health must be positive", ErrBadConfig, t)
		}
		if s.Reward <= prev.Reward || s.LeakDamage <= prev.LeakDamage {
			return fmt.Errorf("%w: %s reward/leak damage must exceed the tier below", ErrBadConfig, t)
		}
		prev = s
	}
	if tt.Burst.Count < 0 || !tt.Burst.Child.Valid() || tt.Burst.Child.IsBoss() {
		return fmt.Errorf("%w: bad boss burst", ErrBadConfig)
	}
	return nil
}
