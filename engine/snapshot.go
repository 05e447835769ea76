package engine

import (
	"fmt"
	"strings"
	"time"
)

// HUD is the numeric state a front-end shows around the board.
type HUD struct {
	Money       int
	Lives       int
	Round       int
	LastRound   int
	Speed       int
	RoundActive bool
	Pending     int
	Outcome     Outcome
	Clock       time.Duration
}

// BalloonView is what a renderer needs to draw one balloon.
type BalloonView struct {
	ID        uint64
	Tier      Tier
	Pos       Point
	Offset    Offset
	Health    int
	PathIndex int
	Frozen    bool
}

// TowerView is what a renderer needs to draw one tower.
type TowerView struct {
	ID          int
	Kind        TowerKind
	Pos         Point
	Level       int
	Range       float64
	Damage      int
	Angle       float64
	UpgradeCost int
	SellValue   int
}

// Snapshot is a copy of the match state; holding one never races with Tick.
type Snapshot struct {
	HUD      HUD
	Balloons []BalloonView
	Towers   []TowerView
	Stats    Stats
}

// Snapshot copies the current state for rendering.
func (m *Match) Snapshot() Snapshot {
	s := Snapshot{
		HUD: HUD{
			Money:       m.money,
			Lives:       m.lives,
			Round:       m.round,
			LastRound:   m.waves.Len(),
			Speed:       m.speed,
			RoundActive: m.roundActive,
			Pending:     m.scheduler.Pending(),
			Outcome:     m.outcome,
			Clock:       m.clock,
		},
		Balloons: make([]BalloonView, 0, m.field.Len()),
		Towers:   make([]TowerView, 0, len(m.towers)),
		Stats:    m.stats,
	}
	for _, b := range m.field.balloons {
		s.Balloons = append(s.Balloons, BalloonView{
			ID:        b.ID,
			Tier:      b.Tier,
			Pos:       b.Pos,
			Offset:    b.RenderOffset,
			Health:    b.Health,
			PathIndex: b.PathIndex,
			Frozen:    b.FrozenTicks > 0,
		})
	}
	for _, t := range m.towers {
		s.Towers = append(s.Towers, TowerView{
			ID:          t.ID,
			Kind:        t.Kind,
			Pos:         t.Pos,
			Level:       t.Level,
			Range:       t.Range,
			Damage:      t.Damage,
			Angle:       t.Angle,
			UpgradeCost: t.UpgradeCost,
			SellValue:   t.SellValue(),
		})
	}
	return s
}

// Report is a plain-text summary of the match, for logs and the clipboard.
func (m *Match) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Balloon TD (%s) ===\n", m.outcome)
	fmt.Fprintf(&b, "Round: %d/%d  Lives: %d  Money: %d\n", m.round, m.waves.Len(), m.lives, m.money)
	fmt.Fprintf(&b, "Spawned: %d  Popped: %d  Leaked: %d  Earned: %d\n",
		m.stats.Spawned, m.stats.Popped, m.stats.Leaked, m.stats.Earned)
	if m.stats.Dropped > 0 {
		fmt.Fprintf(&b, "Dropped (invariant errors): %d\n", m.stats.Dropped)
	}
	counts := make(map[TowerKind]int)
	for _, t := range m.towers {
		counts[t.Kind]++
	}
	fmt.Fprintf(&b, "Towers: %d (basic %d, sniper %d, rapid %d, heavy %d)\n",
		len(m.towers), counts[Basic], counts[Sniper], counts[RapidFire], counts[Heavy])
	for _, t := range m.towers {
		fmt.Fprintf(&b, "  #%d %s L%d at (%.0f,%.0f) dmg %d range %.0f\n",
			t.ID, t.Kind, t.Level, t.Pos.X, t.Pos.Y, t.Damage, t.Range)
	}
	fmt.Fprintf(&b, "Game time: %s", m.clock.Truncate(time.Millisecond))
	return b.String()
}
