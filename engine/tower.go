package engine

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TowerKind identifies a tower type. It is fixed at placement.
type TowerKind int

const (
	Basic TowerKind = iota
	Sniper
	RapidFire
	Heavy
)

var towerKindNames = [...]string{"basic", "sniper", "rapid", "heavy"}

func (k TowerKind) String() string {
	if k < 0 || int(k) >= len(towerKindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return towerKindNames[k]
}

// ParseTowerKind accepts the kind names plus the dart/tac/super aliases.
func ParseTowerKind(name string) (TowerKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "basic", "dart":
		return Basic, nil
	case "sniper":
		return Sniper, nil
	case "rapid", "rapidfire", "tac":
		return RapidFire, nil
	case "heavy", "super":
		return Heavy, nil
	}
	return 0, fmt.Errorf("%w: unknown tower kind %q", ErrBadConfig, name)
}

// TowerSpec holds the base stats and upgrade policy of a tower kind.
type TowerSpec struct {
	Cost             int
	Range            float64
	Damage           int
	AttacksPerSecond float64
	CooldownSeconds  float64
	UpgradeCost      int

	DamageStep  int
	RangeScale  float64
	RateScale   float64
	CostScale   float64
	RefundRatio float64
}

// TowerTable maps each kind to its spec.
type TowerTable map[TowerKind]TowerSpec

// DefaultTowerTable returns the stock tower stats. Every kind upgrades
// additively on damage.
func DefaultTowerTable() TowerTable {
	upgrade := func(s TowerSpec) TowerSpec {
		s.UpgradeCost = 100
		s.DamageStep = 1
		s.RangeScale = 1.1
		s.RateScale = 1.1
		s.CostScale = 1.5
		s.RefundRatio = 0.7
		return s
	}
	return TowerTable{
		Basic:     upgrade(TowerSpec{Cost: 100, Range: 100, Damage: 1, AttacksPerSecond: 1, CooldownSeconds: 1.0}),
		Sniper:    upgrade(TowerSpec{Cost: 200, Range: 100000, Damage: 2, AttacksPerSecond: 0.5, CooldownSeconds: 1.0}),
		RapidFire: upgrade(TowerSpec{Cost: 300, Range: 50, Damage: 1, AttacksPerSecond: 1.5, CooldownSeconds: 0.8}),
		Heavy:     upgrade(TowerSpec{Cost: 2000, Range: 150, Damage: 1, AttacksPerSecond: 2.5, CooldownSeconds: 0.2}),
	}
}

// Tower is a placed defender. It never moves.
type Tower struct {
	ID               int
	Kind             TowerKind
	Pos              Point
	Level            int
	Range            float64
	Damage           int
	AttacksPerSecond float64
	CooldownSeconds  float64
	UpgradeCost      int
	PurchaseCost     int
	Angle            float64

	spec        TowerSpec
	lastAttack  time.Duration
	hasAttacked bool
}

// NewTower builds a level 1 tower of spec at pos.
func NewTower(id int, kind TowerKind, spec TowerSpec, pos Point) *Tower {
	return &Tower{
		ID:               id,
		Kind:             kind,
		Pos:              pos,
		Level:            1,
		Range:            spec.Range,
		Damage:           spec.Damage,
		AttacksPerSecond: spec.AttacksPerSecond,
		CooldownSeconds:  spec.CooldownSeconds,
		UpgradeCost:      spec.UpgradeCost,
		PurchaseCost:     spec.Cost,
		spec:             spec,
	}
}

// InRange reports whether p lies within range, boundary included.
func (t *Tower) InRange(p Point) bool {
	return t.Pos.Dist(p) <= t.Range
}

// FindTarget returns the in-range balloon furthest along the path. Ties go to
// the first one in slice order.
func (t *Tower) FindTarget(balloons []*Balloon) *Balloon {
	var best *Balloon
	for _, b := range balloons {
		if !t.InRange(b.Pos) {
			continue
		}
		if best == nil || b.PathIndex > best.PathIndex {
			best = b
		}
	}
	return best
}

// AttackInterval is the minimum gap between two attacks at the given game
// speed. Both the fire rate and the kind's cooldown must have elapsed.
func (t *Tower) AttackInterval(speed float64) time.Duration {
	if speed <= 0 {
		speed = 1
	}
	interval := float64(time.Second) / (t.AttacksPerSecond * speed)
	cooldown := t.CooldownSeconds * float64(time.Second) / speed
	return time.Duration(math.Max(interval, cooldown))
}

// Ready reports whether the tower may fire at now.
func (t *Tower) Ready(now time.Duration, speed float64) bool {
	if !t.hasAttacked {
		return true
	}
	return now-t.lastAttack >= t.AttackInterval(speed)
}

// Aim points the tower at its current target, if any.
func (t *Tower) Aim(balloons []*Balloon) {
	target := t.FindTarget(balloons)
	if target == nil {
		return
	}
	dx := target.Pos.X - t.Pos.X
	dy := target.Pos.Y - t.Pos.Y
	t.Angle = math.Mod(math.Atan2(-dy, dx)*180/math.Pi+90+360, 360)
}

// Upgrade raises the level: damage grows additively, range, fire rate and the
// next upgrade's price multiplicatively. Levels are uncapped.
func (t *Tower) Upgrade() {
	t.Level++
	t.Damage += t.spec.DamageStep
	t.Range *= t.spec.RangeScale
	t.AttacksPerSecond *= t.spec.RateScale
	t.UpgradeCost = int(math.Round(float64(t.UpgradeCost) * t.spec.CostScale))
}

// SellValue is the refund for selling the tower: a share of the current
// upgrade price, not of the purchase price. The epsilon keeps products like
// 2570*0.7 from landing one below the whole number.
func (t *Tower) SellValue() int {
	return int(math.Floor(float64(t.UpgradeCost)*t.spec.RefundRatio + 1e-9))
}
