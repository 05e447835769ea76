package engine

import (
	"fmt"
	"time"
)

// Field is the set of live balloons. Removals and insertions made while
// towers resolve their attacks only touch the slice between iterations.
type Field struct {
	balloons []*Balloon
}

func (f *Field) Len() int { return len(f.balloons) }

// Live returns a snapshot of the live balloons.
func (f *Field) Live() []*Balloon {
	cp := make([]*Balloon, len(f.balloons))
	copy(cp, f.balloons)
	return cp
}

// Add appends balloons to the field.
func (f *Field) Add(bs ...*Balloon) {
	f.balloons = append(f.balloons, bs...)
}

// Remove drops b from the field, reporting whether it was there.
func (f *Field) Remove(b *Balloon) bool {
	for i, x := range f.balloons {
		if x == b {
			f.balloons = append(f.balloons[:i], f.balloons[i+1:]...)
			return true
		}
	}
	return false
}

// Replace swaps the whole live set, used after the movement sweep.
func (f *Field) Replace(bs []*Balloon) {
	f.balloons = bs
}

// Reward is money earned by an attack.
type Reward struct {
	BalloonID uint64
	Tier      Tier
	Amount    int
}

// Attack lets the tower fire once at the leading balloon in range. It is a
// silent no-op on an empty field, while cooling down, or without a target.
// The target's reward is captured before damage: a balloon that pops with no
// children pays it, a boss pays it on top of its splinters, and a linear
// balloon that downgrades pays nothing yet. An unknown tier drops the target
// without reward and returns the error.
func (t *Tower) Attack(field *Field, now time.Duration, speed float64) ([]Reward, error) {
	if field.Len() == 0 || !t.Ready(now, speed) {
		return nil, nil
	}
	target := t.FindTarget(field.balloons)
	if target == nil {
		return nil, nil
	}

	reward := Reward{BalloonID: target.ID, Tier: target.Tier, Amount: target.BaseReward}
	children, err := target.ApplyDamage(t.Damage)
	t.lastAttack = now
	t.hasAttacked = true
	if err != nil {
		field.Remove(target)
		return nil, fmt.Errorf("tower %d attack: %w", t.ID, err)
	}
	if !target.Popped() {
		return nil, nil
	}

	field.Remove(target)
	if len(children) > 0 {
		field.Add(children...)
		if target.Tier.IsBoss() {
			return []Reward{reward}, nil
		}
		return nil, nil
	}
	return []Reward{reward}, nil
}

// attackResult is one tower's contribution to a combat pass.
type attackResult struct {
	tower   *Tower
	target  *Balloon
	rewards []Reward
	spawned int
	err     error
}

// resolveCombat runs every tower once, in placement order, against the
// field. Each tower sees the field as the previous towers left it.
func resolveCombat(towers []*Tower, field *Field, now time.Duration, speed float64) []attackResult {
	results := make([]attackResult, 0, len(towers))
	for _, t := range towers {
		t.Aim(field.balloons)
		before := field.Len()
		target := t.FindTarget(field.balloons)
		rewards, err := t.Attack(field, now, speed)
		if err == nil && (target == nil || !target.Popped()) {
			continue
		}
		results = append(results, attackResult{
			tower:   t,
			target:  target,
			rewards: rewards,
			spawned: field.Len() - before + 1,
			err:     err,
		})
	}
	return results
}
