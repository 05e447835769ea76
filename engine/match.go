package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Outcome is the win/loss state of a match.
type Outcome int

const (
	Playing Outcome = iota
	Won
	Lost
)

func (o Outcome) String() string {
	switch o {
	case Won:
		return "won"
	case Lost:
		return "lost"
	}
	return "playing"
}

// towerFootprint is the radius used to pick a tower under a cursor.
const towerFootprint = 15

// Stats are running counters for the report and HUD.
type Stats struct {
	Spawned int
	Popped  int
	Leaked  int
	Earned  int
	Dropped int
}

// Option customises a Match.
type Option func(*Match)

func WithConfig(cfg Config) Option { return func(m *Match) { m.cfg = cfg } }

func WithLogger(l *logrus.Logger) Option { return func(m *Match) { m.log = l } }

func WithTierTable(tt *TierTable) Option { return func(m *Match) { m.tiers = tt } }

func WithTowerTable(tt TowerTable) Option { return func(m *Match) { m.towerTable = tt } }

func WithPlacement(p PlacementValidator) Option { return func(m *Match) { m.placement = p } }

// WithLogRing attaches ring to the match logger so Logs can show recent lines.
func WithLogRing(ring *LogRing) Option { return func(m *Match) { m.ring = ring } }

// Match owns every piece of mutable game state and is driven by one
// goroutine: player actions and Tick must not run concurrently.
type Match struct {
	cfg        Config
	path       *Path
	waves      *WaveTable
	tiers      *TierTable
	towerTable TowerTable
	placement  PlacementValidator
	log        *logrus.Logger
	ring       *LogRing
	events     *Dispatcher

	factory   *BalloonFactory
	scheduler *Scheduler
	field     Field
	towers    []*Tower
	nextTower int

	clock       time.Duration
	stepAcc     time.Duration
	money       int
	lives       int
	round       int
	roundActive bool
	speed       int
	outcome     Outcome
	stats       Stats
}

// NewMatch builds a match over a loaded track and wave table.
func NewMatch(path *Path, waves *WaveTable, opts ...Option) (*Match, error) {
	if path == nil || path.Len() == 0 {
		return nil, fmt.Errorf("new match: %w", ErrEmptyPath)
	}
	if waves == nil || waves.Len() == 0 {
		return nil, fmt.Errorf("new match: %w", ErrEmptyWaveTable)
	}
	m := &Match{
		cfg:    DefaultConfig(),
		path:   path,
		waves:  waves,
		events: NewDispatcher(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new match: %w", err)
	}
	if m.tiers == nil {
		m.tiers = DefaultTierTable()
	}
	if err := m.tiers.Validate(); err != nil {
		return nil, fmt.Errorf("new match: %w", err)
	}
	if m.towerTable == nil {
		m.towerTable = DefaultTowerTable()
	}
	if m.placement == nil {
		m.placement = NewTrackPlacement(path)
	}
	if m.log == nil {
		m.log = logrus.StandardLogger()
	}
	if m.ring != nil {
		m.log.AddHook(m.ring)
	}
	m.reset()
	return m, nil
}

func (m *Match) reset() {
	m.factory = NewBalloonFactory(m.path, m.tiers, m.cfg.Seed)
	m.scheduler = NewScheduler(m.waves)
	m.field = Field{}
	m.towers = nil
	m.nextTower = 0
	m.clock = 0
	m.stepAcc = 0
	m.money = m.cfg.StartingMoney
	m.lives = m.cfg.StartingLives
	m.round = 1
	m.roundActive = false
	m.speed = 1
	m.outcome = Playing
	m.stats = Stats{}
	m.events.Drain()
}

// Restart throws the current match away and starts over with the same
// inputs. Subscribed listeners stay attached.
func (m *Match) Restart() {
	m.reset()
	m.log.Info("match restarted")
}

func (m *Match) entry() *logrus.Entry {
	return m.log.WithField("round", m.round)
}

// Subscribe registers l for events of type t.
func (m *Match) Subscribe(t EventType, l Listener) { m.events.Subscribe(t, l) }

// DrainEvents returns the events since the previous call.
func (m *Match) DrainEvents() []Event { return m.events.Drain() }

func (m *Match) Money() int           { return m.money }
func (m *Match) Lives() int           { return m.lives }
func (m *Match) Round() int           { return m.round }
func (m *Match) LastRound() int       { return m.waves.Len() }
func (m *Match) RoundActive() bool    { return m.roundActive }
func (m *Match) Speed() int           { return m.speed }
func (m *Match) Outcome() Outcome     { return m.outcome }
func (m *Match) Clock() time.Duration { return m.clock }
func (m *Match) Stats() Stats         { return m.stats }
func (m *Match) Path() *Path          { return m.path }

// Balloons returns the live balloons. The slice is a copy; the balloons are not.
func (m *Match) Balloons() []*Balloon { return m.field.Live() }

// Towers returns the placed towers in placement order.
func (m *Match) Towers() []*Tower { return append([]*Tower(nil), m.towers...) }

// Logs returns the recent log lines kept by the attached LogRing.
func (m *Match) Logs() []string {
	if m.ring == nil {
		return nil
	}
	return m.ring.Lines()
}

// TowerSpec returns the stats a new tower of kind would get.
func (m *Match) TowerSpec(kind TowerKind) (TowerSpec, bool) {
	s, ok := m.towerTable[kind]
	return s, ok
}

// StartRound begins the current round. It fails while a round is running or
// once the match is over; asking past the last round ends the match as won.
func (m *Match) StartRound() bool {
	if m.outcome != Playing || m.roundActive {
		return false
	}
	if err := m.scheduler.PrepareRound(m.round); err != nil {
		if errors.Is(err, ErrNoMoreRounds) {
			m.finish(Won)
		}
		return false
	}
	m.roundActive = true
	m.entry().WithField("balloons", m.scheduler.Pending()).Info("round started")
	m.events.Dispatch(Event{Type: RoundStarted, Round: m.round, Amount: m.scheduler.Pending()})
	return true
}

// ToggleSpeed flips between 1x and 2x and returns the new multiplier.
func (m *Match) ToggleSpeed() int {
	if m.speed == 1 {
		m.speed = 2
	} else {
		m.speed = 1
	}
	m.entry().Debugf("speed set to %dx", m.speed)
	return m.speed
}

// PlaceTower buys a tower of kind at pos. It fails without side effects when
// money is short or the placement rules reject pos.
func (m *Match) PlaceTower(kind TowerKind, pos Point) (*Tower, bool) {
	if m.outcome != Playing {
		return nil, false
	}
	spec, ok := m.towerTable[kind]
	if !ok {
		m.entry().Warnf("unknown tower kind %s", kind)
		return nil, false
	}
	log := m.entry().WithField("kind", kind)
	if m.money < spec.Cost {
		log.Warnf("cannot afford %s tower (%d < %d)", kind, m.money, spec.Cost)
		return nil, false
	}
	if !m.placement.ValidPlacement(pos, m.towers) {
		log.Warnf("cannot place %s tower at (%.0f,%.0f)", kind, pos.X, pos.Y)
		return nil, false
	}
	m.nextTower++
	t := NewTower(m.nextTower, kind, spec, pos)
	m.towers = append(m.towers, t)
	m.money -= spec.Cost
	log.WithField("tower", t.ID).Infof("placed %s tower for %d", kind, spec.Cost)
	m.events.Dispatch(Event{Type: TowerPlaced, TowerID: t.ID, Kind: kind, Amount: spec.Cost, Pos: pos})
	return t, true
}

// Tower looks a tower up by id.
func (m *Match) Tower(id int) (*Tower, bool) {
	for _, t := range m.towers {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// TowerAt returns the tower whose footprint covers p.
func (m *Match) TowerAt(p Point) (*Tower, bool) {
	for _, t := range m.towers {
		if t.Pos.Dist(p) <= towerFootprint {
			return t, true
		}
	}
	return nil, false
}

// UpgradeTower pays the tower's upgrade price and upgrades it.
func (m *Match) UpgradeTower(id int) bool {
	t, ok := m.Tower(id)
	if !ok || m.outcome != Playing {
		return false
	}
	log := m.entry().WithField("tower", id)
	cost := t.UpgradeCost
	if m.money < cost {
		log.Warnf("cannot afford upgrade (%d < %d)", m.money, cost)
		return false
	}
	m.money -= cost
	t.Upgrade()
	log.Infof("upgraded %s tower to level %d for %d", t.Kind, t.Level, cost)
	m.events.Dispatch(Event{Type: TowerUpgraded, TowerID: id, Kind: t.Kind, Amount: cost, Pos: t.Pos})
	return true
}

// SellTower removes the tower and refunds its sell value.
func (m *Match) SellTower(id int) (int, bool) {
	if m.outcome != Playing {
		return 0, false
	}
	for i, t := range m.towers {
		if t.ID != id {
			continue
		}
		refund := t.SellValue()
		m.towers = append(m.towers[:i], m.towers[i+1:]...)
		m.money += refund
		m.entry().WithField("tower", id).Infof("sold %s tower for %d", t.Kind, refund)
		m.events.Dispatch(Event{Type: TowerSold, TowerID: id, Kind: t.Kind, Amount: refund, Pos: t.Pos})
		return refund, true
	}
	return 0, false
}

// Tick advances the match by delta of wall-clock time: spawn, let every
// tower fire, move balloons, then settle the round and the outcome. Towers
// resolve before movement, so a balloon popped this tick cannot also leak.
func (m *Match) Tick(delta time.Duration) {
	if m.outcome != Playing || delta < 0 {
		return
	}
	m.clock += delta
	speed := float64(m.speed)

	if m.roundActive {
		if tier, ok := m.scheduler.Next(m.clock, speed); ok {
			m.spawn(tier)
		}
	}

	for _, res := range resolveCombat(m.towers, &m.field, m.clock, speed) {
		m.settleAttack(res)
	}

	m.stepAcc += time.Duration(float64(delta) * speed)
	steps := int(m.stepAcc / m.cfg.Step)
	m.stepAcc -= time.Duration(steps) * m.cfg.Step
	m.moveBalloons(steps)

	if m.lives <= 0 {
		m.finish(Lost)
		return
	}
	if m.roundActive && m.scheduler.Complete(m.field.Len()) {
		m.completeRound()
	}
}

func (m *Match) spawn(tier Tier) {
	b, err := m.factory.Spawn(tier)
	if err != nil {
		m.stats.Dropped++
		m.invariant(err)
		return
	}
	m.field.Add(b)
	m.stats.Spawned++
	m.events.Dispatch(Event{Type: BalloonSpawned, Tier: tier, Round: m.round, Pos: b.Pos})
}

func (m *Match) settleAttack(res attackResult) {
	if res.err != nil {
		m.stats.Dropped++
		m.invariant(res.err)
		return
	}
	if res.target == nil || !res.target.Popped() {
		return
	}
	amount := 0
	for _, r := range res.rewards {
		amount += r.Amount
	}
	m.money += amount
	m.stats.Earned += amount
	m.stats.Popped++
	m.entry().WithFields(logrus.Fields{
		"tower": res.tower.ID,
		"tier":  res.target.Tier,
	}).Debugf("popped %s into %d, reward %d", res.target.Tier, res.spawned, amount)
	m.events.Dispatch(Event{
		Type:    BalloonPopped,
		Tier:    res.target.Tier,
		TowerID: res.tower.ID,
		Kind:    res.tower.Kind,
		Round:   m.round,
		Amount:  amount,
		Pos:     res.target.Pos,
	})
}

// moveBalloons sweeps the field once: leaked balloons cost lives, stray
// popped balloons pay out, the rest survive into the new field.
func (m *Match) moveBalloons(steps int) {
	live := m.field.Live()
	remaining := live[:0]
	for _, b := range live {
		if b.Advance(steps) {
			m.lives -= b.LeakDamage
			m.stats.Leaked++
			m.entry().WithField("tier", b.Tier).Debugf("%s leaked for %d", b.Tier, b.LeakDamage)
			m.events.Dispatch(Event{Type: BalloonLeaked, Tier: b.Tier, Round: m.round, Amount: b.LeakDamage, Pos: b.Pos})
			continue
		}
		if b.Popped() {
			m.money += b.BaseReward
			m.stats.Earned += b.BaseReward
			m.stats.Popped++
			m.events.Dispatch(Event{Type: BalloonPopped, Tier: b.Tier, Round: m.round, Amount: b.BaseReward, Pos: b.Pos})
			continue
		}
		remaining = append(remaining, b)
	}
	m.field.Replace(remaining)
}

func (m *Match) completeRound() {
	finished := m.round
	bonus := m.cfg.RoundBonus * finished
	m.round++
	m.money += bonus
	m.roundActive = false
	m.log.WithField("round", finished).Infof("round complete, bonus %d", bonus)
	m.events.Dispatch(Event{Type: RoundCompleted, Round: finished, Amount: bonus})
	if m.round > m.waves.Len() {
		m.finish(Won)
	}
}

func (m *Match) finish(o Outcome) {
	if m.outcome != Playing {
		return
	}
	m.outcome = o
	m.roundActive = false
	ev := GameWon
	if o == Lost {
		ev = GameLost
	}
	m.entry().Infof("game %s", o)
	m.entry().Debug(m.Report())
	m.events.Dispatch(Event{Type: ev, Round: m.round})
}

// invariant handles a broken internal invariant: fatal in strict mode,
// otherwise logged while the match keeps running.
func (m *Match) invariant(err error) {
	if m.cfg.Strict {
		panic(err)
	}
	m.entry().WithError(err).Error("dropped balloon")
}
