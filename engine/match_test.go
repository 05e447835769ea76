package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatch(t *testing.T, waves *WaveTable, tweak func(*Config), opts ...Option) *Match {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 7
	if tweak != nil {
		tweak(&cfg)
	}
	opts = append([]Option{
		WithConfig(cfg),
		WithLogger(quietLogger()),
		WithPlacement(allowAll{}),
	}, opts...)
	m, err := NewMatch(linePath(t, 100), waves, opts...)
	require.NoError(t, err)
	return m
}

func wavesOf(t *testing.T, rounds ...RoundConfig) *WaveTable {
	t.Helper()
	wt, err := NewWaveTable(rounds)
	require.NoError(t, err)
	return wt
}

func redRound(n int, delay time.Duration) RoundConfig {
	return RoundConfig{Balloons: []TierCount{{Red, n}}, SpawnDelay: delay}
}

func eventTypes(evs []Event) []EventType {
	out := make([]EventType, len(evs))
	for i, e := range evs {
		out[i] = e.Type
	}
	return out
}

// --- construction ---

func TestNewMatch_RejectsEmptyInputs(t *testing.T) {
	_, err := NewMatch(nil, wavesOf(t, redRound(1, 0)))
	assert.ErrorIs(t, err, ErrEmptyPath)
	_, err = NewMatch(linePath(t, 5), nil)
	assert.ErrorIs(t, err, ErrEmptyWaveTable)
	bad := DefaultConfig()
	bad.StartingLives = 0
	_, err = NewMatch(linePath(t, 5), wavesOf(t, redRound(1, 0)), WithConfig(bad))
	assert.ErrorIs(t, err, ErrBadConfig)
}

func TestNewMatch_StartingState(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, redRound(1, 0)), nil)
	assert.Equal(t, 200, m.Money())
	assert.Equal(t, 100, m.Lives())
	assert.Equal(t, 1, m.Round())
	assert.Equal(t, 1, m.Speed())
	assert.False(t, m.RoundActive())
	assert.Equal(t, Playing, m.Outcome())
}

// --- leaks and outcome ---

func TestTick_LeakCostsLivesNotMoney(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, redRound(2, 10*time.Second)), nil)
	require.True(t, m.StartRound())
	m.Tick(0)
	require.Len(t, m.Balloons(), 1)

	m.Tick(100 * m.cfg.Step)
	assert.Equal(t, 99, m.Lives())
	assert.Equal(t, 200, m.Money())
	assert.Empty(t, m.Balloons())
	assert.True(t, m.RoundActive(), "one balloon still queued")
	assert.Equal(t, 1, m.Stats().Leaked)
}

func TestTick_LivesExhaustedLoses(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, redRound(1, 0)), func(c *Config) { c.StartingLives = 1 })
	require.True(t, m.StartRound())
	m.Tick(0)
	m.Tick(200 * m.cfg.Step)
	assert.Equal(t, Lost, m.Outcome())
	assert.Contains(t, eventTypes(m.DrainEvents()), GameLost)
	assert.False(t, m.StartRound())

	clock := m.Clock()
	m.Tick(time.Second)
	assert.Equal(t, clock, m.Clock(), "a finished match does not tick")
}

func TestTick_PopPaysAndFinishesRound(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, redRound(1, 0)), nil)
	_, ok := m.PlaceTower(Basic, Point{X: 50, Y: 320})
	require.True(t, ok)
	m.DrainEvents()

	require.True(t, m.StartRound())
	m.Tick(0)
	// 200 - 100 tower + 3 red + 20 round bonus
	assert.Equal(t, 123, m.Money())
	assert.Equal(t, 2, m.Round())
	assert.Equal(t, Won, m.Outcome())
	assert.Equal(t, []EventType{RoundStarted, BalloonSpawned, BalloonPopped, RoundCompleted, GameWon},
		eventTypes(m.DrainEvents()))
}

func TestTick_RoundBonusScalesWithRound(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, redRound(1, 0), redRound(1, 0), redRound(1, 0)), nil)
	_, ok := m.PlaceTower(Basic, Point{X: 50, Y: 320})
	require.True(t, ok)

	require.True(t, m.StartRound())
	m.Tick(0)
	assert.Equal(t, 100+3+20, m.Money())
	require.True(t, m.StartRound())
	m.Tick(time.Second)
	assert.Equal(t, 100+3+20+3+40, m.Money())
	assert.Equal(t, 3, m.Round())
	assert.Equal(t, Playing, m.Outcome())
}

func TestTick_DowngradeStaysOnField(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, RoundConfig{Balloons: []TierCount{{Blue, 1}}}), nil)
	_, ok := m.PlaceTower(Sniper, Point{X: 50, Y: 320})
	require.True(t, ok)
	require.True(t, m.StartRound())
	m.Tick(0)

	bs := m.Balloons()
	require.Len(t, bs, 1)
	assert.Equal(t, Red, bs[0].Tier)
	assert.Equal(t, 0, m.Money(), "downgrade pays nothing")
	assert.Equal(t, 1, m.Stats().Popped)
	assert.True(t, m.RoundActive())
}

func TestStartRound_OnlyWhenIdle(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, redRound(3, time.Second)), nil)
	assert.True(t, m.StartRound())
	assert.False(t, m.StartRound())
}

func TestStartRound_PastTableWins(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, redRound(1, 0)), nil)
	m.round = 2
	assert.False(t, m.StartRound())
	assert.Equal(t, Won, m.Outcome())
}

// --- player intents ---

func TestPlaceTower_InsufficientMoney(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, redRound(1, 0)), nil)
	tw, ok := m.PlaceTower(Heavy, Point{X: 400, Y: 100})
	assert.False(t, ok)
	assert.Nil(t, tw)
	assert.Equal(t, 200, m.Money())
	assert.Empty(t, m.Towers())
	assert.Empty(t, m.DrainEvents())
}

func TestPlaceTower_TrackPlacement(t *testing.T) {
	m, err := NewMatch(linePath(t, 100), wavesOf(t, redRound(1, 0)), WithLogger(quietLogger()))
	require.NoError(t, err)

	_, ok := m.PlaceTower(Basic, Point{X: 50, Y: 305})
	assert.False(t, ok, "too close to the track")
	_, ok = m.PlaceTower(Basic, Point{X: 50, Y: 200})
	assert.True(t, ok)
	_, ok = m.PlaceTower(Basic, Point{X: 60, Y: 200})
	assert.False(t, ok, "too close to another tower")
	_, ok = m.PlaceTower(Basic, Point{X: 900, Y: 200})
	assert.False(t, ok, "off the board")
	assert.Equal(t, 100, m.Money())
}

func TestUpgradeAndSell(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, redRound(1, 0)), nil)
	tw, ok := m.PlaceTower(Basic, Point{X: 400, Y: 100})
	require.True(t, ok)

	assert.True(t, m.UpgradeTower(tw.ID))
	assert.Equal(t, 0, m.Money())
	assert.Equal(t, 2, tw.Level)
	assert.False(t, m.UpgradeTower(tw.ID), "150 > 0")
	assert.Equal(t, 2, tw.Level)

	refund, ok := m.SellTower(tw.ID)
	assert.True(t, ok)
	assert.Equal(t, 105, refund)
	assert.Equal(t, 105, m.Money())
	assert.Empty(t, m.Towers())

	_, ok = m.SellTower(tw.ID)
	assert.False(t, ok)
	assert.False(t, m.UpgradeTower(tw.ID))
}

func TestSellTower_RefusedAfterGameOver(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, redRound(1, 0)), nil)
	tw, ok := m.PlaceTower(Basic, Point{X: 400, Y: 100})
	require.True(t, ok)
	m.outcome = Lost

	refund, ok := m.SellTower(tw.ID)
	assert.False(t, ok)
	assert.Zero(t, refund)
	assert.Equal(t, 100, m.Money())
	assert.Len(t, m.Towers(), 1)
}

func TestTowerAt(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, redRound(1, 0)), nil)
	tw, ok := m.PlaceTower(Basic, Point{X: 400, Y: 100})
	require.True(t, ok)
	got, ok := m.TowerAt(Point{X: 410, Y: 105})
	require.True(t, ok)
	assert.Same(t, tw, got)
	_, ok = m.TowerAt(Point{X: 450, Y: 100})
	assert.False(t, ok)
}

func TestToggleSpeed(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, redRound(1, 0)), nil)
	assert.Equal(t, 2, m.ToggleSpeed())
	assert.Equal(t, 1, m.ToggleSpeed())
}

func TestRestart(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, redRound(2, time.Second)), nil)
	_, ok := m.PlaceTower(Basic, Point{X: 400, Y: 100})
	require.True(t, ok)
	require.True(t, m.StartRound())
	m.Tick(0)
	m.Restart()

	assert.Equal(t, 200, m.Money())
	assert.Empty(t, m.Towers())
	assert.Empty(t, m.Balloons())
	assert.False(t, m.RoundActive())
	assert.Equal(t, time.Duration(0), m.Clock())
}

func TestRestart_ClearsPendingEvents(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, redRound(2, time.Second)), nil)
	_, ok := m.PlaceTower(Basic, Point{X: 400, Y: 100})
	require.True(t, ok)
	m.Restart()
	assert.Empty(t, m.DrainEvents())

	_, ok = m.PlaceTower(Basic, Point{X: 400, Y: 100})
	require.True(t, ok)
	assert.Equal(t, []EventType{TowerPlaced}, eventTypes(m.DrainEvents()))
}

// --- invariants ---

func TestInvariant_LenientDropsBalloon(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, redRound(1, 0)), nil)
	_, ok := m.PlaceTower(Basic, Point{X: 50, Y: 320})
	require.True(t, ok)
	b, err := m.factory.Spawn(Red)
	require.NoError(t, err)
	b.Tier = Tier(9)
	m.field.Add(b)

	m.Tick(0)
	assert.Empty(t, m.Balloons())
	assert.Equal(t, 1, m.Stats().Dropped)
	assert.Equal(t, 100, m.Money())
}

func TestInvariant_StrictPanics(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, redRound(1, 0)), func(c *Config) { c.Strict = true })
	_, ok := m.PlaceTower(Basic, Point{X: 50, Y: 320})
	require.True(t, ok)
	b, err := m.factory.Spawn(Red)
	require.NoError(t, err)
	b.Tier = Tier(9)
	m.field.Add(b)

	assert.Panics(t, func() { m.Tick(0) })
}

// --- observers ---

func TestSubscribe_ReceivesEvents(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, redRound(1, 0)), nil)
	var got []Event
	m.Subscribe(TowerPlaced, ListenerFunc(func(e Event) { got = append(got, e) }))
	_, ok := m.PlaceTower(Sniper, Point{X: 400, Y: 100})
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, Sniper, got[0].Kind)
	assert.Equal(t, 200, got[0].Amount)
}

func TestLogs_RingCapturesInfo(t *testing.T) {
	ring := NewLogRing(10)
	m := newTestMatch(t, wavesOf(t, redRound(1, 0)), nil, WithLogRing(ring))
	require.True(t, m.StartRound())
	logs := m.Logs()
	require.NotEmpty(t, logs)
	assert.Equal(t, "[r1] round started", logs[len(logs)-1])
}

func TestSnapshotAndReport(t *testing.T) {
	m := newTestMatch(t, wavesOf(t, redRound(2, time.Second)), nil)
	_, ok := m.PlaceTower(Basic, Point{X: 400, Y: 100})
	require.True(t, ok)
	require.True(t, m.StartRound())
	m.Tick(0)

	s := m.Snapshot()
	assert.Equal(t, 100, s.HUD.Money)
	assert.Equal(t, 1, s.HUD.Pending)
	assert.True(t, s.HUD.RoundActive)
	require.Len(t, s.Balloons, 1)
	assert.Equal(t, Red, s.Balloons[0].Tier)
	require.Len(t, s.Towers, 1)
	assert.Equal(t, 70, s.Towers[0].SellValue)

	r := m.Report()
	assert.Contains(t, r, "Round: 1/1")
	assert.Contains(t, r, "#1 basic L1")
}

func TestTick_SpawnsMatchRoundTotal(t *testing.T) {
	rc := RoundConfig{Balloons: []TierCount{{Red, 3}, {Blue, 2}}}
	m := newTestMatch(t, wavesOf(t, rc, redRound(1, 0)), nil)
	require.True(t, m.StartRound())
	for i := 0; i < 10 && m.RoundActive(); i++ {
		m.Tick(0)
	}
	m.Tick(200 * m.cfg.Step)
	require.False(t, m.RoundActive())

	spawned := 0
	for _, e := range m.DrainEvents() {
		if e.Type == BalloonSpawned {
			spawned++
		}
	}
	assert.Equal(t, rc.Total(), spawned)
	assert.Equal(t, 100-3-2*2, m.Lives())
}
