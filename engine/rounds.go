package engine

import (
	"fmt"
	"time"
)

// TierCount is one "(tier, count)" entry of a round.
type TierCount struct {
	Tier  Tier
	Count int
}

// RoundConfig is one wave: its balloons in listed order and the delay
// between two spawns at normal speed.
type RoundConfig struct {
	Balloons   []TierCount
	SpawnDelay time.Duration
}

// Total is the number of balloons the round spawns, not counting children.
func (rc RoundConfig) Total() int {
	n := 0
	for _, tc := range rc.Balloons {
		n += tc.Count
	}
	return n
}

// WaveTable is the ordered, immutable list of rounds for a match.
type WaveTable struct {
	rounds []RoundConfig
}

// NewWaveTable validates and copies rounds.
func NewWaveTable(rounds []RoundConfig) (*WaveTable, error) {
	if len(rounds) == 0 {
		return nil, fmt.Errorf("new wave table: %w", ErrEmptyWaveTable)
	}
	cp := make([]RoundConfig, len(rounds))
	for i, rc := range rounds {
		if rc.SpawnDelay < 0 {
			return nil, fmt.Errorf("round %d: %w: negative spawn delay", i+1, ErrBadRound)
		}
		for _, tc := range rc.Balloons {
			if !tc.Tier.Valid() {
				return nil, fmt.Errorf("round %d: %w: %s", i+1, ErrUnknownTier, tc.Tier)
			}
			if tc.Count < 0 {
				return nil, fmt.Errorf("round %d: %w: negative count for %s", i+1, ErrBadRound, tc.Tier)
			}
		}
		cp[i] = RoundConfig{
			Balloons:   append([]TierCount(nil), rc.Balloons...),
			SpawnDelay: rc.SpawnDelay,
		}
	}
	return &WaveTable{rounds: cp}, nil
}

// Len is the number of configured rounds, which is also the last round.
func (wt *WaveTable) Len() int { return len(wt.rounds) }

// Round returns the 1-based round n.
func (wt *WaveTable) Round(n int) (RoundConfig, bool) {
	if n < 1 || n > len(wt.rounds) {
		return RoundConfig{}, false
	}
	return wt.rounds[n-1], true
}

// SchedulerState is where the round scheduler is in its cycle.
type SchedulerState int

const (
	Idle SchedulerState = iota
	Spawning
	Draining
)

func (s SchedulerState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Spawning:
		return "spawning"
	case Draining:
		return "draining"
	}
	return "unknown"
}

// Scheduler turns a round's config into a timed FIFO of spawns.
type Scheduler struct {
	table      *WaveTable
	queue      []Tier
	interval   time.Duration
	lastSpawn  time.Duration
	hasSpawned bool
	active     bool
	round      int
}

func NewScheduler(table *WaveTable) *Scheduler {
	return &Scheduler{table: table}
}

// PrepareRound fills the queue for the 1-based round: every balloon of the
// first entry, then every balloon of the next, and so on. Asking for a round
// past the table returns ErrNoMoreRounds and leaves the scheduler idle.
func (s *Scheduler) PrepareRound(round int) error {
	rc, ok := s.table.Round(round)
	if !ok {
		s.active = false
		return fmt.Errorf("prepare round %d: %w", round, ErrNoMoreRounds)
	}
	queue := make([]Tier, 0, rc.Total())
	for _, tc := range rc.Balloons {
		for i := 0; i < tc.Count; i++ {
			queue = append(queue, tc.Tier)
		}
	}
	s.queue = queue
	s.interval = rc.SpawnDelay
	s.hasSpawned = false
	s.active = true
	s.round = round
	return nil
}

// Queue returns a copy of the pending spawns.
func (s *Scheduler) Queue() []Tier {
	return append([]Tier(nil), s.queue...)
}

func (s *Scheduler) Pending() int { return len(s.queue) }

// State derives the scheduler state from the queue and the active flag.
func (s *Scheduler) State() SchedulerState {
	switch {
	case !s.active:
		return Idle
	case len(s.queue) > 0:
		return Spawning
	default:
		return Draining
	}
}

// Next pops the next tier when the spawn interval, scaled by speed, has
// elapsed since the previous spawn. The first spawn of a round is immediate.
func (s *Scheduler) Next(now time.Duration, speed float64) (Tier, bool) {
	if !s.active || len(s.queue) == 0 {
		return 0, false
	}
	if speed <= 0 {
		speed = 1
	}
	if s.hasSpawned {
		wait := time.Duration(float64(s.interval) / speed)
		if now-s.lastSpawn < wait {
			return 0, false
		}
	}
	t := s.queue[0]
	s.queue = s.queue[1:]
	s.lastSpawn = now
	s.hasSpawned = true
	return t, true
}

// Complete reports whether the running round is over: nothing left to spawn
// and nothing alive. It returns the scheduler to Idle when it is.
func (s *Scheduler) Complete(live int) bool {
	if !s.active || len(s.queue) > 0 || live > 0 {
		return false
	}
	s.active = false
	return true
}
