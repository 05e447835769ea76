// Package sound plays short synthesized cues for match events.
package sound

import (
	"math"
	"sync"
	"time"

	"balloon-td/engine"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/sirupsen/logrus"
)

const sampleRate = beep.SampleRate(44100)

// cue is a decaying sine blip.
type cue struct {
	freq     float64
	duration time.Duration
	volume   float64
}

var cues = map[engine.EventType]cue{
	engine.BalloonPopped:  {freq: 880, duration: 40 * time.Millisecond, volume: 0.15},
	engine.BalloonLeaked:  {freq: 140, duration: 200 * time.Millisecond, volume: 0.3},
	engine.TowerPlaced:    {freq: 520, duration: 90 * time.Millisecond, volume: 0.25},
	engine.TowerUpgraded:  {freq: 660, duration: 120 * time.Millisecond, volume: 0.25},
	engine.TowerSold:      {freq: 330, duration: 90 * time.Millisecond, volume: 0.25},
	engine.RoundStarted:   {freq: 440, duration: 150 * time.Millisecond, volume: 0.2},
	engine.RoundCompleted: {freq: 990, duration: 250 * time.Millisecond, volume: 0.25},
	engine.GameWon:        {freq: 1320, duration: 600 * time.Millisecond, volume: 0.3},
	engine.GameLost:       {freq: 110, duration: 800 * time.Millisecond, volume: 0.35},
}

// Subscriber is anything that can feed events to the player.
type Subscriber interface {
	Subscribe(t engine.EventType, l engine.Listener)
}

// Player mixes event cues onto the speaker.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	log         logrus.FieldLogger
	initialized bool
}

func NewPlayer(log logrus.FieldLogger) *Player {
	return &Player{mixer: &beep.Mixer{}, log: log}
}

// Init opens the audio device. A host without one gets an error and should
// carry on silently.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	p.log.Debug("sound initialized")
	return nil
}

// Attach subscribes the player to every event type it has a cue for.
func (p *Player) Attach(s Subscriber) {
	for t := range cues {
		s.Subscribe(t, p)
	}
}

func (p *Player) OnEvent(e engine.Event) {
	c, ok := cues[e.Type]
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Add(newBlip(c, sampleRate))
	speaker.Unlock()
}

// Close silences everything still playing.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.initialized = false
}

// blip streams one cue and then reports it is drained.
type blip struct {
	c     cue
	sr    beep.SampleRate
	pos   int
	total int
}

func newBlip(c cue, sr beep.SampleRate) *blip {
	return &blip{c: c, sr: sr, total: sr.N(c.duration)}
}

func (b *blip) Stream(samples [][2]float64) (n int, ok bool) {
	if b.pos >= b.total {
		return 0, false
	}
	for i := range samples {
		if b.pos >= b.total {
			return i, true
		}
		t := float64(b.pos) / float64(b.sr)
		env := 1 - float64(b.pos)/float64(b.total)
		v := b.c.volume * env * env * math.Sin(2*math.Pi*b.c.freq*t)
		samples[i][0] = v
		samples[i][1] = v
		b.pos++
	}
	return len(samples), true
}

func (b *blip) Err() error { return nil }
