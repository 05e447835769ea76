package engine

// EventType names a discrete thing that happened in a match.
type EventType string

const (
	BalloonSpawned EventType = "BalloonSpawned"
	BalloonPopped  EventType = "BalloonPopped"
	BalloonLeaked  EventType = "BalloonLeaked"
	TowerPlaced    EventType = "TowerPlaced"
	TowerUpgraded  EventType = "TowerUpgraded"
	TowerSold      EventType = "TowerSold"
	RoundStarted   EventType = "RoundStarted"
	RoundCompleted EventType = "RoundCompleted"
	GameWon        EventType = "GameWon"
	GameLost       EventType = "GameLost"
)

// Event carries what a sound or UI collaborator needs to react. Unused
// fields are zero.
type Event struct {
	Type    EventType
	Tier    Tier
	TowerID int
	Kind    TowerKind
	Round   int
	Amount  int
	Pos     Point
}

// Listener receives events synchronously during Tick or a player action.
type Listener interface {
	OnEvent(e Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(e Event)

func (f ListenerFunc) OnEvent(e Event) { f(e) }

// maxPending bounds the events kept for a host that never drains.
const maxPending = 1024

// Dispatcher fans events out to subscribers and keeps them for DrainEvents.
type Dispatcher struct {
	listeners map[EventType][]Listener
	pending   []Event
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[EventType][]Listener)}
}

func (d *Dispatcher) Subscribe(t EventType, l Listener) {
	d.listeners[t] = append(d.listeners[t], l)
}

func (d *Dispatcher) Dispatch(e Event) {
	if len(d.pending) == maxPending {
		d.pending = d.pending[1:]
	}
	d.pending = append(d.pending, e)
	for _, l := range d.listeners[e.Type] {
		l.OnEvent(e)
	}
}

// Drain returns and clears the events dispatched since the last call.
func (d *Dispatcher) Drain() []Event {
	out := d.pending
	d.pending = nil
	return out
}
