package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeModeChange
	EventTypeShipSpawned
	EventTypeShipDestroyed
	EventTypeShipFired
	EventTypeHyperspace
	EventTypeAsteroidDestroyed
	EventTypeSaucerSpawned
	EventTypeSaucerDestroyed
	EventTypeSaucerFired
	EventTypeWave
	EventTypeExtraLife
	EventTypeHighScore
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

// Event is the core event structure for the event log
type Event struct {
	Version   uint8     `json:"version"`   // Schema version
	Type      EventType `json:"type"`      // Event type
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`  // Monotonic sequence, assigned by the log
	TickNum   uint64    `json:"tickNum"`   // Game tick this occurred in
	GameTime  int64     `json:"gameTime"`  // Game clock (ms)
	Payload   []byte    `json:"payload"`   // JSON-encoded payload
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeModeChange:
		return "mode_change"
	case EventTypeShipSpawned:
		return "ship_spawned"
	case EventTypeShipDestroyed:
		return "ship_destroyed"
	case EventTypeShipFired:
		return "ship_fired"
	case EventTypeHyperspace:
		return "hyperspace"
	case EventTypeAsteroidDestroyed:
		return "asteroid_destroyed"
	case EventTypeSaucerSpawned:
		return "saucer_spawned"
	case EventTypeSaucerDestroyed:
		return "saucer_destroyed"
	case EventTypeSaucerFired:
		return "saucer_fired"
	case EventTypeWave:
		return "wave"
	case EventTypeExtraLife:
		return "extra_life"
	case EventTypeHighScore:
		return "high_score"
	default:
		return "unknown"
	}
}

// Typed payloads for different event types

// ModeChangePayload records a state machine transition
type ModeChangePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ShipPayload records a ship spawn, death or jump
type ShipPayload struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Lives int     `json:"lives"`
}

// AsteroidPayload records a destroyed asteroid
type AsteroidPayload struct {
	Size   string `json:"size"`
	Points int    `json:"points"`
	Score  int    `json:"score"`
	ByShip bool   `json:"byShip"` // Ship bullet or ramming, as opposed to a saucer
}

// SaucerPayload records a saucer appearing or dying
type SaucerPayload struct {
	Size   string `json:"size"`
	Points int    `json:"points,omitempty"`
	Score  int    `json:"score"`
}

// WavePayload records a new asteroid wave
type WavePayload struct {
	Count int `json:"count"`
}

// ExtraLifePayload records an awarded life
type ExtraLifePayload struct {
	Lives int `json:"lives"`
	Score int `json:"score"`
}

// HighScorePayload records a committed table entry
type HighScorePayload struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Rank  int    `json:"rank"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, gameTime int64, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		GameTime:  gameTime,
		Payload:   EncodePayload(payload),
	}
}

// emit queues an event for the current tick.
func (g *Game) emit(eventType EventType, payload interface{}) {
	g.events = append(g.events, NewEvent(eventType, g.tickCount, g.now, payload))
}

// DrainEvents returns the events produced since the last call.
func (g *Game) DrainEvents() []Event {
	if len(g.events) == 0 {
		return nil
	}
	out := make([]Event, len(g.events))
	copy(out, g.events)
	g.events = g.events[:0]
	return out
}
