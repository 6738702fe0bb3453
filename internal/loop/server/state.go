package server

import (
	"time"

	"github.com/tomz197/driftfield/internal/object"
	"github.com/tomz197/driftfield/internal/physics"
	"github.com/tomz197/driftfield/internal/pool"
)

// WorldSnapshot is an immutable snapshot of the world state for rendering.
type WorldSnapshot struct {
	Frame    uint64
	Elapsed  time.Duration // simulated time
	Started  bool          // a flight has begun
	Views    []object.View
	Ship     ShipState
	Stats    []pool.Stat
	Ammo     int // shots ready to fire
	GameOver bool
	Reason   string
}

// ShipState is the player's HUD data.
type ShipState struct {
	Pose     physics.Pose
	Speed    float64
	Fuel     float64
	MaxFuel  float64
	Range    float64
	RangeHit bool
}

// Event is a notice sent from server to client.
type Event struct {
	Type   EventType
	Reason string // for EventGameOver
}

// EventType identifies the type of client event.
type EventType int

const (
	EventGameOver EventType = iota
	EventServerShutdown
)
