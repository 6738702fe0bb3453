package client

import (
	"time"

	"github.com/tomz197/driftfield/internal/draw"
	"github.com/tomz197/driftfield/internal/object"
)

// GameState represents the current game phase for a client.
type GameState int

const (
	GameStateStart    GameState = iota // Title screen, simulation frozen
	GameStatePlaying                   // Active flight
	GameStateGameOver                  // Flight ended, show restart prompt
	GameStateShutdown                  // Server is shutting down
)

func (s GameState) String() string {
	switch s {
	case GameStateStart:
		return "start"
	case GameStatePlaying:
		return "playing"
	case GameStateGameOver:
		return "game over"
	case GameStateShutdown:
		return "shutdown"
	}
	return "unknown"
}

// ClientState holds per-session presentation state.
type ClientState struct {
	Input         object.Input
	GameState     GameState
	prevGameState GameState
	Reason        string // why the last flight ended
	Running       bool
	termSizeFunc  draw.TermSizeFunc
	delta         time.Duration // Frame delta time (client-side)
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	isInactive    bool
	wasInactive   bool
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		GameState:     GameStateStart,
		prevGameState: GameStateStart,
		Running:       true,
	}
}
