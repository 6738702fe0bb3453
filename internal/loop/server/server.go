package server

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tomz197/driftfield/internal/config"
	"github.com/tomz197/driftfield/internal/object"
	"github.com/tomz197/driftfield/internal/sim"
)

// GameServer is the interface clients use to communicate with the game server.
// Decouples the Client from the concrete Server implementation, enabling
// testing and potential network-based server implementations.
type GameServer interface {
	SendInput(input object.Input)
	Snapshot() *WorldSnapshot
	Events() <-chan Event
	// Restart starts a new flight, from the start screen or after game over.
	Restart()
	// Detach tells the server its client has gone.
	Detach()
}

// Options configures a Server.
type Options struct {
	Tuning   config.Tuning
	Manifest config.Manifest
	TickRate time.Duration
	Seed     int64 // 0 seeds from the clock
	Log      *zap.Logger
}

// Server runs one authoritative simulation for one player.
// All simulation state is owned by the goroutine running Run; other goroutines
// talk to it through channels and read published snapshots.
type Server struct {
	log      *zap.Logger
	tickRate time.Duration

	tuning config.Tuning
	sim    *sim.Context
	ship   *object.Ship
	frozen bool
	frame  uint64

	snapshot atomic.Pointer[WorldSnapshot]

	inputCh   chan object.Input
	restartCh chan struct{}
	tuningCh  chan config.Tuning
	eventsCh  chan Event
	detached  chan struct{}
	detach    sync.Once

	input object.Input // latest held controls
	coll  collider
}

// Compile-time check that Server implements GameServer.
var _ GameServer = (*Server)(nil)

// New builds a server with pre-warmed pools. The field stays empty and the
// simulation frozen until the first Restart.
func New(opts Options) (*Server, error) {
	if err := opts.Tuning.Validate(); err != nil {
		return nil, err
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	tickRate := opts.TickRate
	if tickRate <= 0 {
		tickRate = time.Second / 60
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Server{
		log:       log,
		tickRate:  tickRate,
		tuning:    opts.Tuning,
		frozen:    true,
		inputCh:   make(chan object.Input, 256),
		restartCh: make(chan struct{}, 1),
		tuningCh:  make(chan config.Tuning, 1),
		eventsCh:  make(chan Event, 16),
		detached:  make(chan struct{}),
	}
	s.sim = sim.New(&s.tuning, log, rand.New(rand.NewSource(seed)))

	entries, err := object.Entries(opts.Manifest, object.Templates(s.sim))
	if err != nil {
		return nil, fmt.Errorf("build pools: %w", err)
	}
	if err := s.sim.Pool.Initialize(entries); err != nil {
		return nil, fmt.Errorf("build pools: %w", err)
	}
	for _, st := range s.sim.Pool.Stats() {
		log.Debug("pool ready", zap.String("tag", string(st.Tag)), zap.Int("instances", st.Total))
	}

	s.ship = object.NewShip(s.sim)
	s.sim.SetPlayer(s.ship)
	s.coll.reset(&s.tuning)
	s.publish()
	return s, nil
}

// Run starts the server loop. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frameStart := time.Now()
		dt := frameStart.Sub(lastTime)
		lastTime = frameStart

		s.processControl()
		s.Step(s.collectInputs(), dt)
		s.publish()

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < s.tickRate {
			time.Sleep(s.tickRate - elapsed)
		}
	}
}

// Step advances the simulation by one frame. Collisions are resolved before
// per-frame updates and scheduled work see the result.
func (s *Server) Step(in object.Input, dt time.Duration) {
	if s.frozen {
		return
	}
	s.frame++

	s.ship.Update(in, dt)

	entities := s.sim.Pool.Entities()
	for _, e := range entities {
		if m, ok := e.Behavior().(object.Mover); ok && e.Active() {
			m.Move(dt)
		}
	}

	s.coll.detect(entities, s.ship)

	for _, e := range entities {
		if u, ok := e.Behavior().(object.Updater); ok && e.Active() {
			u.Update(dt)
		}
	}

	s.sim.Scheduler.Advance(dt)

	if over, reason := s.ship.GameOver(); over {
		s.frozen = true
		s.emit(Event{Type: EventGameOver, Reason: reason})
	}
}

// Shutdown notifies the client that the server is going away and waits for
// it to detach, up to the given timeout.
// The caller should cancel the server context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	s.emit(Event{Type: EventServerShutdown})

	select {
	case <-s.detached:
	case <-time.After(timeout):
		s.log.Warn("client did not detach before shutdown timeout")
	}
}

// SendInput sends input from the client to the server.
func (s *Server) SendInput(input object.Input) {
	select {
	case s.inputCh <- input:
	default:
		// Input channel full, drop input
	}
}

// Snapshot returns the latest published world snapshot.
func (s *Server) Snapshot() *WorldSnapshot {
	return s.snapshot.Load()
}

// Events delivers game over and shutdown notices.
func (s *Server) Events() <-chan Event {
	return s.eventsCh
}

func (s *Server) Restart() {
	select {
	case s.restartCh <- struct{}{}:
	default:
	}
}

func (s *Server) Detach() {
	s.detach.Do(func() { close(s.detached) })
}

// ApplyTuning swaps in new gameplay constants between ticks.
// Pool sizes and asteroid piece counts are fixed at startup and do not change.
func (s *Server) ApplyTuning(t config.Tuning) {
	select {
	case <-s.tuningCh:
	default:
	}
	select {
	case s.tuningCh <- t:
	default:
	}
}

func (s *Server) emit(ev Event) {
	select {
	case s.eventsCh <- ev:
	default:
		s.log.Warn("event dropped, client not reading", zap.Int("type", int(ev.Type)))
	}
}

// processControl applies pending restart and tuning requests.
func (s *Server) processControl() {
	for {
		select {
		case t := <-s.tuningCh:
			if err := t.Validate(); err != nil {
				s.log.Warn("tuning rejected, keeping current values", zap.Error(err))
				continue
			}
			s.tuning = t
			s.coll.reset(&s.tuning)
			s.log.Info("tuning reloaded")
		case <-s.restartCh:
			s.restart()
		default:
			return
		}
	}
}

// restart returns every entity to its pool and starts a fresh flight.
func (s *Server) restart() {
	s.sim.Pool.DeactivateAll()
	s.ship.Reset()
	s.input = object.Input{}
	s.frozen = false
	s.sim.Director.SpawnInitial()
}

// collectInputs drains pending client input. Held controls come from the
// latest input; trigger presses from every input are added up.
func (s *Server) collectInputs() object.Input {
	fire := 0
	for {
		select {
		case in := <-s.inputCh:
			fire += in.Fire
			s.input = in
		default:
			in := s.input
			in.Fire = fire
			return in
		}
	}
}

// publish stores an immutable snapshot for clients.
func (s *Server) publish() {
	prev := s.snapshot.Load()
	capacity := 0
	if prev != nil {
		capacity = len(prev.Views)
	}

	snap := &WorldSnapshot{
		Frame:   s.frame,
		Elapsed: s.sim.Scheduler.Now(),
		Views:   make([]object.View, 0, capacity),
		Stats:   s.sim.Pool.Stats(),
		Started: !s.frozen || s.frame > 0,
	}
	for _, e := range s.sim.Pool.Entities() {
		if v, ok := e.Behavior().(object.Viewer); ok && e.Active() {
			snap.Views = v.Views(snap.Views)
		}
	}
	for _, st := range snap.Stats {
		if st.Tag == sim.TagShot {
			snap.Ammo = st.Total - st.Active
		}
	}

	dist, ok := s.ship.Range()
	over, reason := s.ship.GameOver()
	snap.Ship = ShipState{
		Pose:     s.ship.Pose,
		Speed:    s.ship.Speed(),
		Fuel:     s.ship.Fuel(),
		MaxFuel:  s.tuning.Ship.MaxFuel,
		Range:    dist,
		RangeHit: ok,
	}
	snap.GameOver = over
	snap.Reason = reason
	s.snapshot.Store(snap)
}
