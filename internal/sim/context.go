// Package sim holds the state shared by every simulated entity: the pool, the
// scheduler, the spawn director and the distance watchdog.
//
// A Context is created per game session and handed to every behavior factory,
// so nothing in the simulation reaches for globals.
package sim

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/tomz197/driftfield/internal/config"
	"github.com/tomz197/driftfield/internal/physics"
	"github.com/tomz197/driftfield/internal/pool"
	"github.com/tomz197/driftfield/internal/sched"
)

// Entity categories. Collision reactions switch on these.
const (
	TagAsteroid pool.Tag = "Asteroid"
	TagShot     pool.Tag = "Shot"
	TagDrop     pool.Tag = "Drop"
)

// PlayerLocator reports the authoritative player position.
// ok is false when there is no player to measure against.
type PlayerLocator interface {
	PlayerPosition() (pos physics.Vec3, ok bool)
}

// Impulser applies explosion forces to bodies.
type Impulser interface {
	ApplyExplosion(b *physics.Body, pos, origin physics.Vec3, radius, power float64)
}

// Context is one session's simulation state. Tuning points at the live
// values, so reads always see the latest applied reload.
type Context struct {
	Pool      *pool.Registry
	Scheduler *sched.Scheduler
	Director  *Director
	Watchdog  *Watchdog
	Physics   Impulser
	Tuning    *config.Tuning
	Log       *zap.Logger
	Rand      *rand.Rand

	player PlayerLocator
}

// New wires a context. Deactivating any pooled entity cancels its scheduled work.
func New(tuning *config.Tuning, log *zap.Logger, rng *rand.Rand) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Context{
		Pool:      pool.NewRegistry(),
		Scheduler: sched.New(),
		Physics:   physics.NewWorld(),
		Tuning:    tuning,
		Log:       log,
		Rand:      rng,
	}
	c.Director = &Director{ctx: c}
	c.Watchdog = &Watchdog{ctx: c}
	c.Pool.OnDeactivate(func(e *pool.Entity) {
		c.Scheduler.CancelOwner(e.ID())
	})
	return c
}

// SetPlayer changes the player the director and watchdog measure against.
// nil means no player.
func (c *Context) SetPlayer(p PlayerLocator) {
	c.player = p
}

// PlayerPosition implements PlayerLocator over the current player.
func (c *Context) PlayerPosition() (physics.Vec3, bool) {
	if c.player == nil {
		return physics.Vec3{}, false
	}
	return c.player.PlayerPosition()
}
