package sim

import (
	"time"

	"github.com/tomz197/driftfield/internal/physics"
	"github.com/tomz197/driftfield/internal/pool"
)

const watchdogTask = "watchdog"

// Watchdog retires entities that drift too far from the player.
type Watchdog struct {
	ctx *Context
}

// Watch starts the periodic distance check for e. With respawn set, a retired
// entity is replaced near the player. Call it from OnActivate; the check stops
// by itself once e is deactivated.
func (w *Watchdog) Watch(e *pool.Entity, respawn bool) {
	gen := e.Generation()
	w.ctx.Scheduler.Every(e.ID(), watchdogTask, w.ctx.Tuning.Watchdog.Period, func(time.Duration) bool {
		if e.Generation() != gen {
			return false
		}
		return w.Check(e, respawn)
	})
}

// Check runs one watchdog cycle and reports whether e should be checked again.
// An inactive entity is left alone. Without a player the cycle is skipped.
func (w *Watchdog) Check(e *pool.Entity, respawn bool) bool {
	if !e.Active() {
		return false
	}
	player, ok := w.ctx.PlayerPosition()
	if !ok {
		return true
	}
	if physics.Distance(e.Transform.Position, player) <= w.ctx.Tuning.Watchdog.MaxDistance {
		return true
	}

	tag := e.Tag()
	e.Deactivate()
	if respawn {
		w.ctx.Director.Respawn(tag)
	}
	return false
}
