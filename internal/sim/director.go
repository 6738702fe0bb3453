package sim

import (
	"go.uber.org/zap"

	"github.com/tomz197/driftfield/internal/config"
	"github.com/tomz197/driftfield/internal/physics"
	"github.com/tomz197/driftfield/internal/pool"
)

// Director places pooled entities around the player.
type Director struct {
	ctx *Context
}

// SpawnOne acquires an entity for tag and activates it at a random offset from
// the player. It returns false when there is no player or the pool is exhausted;
// neither is an error.
func (d *Director) SpawnOne(tag pool.Tag, r config.SpawnRange) (*pool.Entity, bool) {
	center, ok := d.ctx.PlayerPosition()
	if !ok {
		d.ctx.Log.Debug("spawn skipped, no player", zap.String("tag", string(tag)))
		return nil, false
	}
	e, ok := d.ctx.Pool.Acquire(tag)
	if !ok {
		d.ctx.Log.Debug("spawn skipped, pool exhausted", zap.String("tag", string(tag)))
		return nil, false
	}
	e.Transform.Position = center.Add(d.offset(r))
	e.Activate()
	return e, true
}

func (d *Director) offset(r config.SpawnRange) physics.Vec3 {
	axis := func() float64 {
		return r.Scale * (d.ctx.Rand.Float64()*2 - 1) * r.Spread
	}
	return physics.Vec3{X: axis(), Y: axis(), Z: axis()}
}

// SpawnMany calls SpawnOne up to count times and returns how many succeeded.
func (d *Director) SpawnMany(tag pool.Tag, r config.SpawnRange, count int) int {
	spawned := 0
	for i := 0; i < count; i++ {
		if _, ok := d.SpawnOne(tag, r); ok {
			spawned++
		}
	}
	return spawned
}

// SpawnInitial fills the field at game start: one attempt per pooled asteroid,
// spread over the wide initial range.
func (d *Director) SpawnInitial() int {
	total, _ := d.ctx.Pool.Count(TagAsteroid)
	n := d.SpawnMany(TagAsteroid, d.ctx.Tuning.Spawn.Initial, total)
	d.ctx.Log.Info("initial field spawned", zap.Int("asteroids", n), zap.Int("pooled", total))
	return n
}

// Respawn spawns one replacement close to the player.
func (d *Director) Respawn(tag pool.Tag) (*pool.Entity, bool) {
	return d.SpawnOne(tag, d.ctx.Tuning.Spawn.Respawn)
}

// SpawnAt acquires an entity for tag and activates it at pos.
func (d *Director) SpawnAt(tag pool.Tag, pos physics.Vec3) (*pool.Entity, bool) {
	e, ok := d.ctx.Pool.Acquire(tag)
	if !ok {
		d.ctx.Log.Debug("spawn skipped, pool exhausted", zap.String("tag", string(tag)))
		return nil, false
	}
	e.Transform.Position = pos
	e.Activate()
	return e, true
}
