package object

import (
	"github.com/tomz197/driftfield/internal/pool"
	"github.com/tomz197/driftfield/internal/sim"
)

// Drop is a fuel pickup released by a fractured asteroid.
type Drop struct {
	ctx    *sim.Context
	entity *pool.Entity
	radius float64
	fuel   float64
}

// NewDropFactory builds drop behaviors for the pool.
func NewDropFactory(ctx *sim.Context) pool.Factory {
	return func(e *pool.Entity) pool.Behavior {
		return &Drop{ctx: ctx, entity: e}
	}
}

// OnActivate loads the drop with fuel and starts its lifetime.
func (d *Drop) OnActivate() {
	t := d.ctx.Tuning.Drop
	d.radius = t.Radius
	d.fuel = t.Fuel
	expireAfter(d.ctx, d.entity, t.Lifetime)
	d.ctx.Watchdog.Watch(d.entity, false)
}

func (d *Drop) OnDeactivate() {}

// Collect deactivates the drop and returns the fuel it carried.
// Collecting an inactive drop yields nothing.
func (d *Drop) Collect() float64 {
	if !d.entity.Active() {
		return 0
	}
	d.entity.Deactivate()
	return d.fuel
}

// OnCollision is a no-op: drops are triggers, the ship collects them.
func (d *Drop) OnCollision(*pool.Entity) {}

// Shapes returns the pickup trigger.
func (d *Drop) Shapes(dst []Shape) []Shape {
	return append(dst, Shape{Center: d.entity.Transform.Position, Radius: d.radius, Trigger: true})
}

// Views returns the pickup.
func (d *Drop) Views(dst []View) []View {
	return append(dst, View{Kind: KindDrop, Position: d.entity.Transform.Position, Radius: d.radius, Alpha: 1})
}
