// Package object implements the behaviors attached to pooled entities and the
// player ship.
package object

import (
	"fmt"
	"time"

	"github.com/tomz197/driftfield/internal/config"
	"github.com/tomz197/driftfield/internal/input"
	"github.com/tomz197/driftfield/internal/physics"
	"github.com/tomz197/driftfield/internal/pool"
	"github.com/tomz197/driftfield/internal/sim"
)

// Input is an alias for the input package's Input type.
type Input = input.Input

// Shape is a world-space sphere collider.
type Shape struct {
	Center physics.Vec3
	Radius float64
	// Trigger shapes report overlaps through OnTrigger and never block.
	Trigger bool
	// Debris stops shots but does not damage the ship.
	Debris bool
}

// Collidable is implemented by behaviors that take part in collision detection.
type Collidable interface {
	// Shapes appends the entity's enabled colliders to dst.
	Shapes(dst []Shape) []Shape
	// OnCollision is called once per frame for every entity touching this one.
	OnCollision(other *pool.Entity)
}

// Updater is implemented by behaviors with per-frame logic.
type Updater interface {
	Update(dt time.Duration)
}

// Mover is implemented by behaviors whose rigid bodies move their entity.
type Mover interface {
	Move(dt time.Duration)
}

// Kind identifies how a view is drawn.
type Kind uint8

const (
	KindAsteroid Kind = iota
	KindIceAsteroid
	KindDebris
	KindShot
	KindDrop
)

// View is a renderable snapshot of part of an entity.
type View struct {
	Kind     Kind
	Position physics.Vec3
	Radius   float64
	Alpha    float64
}

// Viewer is implemented by behaviors that can be drawn.
type Viewer interface {
	Views(dst []View) []View
}

// Templates maps manifest template names to behavior factories.
func Templates(ctx *sim.Context) map[string]pool.Factory {
	return map[string]pool.Factory{
		"asteroid":     NewAsteroidFactory(ctx),
		"ice_asteroid": NewIceAsteroidFactory(ctx),
		"shot":         NewShotFactory(ctx),
		"drop":         NewDropFactory(ctx),
	}
}

// Entries resolves a pool manifest into registry entries.
func Entries(m config.Manifest, factories map[string]pool.Factory) ([]pool.Entry, error) {
	entries := make([]pool.Entry, 0, len(m.Pools))
	for _, p := range m.Pools {
		factory, ok := factories[p.Template]
		if !ok {
			return nil, fmt.Errorf("pool %s: unknown template %q", p.Tag, p.Template)
		}
		entries = append(entries, pool.Entry{
			Tag:      pool.Tag(p.Tag),
			Template: p.Template,
			Amount:   p.Amount,
			Growable: p.Growable,
			New:      factory,
		})
	}
	return entries, nil
}

// expireAfter deactivates e after d, unless it has been recycled meanwhile.
func expireAfter(ctx *sim.Context, e *pool.Entity, d time.Duration) {
	gen := e.Generation()
	ctx.Scheduler.After(e.ID(), "expire", d, func() {
		if e.Active() && e.Generation() == gen {
			e.Deactivate()
		}
	})
}
