package server

import (
	"math"

	"github.com/tomz197/driftfield/internal/config"
	"github.com/tomz197/driftfield/internal/object"
	"github.com/tomz197/driftfield/internal/physics"
	"github.com/tomz197/driftfield/internal/pool"
	"github.com/tomz197/driftfield/internal/sim"
)

// shapeRef is a collider and the entity it belongs to, as of collection.
type shapeRef struct {
	shape  object.Shape
	entity *pool.Entity
	gen    uint64
}

// live reports whether the entity is still the activation the shape was
// collected from. An entity retired and reused earlier this frame is not.
func (r shapeRef) live() bool {
	return r.entity.Active() && r.entity.Generation() == r.gen
}

type pairKey struct {
	a, b pool.ID
}

type contact struct {
	a, b shapeRef
}

// collider finds touching entities each frame. Its buffers are reused between
// frames to avoid allocations.
type collider struct {
	grid     *physics.SpatialHash
	refs     []shapeRef
	shapes   []object.Shape
	seen     map[pairKey]struct{}
	contacts []contact
	scan     []object.Shape
}

// reset sizes the broad phase for the current tuning. The cell size must be at
// least the largest contact distance so every pair is within one neighborhood.
func (c *collider) reset(t *config.Tuning) {
	maxRadius := math.Max(
		math.Max(t.Asteroid.Radius, t.Drop.Radius),
		math.Max(t.Ship.Radius, t.Shot.Radius),
	)
	c.grid = physics.NewSpatialHash(2 * maxRadius)
	if c.seen == nil {
		c.seen = make(map[pairKey]struct{})
	}
}

// detect delivers this frame's collision and trigger events and refreshes the
// ship's range finder.
func (c *collider) detect(entities []*pool.Entity, ship *object.Ship) {
	c.collect(entities)
	c.dispatchEntityContacts()
	c.dispatchShipContacts(ship)

	c.scan = c.scan[:0]
	for _, r := range c.refs {
		if r.live() && r.entity.Tag() == sim.TagAsteroid {
			c.scan = append(c.scan, r.shape)
		}
	}
	ship.Scan(c.scan)
}

func (c *collider) collect(entities []*pool.Entity) {
	c.refs = c.refs[:0]
	c.grid.Clear()
	for _, e := range entities {
		col, ok := e.Behavior().(object.Collidable)
		if !ok || !e.Active() {
			continue
		}
		c.shapes = col.Shapes(c.shapes[:0])
		for _, sh := range c.shapes {
			c.grid.Insert(sh.Center, len(c.refs))
			c.refs = append(c.refs, shapeRef{shape: sh, entity: e, gen: e.Generation()})
		}
	}
}

// dispatchEntityContacts reports solid contacts between pooled entities of
// different tags. Each pair hears about a contact once per frame, and a pair is
// skipped when an earlier contact this frame already retired or recycled one of
// them.
func (c *collider) dispatchEntityContacts() {
	clear(c.seen)
	c.contacts = c.contacts[:0]

	for i := range c.refs {
		a := c.refs[i]
		if a.shape.Trigger {
			continue
		}
		c.grid.QueryAround(a.shape.Center, func(j int) bool {
			if j <= i {
				return false
			}
			b := c.refs[j]
			if b.shape.Trigger || a.entity == b.entity || a.entity.Tag() == b.entity.Tag() {
				return false
			}
			if !physics.SpheresOverlap(a.shape.Center, a.shape.Radius, b.shape.Center, b.shape.Radius) {
				return false
			}
			key := pairKey{a.entity.ID(), b.entity.ID()}
			if key.a > key.b {
				key.a, key.b = key.b, key.a
			}
			if _, dup := c.seen[key]; dup {
				return false
			}
			c.seen[key] = struct{}{}
			c.contacts = append(c.contacts, contact{a, b})
			return false
		})
	}

	for _, ct := range c.contacts {
		if !ct.a.live() || !ct.b.live() {
			continue
		}
		// Both sides hear the contact even if the first reaction retires its
		// own entity.
		ct.a.entity.Behavior().(object.Collidable).OnCollision(ct.b.entity)
		ct.b.entity.Behavior().(object.Collidable).OnCollision(ct.a.entity)
	}
}

// dispatchShipContacts collects drops the ship flies through and ends the
// flight on contact with a solid asteroid. Debris is harmless.
func (c *collider) dispatchShipContacts(ship *object.Ship) {
	hull := ship.Shape()
	c.grid.QueryAround(hull.Center, func(j int) bool {
		r := c.refs[j]
		if !r.live() || r.shape.Debris {
			return false
		}
		if !physics.SpheresOverlap(hull.Center, hull.Radius, r.shape.Center, r.shape.Radius) {
			return false
		}
		switch {
		case r.shape.Trigger:
			ship.OnTrigger(r.entity)
		case r.entity.Tag() == sim.TagAsteroid:
			ship.OnCollision(r.entity)
		}
		return false
	})
}
