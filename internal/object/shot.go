package object

import (
	"time"

	"github.com/tomz197/driftfield/internal/physics"
	"github.com/tomz197/driftfield/internal/pool"
	"github.com/tomz197/driftfield/internal/sim"
)

// Shot is a laser bolt fired by the ship.
type Shot struct {
	ctx    *sim.Context
	entity *pool.Entity
	body   *physics.Body
	radius float64
}

// NewShotFactory builds shot behaviors for the pool.
func NewShotFactory(ctx *sim.Context) pool.Factory {
	return func(e *pool.Entity) pool.Behavior {
		return &Shot{
			ctx:    ctx,
			entity: e,
			body:   physics.NewBody(1),
			radius: ctx.Tuning.Shot.Radius,
		}
	}
}

// Body returns the shot's rigid body.
func (s *Shot) Body() *physics.Body { return s.body }

// OnActivate launches the shot along its forward axis.
func (s *Shot) OnActivate() {
	t := s.ctx.Tuning.Shot
	s.radius = t.Radius
	s.body.AddImpulse(s.entity.Transform.Forward().Scale(t.Speed * s.body.Mass))
	expireAfter(s.ctx, s.entity, t.Lifetime)
}

// OnDeactivate stops the body so a reused shot starts at rest.
func (s *Shot) OnDeactivate() {
	s.body.Zero()
}

// OnCollision stops the shot at the first asteroid it touches.
func (s *Shot) OnCollision(other *pool.Entity) {
	if other.Tag() == sim.TagAsteroid {
		s.entity.Deactivate()
	}
}

// Move integrates the shot's flight.
func (s *Shot) Move(dt time.Duration) {
	s.body.Integrate(&s.entity.Transform, dt)
}

// Shapes returns the bolt's collider.
func (s *Shot) Shapes(dst []Shape) []Shape {
	return append(dst, Shape{Center: s.entity.Transform.Position, Radius: s.radius})
}

// Views returns the bolt.
func (s *Shot) Views(dst []View) []View {
	return append(dst, View{Kind: KindShot, Position: s.entity.Transform.Position, Radius: s.radius, Alpha: 1})
}
