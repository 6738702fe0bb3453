package object

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/tomz197/driftfield/internal/physics"
	"github.com/tomz197/driftfield/internal/pool"
	"github.com/tomz197/driftfield/internal/sim"
)

// Reasons a flight ends.
const (
	ReasonFuel      = "out of fuel"
	ReasonCollision = "hit an asteroid"
)

// Ship is the player-controlled spacecraft. It is not pooled.
type Ship struct {
	ctx  *sim.Context
	Pose physics.Pose

	speed    float64
	fuel     float64
	gameOver bool
	reason   string

	rangeDist float64
	rangeHit  bool
}

// NewShip creates a fueled ship at the origin, facing +Z.
func NewShip(ctx *sim.Context) *Ship {
	s := &Ship{ctx: ctx}
	s.Reset()
	return s
}

// Reset puts the ship back at the start line with a full tank.
func (s *Ship) Reset() {
	s.Pose = physics.Pose{Rotation: physics.Identity}
	s.speed = 0
	s.fuel = s.ctx.Tuning.Ship.MaxFuel
	s.gameOver = false
	s.reason = ""
	s.rangeDist, s.rangeHit = 0, false
}

// PlayerPosition implements sim.PlayerLocator.
func (s *Ship) PlayerPosition() (physics.Vec3, bool) {
	return s.Pose.Position, true
}

func (s *Ship) Speed() float64 { return s.speed }

func (s *Ship) Fuel() float64 { return s.fuel }

// GameOver reports whether the flight has ended and why.
func (s *Ship) GameOver() (bool, string) { return s.gameOver, s.reason }

// Range returns the distance to the asteroid straight ahead, if any.
func (s *Ship) Range() (float64, bool) { return s.rangeDist, s.rangeHit }

// Nose is the pose shots are fired from.
func (s *Ship) Nose() physics.Pose {
	return physics.Pose{
		Position: s.Pose.TransformPoint(physics.Forward.Scale(s.ctx.Tuning.Ship.NoseOffset)),
		Rotation: s.Pose.Rotation,
	}
}

// Update flies the ship for one frame: throttle, rotation, movement, firing
// and fuel burn.
func (s *Ship) Update(in Input, dt time.Duration) {
	if s.gameOver {
		return
	}
	t := s.ctx.Tuning.Ship
	sec := dt.Seconds()

	target, rate := t.NormalSpeed, t.NormalRate
	if in.Boost {
		target, rate = t.BoostSpeed, t.BoostRate
	}
	s.speed = physics.Lerp(s.speed, target, math.Min(1, sec*rate))

	// Rotation is in the ship's own frame. Nose up is a negative turn about +X,
	// clockwise roll a negative turn about +Z.
	turn := t.RotationSpeed * sec
	local := physics.Euler(-in.Pitch*turn, in.Yaw*turn, -in.Roll*turn)
	s.Pose.Rotation = s.Pose.Rotation.Mul(local).Normalize()
	s.Pose.Position = s.Pose.Position.Add(s.Pose.Forward().Scale(s.speed * sec))

	for i := 0; i < in.Fire; i++ {
		s.Fire()
	}

	s.fuel -= t.FuelBurn * sec
	if s.fuel <= 0 {
		s.fuel = 0
		s.end(ReasonFuel)
	}
}

// Fire launches one pooled shot from the nose. With every shot in flight it
// logs "no ammo" and does nothing else.
func (s *Ship) Fire() bool {
	e, ok := s.ctx.Pool.Acquire(sim.TagShot)
	if !ok {
		s.ctx.Log.Warn("no ammo")
		return false
	}
	if shot, ok := e.Behavior().(*Shot); ok {
		shot.Body().Zero()
	}
	e.Transform = s.Nose()
	e.Activate()
	return true
}

// AddFuel refuels, capped at the tank size.
func (s *Ship) AddFuel(amount float64) {
	s.fuel = math.Min(s.fuel+amount, s.ctx.Tuning.Ship.MaxFuel)
}

// OnCollision ends the flight when the ship touches an asteroid.
func (s *Ship) OnCollision(other *pool.Entity) {
	if other.Tag() == sim.TagAsteroid {
		s.end(ReasonCollision)
	}
}

// OnTrigger collects drops the ship flies through.
func (s *Ship) OnTrigger(other *pool.Entity) {
	if other.Tag() != sim.TagDrop {
		return
	}
	d, ok := other.Behavior().(*Drop)
	if !ok {
		return
	}
	if fuel := d.Collect(); fuel > 0 {
		s.AddFuel(fuel)
		s.ctx.Log.Debug("drop collected", zap.Float64("fuel", s.fuel))
	}
}

func (s *Ship) end(reason string) {
	if s.gameOver {
		return
	}
	s.gameOver = true
	s.reason = reason
	s.ctx.Log.Info("game over", zap.String("reason", reason), zap.Float64("fuel", s.fuel))
}

// Shape returns the ship's collider.
func (s *Ship) Shape() Shape {
	return Shape{Center: s.Pose.Position, Radius: s.ctx.Tuning.Ship.Radius}
}

// Scan updates the range finder from the nose along the forward axis against
// the given colliders. Triggers and debris are ignored.
func (s *Ship) Scan(shapes []Shape) {
	nose := s.Nose()
	dir := s.Pose.Forward()
	s.rangeHit = false
	best := math.Inf(1)
	for _, sh := range shapes {
		if sh.Trigger || sh.Debris {
			continue
		}
		if d, ok := physics.RaySphere(nose.Position, dir, sh.Center, sh.Radius); ok && d < best {
			best = d
			s.rangeHit = true
		}
	}
	if s.rangeHit {
		s.rangeDist = best
	}
}
