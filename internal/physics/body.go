package physics

import "time"

// Body is a minimal rigid body: mass, linear and angular velocity.
// Bodies move whatever Pose they are integrated against.
type Body struct {
	Mass            float64
	Velocity        Vec3
	AngularVelocity Vec3
}

// NewBody creates a resting body with the given mass. Non-positive masses become 1.
func NewBody(mass float64) *Body {
	if mass <= 0 {
		mass = 1
	}
	return &Body{Mass: mass}
}

// Zero stops the body.
func (b *Body) Zero() {
	b.Velocity = Vec3{}
	b.AngularVelocity = Vec3{}
}

// AddImpulse changes velocity by impulse/mass.
func (b *Body) AddImpulse(impulse Vec3) {
	b.Velocity = b.Velocity.Add(impulse.Scale(1 / b.Mass))
}

// Integrate advances a pose by the body's velocities over dt.
func (b *Body) Integrate(p *Pose, dt time.Duration) {
	s := dt.Seconds()
	p.Position = p.Position.Add(b.Velocity.Scale(s))
	p.Rotation = p.Rotation.Integrate(b.AngularVelocity, s)
}

// IntegrateLocal advances a pose expressed in a parent frame whose world
// rotation is parent. The body's velocities are in world axes.
func (b *Body) IntegrateLocal(local *Pose, parent Quat, dt time.Duration) {
	inv := parent.Conjugate()
	s := dt.Seconds()
	local.Position = local.Position.Add(inv.Rotate(b.Velocity.Scale(s)))
	local.Rotation = local.Rotation.Integrate(inv.Rotate(b.AngularVelocity), s)
}

// World applies forces the way a fixed-step engine would.
type World struct {
	// FixedStep is the step a one-off force is spread over.
	FixedStep time.Duration
}

// DefaultFixedStep matches a 50Hz physics step.
const DefaultFixedStep = 20 * time.Millisecond

// NewWorld creates a physics world with the default fixed step.
func NewWorld() *World {
	return &World{FixedStep: DefaultFixedStep}
}

// ApplyExplosion pushes b away from origin. Force falls off linearly from power
// at the origin to zero at radius, and is applied for one fixed step.
// pos is the body's world position. Bodies at or beyond radius are unaffected.
func (w *World) ApplyExplosion(b *Body, pos, origin Vec3, radius, power float64) {
	if b == nil || radius <= 0 {
		return
	}
	offset := pos.Sub(origin)
	dist := offset.Len()
	if dist >= radius {
		return
	}
	dir := offset.Normalize()
	if dir == (Vec3{}) {
		dir = Up
	}
	force := power * (1 - dist/radius)
	b.AddImpulse(dir.Scale(force * w.FixedStep.Seconds()))
}
