package object

import (
	"math"
	"time"

	"github.com/tomz197/driftfield/internal/physics"
	"github.com/tomz197/driftfield/internal/pool"
	"github.com/tomz197/driftfield/internal/sim"
)

// AsteroidState is where an asteroid is in its hit cycle.
type AsteroidState int

const (
	Intact AsteroidState = iota
	Fractured
)

func (s AsteroidState) String() string {
	if s == Fractured {
		return "fractured"
	}
	return "intact"
}

const fadeTask = "fade"

// Collider is an on/off sphere collider in the owner's frame.
type Collider struct {
	Radius  float64
	Enabled bool
}

// Piece is one fragment of a fractured asteroid. Poses are local to the asteroid.
type Piece struct {
	Index    int
	Rest     physics.Pose // captured once when the asteroid is built
	Pose     physics.Pose
	Body     *physics.Body // nil when the piece has no rigid body
	Collider Collider
	alpha    float64
}

// Alpha returns the piece opacity, 1 opaque to 0 invisible.
func (p *Piece) Alpha() float64 { return p.alpha }

// SetAlpha sets the piece opacity.
func (p *Piece) SetAlpha(a float64) { p.alpha = a }

// Asteroid is a rock that fractures into fading pieces when shot.
type Asteroid struct {
	ctx    *sim.Context
	entity *pool.Entity
	body   *physics.Body // root body, spins the rock; may be nil

	state           AsteroidState
	radius          float64
	collider        Collider
	meshVisible     bool
	fractureVisible bool
	pieces          []Piece
}

// NewAsteroidFactory builds asteroid behaviors for the pool.
func NewAsteroidFactory(ctx *sim.Context) pool.Factory {
	return func(e *pool.Entity) pool.Behavior {
		return newAsteroid(ctx, e, true)
	}
}

func newAsteroid(ctx *sim.Context, e *pool.Entity, withBody bool) *Asteroid {
	t := ctx.Tuning.Asteroid
	a := &Asteroid{
		ctx:      ctx,
		entity:   e,
		radius:   t.Radius,
		collider: Collider{Radius: t.Radius},
		pieces:   make([]Piece, t.Pieces),
	}
	if withBody {
		a.body = physics.NewBody(t.PieceMass * float64(t.Pieces))
	}

	// Pieces sit inside the rock, spread around its center.
	pieceRadius := t.Radius / 2
	for i := range a.pieces {
		rest := physics.Pose{
			Position: physics.RandomInUnitSphere(ctx.Rand).Scale(t.Radius - pieceRadius),
			Rotation: physics.Euler(
				ctx.Rand.Float64()*2*math.Pi,
				ctx.Rand.Float64()*2*math.Pi,
				ctx.Rand.Float64()*2*math.Pi,
			),
		}
		a.pieces[i] = Piece{
			Index:    i,
			Rest:     rest,
			Pose:     rest,
			Body:     physics.NewBody(t.PieceMass),
			Collider: Collider{Radius: pieceRadius},
			alpha:    1,
		}
	}
	return a
}

// State returns the hit state.
func (a *Asteroid) State() AsteroidState { return a.state }

// HasBody reports whether the asteroid has a root rigid body.
func (a *Asteroid) HasBody() bool { return a.body != nil }

// ColliderEnabled reports whether the single intact collider is on.
func (a *Asteroid) ColliderEnabled() bool { return a.collider.Enabled }

// Pieces returns the fragments. The slice must not be modified.
func (a *Asteroid) Pieces() []Piece { return a.pieces }

// PieceCollidersEnabled reports whether the fragments currently collide.
func (a *Asteroid) PieceCollidersEnabled() bool {
	if !a.fractureVisible || len(a.pieces) == 0 {
		return false
	}
	for i := range a.pieces {
		if !a.pieces[i].Collider.Enabled {
			return false
		}
	}
	return true
}

// OnActivate resets the rock to a whole, opaque asteroid.
func (a *Asteroid) OnActivate() {
	a.state = Intact
	a.meshVisible = true
	a.collider.Enabled = true
	a.fractureVisible = false
	a.resetPieces()
	a.entity.Transform.Rotation = physics.Identity
	if a.body != nil {
		a.body.Zero()
	}
	a.ctx.Watchdog.Watch(a.entity, true)
}

// OnDeactivate leaves the pieces where they are; activation resets them.
// Pending fade steps are cancelled by the scheduler.
func (a *Asteroid) OnDeactivate() {
	a.fractureVisible = false
}

func (a *Asteroid) resetPieces() {
	for i := range a.pieces {
		p := &a.pieces[i]
		p.Pose = p.Rest
		if p.Body != nil {
			p.Body.Zero()
		}
		p.Collider.Enabled = true
		p.alpha = 1
	}
}

// OnCollision fractures an intact asteroid hit by a shot.
func (a *Asteroid) OnCollision(other *pool.Entity) {
	if other.Tag() != sim.TagShot || a.state != Intact {
		return
	}
	a.fracture()
}

func (a *Asteroid) fracture() {
	a.state = Fractured
	a.collider.Enabled = false
	a.meshVisible = false
	a.fractureVisible = true

	t := a.ctx.Tuning.Asteroid
	root := a.entity.Transform
	for i := range a.pieces {
		p := &a.pieces[i]
		p.Collider.Enabled = true
		if p.Body == nil {
			continue
		}
		a.ctx.Physics.ApplyExplosion(p.Body, root.TransformPoint(p.Pose.Position), root.Position, t.ExplosionRadius, t.ExplosionPower)
	}

	a.ctx.Director.SpawnAt(sim.TagDrop, root.Position)

	gen := a.entity.Generation()
	a.ctx.Scheduler.Every(a.entity.ID(), fadeTask, 0, func(dt time.Duration) bool {
		if !a.entity.Active() || a.entity.Generation() != gen || a.state != Fractured {
			return false
		}
		return a.fadeStep(dt)
	})
}

// fadeStep lowers every piece's alpha. It reports false once the fade is over.
func (a *Asteroid) fadeStep(dt time.Duration) bool {
	step := a.ctx.Tuning.Asteroid.FadeRate * dt.Seconds()
	for i := range a.pieces {
		a.pieces[i].alpha -= step
	}
	if len(a.pieces) > 0 && a.pieces[0].alpha > 0 {
		return true
	}
	a.finishFade()
	return false
}

// finishFade puts the pieces back together and retires the asteroid.
// A replacement is spawned near the player so the field keeps its density.
func (a *Asteroid) finishFade() {
	for i := range a.pieces {
		p := &a.pieces[i]
		if p.Body != nil {
			p.Body.Zero()
		}
		p.Pose = p.Rest
	}
	a.fractureVisible = false

	tag := a.entity.Tag()
	a.entity.Deactivate()
	a.ctx.Director.Respawn(tag)
}

// Update gives the rock a slight tumble. Asteroids without a body do not spin.
func (a *Asteroid) Update(time.Duration) {
	if !a.HasBody() {
		return
	}
	a.body.AngularVelocity = physics.RandomInUnitSphere(a.ctx.Rand).Scale(a.ctx.Tuning.Asteroid.Spin)
}

// Move integrates the root body and any flying pieces.
func (a *Asteroid) Move(dt time.Duration) {
	if a.body != nil {
		a.body.Integrate(&a.entity.Transform, dt)
	}
	if !a.fractureVisible {
		return
	}
	for i := range a.pieces {
		p := &a.pieces[i]
		if p.Body != nil {
			p.Body.IntegrateLocal(&p.Pose, a.entity.Transform.Rotation, dt)
		}
	}
}

// Shapes lists the intact collider or the fragments still colliding.
func (a *Asteroid) Shapes(dst []Shape) []Shape {
	root := a.entity.Transform
	if a.collider.Enabled {
		dst = append(dst, Shape{Center: root.Position, Radius: a.collider.Radius})
	}
	if !a.fractureVisible {
		return dst
	}
	for i := range a.pieces {
		p := &a.pieces[i]
		if p.Collider.Enabled {
			dst = append(dst, Shape{
				Center: root.TransformPoint(p.Pose.Position),
				Radius: p.Collider.Radius,
				Debris: true,
			})
		}
	}
	return dst
}

// Views lists the whole rock or the fragments that have not faded out.
func (a *Asteroid) Views(dst []View) []View {
	root := a.entity.Transform
	if a.meshVisible {
		dst = append(dst, View{Kind: KindAsteroid, Position: root.Position, Radius: a.radius, Alpha: 1})
	}
	if !a.fractureVisible {
		return dst
	}
	for i := range a.pieces {
		p := &a.pieces[i]
		if p.alpha <= 0 {
			continue
		}
		dst = append(dst, View{
			Kind:     KindDebris,
			Position: root.TransformPoint(p.Pose.Position),
			Radius:   p.Collider.Radius,
			Alpha:    p.alpha,
		})
	}
	return dst
}

// IceAsteroid is a solid rock that shatters outright: a hit retires it and a
// replacement spawns near the player.
type IceAsteroid struct {
	ctx      *sim.Context
	entity   *pool.Entity
	body     *physics.Body
	collider Collider
}

// NewIceAsteroidFactory builds ice asteroid behaviors for the pool.
func NewIceAsteroidFactory(ctx *sim.Context) pool.Factory {
	return func(e *pool.Entity) pool.Behavior {
		t := ctx.Tuning.Asteroid
		return &IceAsteroid{
			ctx:      ctx,
			entity:   e,
			body:     physics.NewBody(t.PieceMass * float64(t.Pieces)),
			collider: Collider{Radius: t.Radius},
		}
	}
}

// OnActivate resets the rock to a fresh, untumbled one.
func (a *IceAsteroid) OnActivate() {
	a.collider.Enabled = true
	a.entity.Transform.Rotation = physics.Identity
	a.body.Zero()
	a.ctx.Watchdog.Watch(a.entity, true)
}

func (a *IceAsteroid) OnDeactivate() {}

// OnCollision retires the rock when a shot hits it and asks for a replacement.
func (a *IceAsteroid) OnCollision(other *pool.Entity) {
	if other.Tag() != sim.TagShot || !a.entity.Active() {
		return
	}
	tag := a.entity.Tag()
	a.entity.Deactivate()
	a.ctx.Director.Respawn(tag)
}

// Update picks a new random tumble.
func (a *IceAsteroid) Update(time.Duration) {
	a.body.AngularVelocity = physics.RandomInUnitSphere(a.ctx.Rand).Scale(a.ctx.Tuning.Asteroid.Spin)
}

// Move integrates the rock's body.
func (a *IceAsteroid) Move(dt time.Duration) {
	a.body.Integrate(&a.entity.Transform, dt)
}

// Shapes returns the solid collider.
func (a *IceAsteroid) Shapes(dst []Shape) []Shape {
	if !a.collider.Enabled {
		return dst
	}
	return append(dst, Shape{Center: a.entity.Transform.Position, Radius: a.collider.Radius})
}

// Views returns the rock.
func (a *IceAsteroid) Views(dst []View) []View {
	return append(dst, View{Kind: KindIceAsteroid, Position: a.entity.Transform.Position, Radius: a.collider.Radius, Alpha: 1})
}
