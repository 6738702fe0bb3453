package physics

import (
	"math"
	"math/rand"
)

// Vec3 is a point or direction in world space.
type Vec3 struct {
	X, Y, Z float64
}

// Common axes. Forward is +Z, matching the ship's nose at identity rotation.
var (
	Zero    = Vec3{}
	Right   = Vec3{X: 1}
	Up      = Vec3{Y: 1}
	Forward = Vec3{Z: 1}
)

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the right-handed cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Len returns the vector magnitude.
func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns a unit vector, or the zero vector if v has no length.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Lerp linearly interpolates between a and b. t is not clamped.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// RandomInUnitSphere returns a uniformly distributed point inside the unit sphere.
func RandomInUnitSphere(r *rand.Rand) Vec3 {
	for {
		v := Vec3{r.Float64()*2 - 1, r.Float64()*2 - 1, r.Float64()*2 - 1}
		if v.Dot(v) <= 1 {
			return v
		}
	}
}

// Quat is a unit quaternion rotation.
type Quat struct {
	W, X, Y, Z float64
}

// Identity is the no-rotation quaternion.
var Identity = Quat{W: 1}

// AxisAngle builds a rotation of angle radians around axis.
func AxisAngle(axis Vec3, angle float64) Quat {
	axis = axis.Normalize()
	s, c := math.Sincos(angle / 2)
	return Quat{W: c, X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s}
}

// Euler builds a rotation from pitch (X), yaw (Y) and roll (Z) in radians,
// applied roll first, then pitch, then yaw.
func Euler(pitch, yaw, roll float64) Quat {
	return AxisAngle(Up, yaw).Mul(AxisAngle(Right, pitch)).Mul(AxisAngle(Forward, roll))
}

// Mul composes two rotations: the result applies o first, then q.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

// Normalize rescales q to unit length. Drift from repeated Mul calls is removed this way.
func (q Quat) Normalize() Quat {
	l := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if l == 0 {
		return Identity
	}
	return Quat{q.W / l, q.X / l, q.Y / l, q.Z / l}
}

// Conjugate returns the inverse of a unit quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{q.W, -q.X, -q.Y, -q.Z}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Integrate advances the rotation by an angular velocity (radians/sec, world axes) over dt seconds.
func (q Quat) Integrate(angVel Vec3, dt float64) Quat {
	angle := angVel.Len() * dt
	if angle == 0 {
		return q
	}
	return AxisAngle(angVel, angle).Mul(q).Normalize()
}

// Pose is a position and rotation, used both for world transforms and local offsets.
type Pose struct {
	Position Vec3
	Rotation Quat
}

// Forward returns the pose's forward axis in world space.
func (p Pose) Forward() Vec3 { return p.Rotation.Rotate(Forward) }

// Up returns the pose's up axis in world space.
func (p Pose) Up() Vec3 { return p.Rotation.Rotate(Up) }

// Right returns the pose's right axis in world space.
func (p Pose) Right() Vec3 { return p.Rotation.Rotate(Right) }

// TransformPoint converts a local offset to world space.
func (p Pose) TransformPoint(local Vec3) Vec3 {
	return p.Position.Add(p.Rotation.Rotate(local))
}
