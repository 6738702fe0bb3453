package physics

import (
	"math"
	"testing"
	"time"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRaySphereHitsFrontSurface(t *testing.T) {
	d, ok := RaySphere(Vec3{}, Forward, Vec3{Z: 50}, 10)
	if !ok || !near(d, 40) {
		t.Fatalf("ray hit: got=%f ok=%v want=40", d, ok)
	}
}

func TestRaySphereIgnoresSphereBehind(t *testing.T) {
	if _, ok := RaySphere(Vec3{}, Forward, Vec3{Z: -50}, 10); ok {
		t.Fatalf("expected no hit for sphere behind origin")
	}
}

func TestQuatRotateYaw(t *testing.T) {
	q := AxisAngle(Up, math.Pi/2)
	v := q.Rotate(Forward)
	if !near(v.X, 1) || !near(v.Z, 0) {
		t.Fatalf("yaw 90 of forward: got=%+v want=(1,0,0)", v)
	}
}

func TestExplosionFalloff(t *testing.T) {
	w := &World{FixedStep: time.Second}
	near1 := NewBody(1)
	far := NewBody(1)
	outside := NewBody(1)

	w.ApplyExplosion(near1, Vec3{X: 5}, Vec3{}, 20, 100)
	w.ApplyExplosion(far, Vec3{X: 15}, Vec3{}, 20, 100)
	w.ApplyExplosion(outside, Vec3{X: 25}, Vec3{}, 20, 100)

	if !near(near1.Velocity.X, 75) {
		t.Fatalf("near body: got=%f want=75", near1.Velocity.X)
	}
	if !near(far.Velocity.X, 25) {
		t.Fatalf("far body: got=%f want=25", far.Velocity.X)
	}
	if outside.Velocity != (Vec3{}) {
		t.Fatalf("body outside radius moved: %+v", outside.Velocity)
	}
}

func TestSpatialHashFindsNeighbors(t *testing.T) {
	g := NewSpatialHash(10)
	g.Insert(Vec3{X: 1, Y: 1, Z: 1}, 0)
	g.Insert(Vec3{X: 12, Y: 1, Z: 1}, 1)
	g.Insert(Vec3{X: 100, Y: 1, Z: 1}, 2)

	found := map[int]bool{}
	g.QueryAround(Vec3{X: 5, Y: 1, Z: 1}, func(i int) bool {
		found[i] = true
		return false
	})
	if !found[0] || !found[1] || found[2] {
		t.Fatalf("unexpected neighborhood: %v", found)
	}

	g.Clear()
	hits := 0
	g.QueryAround(Vec3{X: 5, Y: 1, Z: 1}, func(int) bool { hits++; return false })
	if hits != 0 {
		t.Fatalf("expected empty grid after Clear, got %d hits", hits)
	}
}
