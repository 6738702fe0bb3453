package object

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tomz197/driftfield/internal/config"
	"github.com/tomz197/driftfield/internal/physics"
	"github.com/tomz197/driftfield/internal/pool"
	"github.com/tomz197/driftfield/internal/sim"
)

const frame = 16 * time.Millisecond

type testWorld struct {
	ctx  *sim.Context
	ship *Ship
	logs *observer.ObservedLogs
}

// newWorld builds one asteroid, five shots and a growable drop pool.
func newWorld(t *testing.T) *testWorld {
	t.Helper()
	tuning := config.DefaultTuning()
	core, logs := observer.New(zap.DebugLevel)
	ctx := sim.New(&tuning, zap.New(core), rand.New(rand.NewSource(7)))

	m, err := config.ParseManifest([]byte(`
pools:
  - {tag: Asteroid, template: asteroid, amount: 1}
  - {tag: Shot, template: shot, amount: 5}
  - {tag: Drop, template: drop, amount: 1, growable: true}
`))
	if err != nil {
		t.Fatal(err)
	}
	entries, err := Entries(m, Templates(ctx))
	if err != nil {
		t.Fatal(err)
	}
	if err := ctx.Pool.Initialize(entries); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	ship := NewShip(ctx)
	ctx.SetPlayer(ship)
	return &testWorld{ctx: ctx, ship: ship, logs: logs}
}

func (w *testWorld) spawnAsteroid(t *testing.T, pos physics.Vec3) (*pool.Entity, *Asteroid) {
	t.Helper()
	e, ok := w.ctx.Director.SpawnAt(sim.TagAsteroid, pos)
	if !ok {
		t.Fatalf("no asteroid available")
	}
	a, ok := e.Behavior().(*Asteroid)
	if !ok {
		t.Fatalf("behavior is %T", e.Behavior())
	}
	return e, a
}

func (w *testWorld) shot(t *testing.T) *pool.Entity {
	t.Helper()
	e, ok := w.ctx.Pool.Acquire(sim.TagShot)
	if !ok {
		t.Fatalf("no shot available")
	}
	e.Activate()
	return e
}

func activeCount(ctx *sim.Context, tag pool.Tag) int {
	_, active := ctx.Pool.Count(tag)
	return active
}

func TestShotHitFracturesInSameCall(t *testing.T) {
	w := newWorld(t)
	_, a := w.spawnAsteroid(t, physics.Vec3{Z: 40})
	if a.State() != Intact || !a.ColliderEnabled() || a.PieceCollidersEnabled() {
		t.Fatalf("fresh asteroid: state=%v collider=%v pieces=%v", a.State(), a.ColliderEnabled(), a.PieceCollidersEnabled())
	}

	a.OnCollision(w.shot(t))

	if a.State() != Fractured {
		t.Fatalf("state: got=%v want=fractured", a.State())
	}
	if a.ColliderEnabled() {
		t.Fatalf("intact collider still enabled")
	}
	if !a.PieceCollidersEnabled() {
		t.Fatalf("piece colliders not enabled")
	}
	if n := activeCount(w.ctx, sim.TagDrop); n != 1 {
		t.Fatalf("drops: got=%d want=1", n)
	}
	moving := 0
	for _, p := range a.Pieces() {
		if p.Body.Velocity != (physics.Vec3{}) {
			moving++
		}
	}
	if moving == 0 {
		t.Fatalf("explosion moved no pieces")
	}
}

func TestNonShotCollisionDoesNotFracture(t *testing.T) {
	w := newWorld(t)
	_, a := w.spawnAsteroid(t, physics.Vec3{Z: 40})
	drop, _ := w.ctx.Director.SpawnAt(sim.TagDrop, physics.Vec3{Z: 40})
	a.OnCollision(drop)
	if a.State() != Intact {
		t.Fatalf("fractured by a drop")
	}
}

func TestFadeRestoresRestPosesExactly(t *testing.T) {
	w := newWorld(t)
	e, a := w.spawnAsteroid(t, physics.Vec3{Z: 40})
	rest := make([]physics.Pose, len(a.Pieces()))
	for i, p := range a.Pieces() {
		rest[i] = p.Rest
	}

	a.OnCollision(w.shot(t))
	gen := e.Generation()
	for i := 0; i < 500 && e.Generation() == gen && e.Active(); i++ {
		a.Move(frame)
		w.ctx.Scheduler.Advance(frame)
	}
	if e.Generation() == gen && e.Active() {
		t.Fatalf("fade never completed")
	}
	if w.ctx.Scheduler.Scheduled(e.ID(), fadeTask) {
		t.Fatalf("fade task left behind")
	}
	for i, p := range a.Pieces() {
		if p.Pose != rest[i] {
			t.Fatalf("piece %d pose: got=%+v want=%+v", i, p.Pose, rest[i])
		}
		if p.Body.Velocity != (physics.Vec3{}) || p.Body.AngularVelocity != (physics.Vec3{}) {
			t.Fatalf("piece %d still moving", i)
		}
	}
}

func TestFadeCompletionRespawnsNearPlayer(t *testing.T) {
	w := newWorld(t)
	e, a := w.spawnAsteroid(t, physics.Vec3{Z: 40})
	a.OnCollision(w.shot(t))

	for i := 0; i < 200; i++ {
		w.ctx.Scheduler.Advance(frame)
	}
	// The single pooled asteroid was retired and handed straight back out.
	if !e.Active() || e.Generation() != 2 {
		t.Fatalf("replacement: active=%v generation=%d", e.Active(), e.Generation())
	}
	if a.State() != Intact {
		t.Fatalf("replacement state: %v", a.State())
	}
	p := e.Transform.Position
	if math.Abs(p.X) > 200 || math.Abs(p.Y) > 200 || math.Abs(p.Z) > 200 {
		t.Fatalf("replacement outside respawn range: %+v", p)
	}
}

func TestDeactivateMidFadeLeavesNoStaleProgress(t *testing.T) {
	w := newWorld(t)
	e, a := w.spawnAsteroid(t, physics.Vec3{Z: 40})
	a.OnCollision(w.shot(t))
	for i := 0; i < 60; i++ {
		a.Move(frame)
		w.ctx.Scheduler.Advance(frame)
	}
	if alpha := a.Pieces()[0].Alpha(); alpha <= 0 || alpha >= 1 {
		t.Fatalf("expected a partial fade, alpha=%f", alpha)
	}

	e.Deactivate()
	if w.ctx.Scheduler.Scheduled(e.ID(), fadeTask) {
		t.Fatalf("fade survived deactivation")
	}

	e2, a2 := w.spawnAsteroid(t, physics.Vec3{Z: -40})
	if e2 != e {
		t.Fatalf("expected the same pooled asteroid back")
	}
	if a2.State() != Intact || !a2.ColliderEnabled() {
		t.Fatalf("reactivated asteroid not intact")
	}
	for i, p := range a2.Pieces() {
		if p.Alpha() != 1 || p.Pose != p.Rest {
			t.Fatalf("piece %d carried fade state: alpha=%f", i, p.Alpha())
		}
	}

	for i := 0; i < 250; i++ {
		w.ctx.Scheduler.Advance(frame)
	}
	if !e.Active() || e.Generation() != 2 {
		t.Fatalf("stale fade retired the reused asteroid")
	}
}

func TestAsteroidWithoutBodyDoesNotSpin(t *testing.T) {
	tuning := config.DefaultTuning()
	ctx := sim.New(&tuning, nil, rand.New(rand.NewSource(1)))
	err := ctx.Pool.Initialize([]pool.Entry{{
		Tag:    sim.TagAsteroid,
		Amount: 1,
		New: func(e *pool.Entity) pool.Behavior {
			return newAsteroid(ctx, e, false)
		},
	}})
	if err != nil {
		t.Fatal(err)
	}
	ctx.SetPlayer(NewShip(ctx))

	e, _ := ctx.Director.SpawnAt(sim.TagAsteroid, physics.Vec3{X: 10})
	a := e.Behavior().(*Asteroid)
	if a.HasBody() {
		t.Fatalf("asteroid has a body")
	}
	a.Update(frame)
	a.Move(frame)
	if e.Transform.Rotation != physics.Identity {
		t.Fatalf("bodiless asteroid rotated")
	}
}

func TestAsteroidSpins(t *testing.T) {
	w := newWorld(t)
	e, a := w.spawnAsteroid(t, physics.Vec3{X: 10})
	a.Update(frame)
	if a.body.AngularVelocity.Len() > w.ctx.Tuning.Asteroid.Spin {
		t.Fatalf("spin too fast: %f", a.body.AngularVelocity.Len())
	}
	a.Move(time.Second)
	if e.Transform.Position != (physics.Vec3{X: 10}) {
		t.Fatalf("spin moved the asteroid")
	}
}

func TestReactivatedAsteroidStartsUnrotated(t *testing.T) {
	w := newWorld(t)
	e, a := w.spawnAsteroid(t, physics.Vec3{X: 10})
	a.Update(frame)
	a.Move(time.Second)
	if e.Transform.Rotation == physics.Identity {
		t.Fatalf("asteroid did not tumble")
	}

	e.Deactivate()
	e2, _ := w.spawnAsteroid(t, physics.Vec3{X: -10})
	if e2 != e {
		t.Fatalf("expected the same pooled asteroid back")
	}
	if e.Transform.Rotation != physics.Identity {
		t.Fatalf("rotation: got=%+v want=%+v", e.Transform.Rotation, physics.Identity)
	}
}

func TestReactivatedIceAsteroidStartsUnrotated(t *testing.T) {
	tuning := config.DefaultTuning()
	ctx := sim.New(&tuning, nil, rand.New(rand.NewSource(3)))
	err := ctx.Pool.Initialize([]pool.Entry{
		{Tag: sim.TagAsteroid, Template: "ice_asteroid", Amount: 1, New: NewIceAsteroidFactory(ctx)},
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx.SetPlayer(NewShip(ctx))

	e, _ := ctx.Director.SpawnAt(sim.TagAsteroid, physics.Vec3{X: 10})
	ice := e.Behavior().(*IceAsteroid)
	ice.Update(frame)
	ice.Move(time.Second)
	if e.Transform.Rotation == physics.Identity {
		t.Fatalf("ice asteroid did not tumble")
	}

	e.Deactivate()
	ctx.Director.SpawnAt(sim.TagAsteroid, physics.Vec3{X: -10})
	if e.Transform.Rotation != physics.Identity {
		t.Fatalf("rotation: got=%+v want=%+v", e.Transform.Rotation, physics.Identity)
	}
}

func TestSixthShotIsNoAmmo(t *testing.T) {
	w := newWorld(t)
	for i := 0; i < 5; i++ {
		if !w.ship.Fire() {
			t.Fatalf("shot %d failed", i+1)
		}
	}
	if w.ship.Fire() {
		t.Fatalf("sixth shot fired from a pool of five")
	}
	if n := w.logs.FilterMessage("no ammo").FilterLevelExact(zap.WarnLevel).Len(); n != 1 {
		t.Fatalf("no ammo warnings: got=%d want=1", n)
	}
	if n := activeCount(w.ctx, sim.TagShot); n != 5 {
		t.Fatalf("active shots: got=%d want=5", n)
	}
}

func TestShotFliesFromNose(t *testing.T) {
	w := newWorld(t)
	w.ship.Fire()

	var fired *pool.Entity
	for _, ent := range w.ctx.Pool.Entities() {
		if ent.Tag() == sim.TagShot && ent.Active() {
			fired = ent
		}
	}
	start := fired.Transform.Position
	if start != (physics.Vec3{Z: w.ctx.Tuning.Ship.NoseOffset}) {
		t.Fatalf("shot start: %+v", start)
	}
	fired.Behavior().(*Shot).Move(time.Second)
	want := physics.Vec3{Z: w.ctx.Tuning.Ship.NoseOffset + w.ctx.Tuning.Shot.Speed}
	if d := physics.Distance(fired.Transform.Position, want); d > 1e-9 {
		t.Fatalf("shot position: got=%+v want=%+v", fired.Transform.Position, want)
	}
}

func TestShotExpiryIgnoresRecycledShot(t *testing.T) {
	tuning := config.DefaultTuning()
	ctx := sim.New(&tuning, nil, rand.New(rand.NewSource(1)))
	if err := ctx.Pool.Initialize([]pool.Entry{{Tag: sim.TagShot, Amount: 1, New: NewShotFactory(ctx)}}); err != nil {
		t.Fatal(err)
	}
	ship := NewShip(ctx)
	ctx.SetPlayer(ship)

	ship.Fire()
	e := ctx.Pool.Entities()[0]
	ctx.Scheduler.Advance(3 * time.Second)
	e.Deactivate()
	ship.Fire()
	ctx.Scheduler.Advance(3 * time.Second)
	if !e.Active() {
		t.Fatalf("first shot's expiry retired the second shot")
	}
	ctx.Scheduler.Advance(2 * time.Second)
	if e.Active() {
		t.Fatalf("second shot outlived its lifetime")
	}
}

func TestShotStopsOnAsteroid(t *testing.T) {
	w := newWorld(t)
	ast, _ := w.spawnAsteroid(t, physics.Vec3{Z: 40})
	s := w.shot(t)
	s.Behavior().(*Shot).OnCollision(ast)
	if s.Active() {
		t.Fatalf("shot survived hitting an asteroid")
	}
}

func TestIceAsteroidShatters(t *testing.T) {
	tuning := config.DefaultTuning()
	ctx := sim.New(&tuning, nil, rand.New(rand.NewSource(3)))
	err := ctx.Pool.Initialize([]pool.Entry{
		{Tag: sim.TagAsteroid, Template: "ice_asteroid", Amount: 1, New: NewIceAsteroidFactory(ctx)},
		{Tag: sim.TagShot, Amount: 1, New: NewShotFactory(ctx)},
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx.SetPlayer(NewShip(ctx))

	e, _ := ctx.Director.SpawnAt(sim.TagAsteroid, physics.Vec3{X: 450})
	shot, _ := ctx.Pool.Acquire(sim.TagShot)
	shot.Activate()
	e.Behavior().(*IceAsteroid).OnCollision(shot)

	if !e.Active() || e.Generation() != 2 {
		t.Fatalf("ice asteroid not respawned: active=%v generation=%d", e.Active(), e.Generation())
	}
	if physics.Distance(e.Transform.Position, physics.Vec3{}) > 200*math.Sqrt(3) {
		t.Fatalf("respawned too far: %+v", e.Transform.Position)
	}
	if n := activeCount(ctx, sim.TagDrop); n != 0 {
		t.Fatalf("ice asteroid released %d drops", n)
	}
}

func TestDropPickupCapsFuel(t *testing.T) {
	w := newWorld(t)
	w.ship.fuel = 95
	d, _ := w.ctx.Director.SpawnAt(sim.TagDrop, physics.Vec3{Z: 5})

	w.ship.OnTrigger(d)
	if w.ship.Fuel() != 100 {
		t.Fatalf("fuel: got=%f want=100", w.ship.Fuel())
	}
	if d.Active() {
		t.Fatalf("drop not consumed")
	}

	w.ship.fuel = 50
	w.ship.OnTrigger(d)
	if w.ship.Fuel() != 50 {
		t.Fatalf("inactive drop gave fuel: %f", w.ship.Fuel())
	}
}

func TestDropExpires(t *testing.T) {
	w := newWorld(t)
	d, _ := w.ctx.Director.SpawnAt(sim.TagDrop, physics.Vec3{Z: 5})
	w.ctx.Scheduler.Advance(29 * time.Second)
	if !d.Active() {
		t.Fatalf("drop expired early")
	}
	w.ctx.Scheduler.Advance(time.Second)
	if d.Active() {
		t.Fatalf("drop outlived its lifetime")
	}
}

func TestShipFlightAndFuel(t *testing.T) {
	w := newWorld(t)
	w.ship.Update(Input{}, time.Second)
	if w.ship.Speed() != w.ctx.Tuning.Ship.NormalSpeed {
		t.Fatalf("speed: got=%f want=%f", w.ship.Speed(), w.ctx.Tuning.Ship.NormalSpeed)
	}
	if w.ship.Pose.Position.Z <= 0 {
		t.Fatalf("ship did not move forward: %+v", w.ship.Pose.Position)
	}
	if w.ship.Fuel() != 98 {
		t.Fatalf("fuel: got=%f want=98", w.ship.Fuel())
	}

	w.ship.Update(Input{Yaw: 1}, 100*time.Millisecond)
	if w.ship.Pose.Forward().X <= 0 {
		t.Fatalf("yaw right did not turn right: %+v", w.ship.Pose.Forward())
	}

	w.ship.Update(Input{}, time.Minute)
	if over, reason := w.ship.GameOver(); !over || reason != ReasonFuel {
		t.Fatalf("game over: %v %q", over, reason)
	}
	pos := w.ship.Pose.Position
	w.ship.Update(Input{}, time.Second)
	if w.ship.Pose.Position != pos {
		t.Fatalf("ship moved after game over")
	}
}

func TestShipHitsAsteroid(t *testing.T) {
	w := newWorld(t)
	e, _ := w.spawnAsteroid(t, physics.Vec3{Z: 2})
	w.ship.OnCollision(e)
	if over, reason := w.ship.GameOver(); !over || reason != ReasonCollision {
		t.Fatalf("game over: %v %q", over, reason)
	}
}

func TestScanFindsNearestAsteroid(t *testing.T) {
	w := newWorld(t)
	w.ship.Scan([]Shape{
		{Center: physics.Vec3{Z: 50}, Radius: 6},
		{Center: physics.Vec3{Z: 20}, Radius: 6},
		{Center: physics.Vec3{Z: 10}, Radius: 3, Trigger: true},
		{Center: physics.Vec3{Z: 10}, Radius: 3, Debris: true},
		{Center: physics.Vec3{Z: -20}, Radius: 6},
	})
	d, ok := w.ship.Range()
	want := 20 - 6 - w.ctx.Tuning.Ship.NoseOffset
	if !ok || math.Abs(d-want) > 1e-9 {
		t.Fatalf("range: got=%f,%v want=%f", d, ok, want)
	}

	w.ship.Scan(nil)
	if _, ok := w.ship.Range(); ok {
		t.Fatalf("range kept after losing the target")
	}
}

func TestEntriesRejectUnknownTemplate(t *testing.T) {
	m := config.Manifest{Pools: []config.PoolSpec{{Tag: "Asteroid", Template: "comet", Amount: 1}}}
	if _, err := Entries(m, map[string]pool.Factory{}); err == nil {
		t.Fatalf("expected unknown template error")
	}
}
