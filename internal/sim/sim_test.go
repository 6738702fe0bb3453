package sim

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tomz197/driftfield/internal/config"
	"github.com/tomz197/driftfield/internal/physics"
	"github.com/tomz197/driftfield/internal/pool"
)

type fakePlayer struct {
	pos physics.Vec3
	ok  bool
}

func (p *fakePlayer) PlayerPosition() (physics.Vec3, bool) { return p.pos, p.ok }

// roamer stands in for an asteroid: it is watched while active.
type roamer struct {
	ctx     *Context
	e       *pool.Entity
	respawn bool
}

func (r *roamer) OnActivate()   { r.ctx.Watchdog.Watch(r.e, r.respawn) }
func (r *roamer) OnDeactivate() {}

func newContext(t *testing.T, entries ...pool.Entry) (*Context, *fakePlayer) {
	t.Helper()
	tuning := config.DefaultTuning()
	ctx := New(&tuning, zap.NewNop(), rand.New(rand.NewSource(1)))
	for i := range entries {
		if entries[i].New == nil {
			entries[i].New = func(e *pool.Entity) pool.Behavior {
				return &roamer{ctx: ctx, e: e, respawn: true}
			}
		}
	}
	if err := ctx.Pool.Initialize(entries); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	player := &fakePlayer{ok: true}
	ctx.SetPlayer(player)
	return ctx, player
}

func withinCube(t *testing.T, pos, center physics.Vec3, extent float64) {
	t.Helper()
	d := pos.Sub(center)
	if math.Abs(d.X) > extent || math.Abs(d.Y) > extent || math.Abs(d.Z) > extent {
		t.Fatalf("position %+v outside ±%.0f of %+v", pos, extent, center)
	}
}

func activeEntities(ctx *Context, tag pool.Tag) []*pool.Entity {
	var out []*pool.Entity
	for _, e := range ctx.Pool.Entities() {
		if e.Active() && e.Tag() == tag {
			out = append(out, e)
		}
	}
	return out
}

func TestSpawnInitialStaysInRange(t *testing.T) {
	ctx, player := newContext(t, pool.Entry{Tag: TagAsteroid, Amount: 40})
	player.pos = physics.Vec3{X: 10, Y: -20, Z: 30}

	if n := ctx.Director.SpawnInitial(); n != 40 {
		t.Fatalf("spawned: got=%d want=40", n)
	}
	for _, e := range activeEntities(ctx, TagAsteroid) {
		withinCube(t, e.Transform.Position, player.pos, 300)
	}
}

func TestSpawnManyStopsAtExhaustion(t *testing.T) {
	ctx, _ := newContext(t, pool.Entry{Tag: TagShot, Amount: 2})
	if n := ctx.Director.SpawnMany(TagShot, ctx.Tuning.Spawn.Respawn, 5); n != 2 {
		t.Fatalf("spawned: got=%d want=2", n)
	}
	if _, ok := ctx.Director.SpawnOne(TagShot, ctx.Tuning.Spawn.Respawn); ok {
		t.Fatalf("spawned from exhausted pool")
	}
}

func TestSpawnWithoutPlayerDoesNothing(t *testing.T) {
	ctx, player := newContext(t, pool.Entry{Tag: TagDrop, Amount: 0, Growable: true})
	player.ok = false

	if _, ok := ctx.Director.Respawn(TagDrop); ok {
		t.Fatalf("spawned without a player")
	}
	if total, _ := ctx.Pool.Count(TagDrop); total != 0 {
		t.Fatalf("pool grew without a spawn: %d", total)
	}

	ctx.SetPlayer(nil)
	if _, ok := ctx.Director.SpawnOne(TagDrop, ctx.Tuning.Spawn.Respawn); ok {
		t.Fatalf("spawned with nil player")
	}
}

func TestSpawnAtUsesExactPosition(t *testing.T) {
	ctx, _ := newContext(t, pool.Entry{Tag: TagDrop, Amount: 1})
	pos := physics.Vec3{X: 1, Y: 2, Z: 3}
	e, ok := ctx.Director.SpawnAt(TagDrop, pos)
	if !ok || e.Transform.Position != pos || !e.Active() {
		t.Fatalf("spawn at: ok=%v entity=%+v", ok, e)
	}
}

func TestWatchdogRetiresDistantEntityAndRespawnsOne(t *testing.T) {
	ctx, player := newContext(t, pool.Entry{Tag: TagAsteroid, Amount: 3})

	far, _ := ctx.Director.SpawnAt(TagAsteroid, physics.Vec3{X: 600})
	near, _ := ctx.Director.SpawnAt(TagAsteroid, physics.Vec3{Y: 100})

	ctx.Scheduler.Advance(500 * time.Millisecond)

	active := activeEntities(ctx, TagAsteroid)
	if len(active) != 2 {
		t.Fatalf("active asteroids: got=%d want=2", len(active))
	}
	if !near.Active() || near.Transform.Position != (physics.Vec3{Y: 100}) {
		t.Fatalf("nearby asteroid disturbed")
	}
	for _, e := range active {
		if e == near {
			continue
		}
		withinCube(t, e.Transform.Position, player.pos, 200)
		if e == far && e.Generation() != 2 {
			t.Fatalf("reused entity generation: got=%d want=2", e.Generation())
		}
		if !ctx.Scheduler.Scheduled(e.ID(), watchdogTask) {
			t.Fatalf("replacement not watched")
		}
	}
}

func TestWatchdogCheckOnInactiveIsNoop(t *testing.T) {
	ctx, _ := newContext(t, pool.Entry{Tag: TagAsteroid, Amount: 2})
	e, _ := ctx.Director.SpawnAt(TagAsteroid, physics.Vec3{X: 900})
	e.Deactivate()

	if ctx.Scheduler.Scheduled(e.ID(), watchdogTask) {
		t.Fatalf("watchdog survived deactivation")
	}
	if again := ctx.Watchdog.Check(e, true); again {
		t.Fatalf("inactive check asked to reschedule")
	}
	if n := len(activeEntities(ctx, TagAsteroid)); n != 0 {
		t.Fatalf("inactive check spawned %d asteroids", n)
	}
}

func TestWatchdogWithoutPlayerKeepsChecking(t *testing.T) {
	ctx, player := newContext(t, pool.Entry{Tag: TagAsteroid, Amount: 1})
	e, _ := ctx.Director.SpawnAt(TagAsteroid, physics.Vec3{X: 600})
	player.ok = false

	ctx.Scheduler.Advance(500 * time.Millisecond)
	ctx.Scheduler.Advance(500 * time.Millisecond)
	if !e.Active() || !ctx.Scheduler.Scheduled(e.ID(), watchdogTask) {
		t.Fatalf("entity retired without a player: active=%v", e.Active())
	}

	player.ok = true
	ctx.Scheduler.Advance(500 * time.Millisecond)
	if e.Transform.Position == (physics.Vec3{X: 600}) {
		t.Fatalf("entity not retired once the player returned")
	}
}

func TestWatchdogWithoutRespawn(t *testing.T) {
	tuning := config.DefaultTuning()
	ctx := New(&tuning, nil, rand.New(rand.NewSource(2)))
	err := ctx.Pool.Initialize([]pool.Entry{{
		Tag:    TagDrop,
		Amount: 2,
		New: func(e *pool.Entity) pool.Behavior {
			return &roamer{ctx: ctx, e: e}
		},
	}})
	if err != nil {
		t.Fatal(err)
	}
	ctx.SetPlayer(&fakePlayer{ok: true})

	ctx.Director.SpawnAt(TagDrop, physics.Vec3{Z: -501})
	ctx.Scheduler.Advance(time.Second)
	if n := len(activeEntities(ctx, TagDrop)); n != 0 {
		t.Fatalf("active drops: got=%d want=0", n)
	}
}
