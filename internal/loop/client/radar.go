package client

import (
	"math"

	"github.com/tomz197/driftfield/internal/draw"
	"github.com/tomz197/driftfield/internal/loop/config"
	"github.com/tomz197/driftfield/internal/loop/server"
	"github.com/tomz197/driftfield/internal/object"
	"github.com/tomz197/driftfield/internal/physics"
)

// radar projects the field onto the plane of the ship's wings, looking down
// from above. Forward is up on screen and right is right.
type radar struct {
	ship   physics.Pose
	inv    physics.Quat
	center draw.Point
	scale  float64 // logical units per world unit
}

func newRadar(ship physics.Pose, width, height float64) radar {
	return radar{
		ship:   ship,
		inv:    ship.Rotation.Conjugate(),
		center: draw.Point{X: width / 2, Y: height / 2},
		scale:  math.Min(width, height) / 2 / config.RadarRange,
	}
}

// project returns where pos appears on the radar and its height above the
// ship's wing plane. ok is false outside radar range.
func (r radar) project(pos physics.Vec3) (p draw.Point, altitude float64, ok bool) {
	local := r.inv.Rotate(pos.Sub(r.ship.Position))
	if math.Hypot(local.X, local.Z) > config.RadarRange {
		return draw.Point{}, 0, false
	}
	return draw.Point{X: r.center.X + local.X*r.scale, Y: r.center.Y - local.Z*r.scale}, local.Y, true
}

var kindColors = map[object.Kind]draw.Color{
	object.KindAsteroid:    draw.ColorWhite,
	object.KindIceAsteroid: draw.ColorCyan,
	object.KindDebris:      draw.ColorWhite,
	object.KindShot:        draw.ColorYellow,
	object.KindDrop:        draw.ColorGreen,
}

// drawRadar draws range rings, every visible entity and the ship marker.
func drawRadar(c *draw.Canvas, snap *server.WorldSnapshot) {
	r := newRadar(snap.Ship.Pose, c.LogicalWidth(), c.LogicalHeight())
	ring := config.RadarRange * r.scale
	c.DrawCircle(r.center, ring, draw.ColorGray)
	c.DrawCircle(r.center, ring/2, draw.ColorGray)

	for _, v := range snap.Views {
		if v.Alpha <= 0 {
			continue
		}
		p, alt, ok := r.project(v.Position)
		if !ok {
			continue
		}
		color := kindColors[v.Kind]
		if v.Kind == object.KindDebris && v.Alpha < 0.5 {
			color = draw.ColorGray
		}
		radius := math.Max(v.Radius*r.scale, config.RadarMinRadius)
		// Far above or below the wing plane: outline only.
		if math.Abs(alt) > config.RadarRange/4 {
			c.DrawCircle(p, radius, color)
		} else {
			c.FillCircle(p, radius, color)
		}
	}

	// Ship marker, nose up.
	nose := draw.Point{X: r.center.X, Y: r.center.Y - 3}
	c.DrawLine(draw.Point{X: r.center.X - 2, Y: r.center.Y + 2}, nose, draw.ColorBrightCyan)
	c.DrawLine(draw.Point{X: r.center.X + 2, Y: r.center.Y + 2}, nose, draw.ColorBrightCyan)
}
