package physics

import "math"

// SpatialHash is a hashed uniform grid for broad-phase collision detection in an
// unbounded world. Objects are inserted by position and index, then nearby objects
// can be queried via a 3x3x3 neighborhood lookup.
//
// Cell size must be >= the maximum interaction distance between any two
// colliding objects so that all potential collisions are found within
// the neighborhood.
type SpatialHash struct {
	cellSize    float64
	invCellSize float64 // 1 / cellSize (precomputed to avoid division)
	cells       map[cellKey]*gridCell
	used        []*gridCell // cells touched since the last Clear
}

type cellKey struct {
	x, y, z int
}

// gridCell stores the indices of objects that fall within a grid cell.
// The slice is reused between frames (reset to [:0]) to avoid allocations.
type gridCell struct {
	items []int
}

// NewSpatialHash creates an empty spatial hash.
// cellSize should be >= the maximum collision distance for the objects being inserted.
func NewSpatialHash(cellSize float64) *SpatialHash {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &SpatialHash{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cells:       make(map[cellKey]*gridCell),
	}
}

// Clear removes all items without deallocating cell memory.
func (g *SpatialHash) Clear() {
	for _, c := range g.used {
		c.items = c.items[:0]
	}
	g.used = g.used[:0]
}

// Insert adds an item (identified by index) at the given world position.
func (g *SpatialHash) Insert(p Vec3, index int) {
	key := g.keyOf(p)
	c, ok := g.cells[key]
	if !ok {
		c = &gridCell{}
		g.cells[key] = c
	}
	if len(c.items) == 0 {
		g.used = append(g.used, c)
	}
	c.items = append(c.items, index)
}

// QueryAround calls fn for each item index in the 3x3x3 cell neighborhood
// around the given world position.
// If fn returns true, iteration stops early (useful for "find first" queries).
func (g *SpatialHash) QueryAround(p Vec3, fn func(index int) bool) {
	k := g.keyOf(p)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				c, ok := g.cells[cellKey{k.x + dx, k.y + dy, k.z + dz}]
				if !ok {
					continue
				}
				for _, idx := range c.items {
					if fn(idx) {
						return
					}
				}
			}
		}
	}
}

func (g *SpatialHash) keyOf(p Vec3) cellKey {
	return cellKey{
		x: int(math.Floor(p.X * g.invCellSize)),
		y: int(math.Floor(p.Y * g.invCellSize)),
		z: int(math.Floor(p.Z * g.invCellSize)),
	}
}
