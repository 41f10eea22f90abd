// Package cellid implements the 64-bit octree cell code.
//
// Layout, most significant bit first:
//
//	bits 63..7  path: one 3-bit octant selector per level, level 1 in bits 63..61
//	bits 6..2   depth (0 = world root)
//	bit  1      reserved, always zero
//	bit  0      border flag, not part of the spatial key
//
// An octant selector has bit 2 set for the upper X half, bit 1 for the upper
// Y half and bit 0 for the upper Z half. Unused path levels are zero, so a
// code masked to a shallower depth is the code of its ancestor at that depth.
package cellid

import (
	"fmt"
	"math"
	"math/bits"
	"strings"

	"github.com/jdimyadi/bimrl/internal/geometry"
)

// MaxDepth is the deepest level the path field can address.
const MaxDepth = 19

const (
	borderBit  = 1
	depthShift = 2
	depthMask  = 0x1f << depthShift
	pathShift  = 64 - 3*MaxDepth
)

// ID is a cell code. The zero value is the world root.
type ID uint64

// Root is the cell covering the whole world box.
const Root ID = 0

// pathMask keeps the path bits of levels 1..d.
func pathMask(d int) uint64 {
	if d == 0 {
		return 0
	}
	return ^uint64(0) << (64 - 3*uint(d))
}

func levelShift(level int) uint { return uint(64 - 3*level) }

func checkDepth(d int) {
	if d < 0 || d > MaxDepth {
		panic(fmt.Sprintf("cellid: depth %d outside [0,%d]", d, MaxDepth))
	}
}

// Depth returns the level of the cell.
func (c ID) Depth() int { return int(uint64(c)&depthMask) >> depthShift }

// Key returns the code without the border flag.
func (c ID) Key() ID { return c &^ borderBit }

// IsBorder reports whether the border flag is set.
func (c ID) IsBorder() bool { return c&borderBit != 0 }

// WithBorder returns c with the border flag set to border.
func (c ID) WithBorder(border bool) ID {
	if border {
		return c | borderBit
	}
	return c &^ borderBit
}

// Child returns the code of octant i (0..7) of c. It panics when i is out of
// range or c is already at MaxDepth. The border flag is not inherited.
func (c ID) Child(i int) ID {
	if i < 0 || i > 7 {
		panic(fmt.Sprintf("cellid: octant %d outside [0,7]", i))
	}
	d := c.Depth()
	if d >= MaxDepth {
		panic(fmt.Sprintf("cellid: cell %v is at max depth", c))
	}
	path := uint64(c) & pathMask(d)
	path |= uint64(i) << levelShift(d+1)
	return ID(path | uint64(d+1)<<depthShift)
}

// Ancestor returns the ancestor of c at depth d, or c itself (without the
// border flag) when d equals its depth.
func (c ID) Ancestor(d int) ID {
	if d < 0 || d > c.Depth() {
		panic(fmt.Sprintf("cellid: ancestor depth %d outside [0,%d]", d, c.Depth()))
	}
	return ID(uint64(c)&pathMask(d) | uint64(d)<<depthShift)
}

// Parent returns the direct ancestor. The root is its own parent.
func (c ID) Parent() ID {
	if d := c.Depth(); d > 0 {
		return c.Ancestor(d - 1)
	}
	return Root
}

// Octant returns the selector used at the given level (1..Depth).
func (c ID) Octant(level int) int {
	if level < 1 || level > c.Depth() {
		panic(fmt.Sprintf("cellid: level %d outside [1,%d]", level, c.Depth()))
	}
	return int(uint64(c)>>levelShift(level)) & 7
}

// Contains reports whether o is c or one of its descendants.
func (c ID) Contains(o ID) bool {
	d := c.Depth()
	return o.Depth() >= d && o.Ancestor(d) == c.Key()
}

// Coords returns the integer grid position of the cell at its own depth.
func (c ID) Coords() (ix, iy, iz uint32) {
	for level := 1; level <= c.Depth(); level++ {
		o := c.Octant(level)
		ix = ix<<1 | uint32(o>>2&1)
		iy = iy<<1 | uint32(o>>1&1)
		iz = iz<<1 | uint32(o&1)
	}
	return ix, iy, iz
}

// FromCoords builds the code of grid cell (ix, iy, iz) at depth d.
func FromCoords(ix, iy, iz uint32, d int) ID {
	checkDepth(d)
	var path uint64
	for level := 1; level <= d; level++ {
		b := uint(d - level)
		o := uint64(ix>>b&1)<<2 | uint64(iy>>b&1)<<1 | uint64(iz>>b&1)
		path |= o << levelShift(level)
	}
	return ID(path | uint64(d)<<depthShift)
}

// Locate returns the depth-d cell of world containing p. Points outside the
// world snap to the nearest boundary cell.
func Locate(world geometry.BoundingBox, p geometry.Point3D, d int) ID {
	checkDepth(d)
	n := uint32(1) << uint(d)
	s := world.Size()
	return FromCoords(
		gridIndex(p.X-world.Min.X, s.X, n),
		gridIndex(p.Y-world.Min.Y, s.Y, n),
		gridIndex(p.Z-world.Min.Z, s.Z, n),
		d,
	)
}

func gridIndex(offset, size float64, n uint32) uint32 {
	if size <= 0 || offset <= 0 {
		return 0
	}
	f := math.Floor(offset / size * float64(n))
	if f >= float64(n) {
		return n - 1
	}
	return uint32(f)
}

// SmallestEnclosing returns the deepest cell that is an ancestor of (or equal
// to) every id. It returns Root for no ids.
func SmallestEnclosing(ids ...ID) ID {
	if len(ids) == 0 {
		return Root
	}
	first := uint64(ids[0]) >> pathShift
	depth := ids[0].Depth()
	var diff uint64
	for _, id := range ids[1:] {
		diff |= first ^ uint64(id)>>pathShift
		depth = min(depth, id.Depth())
	}
	if diff != 0 {
		// The path field holds 3*MaxDepth bits right-aligned in 64.
		common := (bits.LeadingZeros64(diff) - pathShift) / 3
		depth = min(depth, common)
	}
	return ids[0].Ancestor(depth)
}

// Enclosing returns the smallest cell of depth at most d that contains the
// box b. Corners outside world are snapped onto it.
func Enclosing(world, b geometry.BoundingBox, d int) ID {
	return SmallestEnclosing(Locate(world, b.Min, d), Locate(world, b.Max, d))
}

// Bounds returns the box of the cell inside world. Neighbouring cells share
// bit-identical wall coordinates.
func (c ID) Bounds(world geometry.BoundingBox) geometry.BoundingBox {
	d := c.Depth()
	ix, iy, iz := c.Coords()
	n := uint32(1) << uint(d)
	s := world.Size()
	lox, hix := span(world.Min.X, world.Max.X, s.X, ix, n)
	loy, hiy := span(world.Min.Y, world.Max.Y, s.Y, iy, n)
	loz, hiz := span(world.Min.Z, world.Max.Z, s.Z, iz, n)
	return geometry.BoundingBox{
		Min: geometry.NewPoint3D(lox, loy, loz),
		Max: geometry.NewPoint3D(hix, hiy, hiz),
	}
}

func span(lo, hi, size float64, i, n uint32) (float64, float64) {
	at := func(k uint32) float64 {
		switch k {
		case 0:
			return lo
		case n:
			return hi
		}
		return lo + size*float64(k)/float64(n)
	}
	return at(i), at(i + 1)
}

// Int64 returns the code bit-cast for storage in signed integer columns.
func (c ID) Int64() int64 { return int64(c) }

// FromInt64 reverses Int64.
func FromInt64(v int64) ID { return ID(v) }

// String renders the code as "d3:0.4.7", with a trailing "*" for border cells.
func (c ID) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "d%d:", c.Depth())
	for level := 1; level <= c.Depth(); level++ {
		if level > 1 {
			b.WriteByte('.')
		}
		b.WriteByte(byte('0' + c.Octant(level)))
	}
	if c.IsBorder() {
		b.WriteByte('*')
	}
	return b.String()
}
