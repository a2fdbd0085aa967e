package navmesh

import (
	"math"

	"navd/pkg/navmesh/format"
)

func vertAt(tile *format.Tile, index uint16) Vector3 {
	return Vector3{
		X: tile.Verts[int(index)*3+0],
		Y: tile.Verts[int(index)*3+1],
		Z: tile.Verts[int(index)*3+2],
	}
}

// polyCentroid 多边形顶点的算术重心
func polyCentroid(tile *format.Tile, polyIdx uint16) Vector3 {
	poly := &tile.Polys[polyIdx]
	var center Vector3
	for i := uint8(0); i < poly.VertCount; i++ {
		v := vertAt(tile, poly.Verts[i])
		center.X += v.X
		center.Y += v.Y
		center.Z += v.Z
	}
	n := float32(poly.VertCount)
	center.X /= n
	center.Y /= n
	center.Z /= n
	return center
}

func distance(a Vector3, b Vector3) float32 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	dz := float64(a.Z - b.Z)
	return float32(math.Sqrt(dx*dx + dy*dy + dz*dz))
}

func sqrDistance2D(a Vector3, b Vector3) float32 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return dx*dx + dz*dz
}

// polyContains2D 水平面上的射线法点包含测试
func polyContains2D(tile *format.Tile, polyIdx uint16, x float32, z float32) bool {
	poly := &tile.Polys[polyIdx]
	inside := false
	n := int(poly.VertCount)
	j := n - 1
	for i := 0; i < n; i++ {
		vi := vertAt(tile, poly.Verts[i])
		vj := vertAt(tile, poly.Verts[j])
		if (vi.Z > z) != (vj.Z > z) &&
			x < (vj.X-vi.X)*(z-vi.Z)/(vj.Z-vi.Z)+vi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// polyHeightAt 由多边形前三个顶点构成的平面在(x,z)处的高度
func polyHeightAt(tile *format.Tile, polyIdx uint16, x float32, z float32) (float32, bool) {
	poly := &tile.Polys[polyIdx]
	if poly.VertCount < 3 {
		return 0, false
	}
	a := vertAt(tile, poly.Verts[0])
	b := vertAt(tile, poly.Verts[1])
	c := vertAt(tile, poly.Verts[2])
	// 平面法向量 n = (b-a) x (c-a)
	ux, uy, uz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
	vx, vy, vz := c.X-a.X, c.Y-a.Y, c.Z-a.Z
	nx := uy*vz - uz*vy
	ny := uz*vx - ux*vz
	nz := ux*vy - uy*vx
	if ny > -1e-6 && ny < 1e-6 {
		// 垂直面 无法求高度
		return 0, false
	}
	y := a.Y - (nx*(x-a.X)+nz*(z-a.Z))/ny
	return y, true
}
