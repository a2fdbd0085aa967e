package navmesh

import (
	"context"
	"math"
	"testing"

	"navd/pkg/navmesh/format"
)

func TestCorridorWaypoints(t *testing.T) {
	tile := gridTile(0, 0, 3, 1, 1, 0, 0, nil)
	resolver := singleTileResolver(tile)
	tk := TileKey{MapId: 0, TileX: 0, TileY: 0}
	start := Vector3{X: 0.1, Y: 0, Z: 0.1}
	end := Vector3{X: 2.9, Y: 0, Z: 0.9}
	corridor := []PolyRef{
		{Tile: tk, Index: 0},
		{Tile: tk, Index: 1},
		{Tile: tk, Index: 2},
	}
	waypoints, err := corridorWaypoints(context.Background(), resolver, corridor, start, end)
	if err != nil {
		t.Fatalf("waypoints error: %v", err)
	}
	if len(waypoints) != 3 {
		t.Fatalf("waypoints: %v", waypoints)
	}
	if waypoints[0] != start || waypoints[2] != end {
		t.Errorf("endpoints must be the exact query points: %v", waypoints)
	}
	middle := waypoints[1]
	if middle.X != 1.5 || middle.Z != 0.5 {
		t.Errorf("interior waypoint should be the poly centroid: %v", middle)
	}
}

func TestSmoothPassthroughShortPaths(t *testing.T) {
	for _, points := range [][]Vector3{
		nil,
		{{X: 1}},
		{{X: 1}, {X: 2, Z: 3}},
	} {
		for _, iterations := range []int{0, 1, 10} {
			got := smoothPath(points, iterations, nil)
			if len(got) != len(points) {
				t.Fatalf("smooth changed length: %v -> %v", points, got)
			}
			for i := range points {
				if got[i] != points[i] {
					t.Errorf("smooth changed degenerate input: %v -> %v", points, got)
				}
			}
		}
	}
}

func TestSmoothKeepsEndpoints(t *testing.T) {
	points := []Vector3{
		{X: 0, Z: 0},
		{X: 5, Z: 5},
		{X: 10, Z: 0},
	}
	got := smoothPath(points, 3, nil)
	if got[0] != points[0] || got[len(got)-1] != points[len(points)-1] {
		t.Errorf("endpoints moved: %v", got)
	}
	// 内部点应向邻点平均靠拢
	if got[1].Z >= 5 {
		t.Errorf("interior point should be pulled toward neighbors: %v", got[1])
	}
}

func TestSmoothResamplesHeight(t *testing.T) {
	points := []Vector3{
		{X: 0, Y: 0, Z: 0},
		{X: 5, Y: 100, Z: 0},
		{X: 10, Y: 0, Z: 0},
	}
	got := smoothPath(points, 1, func(pos Vector3) (float32, bool) {
		return 7, true
	})
	if got[1].Y != 7 {
		t.Errorf("interior height should come from the sampler, got %v", got[1].Y)
	}
	// 采样失败时保留原高度 而非被平均掉
	got = smoothPath(points, 1, func(pos Vector3) (float32, bool) {
		return 0, false
	})
	if got[1].Y != 100 {
		t.Errorf("height must not be averaged away on sampler miss, got %v", got[1].Y)
	}
}

func TestPathLength(t *testing.T) {
	points := []Vector3{
		{X: 0, Y: 0, Z: 0},
		{X: 3, Y: 4, Z: 0},
		{X: 3, Y: 4, Z: 2},
	}
	got := pathLength(points)
	if math.Abs(float64(got)-7.0) > 1e-5 {
		t.Errorf("length: %v, want 7", got)
	}
	if pathLength(nil) != 0 || pathLength(points[:1]) != 0 {
		t.Error("degenerate polyline length should be 0")
	}
}

func TestPolyHeightAt(t *testing.T) {
	// 斜面tile y = x
	tile := &format.Tile{
		Header: format.TileHeader{Magic: format.TileMagic, Version: format.TileVersion, PolyCount: 1, VertCount: 4},
		Verts: []float32{
			0, 0, 0,
			2, 2, 0,
			2, 2, 2,
			0, 0, 2,
		},
		Polys: []format.Poly{{
			VertCount: 4,
			Verts:     [6]uint16{0, 1, 2, 3},
			Neis:      [6]uint16{format.NullNeighbor, format.NullNeighbor, format.NullNeighbor, format.NullNeighbor, format.NullNeighbor, format.NullNeighbor},
			Area:      1,
		}},
	}
	y, ok := polyHeightAt(tile, 0, 1, 1)
	if !ok {
		t.Fatal("height sample failed")
	}
	if math.Abs(float64(y)-1.0) > 1e-5 {
		t.Errorf("height at (1,1): %v, want 1", y)
	}
	if !polyContains2D(tile, 0, 1, 1) {
		t.Error("(1,1) should be inside the poly")
	}
	if polyContains2D(tile, 0, 3, 1) {
		t.Error("(3,1) should be outside the poly")
	}
}
