package navmesh

import (
	"context"
	"os"
	"testing"

	"navd/pkg/logger"
	"navd/pkg/navmesh/format"
)

func TestMain(m *testing.M) {
	logger.InitLogger(&logger.Config{
		AppName:      "navmesh_test",
		Level:        logger.ERROR,
		DisableColor: true,
	})
	code := m.Run()
	logger.CloseLogger()
	os.Exit(code)
}

// gridTile 构造cols x rows的四边形网格tile 顶点在y=0平面
// 多边形下标c+r*cols 边槽位约定 0=左 1=右 2=z正向 3=z负向
func gridTile(tileX int32, tileY int32, cols int, rows int, cell float32, originX float32, originZ float32, areas map[int]uint8) *format.Tile {
	verts := make([]float32, 0, (cols+1)*(rows+1)*3)
	for r := 0; r <= rows; r++ {
		for c := 0; c <= cols; c++ {
			verts = append(verts, originX+float32(c)*cell, 0, originZ+float32(r)*cell)
		}
	}
	vertIdx := func(c int, r int) uint16 {
		return uint16(r*(cols+1) + c)
	}
	polys := make([]format.Poly, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			idx := r*cols + c
			poly := format.Poly{
				VertCount: 4,
				Verts:     [6]uint16{vertIdx(c, r), vertIdx(c+1, r), vertIdx(c+1, r+1), vertIdx(c, r+1)},
				Neis: [6]uint16{
					format.NullNeighbor, format.NullNeighbor, format.NullNeighbor,
					format.NullNeighbor, format.NullNeighbor, format.NullNeighbor,
				},
				Flags: 1,
				Area:  1,
			}
			if c > 0 {
				poly.Neis[0] = uint16(idx - 1)
			}
			if c < cols-1 {
				poly.Neis[1] = uint16(idx + 1)
			}
			if r < rows-1 {
				poly.Neis[2] = uint16(idx + cols)
			}
			if r > 0 {
				poly.Neis[3] = uint16(idx - cols)
			}
			if area, exist := areas[idx]; exist {
				poly.Area = area
			}
			polys = append(polys, poly)
		}
	}
	return &format.Tile{
		Header: format.TileHeader{
			Magic:     format.TileMagic,
			Version:   format.TileVersion,
			X:         tileX,
			Y:         tileY,
			PolyCount: uint32(len(polys)),
			VertCount: uint32(len(verts) / 3),
		},
		Verts: verts,
		Polys: polys,
	}
}

// mapResolver 内存tile表 缺失key解析为空tile
type mapResolver struct {
	tiles map[TileKey]*format.Tile
}

func (r *mapResolver) resolveTile(_ context.Context, key TileKey) (*format.Tile, error) {
	tile, exist := r.tiles[key]
	if !exist {
		return format.NewEmptyTile(key.TileX, key.TileY), nil
	}
	return tile, nil
}
