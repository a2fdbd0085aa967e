package navmesh

import (
	"context"
	"fmt"

	"navd/pkg/navmesh/format"
)

type Vector3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// TileKey tile的全局唯一标识
type TileKey struct {
	MapId uint32
	TileX int32
	TileY int32
}

func (k TileKey) String() string {
	return fmt.Sprintf("%03d:%02d%02d", k.MapId, k.TileX, k.TileY)
}

// PolyRef 跨tile的多边形全局引用
type PolyRef struct {
	Tile  TileKey
	Index uint16
}

// PathResult 寻路结果 找不到路径表现为数据而非错误
type PathResult struct {
	Success     bool      `json:"success"`
	Path        []Vector3 `json:"path"`
	Cost        float32   `json:"cost"`
	PartialPath bool      `json:"partialPath"`
}

// AreaInfo 地形区域查询结果
type AreaInfo struct {
	AreaType uint8   `json:"areaType"`
	Walkable bool    `json:"walkable"`
	Cost     float32 `json:"cost"`
}

// CacheStats cache统计信息
type CacheStats struct {
	Entries            int     `json:"entries"`
	Size               int64   `json:"size"`
	MaxSize            int64   `json:"maxSize"`
	UtilizationPercent float32 `json:"utilizationPercent"`
}

// tileResolver 搜索过程中按需取tile 由manager经cache实现
type tileResolver interface {
	resolveTile(ctx context.Context, key TileKey) (*format.Tile, error)
}
