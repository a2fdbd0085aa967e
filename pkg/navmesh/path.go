package navmesh

import (
	"context"
)

// heightSampler 在水平坐标处解析网格高度 失败时返回false
type heightSampler func(pos Vector3) (float32, bool)

// corridorWaypoints 多边形走廊转3D路点
// 首尾多边形由精确的查询点替代 中间多边形取重心
func corridorWaypoints(ctx context.Context, resolver tileResolver, corridor []PolyRef, start Vector3, end Vector3) ([]Vector3, error) {
	waypoints := make([]Vector3, 0, len(corridor)+1)
	waypoints = append(waypoints, start)
	for i := 1; i < len(corridor)-1; i++ {
		tile, err := resolver.resolveTile(ctx, corridor[i].Tile)
		if err != nil {
			return nil, err
		}
		if int(corridor[i].Index) >= len(tile.Polys) {
			continue
		}
		waypoints = append(waypoints, polyCentroid(tile, corridor[i].Index))
	}
	waypoints = append(waypoints, end)
	return waypoints, nil
}

// smoothPath 迭代平滑 每轮将内部路点替换为自身与前后两点在水平面上的平均
// 高度不参与平均 而是在平滑后的水平位置向网格重新采样 采样失败时保留原高度
// 两点及以下的退化输入原样返回
func smoothPath(points []Vector3, iterations int, sampleHeight heightSampler) []Vector3 {
	if len(points) <= 2 || iterations <= 0 {
		return points
	}
	current := make([]Vector3, len(points))
	copy(current, points)
	next := make([]Vector3, len(points))
	for iter := 0; iter < iterations; iter++ {
		copy(next, current)
		for i := 1; i < len(current)-1; i++ {
			smoothed := Vector3{
				X: (current[i-1].X + current[i].X + current[i+1].X) / 3.0,
				Z: (current[i-1].Z + current[i].Z + current[i+1].Z) / 3.0,
				Y: current[i].Y,
			}
			if sampleHeight != nil {
				if y, ok := sampleHeight(smoothed); ok {
					smoothed.Y = y
				}
			}
			next[i] = smoothed
		}
		current, next = next, current
	}
	return current
}

// pathLength 折线的累计3D欧氏长度
func pathLength(points []Vector3) float32 {
	var total float32
	for i := 1; i < len(points); i++ {
		total += distance(points[i-1], points[i])
	}
	return total
}
