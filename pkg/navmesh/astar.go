package navmesh

import (
	"container/heap"
	"context"

	"navd/pkg/navmesh/format"
)

type searchNode struct {
	ref     PolyRef
	g       float32
	f       float32
	h       float32
	parent  *searchNode
	heapIdx int
	inOpen  bool
	closed  bool
}

// nodeHeap 开放集 f相同按PolyRef排序保证结果确定性
type nodeHeap []*searchNode

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return refLess(h[i].ref, h[j].ref)
}

func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIdx = i
	h[j].heapIdx = j
}

func (h *nodeHeap) Push(x any) {
	node := x.(*searchNode)
	node.heapIdx = len(*h)
	*h = append(*h, node)
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	node.heapIdx = -1
	return node
}

func refLess(a PolyRef, b PolyRef) bool {
	if a.Tile.MapId != b.Tile.MapId {
		return a.Tile.MapId < b.Tile.MapId
	}
	if a.Tile.TileX != b.Tile.TileX {
		return a.Tile.TileX < b.Tile.TileX
	}
	if a.Tile.TileY != b.Tile.TileY {
		return a.Tile.TileY < b.Tile.TileY
	}
	return a.Index < b.Index
}

// findCorridor 多边形邻接图上的A*搜索
// 返回从start到end的有序多边形走廊 不可达时返回nil
// 节点扩展数达到nodeLimit时返回到目前最接近目标节点的部分走廊 partial为true
// 跨tile邻接经link表解析 相邻tile在扩展过程中经cache懒加载
func findCorridor(ctx context.Context, resolver tileResolver, costs AreaCostTable, start PolyRef, end PolyRef, nodeLimit int) ([]PolyRef, bool, error) {
	endTile, err := resolver.resolveTile(ctx, end.Tile)
	if err != nil {
		return nil, false, err
	}
	if int(end.Index) >= len(endTile.Polys) {
		return nil, false, nil
	}
	startTile, err := resolver.resolveTile(ctx, start.Tile)
	if err != nil {
		return nil, false, err
	}
	if int(start.Index) >= len(startTile.Polys) {
		return nil, false, nil
	}
	endCenter := polyCentroid(endTile, end.Index)

	nodes := make(map[PolyRef]*searchNode)
	open := make(nodeHeap, 0, 64)
	startNode := &searchNode{
		ref:    start,
		g:      0,
		h:      distance(polyCentroid(startTile, start.Index), endCenter),
		inOpen: true,
	}
	startNode.f = startNode.h
	nodes[start] = startNode
	heap.Push(&open, startNode)

	best := startNode
	expanded := 0
	for open.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		current := heap.Pop(&open).(*searchNode)
		current.inOpen = false
		current.closed = true
		if current.ref == end {
			return reconstructCorridor(current), false, nil
		}
		if current.h < best.h {
			best = current
		}
		expanded++
		if expanded >= nodeLimit {
			break
		}

		tile, err := resolver.resolveTile(ctx, current.ref.Tile)
		if err != nil {
			return nil, false, err
		}
		currentCenter := polyCentroid(tile, current.ref.Index)
		poly := &tile.Polys[current.ref.Index]
		for edge := uint8(0); edge < poly.VertCount; edge++ {
			neighbors, err := edgeNeighbors(ctx, resolver, tile, current.ref, edge)
			if err != nil {
				return nil, false, err
			}
			for _, neighborRef := range neighbors {
				neighborTile, err := resolver.resolveTile(ctx, neighborRef.Tile)
				if err != nil {
					return nil, false, err
				}
				if int(neighborRef.Index) >= len(neighborTile.Polys) {
					continue
				}
				area := neighborTile.Polys[neighborRef.Index].Area
				if !costs.Walkable(area) {
					continue
				}
				neighborCenter := polyCentroid(neighborTile, neighborRef.Index)
				tentativeG := current.g + distance(currentCenter, neighborCenter)*costs.Cost(area)

				node, exist := nodes[neighborRef]
				if !exist {
					node = &searchNode{
						ref: neighborRef,
						h:   distance(neighborCenter, endCenter),
					}
					nodes[neighborRef] = node
				} else if tentativeG >= node.g && (node.closed || node.inOpen) {
					continue
				}
				node.parent = current
				node.g = tentativeG
				node.f = tentativeG + node.h
				node.closed = false
				if node.inOpen {
					heap.Fix(&open, node.heapIdx)
				} else {
					node.inOpen = true
					heap.Push(&open, node)
				}
			}
		}
	}

	if expanded >= nodeLimit && best != startNode {
		return reconstructCorridor(best), true, nil
	}
	return nil, false, nil
}

// edgeNeighbors 单条边的邻接多边形
// neis内的下标为本tile内部邻接 哨兵0xFFFF的边界边经link表解析到相邻tile
func edgeNeighbors(ctx context.Context, resolver tileResolver, tile *format.Tile, ref PolyRef, edge uint8) ([]PolyRef, error) {
	poly := &tile.Polys[ref.Index]
	nei := poly.Neis[edge]
	if nei != format.NullNeighbor {
		if int(nei) >= len(tile.Polys) {
			return nil, nil
		}
		return []PolyRef{{Tile: ref.Tile, Index: nei}}, nil
	}
	var result []PolyRef
	for i := range tile.Links {
		link := &tile.Links[i]
		if link.OwnerPoly() != ref.Index || link.Edge != edge {
			continue
		}
		dx, dy, ok := format.SideOffset(link.Side)
		if !ok {
			continue
		}
		neighborKey := TileKey{
			MapId: ref.Tile.MapId,
			TileX: ref.Tile.TileX + dx,
			TileY: ref.Tile.TileY + dy,
		}
		// 相邻tile未加载时在此处经cache懒加载 缺失的tile解析为空tile 随后越界被跳过
		neighborTile, err := resolver.resolveTile(ctx, neighborKey)
		if err != nil {
			return nil, err
		}
		if int(link.NeighborPoly()) >= len(neighborTile.Polys) {
			continue
		}
		result = append(result, PolyRef{Tile: neighborKey, Index: link.NeighborPoly()})
	}
	return result, nil
}

func reconstructCorridor(node *searchNode) []PolyRef {
	corridor := make([]PolyRef, 0, 16)
	for n := node; n != nil; n = n.parent {
		corridor = append(corridor, n.ref)
	}
	for i, j := 0, len(corridor)-1; i < j; i, j = i+1, j-1 {
		corridor[i], corridor[j] = corridor[j], corridor[i]
	}
	return corridor
}
