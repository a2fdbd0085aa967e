package navmesh

import (
	"context"
	"math"
	"sync"

	"navd/pkg/logger"
	"navd/pkg/navmesh/format"

	"golang.org/x/sync/semaphore"
)

// Config navmesh子系统配置
type Config struct {
	MmapPath             string
	MaxCacheSize         int64
	EnableCache          bool
	PathSmoothIterations int
	LoadWorkers          int
	PathSearchNodeLimit  int
}

type tileLoadFunc func(mapId uint32, tileX int32, tileY int32) (*format.Tile, error)

// NavMeshManager navmesh tile管理器 对外的唯一查询入口
// 显式构造显式持有 不提供包级单例 生命周期以NewNavMeshManager/Shutdown为界
type NavMeshManager struct {
	cfg     Config
	cache   *TileCache
	costs   AreaCostTable
	loadSem *semaphore.Weighted
	loadFn  tileLoadFunc

	mu            sync.Mutex
	params        map[uint32]*format.NavMeshParams
	paramsMissing map[uint32]bool

	onTileLoad func(TileKey)
}

type Option func(*NavMeshManager)

// WithAreaCostTable 覆盖默认的区域成本表 不同内容包的区域约定不同
func WithAreaCostTable(table AreaCostTable) Option {
	return func(m *NavMeshManager) {
		m.costs = table
	}
}

// WithTileLoadNotify 注册tile加载完成回调
func WithTileLoadNotify(fn func(TileKey)) Option {
	return func(m *NavMeshManager) {
		m.onTileLoad = fn
	}
}

// WithEvictNotify 注册tile淘汰回调
func WithEvictNotify(fn func(TileKey)) Option {
	return func(m *NavMeshManager) {
		m.cache.SetEvictNotify(fn)
	}
}

// WithTileLoader 替换磁盘加载实现 供测试注入
func WithTileLoader(fn tileLoadFunc) Option {
	return func(m *NavMeshManager) {
		m.loadFn = fn
	}
}

func NewNavMeshManager(cfg Config, options ...Option) *NavMeshManager {
	if cfg.PathSearchNodeLimit <= 0 {
		cfg.PathSearchNodeLimit = 65536
	}
	if cfg.LoadWorkers <= 0 {
		cfg.LoadWorkers = 4
	}
	m := &NavMeshManager{
		cfg:           cfg,
		cache:         NewTileCache(cfg.MaxCacheSize, cfg.EnableCache),
		costs:         DefaultAreaCostTable(),
		loadSem:       semaphore.NewWeighted(int64(cfg.LoadWorkers)),
		params:        make(map[uint32]*format.NavMeshParams),
		paramsMissing: make(map[uint32]bool),
	}
	m.loadFn = func(mapId uint32, tileX int32, tileY int32) (*format.Tile, error) {
		return format.LoadTile(m.cfg.MmapPath, mapId, tileX, tileY)
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// resolveTile 经cache取tile 未命中时去重加载 并发加载数受LoadWorkers约束
func (m *NavMeshManager) resolveTile(ctx context.Context, key TileKey) (*format.Tile, error) {
	return m.cache.GetOrLoad(ctx, key, func() (*format.Tile, error) {
		_ = m.loadSem.Acquire(context.Background(), 1)
		defer m.loadSem.Release(1)
		tile, err := m.loadFn(key.MapId, key.TileX, key.TileY)
		if err != nil {
			logger.Error("load tile error: %v, key: %v", err, key)
			return nil, err
		}
		logger.Debug("load tile ok, key: %v, polyCount: %v", key, tile.Header.PolyCount)
		if m.onTileLoad != nil {
			m.onTileLoad(key)
		}
		return tile, nil
	})
}

// LoadTile 加载单个tile 文件缺失返回空tile 损坏的tile文件返回错误
func (m *NavMeshManager) LoadTile(ctx context.Context, mapId uint32, tileX int32, tileY int32) (*format.Tile, error) {
	return m.resolveTile(ctx, TileKey{MapId: mapId, TileX: tileX, TileY: tileY})
}

// getParams 每张地图的params只读一次 缺失的地图视为无导航数据
func (m *NavMeshManager) getParams(mapId uint32) *format.NavMeshParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	if params, exist := m.params[mapId]; exist {
		return params
	}
	if m.paramsMissing[mapId] {
		return nil
	}
	params, err := format.LoadParams(m.cfg.MmapPath, mapId)
	if err != nil {
		logger.Warn("no navmesh params, mapId: %v, error: %v", mapId, err)
		m.paramsMissing[mapId] = true
		return nil
	}
	logger.Info("load navmesh params ok, mapId: %v, tileSize: %v x %v", mapId, params.TileWidth, params.TileHeight)
	m.params[mapId] = params
	return params
}

func worldToTile(params *format.NavMeshParams, pos Vector3) (int32, int32) {
	tileX := int32(math.Floor(float64((pos.X - params.Origin[0]) / params.TileWidth)))
	tileY := int32(math.Floor(float64((pos.Z - params.Origin[2]) / params.TileHeight)))
	return tileX, tileY
}

// nearestPoly 线性扫描取重心距查询点最近的多边形
func nearestPoly(tile *format.Tile, key TileKey, pos Vector3) (PolyRef, bool) {
	var bestRef PolyRef
	bestDist := float32(math.Inf(1))
	found := false
	for i := range tile.Polys {
		center := polyCentroid(tile, uint16(i))
		d := sqrDistance2D(center, pos)
		if d < bestDist {
			bestDist = d
			bestRef = PolyRef{Tile: key, Index: uint16(i)}
			found = true
		}
	}
	return bestRef, found
}

// locatePoly 解析世界坐标到tile加最近多边形 任何一步无数据都以found=false表达
func (m *NavMeshManager) locatePoly(ctx context.Context, mapId uint32, pos Vector3) (PolyRef, *format.Tile, error) {
	params := m.getParams(mapId)
	if params == nil {
		return PolyRef{}, nil, nil
	}
	tileX, tileY := worldToTile(params, pos)
	key := TileKey{MapId: mapId, TileX: tileX, TileY: tileY}
	tile, err := m.resolveTile(ctx, key)
	if err != nil {
		return PolyRef{}, nil, err
	}
	ref, found := nearestPoly(tile, key, pos)
	if !found {
		return PolyRef{}, nil, nil
	}
	return ref, tile, nil
}

// FindPath 从start到end寻路
// 无params 无多边形 不可达均返回Success=false 错误仅来自IO与解析失败
func (m *NavMeshManager) FindPath(ctx context.Context, mapId uint32, start Vector3, end Vector3) (PathResult, error) {
	startRef, startTile, err := m.locatePoly(ctx, mapId, start)
	if err != nil {
		return PathResult{}, err
	}
	if startTile == nil {
		return PathResult{Path: []Vector3{}}, nil
	}
	endRef, endTile, err := m.locatePoly(ctx, mapId, end)
	if err != nil {
		return PathResult{}, err
	}
	if endTile == nil {
		return PathResult{Path: []Vector3{}}, nil
	}

	var corridor []PolyRef
	partial := false
	if startRef == endRef {
		corridor = []PolyRef{startRef}
	} else {
		corridor, partial, err = findCorridor(ctx, m, m.costs, startRef, endRef, m.cfg.PathSearchNodeLimit)
		if err != nil {
			return PathResult{}, err
		}
		if corridor == nil {
			logger.Debug("no path, mapId: %v, start: %v, end: %v", mapId, start, end)
			return PathResult{Path: []Vector3{}}, nil
		}
	}

	waypoints, err := corridorWaypoints(ctx, m, corridor, start, end)
	if err != nil {
		return PathResult{}, err
	}
	waypoints = smoothPath(waypoints, m.cfg.PathSmoothIterations, func(pos Vector3) (float32, bool) {
		return m.sampleHeight(ctx, mapId, pos)
	})
	return PathResult{
		Success:     true,
		Path:        waypoints,
		Cost:        pathLength(waypoints),
		PartialPath: partial,
	}, nil
}

// sampleHeight 在水平位置向网格采样高度 用于平滑时的垂直分量解析
func (m *NavMeshManager) sampleHeight(ctx context.Context, mapId uint32, pos Vector3) (float32, bool) {
	params := m.getParams(mapId)
	if params == nil {
		return 0, false
	}
	tileX, tileY := worldToTile(params, pos)
	tile, err := m.resolveTile(ctx, TileKey{MapId: mapId, TileX: tileX, TileY: tileY})
	if err != nil {
		return 0, false
	}
	for i := range tile.Polys {
		if !polyContains2D(tile, uint16(i), pos.X, pos.Z) {
			continue
		}
		if y, ok := polyHeightAt(tile, uint16(i), pos.X, pos.Z); ok {
			return y, true
		}
	}
	return 0, false
}

// GetArea 查询位置所在地形区域 无数据返回nil
func (m *NavMeshManager) GetArea(ctx context.Context, mapId uint32, pos Vector3) (*AreaInfo, error) {
	ref, tile, err := m.locatePoly(ctx, mapId, pos)
	if err != nil {
		return nil, err
	}
	if tile == nil {
		return nil, nil
	}
	area := tile.Polys[ref.Index].Area
	return &AreaInfo{
		AreaType: area,
		Walkable: m.costs.Walkable(area),
		Cost:     m.costs.Cost(area),
	}, nil
}

// IsWalkable 查询位置是否可行走 任何解析失败都返回false
func (m *NavMeshManager) IsWalkable(ctx context.Context, mapId uint32, pos Vector3) bool {
	info, err := m.GetArea(ctx, mapId, pos)
	if err != nil || info == nil {
		return false
	}
	return info.Walkable
}

func (m *NavMeshManager) ClearCache() {
	m.cache.Clear()
	logger.Info("navmesh tile cache cleared")
}

func (m *NavMeshManager) GetCacheStats() CacheStats {
	return m.cache.Stats()
}

// Shutdown 释放缓存 manager之后不再可用
func (m *NavMeshManager) Shutdown() {
	stats := m.cache.Stats()
	m.cache.Clear()
	logger.Info("navmesh manager shutdown, cached tiles released: %v", stats.Entries)
}
