package navmesh

import (
	"context"
	"sync"

	"navd/pkg/navmesh/format"

	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	tile       *format.Tile
	lastAccess uint64
	sizeBytes  int64
}

// TileCache 按字节预算的严格LRU tile缓存
// 全部共享状态由单把互斥锁保护 并发加载经singleflight去重
// 同一key同时至多一次磁盘读取 失败的加载永不入缓存
type TileCache struct {
	mu       sync.Mutex
	entries  map[TileKey]*cacheEntry
	total    int64
	maxBytes int64
	enable   bool
	tick     uint64
	group    singleflight.Group
	onEvict  func(TileKey)
}

func NewTileCache(maxBytes int64, enable bool) *TileCache {
	return &TileCache{
		entries:  make(map[TileKey]*cacheEntry),
		maxBytes: maxBytes,
		enable:   enable,
	}
}

// SetEvictNotify 注册淘汰回调 必须在并发使用前设置
func (c *TileCache) SetEvictNotify(fn func(TileKey)) {
	c.onEvict = fn
}

// Get 缓存命中时返回tile并刷新访问序 未命中返回nil
func (c *TileCache) Get(key TileKey) *format.Tile {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, exist := c.entries[key]
	if !exist {
		return nil
	}
	c.tick++
	entry.lastAccess = c.tick
	return entry.tile
}

// GetOrLoad 主入口 命中直接返回 未命中经singleflight共享一次加载
// ctx取消只放弃等待 不中断底层已开始的加载 其他等待者仍可拿到结果
func (c *TileCache) GetOrLoad(ctx context.Context, key TileKey, load func() (*format.Tile, error)) (*format.Tile, error) {
	if tile := c.Get(key); tile != nil {
		return tile, nil
	}
	resultChan := c.group.DoChan(key.String(), func() (any, error) {
		tile, err := load()
		if err != nil {
			return nil, err
		}
		if c.enable {
			c.insert(key, tile)
		}
		return tile, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-resultChan:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Val.(*format.Tile), nil
	}
}

func (c *TileCache) insert(key TileKey, tile *format.Tile) {
	size := tile.SizeBytes()
	if size > c.maxBytes {
		// 超出整个预算的tile不入缓存 否则无法维持字节上界
		return
	}
	var evicted []TileKey
	c.mu.Lock()
	if old, exist := c.entries[key]; exist {
		c.total -= old.sizeBytes
		delete(c.entries, key)
	}
	for c.total+size > c.maxBytes && len(c.entries) > 0 {
		var oldestKey TileKey
		var oldest *cacheEntry
		for k, e := range c.entries {
			if oldest == nil || e.lastAccess < oldest.lastAccess {
				oldestKey = k
				oldest = e
			}
		}
		c.total -= oldest.sizeBytes
		delete(c.entries, oldestKey)
		evicted = append(evicted, oldestKey)
	}
	c.tick++
	c.entries[key] = &cacheEntry{tile: tile, lastAccess: c.tick, sizeBytes: size}
	c.total += size
	c.mu.Unlock()
	if c.onEvict != nil {
		for _, k := range evicted {
			c.onEvict(k)
		}
	}
}

func (c *TileCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[TileKey]*cacheEntry)
	c.total = 0
	c.mu.Unlock()
}

func (c *TileCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := CacheStats{
		Entries: len(c.entries),
		Size:    c.total,
		MaxSize: c.maxBytes,
	}
	if c.maxBytes > 0 {
		stats.UtilizationPercent = float32(c.total) / float32(c.maxBytes) * 100.0
	}
	return stats
}

// Keys 当前缓存的全部tile key 供快照落盘
func (c *TileCache) Keys() []TileKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]TileKey, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}
