package navmesh

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"navd/pkg/navmesh/format"
)

// writeFixtureMap 在临时目录搭建map 0
// 两块4x4网格tile东西相接 经link表跨界 (1,1)格不可行走 (2,2)格为水域
func writeFixtureMap(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	params := &format.NavMeshParams{
		Origin:     [3]float32{0, 0, 0},
		TileWidth:  4,
		TileHeight: 4,
		MaxTiles:   64,
		MaxPolys:   256,
	}
	if err := os.WriteFile(format.ParamsFileName(dir, 0), format.EncodeParams(params), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "000"), 0755); err != nil {
		t.Fatal(err)
	}
	tileA := gridTile(0, 0, 4, 4, 1, 0, 0, map[int]uint8{
		5:  AreaUnwalkable,
		10: AreaWater,
	})
	tileB := gridTile(1, 0, 4, 4, 1, 4, 0, nil)
	for r := 0; r < 4; r++ {
		owner := uint32(r*4 + 3)
		neighbor := uint32(r * 4)
		tileA.Links = append(tileA.Links, format.Link{Ref: owner<<16 | neighbor, Edge: 1, Side: 0})
		tileB.Links = append(tileB.Links, format.Link{Ref: neighbor<<16 | owner, Edge: 0, Side: 1})
	}
	if err := os.WriteFile(format.TileFileName(dir, 0, 0, 0), format.EncodeTile(tileA), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(format.TileFileName(dir, 0, 1, 0), format.EncodeTile(tileB), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func fixtureConfig(dir string) Config {
	return Config{
		MmapPath:             dir,
		MaxCacheSize:         1 << 20,
		EnableCache:          true,
		PathSmoothIterations: 2,
		LoadWorkers:          2,
		PathSearchNodeLimit:  4096,
	}
}

func TestLoadTileMissing(t *testing.T) {
	dir := writeFixtureMap(t)
	m := NewNavMeshManager(fixtureConfig(dir))
	defer m.Shutdown()
	tile, err := m.LoadTile(context.Background(), 0, 5, 5)
	if err != nil {
		t.Fatalf("missing tile must not error: %v", err)
	}
	if tile.Header.PolyCount != 0 || len(tile.Polys) != 0 {
		t.Errorf("want empty tile, got %v polys", len(tile.Polys))
	}
}

func TestLoadTileCorrupt(t *testing.T) {
	dir := writeFixtureMap(t)
	if err := os.WriteFile(format.TileFileName(dir, 0, 2, 0), []byte("garbage data here"), 0644); err != nil {
		t.Fatal(err)
	}
	m := NewNavMeshManager(fixtureConfig(dir))
	defer m.Shutdown()
	_, err := m.LoadTile(context.Background(), 0, 2, 0)
	if err == nil {
		t.Fatal("corrupt tile must error")
	}
	if stats := m.GetCacheStats(); stats.Entries != 0 {
		t.Errorf("failed load must not be cached, entries: %v", stats.Entries)
	}
}

func TestFindPathSameTile(t *testing.T) {
	dir := writeFixtureMap(t)
	m := NewNavMeshManager(fixtureConfig(dir))
	defer m.Shutdown()
	result, err := m.FindPath(context.Background(), 0, Vector3{X: 0.5, Z: 0.5}, Vector3{X: 3.5, Z: 3.5})
	if err != nil {
		t.Fatalf("find path error: %v", err)
	}
	if !result.Success || result.PartialPath {
		t.Fatalf("result: %+v", result)
	}
	if len(result.Path) < 2 {
		t.Fatalf("path too short: %v", result.Path)
	}
	if result.Path[0] != (Vector3{X: 0.5, Z: 0.5}) {
		t.Errorf("path must start at the query point: %v", result.Path[0])
	}
	if result.Path[len(result.Path)-1] != (Vector3{X: 3.5, Z: 3.5}) {
		t.Errorf("path must end at the query point: %v", result.Path[len(result.Path)-1])
	}
	if result.Cost <= 0 {
		t.Errorf("cost: %v", result.Cost)
	}
}

func TestFindPathCrossTile(t *testing.T) {
	dir := writeFixtureMap(t)
	m := NewNavMeshManager(fixtureConfig(dir))
	defer m.Shutdown()
	result, err := m.FindPath(context.Background(), 0, Vector3{X: 0.5, Z: 0.5}, Vector3{X: 7.5, Z: 3.5})
	if err != nil {
		t.Fatalf("find path error: %v", err)
	}
	if !result.Success {
		t.Fatalf("want cross-tile path, result: %+v", result)
	}
	// 两块tile都应进入缓存
	if stats := m.GetCacheStats(); stats.Entries < 2 {
		t.Errorf("cache entries after cross-tile path: %v", stats.Entries)
	}
}

func TestFindPathNoData(t *testing.T) {
	dir := writeFixtureMap(t)
	m := NewNavMeshManager(fixtureConfig(dir))
	defer m.Shutdown()
	// map 9没有params 以数据而非错误表达
	result, err := m.FindPath(context.Background(), 9, Vector3{}, Vector3{X: 1})
	if err != nil {
		t.Fatalf("no params must not error: %v", err)
	}
	if result.Success {
		t.Errorf("result: %+v", result)
	}

	// 有params但查询点落在没有tile文件的区域
	result, err = m.FindPath(context.Background(), 0, Vector3{X: 100, Z: 100}, Vector3{X: 101, Z: 101})
	if err != nil {
		t.Fatalf("empty region must not error: %v", err)
	}
	if result.Success {
		t.Errorf("result: %+v", result)
	}
}

func TestFindPathConcurrentSingleRead(t *testing.T) {
	dir := writeFixtureMap(t)
	var loads int64
	m := NewNavMeshManager(fixtureConfig(dir), WithTileLoader(func(mapId uint32, tileX int32, tileY int32) (*format.Tile, error) {
		atomic.AddInt64(&loads, 1)
		return format.LoadTile(dir, mapId, tileX, tileY)
	}))
	defer m.Shutdown()
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := m.FindPath(context.Background(), 0, Vector3{X: 0.5, Z: 0.5}, Vector3{X: 2.5, Z: 0.5})
			if err != nil || !result.Success {
				t.Errorf("find path: %+v, error: %v", result, err)
			}
		}()
	}
	wg.Wait()
	if loads != 1 {
		t.Errorf("want exactly one disk read for the shared tile, got %v", loads)
	}
}

func TestIsWalkable(t *testing.T) {
	dir := writeFixtureMap(t)
	m := NewNavMeshManager(fixtureConfig(dir))
	defer m.Shutdown()
	ctx := context.Background()
	if !m.IsWalkable(ctx, 0, Vector3{X: 0.5, Z: 0.5}) {
		t.Error("ground cell should be walkable")
	}
	if m.IsWalkable(ctx, 0, Vector3{X: 1.5, Z: 1.5}) {
		t.Error("area 0 cell should not be walkable")
	}
	if m.IsWalkable(ctx, 9, Vector3{}) {
		t.Error("map without params should not be walkable")
	}
}

func TestGetAreaWater(t *testing.T) {
	dir := writeFixtureMap(t)
	m := NewNavMeshManager(fixtureConfig(dir))
	defer m.Shutdown()
	info, err := m.GetArea(context.Background(), 0, Vector3{X: 2.5, Z: 2.5})
	if err != nil {
		t.Fatalf("get area error: %v", err)
	}
	if info == nil {
		t.Fatal("want area info")
	}
	if info.AreaType != AreaWater || !info.Walkable || info.Cost != 2.0 {
		t.Errorf("area info: %+v", info)
	}
}

func TestGetAreaNoData(t *testing.T) {
	dir := writeFixtureMap(t)
	m := NewNavMeshManager(fixtureConfig(dir))
	defer m.Shutdown()
	info, err := m.GetArea(context.Background(), 9, Vector3{})
	if err != nil {
		t.Fatalf("no params must not error: %v", err)
	}
	if info != nil {
		t.Errorf("want nil info, got %+v", info)
	}
}

func TestAreaCostOverride(t *testing.T) {
	dir := writeFixtureMap(t)
	table := DefaultAreaCostTable()
	table[AreaWater] = 9.5
	m := NewNavMeshManager(fixtureConfig(dir), WithAreaCostTable(table))
	defer m.Shutdown()
	info, err := m.GetArea(context.Background(), 0, Vector3{X: 2.5, Z: 2.5})
	if err != nil || info == nil {
		t.Fatalf("get area: %+v, error: %v", info, err)
	}
	if info.Cost != 9.5 {
		t.Errorf("cost override not applied: %v", info.Cost)
	}
}

func TestClearCacheAndStats(t *testing.T) {
	dir := writeFixtureMap(t)
	m := NewNavMeshManager(fixtureConfig(dir))
	defer m.Shutdown()
	_, err := m.LoadTile(context.Background(), 0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	stats := m.GetCacheStats()
	if stats.Entries != 1 || stats.Size <= 0 {
		t.Errorf("stats: %+v", stats)
	}
	m.ClearCache()
	stats = m.GetCacheStats()
	if stats.Entries != 0 || stats.Size != 0 {
		t.Errorf("stats after clear: %+v", stats)
	}
}

func TestTileLoadNotify(t *testing.T) {
	dir := writeFixtureMap(t)
	var loaded []TileKey
	var mu sync.Mutex
	m := NewNavMeshManager(fixtureConfig(dir), WithTileLoadNotify(func(key TileKey) {
		mu.Lock()
		loaded = append(loaded, key)
		mu.Unlock()
	}))
	defer m.Shutdown()
	_, err := m.LoadTile(context.Background(), 0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(loaded) != 1 || loaded[0] != (TileKey{MapId: 0, TileX: 0, TileY: 0}) {
		t.Errorf("load notify: %v", loaded)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := writeFixtureMap(t)
	snapshotFile := filepath.Join(t.TempDir(), "warmup.bin")

	m := NewNavMeshManager(fixtureConfig(dir))
	ctx := context.Background()
	if _, err := m.LoadTile(ctx, 0, 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := m.LoadTile(ctx, 0, 1, 0); err != nil {
		t.Fatal(err)
	}
	if err := m.SaveSnapshot(snapshotFile); err != nil {
		t.Fatalf("save snapshot error: %v", err)
	}
	m.Shutdown()

	var loads int64
	warm := NewNavMeshManager(fixtureConfig(dir), WithTileLoader(func(mapId uint32, tileX int32, tileY int32) (*format.Tile, error) {
		atomic.AddInt64(&loads, 1)
		return format.LoadTile(dir, mapId, tileX, tileY)
	}))
	defer warm.Shutdown()
	if err := warm.LoadSnapshot(ctx, snapshotFile); err != nil {
		t.Fatalf("load snapshot error: %v", err)
	}
	if loads != 2 {
		t.Errorf("want 2 tiles warmed, got %v", loads)
	}
	if stats := warm.GetCacheStats(); stats.Entries != 2 {
		t.Errorf("cache entries after warmup: %v", stats.Entries)
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	dir := writeFixtureMap(t)
	m := NewNavMeshManager(fixtureConfig(dir))
	defer m.Shutdown()
	err := m.LoadSnapshot(context.Background(), filepath.Join(dir, "nope.bin"))
	if err != nil {
		t.Errorf("missing snapshot must not error: %v", err)
	}
}
