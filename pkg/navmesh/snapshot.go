package navmesh

import (
	"context"
	"os"
	"sort"

	"navd/pkg/logger"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshotKey 快照内的tile key msgpack编码
type snapshotKey struct {
	MapId uint32 `msgpack:"mapId"`
	TileX int32  `msgpack:"tileX"`
	TileY int32  `msgpack:"tileY"`
}

// SaveSnapshot 把当前缓存的tile key列表落盘 供下次启动预热
func (m *NavMeshManager) SaveSnapshot(filePath string) error {
	keys := m.cache.Keys()
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].MapId != keys[j].MapId {
			return keys[i].MapId < keys[j].MapId
		}
		if keys[i].TileX != keys[j].TileX {
			return keys[i].TileX < keys[j].TileX
		}
		return keys[i].TileY < keys[j].TileY
	})
	snapshot := make([]snapshotKey, 0, len(keys))
	for _, k := range keys {
		snapshot = append(snapshot, snapshotKey{MapId: k.MapId, TileX: k.TileX, TileY: k.TileY})
	}
	data, err := msgpack.Marshal(snapshot)
	if err != nil {
		return err
	}
	err = os.WriteFile(filePath, data, 0644)
	if err != nil {
		return err
	}
	logger.Info("save cache snapshot ok, tiles: %v, file: %v", len(snapshot), filePath)
	return nil
}

// LoadSnapshot 按快照预热缓存 单个tile加载失败不中断其余预热
func (m *NavMeshManager) LoadSnapshot(ctx context.Context, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var snapshot []snapshotKey
	err = msgpack.Unmarshal(data, &snapshot)
	if err != nil {
		return err
	}
	warmed := 0
	for _, k := range snapshot {
		_, err := m.resolveTile(ctx, TileKey{MapId: k.MapId, TileX: k.TileX, TileY: k.TileY})
		if err != nil {
			logger.Warn("warm tile error: %v, mapId: %v, tileX: %v, tileY: %v", err, k.MapId, k.TileX, k.TileY)
			continue
		}
		warmed++
	}
	logger.Info("load cache snapshot ok, tiles warmed: %v/%v", warmed, len(snapshot))
	return nil
}
