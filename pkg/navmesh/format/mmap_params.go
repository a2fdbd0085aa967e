package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// NavMeshParams 每张地图的导航网格参数 对应<mapId>.mmap文件
type NavMeshParams struct {
	Origin     [3]float32
	TileWidth  float32
	TileHeight float32
	MaxTiles   uint32
	MaxPolys   uint32
}

const paramsSize = 28

func ParamsFileName(mmapPath string, mapId uint32) string {
	return fmt.Sprintf("%s/%03d.mmap", mmapPath, mapId)
}

func LoadParams(mmapPath string, mapId uint32) (*NavMeshParams, error) {
	data, err := os.ReadFile(ParamsFileName(mmapPath, mapId))
	if err != nil {
		return nil, err
	}
	return DecodeParams(data)
}

func DecodeParams(data []byte) (*NavMeshParams, error) {
	if len(data) < paramsSize {
		return nil, fmt.Errorf("%w: params file size: %v", ErrTruncated, len(data))
	}
	params := new(NavMeshParams)
	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	if params.TileWidth <= 0.0 || params.TileHeight <= 0.0 {
		return nil, fmt.Errorf("%w: tile size: %v x %v", ErrBadParams, params.TileWidth, params.TileHeight)
	}
	return params, nil
}

func EncodeParams(params *NavMeshParams) []byte {
	var buffer bytes.Buffer
	_ = binary.Write(&buffer, binary.LittleEndian, params)
	return buffer.Bytes()
}
