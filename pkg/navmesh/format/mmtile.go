package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

const (
	// TileMagic "MMTI"小端
	TileMagic   = 0x4D4D5449
	TileVersion = 1
	// TileMagicEmpty 空tile的哨兵magic 文件缺失时由loader合成
	TileMagicEmpty = 0

	// NullNeighbor 无邻接多边形/tile边界
	NullNeighbor = 0xFFFF

	// MaxPolyVerts 单个多边形最大顶点数
	MaxPolyVerts = 6

	tileHeaderSize = 28
	polyRecordSize = 28
	linkRecordSize = 12
)

type TileHeader struct {
	Magic     uint32
	Version   uint32
	X         int32
	Y         int32
	Layer     int32
	PolyCount uint32
	VertCount uint32
}

type Poly struct {
	VertCount uint8
	Verts     [MaxPolyVerts]uint16
	Neis      [MaxPolyVerts]uint16
	Flags     uint16
	Area      uint8
}

// Link 跨tile邻接记录
// Ref高16位为本tile内的owner多边形下标 低16位为相邻tile内的目标多边形下标
// Side取0~3依次表示+x -x +y -y方向的相邻tile Edge为owner的边下标
// Next BMin BMax为富格式字段 原样保留不解释
type Link struct {
	Ref  uint32
	Next uint32
	Edge uint8
	Side uint8
	BMin uint8
	BMax uint8
}

func (l *Link) OwnerPoly() uint16 {
	return uint16(l.Ref >> 16)
}

func (l *Link) NeighborPoly() uint16 {
	return uint16(l.Ref & 0xFFFF)
}

// SideOffset side方向对应的相邻tile坐标偏移
func SideOffset(side uint8) (int32, int32, bool) {
	switch side {
	case 0:
		return 1, 0, true
	case 1:
		return -1, 0, true
	case 2:
		return 0, 1, true
	case 3:
		return 0, -1, true
	default:
		return 0, 0, false
	}
}

// Tile 解析后的单个tile 解析完成后只读
// 仅填充header+verts+polys+links 富格式的扩展段(detail mesh BV树 off-mesh连接)
// 作为不透明字节原样保留在Ext中 不参与寻路
type Tile struct {
	Header TileHeader
	Verts  []float32
	Polys  []Poly
	Links  []Link
	Ext    []byte
}

func (t *Tile) IsEmpty() bool {
	return t.Header.PolyCount == 0
}

// SizeBytes cache字节占用估算 顶点缓冲字节数加每多边形固定开销
func (t *Tile) SizeBytes() int64 {
	const polyOverheadBytes = 32
	return int64(len(t.Verts))*4 + int64(t.Header.PolyCount)*polyOverheadBytes
}

func TileFileName(mmapPath string, mapId uint32, tileX int32, tileY int32) string {
	return fmt.Sprintf("%s/%03d/%02d%02d.mmtile", mmapPath, mapId, tileX, tileY)
}

func NewEmptyTile(tileX int32, tileY int32) *Tile {
	return &Tile{
		Header: TileHeader{
			Magic:   TileMagicEmpty,
			Version: TileVersion,
			X:       tileX,
			Y:       tileY,
		},
		Verts: make([]float32, 0),
		Polys: make([]Poly, 0),
		Links: make([]Link, 0),
	}
}

// LoadTile 读取并解析单个tile文件 文件缺失返回空tile而非错误
func LoadTile(mmapPath string, mapId uint32, tileX int32, tileY int32) (*Tile, error) {
	data, err := os.ReadFile(TileFileName(mmapPath, mapId, tileX, tileY))
	if err != nil {
		if os.IsNotExist(err) {
			return NewEmptyTile(tileX, tileY), nil
		}
		return nil, err
	}
	tile, err := DecodeTile(data)
	if err != nil {
		return nil, fmt.Errorf("decode tile error: %w, mapId: %v, tileX: %v, tileY: %v", err, mapId, tileX, tileY)
	}
	return tile, nil
}

func DecodeTile(data []byte) (*Tile, error) {
	if len(data) < tileHeaderSize {
		return nil, fmt.Errorf("%w: file size: %v", ErrTruncated, len(data))
	}
	r := bytes.NewReader(data)
	tile := new(Tile)
	err := binary.Read(r, binary.LittleEndian, &tile.Header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	if tile.Header.Magic != TileMagic {
		return nil, fmt.Errorf("%w: 0x%08X", ErrBadMagic, tile.Header.Magic)
	}
	if tile.Header.Version != TileVersion {
		return nil, fmt.Errorf("%w: %v", ErrBadVersion, tile.Header.Version)
	}

	// 按header声明的数量预检长度 防止对截断文件盲目分配
	need := tileHeaderSize + int(tile.Header.VertCount)*12 + int(tile.Header.PolyCount)*polyRecordSize + 4
	if len(data) < need {
		return nil, fmt.Errorf("%w: file size: %v, need: %v", ErrTruncated, len(data), need)
	}

	tile.Verts = make([]float32, tile.Header.VertCount*3)
	err = binary.Read(r, binary.LittleEndian, tile.Verts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	tile.Polys = make([]Poly, tile.Header.PolyCount)
	for i := range tile.Polys {
		err = binary.Read(r, binary.LittleEndian, &tile.Polys[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
		}
		poly := &tile.Polys[i]
		if poly.VertCount > MaxPolyVerts {
			return nil, fmt.Errorf("%w: poly: %v, vertCount: %v", ErrBadPoly, i, poly.VertCount)
		}
		for j := uint8(0); j < poly.VertCount; j++ {
			if uint32(poly.Verts[j]) >= tile.Header.VertCount {
				return nil, fmt.Errorf("%w: poly: %v, vert index: %v", ErrBadPoly, i, poly.Verts[j])
			}
		}
	}

	var linkCount uint32
	err = binary.Read(r, binary.LittleEndian, &linkCount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	if r.Len() < int(linkCount)*linkRecordSize {
		return nil, fmt.Errorf("%w: link count: %v, remaining: %v", ErrTruncated, linkCount, r.Len())
	}
	tile.Links = make([]Link, linkCount)
	for i := range tile.Links {
		err = binary.Read(r, binary.LittleEndian, &tile.Links[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
		}
	}

	// 剩余的扩展段原样保留
	if r.Len() > 0 {
		tile.Ext = make([]byte, r.Len())
		_, _ = r.Read(tile.Ext)
	}
	return tile, nil
}

// EncodeTile 序列化tile 供测试与内容工具使用
func EncodeTile(tile *Tile) []byte {
	var buffer bytes.Buffer
	header := tile.Header
	header.PolyCount = uint32(len(tile.Polys))
	header.VertCount = uint32(len(tile.Verts) / 3)
	_ = binary.Write(&buffer, binary.LittleEndian, &header)
	_ = binary.Write(&buffer, binary.LittleEndian, tile.Verts)
	for i := range tile.Polys {
		_ = binary.Write(&buffer, binary.LittleEndian, &tile.Polys[i])
	}
	_ = binary.Write(&buffer, binary.LittleEndian, uint32(len(tile.Links)))
	for i := range tile.Links {
		_ = binary.Write(&buffer, binary.LittleEndian, &tile.Links[i])
	}
	buffer.Write(tile.Ext)
	return buffer.Bytes()
}
