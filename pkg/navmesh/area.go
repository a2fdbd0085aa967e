package navmesh

import "math"

// 内容约定的地形区域类型 不同内容包可以通过配置覆盖
const (
	AreaUnwalkable = 0
	AreaGround     = 1
	AreaWater      = 2
	AreaHazard     = 3
)

// AreaCostTable 区域类型到通行成本倍率的映射表
// 区域0固定不可行走 表中缺失的区域类型按1.0处理
type AreaCostTable map[uint8]float32

func DefaultAreaCostTable() AreaCostTable {
	return AreaCostTable{
		AreaGround: 1.0,
		AreaWater:  2.0,
		AreaHazard: 5.0,
	}
}

func (t AreaCostTable) Walkable(areaType uint8) bool {
	return areaType != AreaUnwalkable
}

func (t AreaCostTable) Cost(areaType uint8) float32 {
	if areaType == AreaUnwalkable {
		return float32(math.Inf(1))
	}
	cost, exist := t[areaType]
	if !exist {
		return 1.0
	}
	return cost
}
