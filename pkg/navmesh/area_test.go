package navmesh

import (
	"math"
	"testing"
)

func TestAreaWalkable(t *testing.T) {
	table := DefaultAreaCostTable()
	if table.Walkable(AreaUnwalkable) {
		t.Error("area 0 must not be walkable")
	}
	if !table.Walkable(AreaGround) {
		t.Error("area 1 must be walkable")
	}
	if !table.Walkable(200) {
		t.Error("unknown areas are walkable by convention")
	}
}

func TestAreaCost(t *testing.T) {
	table := DefaultAreaCostTable()
	cases := []struct {
		area uint8
		want float32
	}{
		{AreaGround, 1.0},
		{AreaWater, 2.0},
		{AreaHazard, 5.0},
		{77, 1.0},
	}
	for _, tc := range cases {
		if got := table.Cost(tc.area); got != tc.want {
			t.Errorf("cost(%v) = %v, want %v", tc.area, got, tc.want)
		}
	}
	if !math.IsInf(float64(table.Cost(AreaUnwalkable)), 1) {
		t.Errorf("cost(0) = %v, want +Inf", table.Cost(AreaUnwalkable))
	}
}
