package main

import (
	"fmt"
	"os"

	"navd/pkg/navmesh/format"

	"github.com/spf13/cobra"
)

// TileCmd 检视单个tile文件
func TileCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "tile <file.mmtile>",
		Short: "inspect a tile file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			tile, err := format.DecodeTile(data)
			if err != nil {
				return err
			}
			fmt.Printf("magic: 0x%08X version: %v\n", tile.Header.Magic, tile.Header.Version)
			fmt.Printf("tile: (%v, %v) layer: %v\n", tile.Header.X, tile.Header.Y, tile.Header.Layer)
			fmt.Printf("polys: %v verts: %v links: %v ext bytes: %v\n",
				tile.Header.PolyCount, tile.Header.VertCount, len(tile.Links), len(tile.Ext))
			fmt.Printf("cache size estimate: %v bytes\n", tile.SizeBytes())
			areaCount := make(map[uint8]int)
			for i := range tile.Polys {
				areaCount[tile.Polys[i].Area]++
			}
			for area, count := range areaCount {
				fmt.Printf("area %v: %v polys\n", area, count)
			}
			return nil
		},
	}
	return c
}
