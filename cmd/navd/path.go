package main

import (
	"context"
	"encoding/json"
	"fmt"

	cfg "navd/common/config"
	"navd/pkg/logger"
	"navd/pkg/navmesh"
	"navd/query/app"

	"github.com/spf13/cobra"
)

// PathCmd 一次性寻路 供内容调试使用
func PathCmd() *cobra.Command {
	var configFile string
	var mapId uint32
	var start []float32
	var end []float32
	c := &cobra.Command{
		Use:   "path",
		Short: "find a path between two points",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.InitConfig(configFile)
			logger.InitLogger(&logger.Config{
				AppName: "navd",
				Level:   logger.WARN,
			})
			defer logger.CloseLogger()
			if len(start) != 3 || len(end) != 3 {
				return fmt.Errorf("start/end need 3 components, start: %v, end: %v", start, end)
			}
			navMeshManager := navmesh.NewNavMeshManager(app.ManagerConfig(), app.ManagerOptions()...)
			defer navMeshManager.Shutdown()
			result, err := navMeshManager.FindPath(context.Background(), mapId,
				navmesh.Vector3{X: start[0], Y: start[1], Z: start[2]},
				navmesh.Vector3{X: end[0], Y: end[1], Z: end[2]})
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
	c.Flags().StringVar(&configFile, "config", "application.hjson", "config file")
	c.Flags().Uint32Var(&mapId, "map", 0, "map id")
	c.Flags().Float32SliceVar(&start, "start", nil, "start position x,y,z")
	c.Flags().Float32SliceVar(&end, "end", nil, "end position x,y,z")
	return c
}
