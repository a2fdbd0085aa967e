package app

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"navd/common/config"
	"navd/pkg/logger"
	"navd/pkg/navmesh"
	"navd/query/controller"
)

var APPVERSION = "UNKNOWN"

func Run(ctx context.Context) error {
	logger.InitLogger(&logger.Config{
		AppName:      "navd",
		Level:        logger.ParseLevel(config.GetConfig().Logger.Level),
		TrackLine:    config.GetConfig().Logger.TrackLine,
		EnableFile:   config.GetConfig().Logger.EnableFile,
		DisableColor: config.GetConfig().Logger.DisableColor,
		EnableJson:   config.GetConfig().Logger.EnableJson,
	})
	defer func() {
		logger.CloseLogger()
	}()
	logger.Warn("navd start, version: %v", APPVERSION)
	defer func() {
		logger.Warn("navd exit")
	}()

	navMeshManager := navmesh.NewNavMeshManager(ManagerConfig(), ManagerOptions()...)
	defer navMeshManager.Shutdown()

	warmupFile := config.GetConfig().NavMesh.WarmupFile
	if warmupFile != "" {
		err := navMeshManager.LoadSnapshot(ctx, warmupFile)
		if err != nil {
			logger.Error("load cache snapshot error: %v, file: %v", err, warmupFile)
		}
		defer func() {
			err := navMeshManager.SaveSnapshot(warmupFile)
			if err != nil {
				logger.Error("save cache snapshot error: %v, file: %v", err, warmupFile)
			}
		}()
	}

	httpController := controller.NewController(navMeshManager)
	defer httpController.Close()

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-c:
			logger.Warn("get a signal %s", s.String())
			switch s {
			case syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT:
				return nil
			case syscall.SIGHUP:
			default:
				return nil
			}
		}
	}
}

// ManagerConfig 把应用配置映射为navmesh子系统配置
func ManagerConfig() navmesh.Config {
	conf := config.GetConfig().NavMesh
	return navmesh.Config{
		MmapPath:             conf.MmapPath,
		MaxCacheSize:         conf.MaxCacheSize,
		EnableCache:          conf.EnableCache,
		PathSmoothIterations: int(conf.PathSmoothIterations),
		LoadWorkers:          int(conf.LoadWorkers),
		PathSearchNodeLimit:  int(conf.PathSearchNodeLimit),
	}
}

// ManagerOptions 配置里的areaCost覆盖项转为选项
func ManagerOptions() []navmesh.Option {
	conf := config.GetConfig().NavMesh
	options := make([]navmesh.Option, 0)
	if len(conf.AreaCost) > 0 {
		table := navmesh.DefaultAreaCostTable()
		for areaStr, cost := range conf.AreaCost {
			area, err := strconv.ParseUint(areaStr, 10, 8)
			if err != nil {
				logger.Warn("bad areaCost key: %v", areaStr)
				continue
			}
			table[uint8(area)] = cost
		}
		options = append(options, navmesh.WithAreaCostTable(table))
	}
	return options
}
