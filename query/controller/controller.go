package controller

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"navd/common/config"
	"navd/pkg/logger"
	"navd/pkg/navmesh"

	"github.com/gin-gonic/gin"
)

// Controller 寻路查询http服务 仅传输查询结果 不传输navmesh数据
type Controller struct {
	navMeshManager *navmesh.NavMeshManager
	httpServer     *http.Server
}

func NewController(navMeshManager *navmesh.NavMeshManager) *Controller {
	c := &Controller{
		navMeshManager: navMeshManager,
	}
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/nav/path", c.findPath)
	engine.GET("/nav/walkable", c.isWalkable)
	engine.GET("/nav/area", c.getArea)
	engine.GET("/nav/cache/stats", c.cacheStats)
	engine.POST("/nav/cache/clear", c.cacheClear)
	addr := fmt.Sprintf(":%v", config.GetConfig().HttpPort)
	c.httpServer = &http.Server{Addr: addr, Handler: engine}
	go func() {
		err := c.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.Error("query http server error: %v", err)
		}
	}()
	logger.Info("query http server listen on %v", addr)
	return c
}

func (c *Controller) Close() {
	_ = c.httpServer.Shutdown(context.TODO())
}

func queryUint32(ctx *gin.Context, name string) (uint32, bool) {
	value, err := strconv.ParseUint(ctx.Query(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("bad param: %v", name)})
		return 0, false
	}
	return uint32(value), true
}

func queryVector(ctx *gin.Context, nameX string, nameY string, nameZ string) (navmesh.Vector3, bool) {
	var pos navmesh.Vector3
	for _, part := range []struct {
		name  string
		field *float32
	}{
		{nameX, &pos.X},
		{nameY, &pos.Y},
		{nameZ, &pos.Z},
	} {
		value, err := strconv.ParseFloat(ctx.Query(part.name), 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("bad param: %v", part.name)})
			return pos, false
		}
		*part.field = float32(value)
	}
	return pos, true
}

func (c *Controller) findPath(ctx *gin.Context) {
	mapId, ok := queryUint32(ctx, "map")
	if !ok {
		return
	}
	start, ok := queryVector(ctx, "sx", "sy", "sz")
	if !ok {
		return
	}
	end, ok := queryVector(ctx, "ex", "ey", "ez")
	if !ok {
		return
	}
	result, err := c.navMeshManager.FindPath(ctx.Request.Context(), mapId, start, end)
	if err != nil {
		logger.Error("find path error: %v, mapId: %v", err, mapId)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (c *Controller) isWalkable(ctx *gin.Context) {
	mapId, ok := queryUint32(ctx, "map")
	if !ok {
		return
	}
	pos, ok := queryVector(ctx, "x", "y", "z")
	if !ok {
		return
	}
	walkable := c.navMeshManager.IsWalkable(ctx.Request.Context(), mapId, pos)
	ctx.JSON(http.StatusOK, gin.H{"walkable": walkable})
}

func (c *Controller) getArea(ctx *gin.Context) {
	mapId, ok := queryUint32(ctx, "map")
	if !ok {
		return
	}
	pos, ok := queryVector(ctx, "x", "y", "z")
	if !ok {
		return
	}
	info, err := c.navMeshManager.GetArea(ctx.Request.Context(), mapId, pos)
	if err != nil {
		logger.Error("get area error: %v, mapId: %v", err, mapId)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if info == nil {
		ctx.JSON(http.StatusOK, gin.H{"found": false})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"found": true, "area": info})
}

func (c *Controller) cacheStats(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.navMeshManager.GetCacheStats())
}

func (c *Controller) cacheClear(ctx *gin.Context) {
	c.navMeshManager.ClearCache()
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
