package router

import (
	"github.com/labstack/echo/v4"

	"github.com/StoryBuilderAi/storybuilder/internal/handler"
)

// JobCache holds the response cache for job reads and the middleware that
// empties it after a write. Both may be pass-through.
type JobCache struct {
	Read       echo.MiddlewareFunc
	Invalidate echo.MiddlewareFunc
}

// RegisterJobs mounts /api/jobs. Reads are public and cached; writes need
// the admin role and flush the cache on success.
func RegisterJobs(e *echo.Echo, h *handler.JobHandler, apps *handler.ApplicationHandler, jwtSecret string, cache JobCache) {
	if cache.Read == nil {
		cache.Read = noCache
	}
	if cache.Invalidate == nil {
		cache.Invalidate = noCache
	}
	admin := adminOnly(jwtSecret)
	write := append(admin, cache.Invalidate)

	g := e.Group("/api/jobs")
	g.GET("", h.List, cache.Read)
	g.GET("/:id", h.Get, cache.Read)
	g.POST("", h.Create, write...)
	g.PATCH("/:id", h.Update, write...)
	g.DELETE("/:id", h.Delete, write...)
	g.GET("/:id/applications", apps.ListByJob, admin...)
}

func noCache(next echo.HandlerFunc) echo.HandlerFunc { return next }
