package router

import (
	"github.com/labstack/echo/v4"

	"github.com/StoryBuilderAi/storybuilder/internal/handler"
	"github.com/StoryBuilderAi/storybuilder/internal/middleware"
)

// RegisterResumes mounts /api/resumes. Every route needs a valid access
// token; ownership is checked in the handler.
func RegisterResumes(e *echo.Echo, h *handler.ResumeHandler, jwtSecret string) {
	auth := middleware.JWTAuth(jwtSecret)

	g := e.Group("/api/resumes")
	g.POST("", h.Upload, auth)
	g.GET("", h.List, auth)
	g.GET("/:id", h.Get, auth)
	g.PATCH("/:id", h.Update, auth)
	g.DELETE("/:id", h.Delete, auth)
	g.GET("/:id/download", h.Download, auth)
	g.POST("/:id/analyses", h.AddAnalysis, auth)
	g.GET("/:id/analysis", h.LatestAnalysis, auth)
}

// RegisterApplications mounts /api/applications for authenticated users.
func RegisterApplications(e *echo.Echo, h *handler.ApplicationHandler, jwtSecret string) {
	auth := middleware.JWTAuth(jwtSecret)

	g := e.Group("/api/applications")
	g.POST("", h.Create, auth)
	g.GET("", h.ListMine, auth)
	g.GET("/:id", h.Get, auth)
	g.PATCH("/:id", h.Update, auth)
	g.DELETE("/:id", h.Delete, auth)
}
