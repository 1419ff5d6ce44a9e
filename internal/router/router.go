// Package router maps URLs to handlers. Middleware is attached per route
// rather than per group so that unmatched paths under a protected prefix
// still answer 404 instead of 401.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/StoryBuilderAi/storybuilder/internal/handler"
	"github.com/StoryBuilderAi/storybuilder/internal/middleware"
	"github.com/StoryBuilderAi/storybuilder/internal/model"
)

// RegisterRoutes registers the unauthenticated service endpoints.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.Health)
	e.GET("/api/hello", handler.Hello)
}

// RegisterUsers mounts /api/users. Reads and sign-up style creation are
// open; creating an admin needs an admin token, which OptionalJWT makes
// visible to the handler.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, jwtSecret string) {
	auth := middleware.JWTAuth(jwtSecret)

	g := e.Group("/api/users")
	g.GET("", h.List)
	g.POST("", h.Create, middleware.OptionalJWT(jwtSecret))
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update, auth)
	g.DELETE("/:id", h.Delete, auth)
}

// RegisterAuth mounts the session endpoints under /api/auth.
func RegisterAuth(e *echo.Echo, h *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/auth")
	g.POST("/sign-up/email", h.SignUp)
	g.POST("/sign-in/email", h.SignIn)
	g.POST("/sign-out", h.SignOut)
	g.GET("/get-session", h.GetSession)
	g.POST("/refresh", h.Refresh)
	g.POST("/change-password", h.ChangePassword, middleware.JWTAuth(jwtSecret))
}

// RegisterWaitlist mounts the public onboarding form endpoints.
func RegisterWaitlist(e *echo.Echo, h *handler.WaitlistHandler) {
	e.GET("/api/waitlist/steps", h.Steps)
	e.POST("/api/waitlist", h.Submit)
}

func adminOnly(jwtSecret string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin)}
}
