// Package server assembles the echo instance: shared middleware, error
// handling, validation and every route group.
package server

import (
	"fmt"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/StoryBuilderAi/storybuilder/internal/config"
	"github.com/StoryBuilderAi/storybuilder/internal/handler"
	"github.com/StoryBuilderAi/storybuilder/internal/middleware"
	"github.com/StoryBuilderAi/storybuilder/internal/router"
	"github.com/StoryBuilderAi/storybuilder/internal/service"
)

// Services are the business services the HTTP layer depends on.
type Services struct {
	Users        *service.UserService
	Auth         *service.AuthService
	Resumes      *service.ResumeService
	Jobs         *service.JobService
	Applications *service.ApplicationService
	Waitlist     *service.WaitlistService
}

// New builds a ready-to-start echo instance. rdb may be nil, which turns
// the job response cache off.
func New(cfg config.Config, svc Services, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Validator = handler.NewValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, handler.SessionHeader},
		AllowCredentials: !allowsAny(cfg.AllowedOrigins),
	}))
	e.Use(echomw.Secure())
	e.Use(echomw.BodyLimit(bodyLimit(cfg.Storage.MaxUpload)))

	router.RegisterRoutes(e)
	router.RegisterUsers(e, handler.NewUserHandler(svc.Users), cfg.JWTSecret)
	router.RegisterAuth(e, handler.NewAuthHandler(svc.Auth, !cfg.IsDev()), cfg.JWTSecret)
	router.RegisterResumes(e, handler.NewResumeHandler(svc.Resumes), cfg.JWTSecret)

	apps := handler.NewApplicationHandler(svc.Applications)
	router.RegisterJobs(e, handler.NewJobHandler(svc.Jobs), apps, cfg.JWTSecret, router.JobCache{
		Read:       middleware.NewRedisCache(cfg.Cache, rdb, log),
		Invalidate: middleware.NewCacheInvalidator(cfg.Cache, rdb, log),
	})
	router.RegisterApplications(e, apps, cfg.JWTSecret)
	router.RegisterWaitlist(e, handler.NewWaitlistHandler(svc.Waitlist))
	return e
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return len(origins) == 0
}

// bodyLimit leaves room for multipart framing on top of the largest
// accepted resume.
func bodyLimit(maxUpload int64) string {
	if maxUpload <= 0 {
		return "2M"
	}
	return fmt.Sprintf("%dK", maxUpload/1024+1024)
}
