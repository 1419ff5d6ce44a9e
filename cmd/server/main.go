package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/StoryBuilderAi/storybuilder/internal/config"
	"github.com/StoryBuilderAi/storybuilder/internal/database"
	"github.com/StoryBuilderAi/storybuilder/internal/logger"
	"github.com/StoryBuilderAi/storybuilder/internal/queue"
	"github.com/StoryBuilderAi/storybuilder/internal/repository"
	"github.com/StoryBuilderAi/storybuilder/internal/server"
	"github.com/StoryBuilderAi/storybuilder/internal/service"
	"github.com/StoryBuilderAi/storybuilder/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	files, err := storage.NewMinIOStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	rdb, err := config.NewRedisClient()
	if err != nil && cfg.Cache.Enabled {
		log.Warn().Err(err).Msg("redis unavailable, response cache disabled")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var events queue.Publisher = queue.Discard{}
	if cfg.Queue.Enabled {
		p := queue.NewAMQPPublisher(cfg.Queue.URL, cfg.Queue.Queue, log)
		defer p.Close()
		events = p
	}

	users := service.NewUserService(repository.NewUserRepo(db), cfg.BcryptCost, log)
	resumes := repository.NewResumeRepo(db)
	jobs := repository.NewJobRepo(db)
	svc := server.Services{
		Users:        users,
		Auth:         service.NewAuthService(users, repository.NewSessionRepo(db), service.EventHooks(events, log), cfg.JWTSecret, cfg.AccessTTLMin, log),
		Resumes:      service.NewResumeService(resumes, repository.NewAnalysisRepo(db), files, cfg.Storage.MaxUpload, log),
		Jobs:         service.NewJobService(jobs, log),
		Applications: service.NewApplicationService(repository.NewApplicationRepo(db), jobs, resumes, log),
		Waitlist:     service.NewWaitlistService(events, log),
	}
	e := server.New(cfg, svc, rdb, log)

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
		errc <- e.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
