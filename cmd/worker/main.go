// Command worker consumes domain events into the event log and purges
// expired sessions on a timer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/StoryBuilderAi/storybuilder/internal/config"
	"github.com/StoryBuilderAi/storybuilder/internal/database"
	"github.com/StoryBuilderAi/storybuilder/internal/logger"
	"github.com/StoryBuilderAi/storybuilder/internal/queue"
	"github.com/StoryBuilderAi/storybuilder/internal/repository"
	"github.com/StoryBuilderAi/storybuilder/internal/service"
)

const purgeEvery = time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.LogLevel).With().Str("cmd", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("worker stopped")
	}
	log.Info().Msg("worker stopped")
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()

	users := service.NewUserService(repository.NewUserRepo(db), cfg.BcryptCost, log)
	auth := service.NewAuthService(users, repository.NewSessionRepo(db), service.Hooks{}, cfg.JWTSecret, cfg.AccessTTLMin, log)

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Queue.Enabled {
		c := &queue.Consumer{URL: cfg.Queue.URL, Queue: cfg.Queue.Queue, LogDir: cfg.Queue.LogDir, Log: log}
		g.Go(func() error { return c.Run(ctx) })
	}
	g.Go(func() error { return purgeSessions(ctx, auth, log) })
	return g.Wait()
}

func purgeSessions(ctx context.Context, auth *service.AuthService, log zerolog.Logger) error {
	t := time.NewTicker(purgeEvery)
	defer t.Stop()
	for {
		if _, err := auth.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("session purge failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}
