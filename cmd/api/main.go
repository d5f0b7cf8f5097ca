package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hatchery-backend/internal/config"
	"hatchery-backend/internal/interfaces/router"
	"hatchery-backend/internal/scheduler"

	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	srv, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checkConnections(ctx, srv)

	var sched *scheduler.Scheduler
	if srv.Grids != nil {
		sched = scheduler.New(cfg.GridSweepSchedule, srv.Grids)
		if err := sched.Start(); err != nil {
			log.Fatal().Err(err).Msg("scheduler start")
		}
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		errCh <- srv.App.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		if err := srv.App.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}

	if sched != nil {
		sched.Stop()
	}
	if srv.DB != nil {
		if sqlDB, err := srv.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if srv.Redis != nil {
		_ = srv.Redis.Close()
	}
}

// checkConnections pings the configured stores so a bad URL shows up in the
// startup log rather than on the first request.
func checkConnections(ctx context.Context, srv *router.Server) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if srv.DB != nil {
		sqlDB, err := srv.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connection failed")
		}
		log.Info().Msg("postgres connected")
	} else {
		log.Warn().Msg("no database configured")
	}
	if srv.Redis != nil {
		if err := srv.Redis.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, sessions and health counters unavailable")
		} else {
			log.Info().Msg("redis connected")
		}
	}
}
