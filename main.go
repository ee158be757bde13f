package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"agent-hub/confs"
	"agent-hub/db"
	"agent-hub/observability"
	"agent-hub/server"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	// load config
	cfg, err := confs.Load()
	if err != nil {
		bootLog := observability.NewLogger("info", "console")
		bootLog.Fatal().Err(err).Msg("error loading config")
	}

	log := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if os.Getenv(gin.EnvGinMode) == "" && cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// connect to the archive database when configured
	var database db.Database
	if cfg.DB.Enabled() {
		database, err = db.Connect(cfg.DB, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to DB")
		}
		defer closeDB(database, log)
	} else {
		log.Info().Msg("no database configured, metrics history kept in memory only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// run server
	srv := server.NewServer(cfg, log, database)
	if err := srv.Start(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped")
		return
	}
	log.Info().Msg("server stopped")
}

func closeDB(database db.Database, log zerolog.Logger) {
	if err := database.Close(); err != nil {
		log.Warn().Err(err).Msg("closing database")
	}
}
