package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tabletop-royale/stormengine/internal/bus"
	"github.com/tabletop-royale/stormengine/internal/config"
	"github.com/tabletop-royale/stormengine/internal/engine"
	"github.com/tabletop-royale/stormengine/internal/game"
	"github.com/tabletop-royale/stormengine/internal/gateway"
	"github.com/tabletop-royale/stormengine/internal/store"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file loaded")
	}

	cfg := config.FromEnv()

	role := engine.RoleAuthority
	if cfg.Role == "presenter" || cfg.Role == "replica" {
		role = engine.RoleReplica
	}

	tuning, err := config.LoadTuning(cfg.TuningPath)
	if err != nil {
		log.Warn().Err(err).Msg("tuning file unusable; using built-in defaults")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncBus, err := bus.ConnectNATS(cfg.NATSURL, cfg.Subject)
	if err != nil {
		log.Fatal().Err(err).Msg("sync bus unavailable")
	}
	defer syncBus.Close()

	var sessions store.Store
	if role == engine.RoleAuthority {
		s, err := store.OpenSQLite(cfg.DBPath)
		if err != nil {
			// Persistence failure degrades to an ephemeral session.
			log.Warn().Err(err).Str("path", cfg.DBPath).Msg("session store unavailable; running without persistence")
		} else {
			sessions = s
			defer s.Close()
		}
	}

	eng, err := engine.New(engine.Config{
		Role:       role,
		Bus:        syncBus,
		Store:      sessions,
		TotalHours: cfg.TotalHours,
		Sim: game.SimulatorConfig{
			InitialCombatants: tuning.InitialCombatants,
			FinalSurvivors:    tuning.FinalSurvivors,
			Names:             tuning.Names,
			Templates:         tuning.Templates,
			FeedLimit:         tuning.FeedLimit,
		},
		FallbackColor: tuning.FallbackColor,
		Seed:          cfg.Seed,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("engine setup failed")
	}

	var sink gateway.ActionSink
	if role == engine.RoleAuthority {
		sink = eng
	}
	hub := gateway.NewHub(gateway.DefaultConfig(), sink)
	server := gateway.NewServer(cfg.HTTPAddr, hub)

	go hub.Run(ctx, eng.Snapshots())
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("display gateway listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("gateway server failed")
		}
	}()

	if err := eng.Run(ctx); err != nil {
		log.Error().Err(err).Msg("engine stopped with error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("gateway shutdown incomplete")
	}
}
