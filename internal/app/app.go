package app

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/pokeduel-server/internal/bot"
	"github.com/vovakirdan/pokeduel-server/internal/config"
	"github.com/vovakirdan/pokeduel-server/internal/core"
	"github.com/vovakirdan/pokeduel-server/internal/pokeapi"
	transporthttp "github.com/vovakirdan/pokeduel-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) *App {
	creatures := pokeapi.New(cfg.PokeAPIBaseURL, cfg.FetchTimeout, logger)

	hub := core.NewHub(creatures, core.Settings{
		WinThreshold:      cfg.WinThreshold,
		RevealDelay:       cfg.RevealDelay,
		RoomShutdownDelay: cfg.RoomShutdownDelay,
		FetchTimeout:      cfg.FetchTimeout,
	}, logger)
	hub.SetBotLauncher(bot.NewLauncher(hub, cfg.BotThinkDelay, logger))

	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		log:             logger,
	}
}

// Run starts the hub loop and the HTTP server, blocking until context
// cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-serverErr
	}
}
