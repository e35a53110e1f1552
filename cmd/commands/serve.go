package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/taskfolk/tasklistd/internal/auth"
	"github.com/taskfolk/tasklistd/internal/config"
	"github.com/taskfolk/tasklistd/internal/events"
	"github.com/taskfolk/tasklistd/internal/gateway"
	"github.com/taskfolk/tasklistd/internal/kv"
	"github.com/taskfolk/tasklistd/internal/secrets"
	"github.com/taskfolk/tasklistd/internal/workers"
)

// NewServeCommand returns the serve subcommand.
func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the tasklistd server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
		},
		Action: runServe,
	}
}

// openStore builds the configured key-value engine.
func openStore(cfg *config.Config) (kv.Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		return kv.NewMemStore(), nil
	case "sqlite":
		if err := os.MkdirAll(config.DataPath(), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		return kv.OpenSQLite(cfg.Store.Path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func runServe(_ context.Context, cmd *cli.Command) error {
	if cmd.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := loadConfig(cmd.String("config"))
	if cmd.IsSet("host") {
		cfg.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Server.Port = cmd.Int("port")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	secret, err := secrets.LoadOrCreateSigningSecret(config.DataPath())
	if err != nil {
		return fmt.Errorf("load signing secret: %w", err)
	}

	bus := events.NewBus(cfg.Events.BufferSize)
	defer bus.Close()

	users := auth.NewUsers(store)
	tokens := auth.NewTokens(secret, cfg.Auth.TokenTTL.Duration(), store)

	sweeper, err := auth.NewSweeper(store, cfg.Auth.SweepSchedule)
	if err != nil {
		return fmt.Errorf("init blacklist sweeper: %w", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	lists := workers.NewTaskListWorker(store)
	tasks := workers.NewTaskWorker(store, lists)

	server := gateway.NewServer(bus, users, tokens, lists, tasks, cfg.Server.Host, cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
