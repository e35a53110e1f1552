// Package commands holds the tasklistd CLI.
package commands

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/taskfolk/tasklistd/internal/config"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "tasklistd",
		Usage: "Session-authenticated task list service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewServeCommand(),
			NewUserCommand(),
		},
	}
}

// loadConfig reads the configured file, falling back to defaults when it
// does not exist yet.
func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		slog.Warn("config not found, using defaults", "path", path, "error", err)
		cfg = &config.Config{}
		config.ApplyDefaults(cfg)
	}
	return cfg
}
