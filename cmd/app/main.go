package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/raido/internal"
	pkgconfig "github.com/starford/raido/pkg/config"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := internal.NewDefaultConfig()

	if configPath := cmd.String("config"); configPath != "" {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Command-line flags override the config file.
	if cmd.IsSet("transport") {
		cfg.App.Transport = cmd.String("transport")
	}
	if cmd.IsSet("host") {
		cfg.App.HTTP.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("path") {
		cfg.App.HTTP.Path = cmd.String("path")
	}
	if cmd.IsSet("project") {
		cfg.Project.Path = cmd.String("project")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "raido",
		Usage:  "MCP server for precise programmatic editing of Jupyter notebooks",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Sources: cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "transport",
				Aliases: []string{"t"},
				Usage:   "Transport to serve on: stdio or http",
				Sources: cli.EnvVars("RAIDO_TRANSPORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Usage:   "Host to bind the HTTP transport to",
				Sources: cli.EnvVars("RAIDO_HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "Port for the HTTP transport",
				Sources: cli.EnvVars("RAIDO_PORT"),
			},
			&cli.StringFlag{
				Name:    "path",
				Usage:   "Endpoint path for the HTTP transport",
				Sources: cli.EnvVars("RAIDO_PATH"),
			},
			&cli.StringFlag{
				Name:    "project",
				Aliases: []string{"p"},
				Usage:   "Restrict notebook operations to this project directory",
				Sources: cli.EnvVars("RAIDO_PROJECT"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
