package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/mcpar-land/quill/internal"
	pkgconfig "github.com/mcpar-land/quill/pkg/config"
)

type runFunc func(ctx context.Context, opts ...internal.Option) error

// action loads the configuration and hands it to run.
func action(run runFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		configPath := cmd.String("config")

		cfg := internal.NewDefaultConfig()
		found, err := pkgconfig.LoadOptional(configPath, cfg)
		if err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
		if !found && cmd.IsSet("config") {
			return fmt.Errorf("config file not found: %s", configPath)
		}

		if err := run(ctx, internal.WithConfig(cfg)); err != nil {
			return fmt.Errorf("%s: %w", cmd.Name, err)
		}
		return nil
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "quill",
		Usage:  "Static blog generator for a directory of dated Markdown posts",
		Action: action(internal.Build),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Render every post into the output directory",
				Action: action(internal.Build),
			},
			{
				Name:   "serve",
				Usage:  "Build, serve the site over HTTP and rebuild on changes",
				Action: action(internal.Serve),
			},
			{
				Name:   "mcp",
				Usage:  "Expose the posts to MCP clients over stdio",
				Action: action(internal.ServeMCP),
			},
			{
				Name:   "plaintext",
				Usage:  "Print each post's title and description as a boxed banner",
				Action: action(internal.Plaintext),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
