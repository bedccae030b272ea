package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/doclint/internal"
	"github.com/starford/doclint/internal/report"
	pkgconfig "github.com/starford/doclint/pkg/config"
)

// loadConfig builds the effective configuration: defaults, then the config
// file (when given), then CLI flag overrides.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()

	if configPath := cmd.String("config"); configPath != "" {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if root := cmd.String("root"); root != "" {
		cfg.Corpus.Root = root
	}
	if cmd.Bool("strict") {
		cfg.Checks.Strict = true
	}
	if cmd.Bool("cache") {
		cfg.Cache.Enabled = true
	}
	if port := cmd.Int("port"); port != 0 {
		cfg.Server.Port = int(port)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err.Error(), report.ExitUsage)
	}

	code, err := internal.RunCheck(ctx,
		internal.WithConfig(cfg),
		internal.WithFormat(cmd.String("format")),
	)
	if err != nil {
		return cli.Exit(err.Error(), report.ExitUsage)
	}
	if code != report.ExitOK {
		return cli.Exit("", code)
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err.Error(), report.ExitUsage)
	}
	if err := internal.RunServe(ctx, internal.WithConfig(cfg)); err != nil {
		return cli.Exit(err.Error(), report.ExitUsage)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err.Error(), report.ExitUsage)
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return cli.Exit(err.Error(), report.ExitUsage)
	}
	return nil
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "root",
			Aliases: []string{"r"},
			Usage:   "Root directory of the documentation corpus",
			Sources: cli.EnvVars("DOCLINT_ROOT"),
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to config file",
			Sources: cli.EnvVars("DOCLINT_CONFIG_FILE"),
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "doclint",
		Usage: "Documentation integrity checker: frontmatter schemas, cross-reference graph, orphans, taxonomy, staleness",
		Commands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "Run the integrity checks once and print a report",
				Action: runCheck,
				Flags: append(commonFlags(),
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Treat hygiene issues (orphans, taxonomy, staleness) as fatal",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Report output format: json or table",
						Value: report.FormatTable,
					},
					&cli.BoolFlag{
						Name:  "cache",
						Usage: "Enable the SQLite result cache for unchanged files",
					},
				),
			},
			{
				Name:   "serve",
				Usage:  "Watch the corpus and serve the latest report over HTTP with SSE updates",
				Action: runServe,
				Flags: append(commonFlags(),
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Treat hygiene issues as fatal in the served report status",
					},
					&cli.IntFlag{
						Name:  "port",
						Usage: "HTTP listen port",
					},
				),
			},
			{
				Name:   "mcp",
				Usage:  "Serve doclint tools over the Model Context Protocol on stdio",
				Action: runMCP,
				Flags:  commonFlags(),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(report.ExitUsage)
	}
}
