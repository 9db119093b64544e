package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/nhle/equipment-alerts/internal/logger"
	"github.com/nhle/equipment-alerts/internal/model"
)

// NewApp builds the alertd command tree. Command output goes to out; logs go
// to stderr.
func NewApp(version string, out io.Writer) *cli.Command {
	flags := &Flags{Out: out}

	app := &cli.Command{
		Name:      "alertd",
		Usage:     "Scan equipment records and raise maintenance, warranty and obsolescence alerts",
		UsageText: "alertd [global options] command [command options]",
		Description: `alertd evaluates a fixed set of alerting rules against the equipment
and maintenance records and keeps at most one unread notification per
rule and subject.

Run 'alertd serve' to expose the HTTP API with a background scheduler, or
'alertd run' to evaluate the rules once.`,
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("ALERTD_CONFIG"),
				Value:       model.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error); overrides log.level",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "log format (json, console); overrides log.format",
				Destination: &flags.LogFormat,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := model.LoadConfig(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.LogLevel != "" {
				cfg.Log.Level = flags.LogLevel
			}
			if flags.LogFormat != "" {
				cfg.Log.Format = flags.LogFormat
			}
			flags.Config = cfg

			flags.Logger = logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
			log.Logger = flags.Logger
			return ctx, nil
		},
	}

	app = NewServeCmd(flags).Register(app)
	app = NewRunCmd(flags).Register(app)
	app = NewNotificationsCmd(flags).Register(app)
	app = NewSeedCmd(flags).Register(app)
	app = NewConfigCmd(flags).Register(app)
	app = NewCredentialCmd(flags).Register(app)

	return app
}
