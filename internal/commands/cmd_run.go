package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"
)

type RunCmd struct {
	flags *Flags

	// flags
	format string
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Run every rule once and print the report",
		UsageText: "alertd run [--format json|text]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (json, text)",
				Value:       "json",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	s, err := cmd.flags.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	pub, err := cmd.flags.publisher()
	if err != nil {
		return fmt.Errorf("configure publisher: %w", err)
	}
	defer pub.Close()

	report := cmd.flags.newEngine(s, pub).RunAll(ctx)

	switch cmd.format {
	case "text":
		_, err = fmt.Fprint(cmd.flags.Out, renderReport(report))
		return err
	case "json":
		enc := json.NewEncoder(cmd.flags.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	default:
		return fmt.Errorf("unknown format %q", cmd.format)
	}
}
