package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/nhle/equipment-alerts/internal/engine"
	"github.com/nhle/equipment-alerts/internal/publish"
)

type NotificationsCmd struct {
	flags *Flags

	// flags
	read bool
}

// NewNotificationsCmd creates a new notifications command
func NewNotificationsCmd(flags *Flags) *NotificationsCmd {
	return &NotificationsCmd{flags: flags}
}

// Register adds the notifications command and its subcommands to the application
func (cmd *NotificationsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "notifications",
		Aliases: []string{"n"},
		Usage:   "List and manage notifications",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List the newest notifications",
				UsageText: "alertd notifications list [--read]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "read",
						Usage:       "list read notifications instead of unread ones",
						Destination: &cmd.read,
					},
				},
				Action: cmd.list,
			},
			{
				Name:      "read",
				Usage:     "Mark a notification as read",
				ArgsUsage: "<id>",
				Action:    cmd.markRead,
			},
			{
				Name:      "delete",
				Usage:     "Delete a notification",
				ArgsUsage: "<id>",
				Action:    cmd.delete,
			},
		},
	})

	return app
}

func (cmd *NotificationsCmd) withEngine(fn func(*engine.Engine) error) error {
	s, err := cmd.flags.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(cmd.flags.newEngine(s, publish.Nop{}))
}

func (cmd *NotificationsCmd) list(ctx context.Context, c *cli.Command) error {
	return cmd.withEngine(func(eng *engine.Engine) error {
		notifications, err := eng.ListNotifications(ctx, cmd.read)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.flags.Out, renderNotifications(notifications, cmd.read))
		return err
	})
}

func (cmd *NotificationsCmd) markRead(ctx context.Context, c *cli.Command) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	return cmd.withEngine(func(eng *engine.Engine) error {
		if err := eng.MarkRead(ctx, id); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.flags.Out, "Marked notification %d as read\n", id)
		return err
	})
}

func (cmd *NotificationsCmd) delete(ctx context.Context, c *cli.Command) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	return cmd.withEngine(func(eng *engine.Engine) error {
		if err := eng.Delete(ctx, id); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.flags.Out, "Deleted notification %d\n", id)
		return err
	})
}

func parseID(c *cli.Command) (int64, error) {
	if c.Args().Len() != 1 {
		return 0, fmt.Errorf("expected exactly one notification id")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid notification id %q", c.Args().First())
	}
	return id, nil
}
