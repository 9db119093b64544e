package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/nhle/equipment-alerts/internal/api"
	"github.com/nhle/equipment-alerts/internal/logger"
	alertsync "github.com/nhle/equipment-alerts/internal/sync"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

type ServeCmd struct {
	flags *Flags

	// flags
	scheduler bool
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run the HTTP API and the rule scheduler",
		UsageText: "alertd serve [--scheduler=false]",
		Description: `Serves the notification API and runs every rule on the configured
interval (agent.run_interval_hours), starting with one run at startup.

Stops gracefully on SIGINT or SIGTERM.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "scheduler",
				Usage:       "run rules on a timer in addition to on demand",
				Value:       true,
				Destination: &cmd.scheduler,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := cmd.flags.Config
	log := cmd.flags.Logger

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

	eng := cmd.flags.newEngine(s, pub)

	if cmd.scheduler {
		poller := alertsync.New(eng, cfg.Agent.RunInterval(), logger.WithComponent(log, "scheduler"))
		poller.Start(ctx)
		defer poller.Stop()
	}

	srv := api.NewServer(cfg.HTTP.Addr, api.NewRouter(eng, logger.WithComponent(log, "http")))

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
