package commands

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/murmur/internal/core/logging"
	"github.com/colonyops/murmur/internal/murmur"
	"github.com/colonyops/murmur/internal/tui"
	"github.com/colonyops/murmur/pkg/profiler"
	"github.com/colonyops/murmur/pkg/utils"
)

type TuiCmd struct {
	flags *Flags
	app   *murmur.App

	profilerPort int
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *murmur.App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified localhost port (e.g., 6060)",
			Sources:     cli.EnvVars("MURMUR_PROFILER_PORT"),
			Destination: &cmd.profilerPort,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, c *cli.Command) error {
	user, err := cmd.flags.CurrentUser()
	if err != nil {
		return err
	}

	if cmd.profilerPort > 0 {
		profServer := profiler.New(cmd.profilerPort, logging.Component("profiler"))
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
	}

	// Warnings raised while the alt screen is up would be lost; replay them
	// on stderr after exit.
	deferred := &utils.DeferredWriter{}
	prevLogger := log.Logger
	log.Logger = log.Logger.Hook(deferred.Hook(zerolog.WarnLevel))
	defer func() {
		log.Logger = prevLogger
		_ = deferred.Flush(c.Root().ErrWriter)
	}()

	for _, w := range cmd.app.Config.Warnings() {
		log.Warn().Str("category", w.Category).Str("item", w.Item).Msg(w.Message)
	}

	deps := tui.Deps{
		Config:        cmd.app.Config,
		Conversations: cmd.app.Conversations,
		Messages:      cmd.app.Messages,
		Requests:      cmd.app.Requests,
		Bus:           cmd.app.Bus,
	}
	if cmd.app.Feeds != nil {
		deps.Feeds = cmd.app.Feeds
	}

	m := tui.New(deps, tui.Opts{User: user})
	p := tea.NewProgram(m, tea.WithContext(ctx))

	if cmd.app.Bells != nil {
		restore := cmd.app.Bells.Route(func(seq string) { p.Send(tui.BellMsg{Seq: seq}) })
		defer restore()
	}

	finalModel, err := p.Run()
	if model, ok := finalModel.(tui.Model); ok {
		model.Close()
	} else {
		m.Close()
	}
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	return nil
}
