package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/murmur/internal/murmur"
)

type PruneCmd struct {
	flags *Flags
	app   *murmur.App

	olderThan time.Duration
}

// NewPruneCmd creates a new prune command
func NewPruneCmd(flags *Flags, app *murmur.App) *PruneCmd {
	return &PruneCmd{flags: flags, app: app}
}

// Register adds the prune command to the application
func (cmd *PruneCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "prune",
		Usage:     "Delete old messages",
		UsageText: "murmur prune [--older-than 720h]",
		Description: `Deletes messages older than the given age from every conversation.

Conversations and read receipts are kept. Use this to reclaim space in
long-lived databases.`,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:        "older-than",
				Usage:       "delete messages older than this age",
				Value:       30 * 24 * time.Hour,
				Destination: &cmd.olderThan,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *PruneCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.olderThan <= 0 {
		return fmt.Errorf("--older-than must be positive")
	}

	count, err := cmd.app.Messages.Prune(ctx, cmd.olderThan)
	if err != nil {
		return fmt.Errorf("prune messages: %w", err)
	}

	out := c.Root().Writer
	cutoff := humanize.Time(time.Now().Add(-cmd.olderThan))
	if count == 0 {
		_, _ = fmt.Fprintf(out, "No messages from before %s to prune\n", cutoff)
		return nil
	}

	_, _ = fmt.Fprintf(out, "Pruned %s message(s) from before %s\n", humanize.Comma(int64(count)), cutoff)
	return nil
}
