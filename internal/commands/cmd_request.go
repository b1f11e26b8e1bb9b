package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/murmur/internal/murmur"
	"github.com/colonyops/murmur/pkg/iojson"
)

type RequestCmd struct {
	flags *Flags
	app   *murmur.App

	lsJSON bool
}

// NewRequestCmd creates a new request command
func NewRequestCmd(flags *Flags, app *murmur.App) *RequestCmd {
	return &RequestCmd{flags: flags, app: app}
}

// Register adds the request command to the application
func (cmd *RequestCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "request",
		Aliases: []string{"req"},
		Usage:   "Send and answer friend requests",
		Commands: []*cli.Command{
			{
				Name:      "send",
				Usage:     "Send a friend request",
				UsageText: "murmur request send <user>",
				Action:    cmd.runSend,
			},
			{
				Name:      "ls",
				Usage:     "List pending friend requests addressed to you",
				UsageText: "murmur request ls [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.lsJSON,
					},
				},
				Action: cmd.runLs,
			},
			{
				Name:          "accept",
				Usage:         "Accept a pending friend request",
				UsageText:     "murmur request accept <request-id>",
				ShellComplete: RequestIDCompleter(cmd.flags, cmd.app),
				Action:        cmd.respond(true),
			},
			{
				Name:          "decline",
				Usage:         "Decline a pending friend request",
				UsageText:     "murmur request decline <request-id>",
				ShellComplete: RequestIDCompleter(cmd.flags, cmd.app),
				Action:        cmd.respond(false),
			},
		},
	})

	return app
}

func (cmd *RequestCmd) runSend(ctx context.Context, c *cli.Command) error {
	user, err := cmd.flags.CurrentUser()
	if err != nil {
		return err
	}
	if c.Args().Len() < 1 {
		return fmt.Errorf("username is required")
	}

	r, err := cmd.app.Requests.Send(ctx, user, c.Args().First())
	if err != nil {
		return fmt.Errorf("send friend request: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, r.ID)
	return nil
}

func (cmd *RequestCmd) runLs(ctx context.Context, c *cli.Command) error {
	user, err := cmd.flags.CurrentUser()
	if err != nil {
		return err
	}

	pending, err := cmd.app.Requests.Pending(ctx, user)
	if err != nil {
		return fmt.Errorf("list friend requests: %w", err)
	}

	out := c.Root().Writer

	if cmd.lsJSON {
		for _, r := range pending {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode friend request: %w", err)
			}
		}
		return nil
	}

	if len(pending) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "No pending friend requests")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tFROM\tSENT")
	for _, r := range pending {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, r.From, humanize.Time(r.CreatedAt))
	}
	return w.Flush()
}

func (cmd *RequestCmd) respond(accept bool) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() < 1 {
			return fmt.Errorf("request id is required")
		}
		id := c.Args().First()

		verb := "declined"
		var err error
		if accept {
			verb = "accepted"
			err = cmd.app.Requests.Accept(ctx, id)
		} else {
			err = cmd.app.Requests.Decline(ctx, id)
		}
		if err != nil {
			return fmt.Errorf("respond to friend request: %w", err)
		}

		_, _ = fmt.Fprintf(c.Root().Writer, "%s %s\n", verb, id)
		return nil
	}
}
