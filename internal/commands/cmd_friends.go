package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/murmur/internal/murmur"
	"github.com/colonyops/murmur/pkg/iojson"
)

type FriendsCmd struct {
	flags *Flags
	app   *murmur.App

	lsJSON bool
}

// NewFriendsCmd creates a new friends command
func NewFriendsCmd(flags *Flags, app *murmur.App) *FriendsCmd {
	return &FriendsCmd{flags: flags, app: app}
}

// Register adds the friends command to the application
func (cmd *FriendsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "friends",
		Usage: "List the people you are friends with",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List users who accepted your request or whose request you accepted",
				UsageText: "murmur friends ls [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.lsJSON,
					},
				},
				Action: cmd.runLs,
			},
		},
	})

	return app
}

type friendJSON struct {
	User string `json:"user"`
}

func (cmd *FriendsCmd) runLs(ctx context.Context, c *cli.Command) error {
	user, err := cmd.flags.CurrentUser()
	if err != nil {
		return err
	}

	friends, err := cmd.app.Requests.Friends(ctx, user)
	if err != nil {
		return fmt.Errorf("list friends: %w", err)
	}

	out := c.Root().Writer

	if cmd.lsJSON {
		for _, f := range friends {
			if err := iojson.WriteLine(out, friendJSON{User: f}); err != nil {
				return fmt.Errorf("encode friend: %w", err)
			}
		}
		return nil
	}

	if len(friends) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "No friends yet. Send one with: murmur request send <user>")
		return nil
	}

	for _, f := range friends {
		_, _ = fmt.Fprintln(out, f)
	}
	return nil
}
