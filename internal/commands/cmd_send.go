package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/murmur/internal/core/social"
	"github.com/colonyops/murmur/internal/murmur"
	"github.com/colonyops/murmur/pkg/iojson"
)

type SendCmd struct {
	flags *Flags
	app   *murmur.App

	// flags
	file       string
	jsonOutput bool

	// stdin, isTerminal and form are swapped in tests.
	stdin      io.Reader
	isTerminal func(io.Reader) bool
	form       func() (string, error)
}

// NewSendCmd creates a new send command
func NewSendCmd(flags *Flags, app *murmur.App) *SendCmd {
	return &SendCmd{
		flags:      flags,
		app:        app,
		stdin:      os.Stdin,
		isTerminal: readerIsTerminal,
		form:       bodyForm,
	}
}

// Register adds the send command to the application
func (cmd *SendCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "send",
		Usage:     "Send a message to a conversation",
		UsageText: "murmur send <conversation-id> [message]",
		Description: `Sends a message as the current user.

The message can be provided as:
- Command-line arguments
- From a file with -f/--file
- From stdin if no argument is provided
- From a prompt when stdin is a terminal

Examples:
  murmur send 3f2a "see you at 5"
  echo "build is green" | murmur send 3f2a
  murmur send 3f2a -f notes.md`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "read the message body from a file",
				Destination: &cmd.file,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the stored message as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		ShellComplete: ConversationIDCompleter(cmd.flags, cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *SendCmd) run(ctx context.Context, c *cli.Command) error {
	user, err := cmd.flags.CurrentUser()
	if err != nil {
		return err
	}

	if c.Args().Len() < 1 {
		return fmt.Errorf("conversation id is required")
	}
	convID := c.Args().First()

	body, err := cmd.readBody(c.Args().Tail())
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	msg, err := cmd.app.Messages.Send(ctx, convID, user, body)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteWith(out, c.Root().ErrWriter, msg)
	}
	_, _ = fmt.Fprintf(out, "sent %s\n", msg.ID)
	return nil
}

// readBody resolves the message body from args, --file, a prompt on a
// terminal or piped stdin, in that order.
func (cmd *SendCmd) readBody(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	var r io.Reader
	switch {
	case cmd.file != "":
		f, err := os.Open(cmd.file)
		if err != nil {
			return "", fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	default:
		if cmd.isTerminal(cmd.stdin) {
			body, err := cmd.form()
			if err != nil {
				return "", err
			}
			return strings.TrimRight(body, "\n"), nil
		}
		r = cmd.stdin
	}

	// Read one byte past the limit so oversize bodies fail validation
	// instead of being truncated.
	data, err := io.ReadAll(io.LimitReader(r, social.MaxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("read message: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
