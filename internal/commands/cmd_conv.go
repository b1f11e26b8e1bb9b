package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/murmur/internal/core/social"
	"github.com/colonyops/murmur/internal/murmur"
	"github.com/colonyops/murmur/pkg/iojson"
)

type ConvCmd struct {
	flags *Flags
	app   *murmur.App

	// new flags
	newWith  []string
	newTitle string

	// ls flags
	lsJSON   bool
	lsUnread bool

	// read flags
	readLast int
	readPeek bool
	readJSON bool

	// interactive and form are swapped in tests.
	interactive func() bool
	form        func(with *[]string, title *string) error
}

// NewConvCmd creates a new conv command
func NewConvCmd(flags *Flags, app *murmur.App) *ConvCmd {
	return &ConvCmd{
		flags:       flags,
		app:         app,
		interactive: func() bool { return readerIsTerminal(os.Stdin) },
		form:        conversationForm,
	}
}

// Register adds the conv command to the application
func (cmd *ConvCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "conv",
		Aliases: []string{"c"},
		Usage:   "Start, list and read conversations",
		Commands: []*cli.Command{
			cmd.newCmd(),
			cmd.lsCmd(),
			cmd.readCmd(),
		},
	})

	return app
}

func (cmd *ConvCmd) newCmd() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Start a conversation",
		UsageText: "murmur conv new --with <user> [--with <user2>] [--title <title>]",
		Description: `Creates a conversation between the current user and the named users.
Without --with, an interactive terminal prompts for the participants.

Examples:
  murmur conv new --with bob
  murmur conv new -w bob -w carol --title "release"`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:        "with",
				Aliases:     []string{"w"},
				Usage:       "participant username (repeatable)",
				Destination: &cmd.newWith,
			},
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "conversation title (defaults to the participant names)",
				Destination: &cmd.newTitle,
			},
		},
		Action: cmd.runNew,
	}
}

func (cmd *ConvCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List your conversations",
		UsageText: "murmur conv ls [--unread] [--json]",
		Description: `Displays the current user's conversations, most recent first, with
their unread counts.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.lsJSON,
			},
			&cli.BoolFlag{
				Name:        "unread",
				Aliases:     []string{"u"},
				Usage:       "only list conversations with unread messages",
				Destination: &cmd.lsUnread,
			},
		},
		Action: cmd.runLs,
	}
}

func (cmd *ConvCmd) readCmd() *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "Print a conversation",
		UsageText: "murmur conv read <conversation-id> [--last N] [--peek]",
		Description: `Prints the messages of a conversation, oldest first, and marks it read.

Use --peek to read without moving your read receipt.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "last",
				Aliases:     []string{"n"},
				Usage:       "only print the last N messages (0 uses feeds.message_limit)",
				Destination: &cmd.readLast,
			},
			&cli.BoolFlag{
				Name:        "peek",
				Usage:       "do not mark the conversation read",
				Destination: &cmd.readPeek,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.readJSON,
			},
		},
		ShellComplete: ConversationIDCompleter(cmd.flags, cmd.app),
		Action:        cmd.runRead,
	}
}

func (cmd *ConvCmd) runNew(ctx context.Context, c *cli.Command) error {
	user, err := cmd.flags.CurrentUser()
	if err != nil {
		return err
	}

	// Prompt for participants when none were passed
	if len(cmd.newWith) == 0 {
		if !cmd.interactive() {
			return errors.New("--with is required when stdin is not a terminal")
		}
		if err := cmd.form(&cmd.newWith, &cmd.newTitle); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	conv, err := cmd.app.Conversations.Start(ctx, user, cmd.newTitle, cmd.newWith)
	if err != nil {
		return fmt.Errorf("start conversation: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, conv.ID)
	return nil
}

// conversationInfo is the JSON output format for murmur conv ls --json.
type conversationInfo struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Participants  []string  `json:"participants"`
	Unread        int       `json:"unread"`
	LastMessageAt time.Time `json:"last_message_at"`
}

func (cmd *ConvCmd) runLs(ctx context.Context, c *cli.Command) error {
	user, err := cmd.flags.CurrentUser()
	if err != nil {
		return err
	}

	convs, err := cmd.app.Conversations.ListFor(ctx, user)
	if err != nil {
		return fmt.Errorf("list conversations: %w", err)
	}

	unread, err := cmd.app.Conversations.Unread(ctx, user)
	if err != nil {
		return fmt.Errorf("count unread: %w", err)
	}
	counts := make(map[string]int, len(unread))
	for _, u := range unread {
		counts[u.ConversationID] = u.Unread
	}

	if cmd.lsUnread {
		convs = slices.DeleteFunc(convs, func(cv social.Conversation) bool { return counts[cv.ID] == 0 })
	}

	out := c.Root().Writer

	if cmd.lsJSON {
		for _, cv := range convs {
			info := conversationInfo{
				ID:            cv.ID,
				Title:         cv.DisplayTitle(user),
				Participants:  cv.Participants,
				Unread:        counts[cv.ID],
				LastMessageAt: cv.LastMessageAt,
			}
			if err := iojson.WriteLine(out, info); err != nil {
				return fmt.Errorf("encode conversation: %w", err)
			}
		}
		return nil
	}

	if len(convs) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "No conversations found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tUNREAD\tLAST MESSAGE")
	for _, cv := range convs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", cv.ID, cv.DisplayTitle(user), counts[cv.ID], humanize.Time(cv.LastMessageAt))
	}
	return w.Flush()
}

func (cmd *ConvCmd) runRead(ctx context.Context, c *cli.Command) error {
	user, err := cmd.flags.CurrentUser()
	if err != nil {
		return err
	}

	if c.Args().Len() < 1 {
		return fmt.Errorf("conversation id is required")
	}
	convID := c.Args().First()

	conv, err := cmd.app.Conversations.Get(ctx, convID)
	if err != nil {
		return fmt.Errorf("get conversation: %w", err)
	}
	if !slices.Contains(conv.Participants, user) {
		return fmt.Errorf("get conversation %s: %w", convID, social.ErrNotFound)
	}

	msgs, err := cmd.app.Messages.List(ctx, convID, cmd.readLast)
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}

	out := c.Root().Writer
	for _, m := range msgs {
		if cmd.readJSON {
			if err := iojson.WriteLine(out, m); err != nil {
				return fmt.Errorf("encode message: %w", err)
			}
			continue
		}
		_, _ = fmt.Fprintf(out, "%s  %s\n%s\n\n", m.Sender, humanize.Time(m.CreatedAt), m.Body)
	}

	if cmd.readPeek {
		return nil
	}
	if err := cmd.app.Conversations.MarkRead(ctx, convID, user); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}
