package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/murmur/internal/murmur"
)

// completingFlag reports whether the user is typing a flag, in which case
// completion falls back to the default flag completion.
func completingFlag(ctx context.Context, cmd *cli.Command) bool {
	if args := cmd.Args(); args.Present() {
		last := args.Slice()[args.Len()-1]
		if len(last) > 0 && last[0] == '-' {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return true
		}
	}
	return false
}

// ConversationIDCompleter suggests the current user's conversation IDs as
// positional completions, tab-separated from their display titles.
func ConversationIDCompleter(flags *Flags, app *murmur.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if completingFlag(ctx, cmd) {
			return
		}

		user, err := flags.CurrentUser()
		if err != nil || app.Conversations == nil {
			return
		}
		convs, err := app.Conversations.ListFor(ctx, user)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, c := range convs {
			_, _ = fmt.Fprintf(w, "%s:%s\n", c.ID, c.DisplayTitle(user))
		}
	}
}

// RequestIDCompleter suggests pending friend request IDs addressed to the
// current user.
func RequestIDCompleter(flags *Flags, app *murmur.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if completingFlag(ctx, cmd) {
			return
		}

		user, err := flags.CurrentUser()
		if err != nil || app.Requests == nil {
			return
		}
		pending, err := app.Requests.Pending(ctx, user)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, r := range pending {
			_, _ = fmt.Fprintf(w, "%s:%s\n", r.ID, r.From)
		}
	}
}
