package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/colonyops/murmur/internal/core/styles"
)

// readerIsTerminal reports whether r is an interactive terminal.
func readerIsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// splitUsernames splits a comma or whitespace separated list of usernames.
func splitUsernames(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

func validateUsernames(s string) error {
	if len(splitUsernames(s)) == 0 {
		return fmt.Errorf("at least one username is required")
	}
	return nil
}

func validateBody(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("message is required")
	}
	return nil
}

// conversationForm asks for the participants and title of a new
// conversation.
func conversationForm(with *[]string, title *string) error {
	var raw string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("With").
				Description("Usernames, separated by commas").
				Validate(validateUsernames).
				Value(&raw),
			huh.NewInput().
				Title("Title").
				Description("Optional; defaults to the participant names").
				Value(title),
		),
	).WithTheme(styles.FormTheme()).Run()
	if err != nil {
		return err
	}

	*with = splitUsernames(raw)
	return nil
}

// bodyForm asks for a message body.
func bodyForm() (string, error) {
	var body string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Message").
				Description("Markdown is rendered in the TUI").
				Validate(validateBody).
				Value(&body),
		),
	).WithTheme(styles.FormTheme()).Run()
	return body, err
}
