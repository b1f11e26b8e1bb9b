package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/murmur/internal/core/config"
	"github.com/colonyops/murmur/internal/core/eventbus/testbus"
	"github.com/colonyops/murmur/internal/core/social"
	"github.com/colonyops/murmur/internal/data/db"
	"github.com/colonyops/murmur/internal/data/stores"
	"github.com/colonyops/murmur/internal/murmur"
)

type testEnv struct {
	flags  *Flags
	app    *murmur.App
	out    *bytes.Buffer
	errOut *bytes.Buffer

	// optional overrides applied to each fresh command
	setupConv func(*ConvCmd)
	setupSend func(*SendCmd)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	cfg := config.DefaultConfig()
	cfg.User = "alice"
	cfg.DataDir = dir

	tb := testbus.New(t)
	app := murmur.NewApp(
		&cfg,
		database,
		nil,
		tb.EventBus,
		stores.NewConversationStore(database),
		stores.NewMessageStore(database),
		stores.NewRequestStore(database),
	)

	return &testEnv{
		flags: &Flags{
			ConfigPath: filepath.Join(dir, "config.yaml"),
			DataDir:    dir,
			Config:     &cfg,
		},
		app:    app,
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
	}
}

// run executes args against a fresh command tree so flag destinations
// never leak between invocations.
func (e *testEnv) run(stdin io.Reader, args ...string) error {
	e.out.Reset()
	e.errOut.Reset()

	root := &cli.Command{
		Name:           "murmur",
		Writer:         e.out,
		ErrWriter:      e.errOut,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}

	send := NewSendCmd(e.flags, e.app)
	if stdin != nil {
		send.stdin = stdin
	}
	if e.setupSend != nil {
		e.setupSend(send)
	}

	conv := NewConvCmd(e.flags, e.app)
	conv.interactive = func() bool { return false }
	if e.setupConv != nil {
		e.setupConv(conv)
	}

	root = send.Register(root)
	root = conv.Register(root)
	root = NewRequestCmd(e.flags, e.app).Register(root)
	root = NewFriendsCmd(e.flags, e.app).Register(root)
	root = NewPruneCmd(e.flags, e.app).Register(root)
	root = NewDoctorCmd(e.flags, e.app).Register(root)
	root = NewConfigValidateCmd(e.flags).Register(root)

	return root.Run(context.Background(), append([]string{"murmur"}, args...))
}

func (e *testEnv) as(user string) *testEnv {
	e.flags.User = user
	return e
}

func (e *testEnv) startConversation(t *testing.T, args ...string) string {
	t.Helper()
	require.NoError(t, e.run(nil, append([]string{"conv", "new"}, args...)...))
	id := strings.TrimSpace(e.out.String())
	require.NotEmpty(t, id)
	return id
}

func TestFlags_CurrentUser(t *testing.T) {
	f := &Flags{}
	_, err := f.CurrentUser()
	require.ErrorIs(t, err, ErrNoUser)

	f.Config = &config.Config{User: "carol"}
	user, err := f.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "carol", user)

	f.User = "dave"
	user, err = f.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "dave", user, "flag wins over config")
}

func TestSend_FromArgs(t *testing.T) {
	e := newTestEnv(t)
	convID := e.startConversation(t, "--with", "bob")

	require.NoError(t, e.run(nil, "send", convID, "see", "you", "at", "5"))
	assert.True(t, strings.HasPrefix(e.out.String(), "sent "))

	msgs, err := e.app.Messages.List(context.Background(), convID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "see you at 5", msgs[0].Body)
	assert.Equal(t, "alice", msgs[0].Sender)
}

func TestSend_FromStdin(t *testing.T) {
	e := newTestEnv(t)
	convID := e.startConversation(t, "--with", "bob")

	require.NoError(t, e.run(strings.NewReader("build is green\n"), "send", "--json", convID))

	var msg social.Message
	require.NoError(t, json.Unmarshal(e.out.Bytes(), &msg))
	assert.Equal(t, "build is green", msg.Body)
	assert.Equal(t, convID, msg.ConversationID)
}

func TestSend_Errors(t *testing.T) {
	e := newTestEnv(t)
	convID := e.startConversation(t, "--with", "bob")

	err := e.run(nil, "send")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conversation id is required")

	err = e.run(strings.NewReader(""), "send", convID)
	require.ErrorIs(t, err, social.ErrEmptyBody)

	oversize := strings.NewReader(strings.Repeat("x", social.MaxBodySize+1))
	require.Error(t, e.run(oversize, "send", convID))

	e.flags.Config.User = ""
	require.ErrorIs(t, e.run(nil, "send", convID, "hi"), ErrNoUser)
}

func TestConv_LsAndRead(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	convID := e.startConversation(t, "-w", "bob", "--title", "release")
	_, err := e.app.Messages.Send(ctx, convID, "bob", "tagged v1.2")
	require.NoError(t, err)

	require.NoError(t, e.run(nil, "conv", "ls"))
	out := e.out.String()
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "release")

	require.NoError(t, e.run(nil, "conv", "ls", "--json", "--unread"))
	var info conversationInfo
	require.NoError(t, json.Unmarshal(e.out.Bytes(), &info))
	assert.Equal(t, convID, info.ID)
	assert.Equal(t, 1, info.Unread)

	require.NoError(t, e.run(nil, "conv", "read", "--peek", convID))
	assert.Contains(t, e.out.String(), "tagged v1.2")

	unread, err := e.app.Conversations.Unread(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, unread, 1, "peek keeps the read receipt")

	require.NoError(t, e.run(nil, "conv", "read", convID))
	unread, err = e.app.Conversations.Unread(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, unread)

	require.NoError(t, e.run(nil, "conv", "ls", "--unread"))
	assert.Empty(t, e.out.String())
	assert.Contains(t, e.errOut.String(), "No conversations found")
}

func TestConv_ReadRequiresParticipant(t *testing.T) {
	e := newTestEnv(t)
	convID := e.startConversation(t, "--with", "bob")

	err := e.as("mallory").run(nil, "conv", "read", convID)
	require.ErrorIs(t, err, social.ErrNotFound)
}

func TestRequest_Lifecycle(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, e.as("bob").run(nil, "request", "send", "alice"))
	reqID := strings.TrimSpace(e.out.String())
	require.NotEmpty(t, reqID)

	require.NoError(t, e.as("alice").run(nil, "request", "ls"))
	assert.Contains(t, e.out.String(), reqID)
	assert.Contains(t, e.out.String(), "bob")

	require.NoError(t, e.run(nil, "req", "accept", reqID))
	assert.Equal(t, "accepted "+reqID+"\n", e.out.String())

	require.NoError(t, e.run(nil, "request", "ls", "--json"))
	assert.Empty(t, e.out.String())

	require.ErrorIs(t, e.run(nil, "request", "decline", reqID), social.ErrAlreadyHandled)
	require.ErrorIs(t, e.run(nil, "request", "decline", "missing"), social.ErrNotFound)
}

func TestFriends_Ls(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, e.as("alice").run(nil, "friends", "ls"))
	assert.Empty(t, e.out.String())
	assert.Contains(t, e.errOut.String(), "No friends yet")

	require.NoError(t, e.as("bob").run(nil, "request", "send", "alice"))
	bobReq := strings.TrimSpace(e.out.String())
	require.NoError(t, e.as("alice").run(nil, "request", "send", "carol"))
	carolReq := strings.TrimSpace(e.out.String())
	require.NoError(t, e.as("dave").run(nil, "request", "send", "alice"))

	require.NoError(t, e.as("alice").run(nil, "request", "accept", bobReq))
	require.NoError(t, e.as("carol").run(nil, "request", "accept", carolReq))

	require.NoError(t, e.as("alice").run(nil, "friends", "ls"))
	assert.Equal(t, "bob\ncarol\n", e.out.String(), "pending requests are not friends")

	require.NoError(t, e.run(nil, "friends", "ls", "--json"))
	var got []string
	for _, line := range strings.Split(strings.TrimSpace(e.out.String()), "\n") {
		var f friendJSON
		require.NoError(t, json.Unmarshal([]byte(line), &f))
		got = append(got, f.User)
	}
	assert.Equal(t, []string{"bob", "carol"}, got)
}

func TestPrune(t *testing.T) {
	e := newTestEnv(t)
	convID := e.startConversation(t, "--with", "bob")
	require.NoError(t, e.run(nil, "send", convID, "fresh"))

	require.NoError(t, e.run(nil, "prune", "--older-than", "1h"))
	assert.Contains(t, e.out.String(), "No messages")

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, e.run(nil, "prune", "--older-than", "1ms"))
	assert.Contains(t, e.out.String(), "Pruned 1 message(s)")

	require.Error(t, e.run(nil, "prune", "--older-than", "0s"))
}

func TestConfigValidate_JSON(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, e.run(nil, "config", "validate", "--format", "json"))
	var out struct {
		Valid  bool              `json:"valid"`
		Errors []validationIssue `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(e.out.Bytes(), &out))
	assert.True(t, out.Valid)
	assert.Empty(t, out.Errors)

	e.flags.Config.Audio.Mute = []string{"unread/[oops"}
	require.Error(t, e.run(nil, "config", "validate", "--format", "json"))
	require.NoError(t, json.Unmarshal(e.out.Bytes(), &out))
	assert.False(t, out.Valid)
	require.NotEmpty(t, out.Errors)
	assert.Equal(t, "audio.mute[0]", out.Errors[0].Field)
}

func TestConfigValidate_Text(t *testing.T) {
	e := newTestEnv(t)
	e.flags.Config.Scroll.Threshold = 10

	require.Error(t, e.run(nil, "config", "validate"))
	assert.Contains(t, e.out.String(), "scroll.threshold")
	assert.Contains(t, e.out.String(), "1 error(s) found")
}

func TestDoctor_JSON(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, e.run(nil, "doctor", "--format", "json"))

	var out struct {
		Healthy bool `json:"healthy"`
		Summary struct {
			Failed int `json:"failed"`
		} `json:"summary"`
		Checks []struct {
			Name string `json:"name"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(e.out.Bytes(), &out))
	assert.True(t, out.Healthy)
	assert.Zero(t, out.Summary.Failed)

	names := make([]string, 0, len(out.Checks))
	for _, c := range out.Checks {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "Configuration")
}

func TestCollectIssues(t *testing.T) {
	assert.Nil(t, collectIssues(nil))

	issues := collectIssues(assert.AnError)
	require.Len(t, issues, 1)
	assert.Empty(t, issues[0].Field)
	assert.Equal(t, assert.AnError.Error(), issues[0].Message)
}

func TestConvNew_RequiresWithWhenNotInteractive(t *testing.T) {
	e := newTestEnv(t)

	err := e.run(nil, "conv", "new")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--with is required")
}

func TestConvNew_PromptsOnTerminal(t *testing.T) {
	e := newTestEnv(t)
	e.setupConv = func(cmd *ConvCmd) {
		cmd.interactive = func() bool { return true }
		cmd.form = func(with *[]string, title *string) error {
			*with = splitUsernames("bob, carol")
			*title = "standup"
			return nil
		}
	}

	require.NoError(t, e.run(nil, "conv", "new"))
	convID := strings.TrimSpace(e.out.String())

	conv, err := e.app.Conversations.Get(context.Background(), convID)
	require.NoError(t, err)
	assert.Equal(t, "standup", conv.Title)
	assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, conv.Participants)
}

func TestConvNew_PromptAborted(t *testing.T) {
	e := newTestEnv(t)
	e.setupConv = func(cmd *ConvCmd) {
		cmd.interactive = func() bool { return true }
		cmd.form = func(*[]string, *string) error { return huh.ErrUserAborted }
	}

	require.NoError(t, e.run(nil, "conv", "new"))
	assert.Empty(t, e.out.String())

	convs, err := e.app.Conversations.ListFor(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, convs)
}

func TestSend_PromptsOnTerminal(t *testing.T) {
	e := newTestEnv(t)
	convID := e.startConversation(t, "--with", "bob")

	e.setupSend = func(cmd *SendCmd) {
		cmd.isTerminal = func(io.Reader) bool { return true }
		cmd.form = func() (string, error) { return "typed in a form\n", nil }
	}
	require.NoError(t, e.run(nil, "send", convID))

	msgs, err := e.app.Messages.List(context.Background(), convID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "typed in a form", msgs[0].Body)

	e.setupSend = func(cmd *SendCmd) {
		cmd.isTerminal = func(io.Reader) bool { return true }
		cmd.form = func() (string, error) { return "", huh.ErrUserAborted }
	}
	require.NoError(t, e.run(nil, "send", convID))
	assert.Empty(t, e.out.String())
}

func TestSplitUsernames(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"bob", []string{"bob"}},
		{"bob, carol", []string{"bob", "carol"}},
		{" bob ,,carol dave ", []string{"bob", "carol", "dave"}},
		{"  ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, splitUsernames(tt.in))
		})
	}

	assert.Error(t, validateUsernames(" , "))
	assert.NoError(t, validateUsernames("bob"))
}
