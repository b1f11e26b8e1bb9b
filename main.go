package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/murmur/internal/commands"
	"github.com/colonyops/murmur/internal/core/audio"
	"github.com/colonyops/murmur/internal/core/config"
	"github.com/colonyops/murmur/internal/core/eventbus"
	"github.com/colonyops/murmur/internal/core/logging"
	"github.com/colonyops/murmur/internal/core/styles"
	"github.com/colonyops/murmur/internal/data/db"
	"github.com/colonyops/murmur/internal/data/stores"
	"github.com/colonyops/murmur/internal/murmur"
	"github.com/colonyops/murmur/internal/tui"
	"github.com/colonyops/murmur/pkg/executil"
	"github.com/colonyops/murmur/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

// buildCues turns the configured audio cues into the alert router's cue
// map, keyed by alert category. Bells go through bells.
func buildCues(cfg *config.Config, bells *audio.Router) (map[string]audio.Cue, error) {
	exec := &executil.RealExecutor{}
	specs := map[string]config.CueConfig{
		tui.CategoryUnread:   cfg.Audio.Conversations,
		tui.CategoryRequests: cfg.Audio.Requests,
	}

	cues := make(map[string]audio.Cue, len(specs))
	for category, spec := range specs {
		cue, err := audio.Build(spec.Spec(), exec, os.Stdout, bells)
		if err != nil {
			return nil, fmt.Errorf("audio cue %s: %w", category, err)
		}
		cues[category] = cue
	}
	return cues, nil
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		murmurApp = &murmur.App{}
		database  *db.DB
		feeds     *stores.Feeds
		busCancel context.CancelFunc
		flags     = &commands.Flags{}
	)

	app := &cli.Command{
		Name:      "murmur",
		Usage:     "Chat with friends from the terminal",
		UsageText: "murmur [global options] command [command options]",
		Description: `Murmur is a terminal messenger backed by a local SQLite database.

Conversations, unread badges and friend requests update live: every murmur
process sharing a data directory sees new messages as they land.

Run 'murmur' with no arguments to open the interactive client.
Run 'murmur conv new --with <user>' to start a conversation from the shell.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("MURMUR_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/murmur.log)",
				Sources:     cli.EnvVars("MURMUR_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("MURMUR_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("MURMUR_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "user",
				Aliases:     []string{"u"},
				Usage:       "act as this user (defaults to the configured user)",
				Sources:     cli.EnvVars("MURMUR_USER"),
				Destination: &flags.User,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file so the TUI owns the terminal.
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "murmur.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Unknown themes keep the default; config validate reports them.
			if palette, ok := styles.GetPalette(cfg.TUI.Theme); ok {
				styles.SetTheme(palette)
			}

			dbOpts := db.OpenOptions{
				MaxOpenConns: cfg.Database.MaxOpenConns,
				MaxIdleConns: cfg.Database.MaxIdleConns,
				BusyTimeout:  cfg.Database.BusyTimeout,
			}
			database, err = stores.OpenWithRecovery(cfg.DataDir, dbOpts)
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			convStore := stores.NewConversationStore(database)
			msgStore := stores.NewMessageStore(database)
			reqStore := stores.NewRequestStore(database)

			feeds, err = stores.NewFeeds(database, stores.FeedsConfig{
				Interval:     cfg.Feeds.PollInterval,
				MessageLimit: cfg.Feeds.MessageLimit,
				Watch:        cfg.Feeds.WatchEnabled(),
				Logger:       logging.Component("feeds"),
			})
			if err != nil {
				return ctx, fmt.Errorf("create feeds: %w", err)
			}

			// Event bus with alert and activity routing
			busCtx, cancel := context.WithCancel(context.Background())
			busCancel = cancel

			bus := eventbus.New(64)
			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))

			bells := &audio.Router{}
			cues, err := buildCues(cfg, bells)
			if err != nil {
				return ctx, err
			}
			eventbus.NewAlertRouter(busCtx, bus, cues, cfg.Audio.Mute,
				logging.Component("alerts")).Register()
			eventbus.NewActivityRouter(busCtx, bus, convStore, feeds,
				logging.Component("activity")).Register()

			go bus.Start(busCtx)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*murmurApp = *murmur.NewApp(cfg, database, feeds, bus, convStore, msgStore, reqStore)
			murmurApp.Bells = bells

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Stop the bus after the TUI has published tui.stopped
			if busCancel != nil {
				busCancel()
			}

			if feeds != nil {
				if err := feeds.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close feeds")
				}
			}

			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, murmurApp)

	app = commands.NewSendCmd(flags, murmurApp).Register(app)
	app = commands.NewConvCmd(flags, murmurApp).Register(app)
	app = commands.NewRequestCmd(flags, murmurApp).Register(app)
	app = commands.NewFriendsCmd(flags, murmurApp).Register(app)
	app = commands.NewPruneCmd(flags, murmurApp).Register(app)
	app = commands.NewDoctorCmd(flags, murmurApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	// Register TUI flags on root command
	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'murmur --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
