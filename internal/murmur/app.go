// Package murmur wires the stores, live feeds and event bus into the
// services shared by the CLI commands and the TUI.
package murmur

import (
	"github.com/colonyops/murmur/internal/core/audio"
	"github.com/colonyops/murmur/internal/core/config"
	"github.com/colonyops/murmur/internal/core/eventbus"
	"github.com/colonyops/murmur/internal/core/social"
	"github.com/colonyops/murmur/internal/data/db"
	"github.com/colonyops/murmur/internal/data/stores"
)

// App is the central entry point for all murmur operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Conversations *ConversationService
	Messages      *MessageService
	Requests      *RequestService

	Config *config.Config
	DB     *db.DB
	Feeds  *stores.Feeds
	Bus    *eventbus.EventBus

	// Bells routes terminal bell cues. The TUI points it at the running
	// program.
	Bells *audio.Router
}

// NewApp constructs an App from explicit dependencies.
func NewApp(
	cfg *config.Config,
	database *db.DB,
	feeds *stores.Feeds,
	bus *eventbus.EventBus,
	convStore social.ConversationStore,
	msgStore social.MessageStore,
	reqStore social.RequestStore,
) *App {
	return &App{
		Conversations: NewConversationService(convStore, bus),
		Messages:      NewMessageService(msgStore, cfg, bus),
		Requests:      NewRequestService(reqStore),
		Config:        cfg,
		DB:            database,
		Feeds:         feeds,
		Bus:           bus,
	}
}
