package commands

import (
	"strings"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-showcase/internal/content"
	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/internal/users"
	"github.com/goliatone/go-showcase/pkg/interfaces"
)

const commandModuleRoot = "showcase.commands"

// Subscription releases a registered handler.
type Subscription interface {
	Unsubscribe()
}

// Dependencies are the services the command handlers drive.
type Dependencies struct {
	Users    users.Service
	Content  content.Service
	Static   StaticSource
	Logger   interfaces.LoggerProvider
	Observer Observer
}

// CommandLogger returns a module-scoped logger for command handlers.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}

// Register subscribes every handler whose dependencies are present on the
// global dispatcher. Callers release them with Unsubscribe.
func Register(deps Dependencies) []Subscription {
	var subs []Subscription
	if deps.Users != nil {
		handler := NewSeedAdminHandler(deps.Users, CommandLogger(deps.Logger, "users"),
			WithObserver[SeedAdminCommand](deps.Observer))
		subs = append(subs, dispatcher.SubscribeCommand(handler))
	}
	if deps.Content != nil && deps.Static != nil {
		handler := NewImportStaticContentHandler(deps.Content, deps.Static, CommandLogger(deps.Logger, "content"),
			WithObserver[ImportStaticContentCommand](deps.Observer))
		subs = append(subs, dispatcher.SubscribeCommand(handler))
	}
	return subs
}

// Unsubscribe releases every subscription.
func Unsubscribe(subs []Subscription) {
	for _, sub := range subs {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
}
