// Package commands describes bot commands held by the registry.
package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	// Hidden keeps the command out of the Telegram menu.
	Hidden bool
	// Aliases are plain-text spellings routed to the same handler, matched case-insensitively.
	Aliases []string
}
