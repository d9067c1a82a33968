// Package state stores per-user conversation sessions for Telegram bots.
// Sessions hold an opaque step name plus string data so the package stays
// independent of any particular dialog. Two backends are provided: an
// in-process map and Redis.
package state
