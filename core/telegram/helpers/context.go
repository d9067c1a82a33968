package helpers

import (
	"context"
	"strings"

	"github.com/m3rciful/vacancybot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// storeKey holds the per-update context inside tele.Context.
const storeKey = "vacancybot.ctx"

// StoreContext attaches ctx to c for downstream helpers.
func StoreContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(storeKey, ctx)
}

// ContextFrom returns the context stored by StoreContext, if any.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(storeKey).(context.Context)
	return ctx, ok && ctx != nil
}

// BuildContext returns the update's context, creating and caching it on
// first use. The context carries the rid, update/user/chat ids and the
// "tg" component logger.
func BuildContext(c tele.Context) context.Context {
	if cached, ok := ContextFrom(c); ok {
		return cached
	}

	upd := c.Update()
	userID, _ := SenderInfo(c)
	var chatID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}

	rid, _ := c.Get("rid").(string)
	if rid == "" {
		rid = logger.BuildRID(upd.ID, chatID, userID)
	}

	ctx := logger.WithRID(context.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	StoreContext(c, ctx)
	return ctx
}

// WithHandler records the handler name in the stored context.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	StoreContext(c, ctx)
	return ctx
}

// SenderInfo returns the sender id and "First Last" display name.
// Both are zero values for updates without a sender.
func SenderInfo(c tele.Context) (int64, string) {
	u := c.Sender()
	if u == nil {
		return 0, ""
	}
	return u.ID, strings.TrimSpace(u.FirstName + " " + u.LastName)
}
