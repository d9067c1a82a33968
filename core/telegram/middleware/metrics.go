package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "msg_counters"

type counters struct {
	messages atomic.Int32
	keyboard atomic.Bool
}

// metricsContext wraps tele.Context to count sent messages and detect keyboard usage.
type metricsContext struct {
	tele.Context
	c *counters
}

func hasKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

// Send proxies tele.Context.Send while updating message counters.
func (m metricsContext) Send(what interface{}, opts ...interface{}) error {
	err := m.Context.Send(what, opts...)
	if err == nil {
		m.c.messages.Add(1)
		if hasKeyboard(opts) {
			m.c.keyboard.Store(true)
		}
	}
	return err
}

// MessageMetricsMiddleware instruments context to track messages count and keyboard usage.
// Sends run on dispatcher workers, so counters are atomic.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		cnt := &counters{}
		c.Set(countersKey, cnt)
		return next(metricsContext{Context: c, c: cnt})
	}
}

// GetCounters reads message count and keyboard presence flags from context.
func GetCounters(c tele.Context) (int, bool) {
	cnt, ok := c.Get(countersKey).(*counters)
	if !ok || cnt == nil {
		return 0, false
	}
	return int(cnt.messages.Load()), cnt.keyboard.Load()
}
