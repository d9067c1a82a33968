package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

// fakeContext implements the subset of tele.Context used by the middlewares.
type fakeContext struct {
	tele.Context
	upd   tele.Update
	store map[string]interface{}
	sent  []interface{}
}

func newMessageContext(userID int64, text string) *fakeContext {
	u := &tele.User{ID: userID}
	return &fakeContext{
		upd: tele.Update{ID: 1, Message: &tele.Message{
			Sender: u,
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
			Text:   text,
		}},
		store: map[string]interface{}{},
	}
}

func newCallbackContext(userID int64, data string) *fakeContext {
	u := &tele.User{ID: userID}
	return &fakeContext{
		upd: tele.Update{ID: 2, Callback: &tele.Callback{
			Sender:  u,
			Data:    data,
			Message: &tele.Message{Chat: &tele.Chat{ID: userID}},
		}},
		store: map[string]interface{}{},
	}
}

func (f *fakeContext) Update() tele.Update { return f.upd }

func (f *fakeContext) Sender() *tele.User {
	switch {
	case f.upd.Message != nil:
		return f.upd.Message.Sender
	case f.upd.Callback != nil:
		return f.upd.Callback.Sender
	}
	return nil
}

func (f *fakeContext) Chat() *tele.Chat {
	switch {
	case f.upd.Message != nil:
		return f.upd.Message.Chat
	case f.upd.Callback != nil && f.upd.Callback.Message != nil:
		return f.upd.Callback.Message.Chat
	}
	return nil
}

func (f *fakeContext) Text() string {
	if f.upd.Message != nil {
		return f.upd.Message.Text
	}
	return ""
}

func (f *fakeContext) Get(key string) interface{} { return f.store[key] }
func (f *fakeContext) Set(key string, val interface{}) { f.store[key] = val }
func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, what)
	return nil
}

func TestRateLimitMiddleware(t *testing.T) {
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		Burst:     2,
		Exclude:   map[string]struct{}{"callback": {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	for i := 0; i < 3; i++ {
		require.NoError(t, h(newMessageContext(10, "/start")))
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, limited)

	require.NoError(t, h(newMessageContext(11, "/start")))
	assert.Equal(t, 3, calls, "other users have their own bucket")

	require.NoError(t, h(newCallbackContext(10, "\fpick|go")))
	assert.Equal(t, 4, calls, "excluded update kinds bypass the limiter")
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimitMiddleware(RateLimitOptions{})(func(tele.Context) error { return nil })
	for i := 0; i < 10; i++ {
		assert.NoError(t, h(newMessageContext(1, "x")))
	}
}

func TestAdminOnlyMiddleware(t *testing.T) {
	rejected := 0
	mw := AdminOnlyMiddleware(AdminOptions{AdminID: 99, OnReject: func(tele.Context) error { rejected++; return nil }})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	require.NoError(t, h(newMessageContext(99, "/stats")))
	require.NoError(t, h(newMessageContext(5, "/stats")))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, rejected)

	h = AdminOnlyMiddleware(AdminOptions{})(func(tele.Context) error { calls++; return nil })
	require.NoError(t, h(newMessageContext(99, "/stats")))
	assert.Equal(t, 1, calls, "no admin configured rejects everyone")
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	assert.NotPanics(t, func() { assert.NoError(t, h(newMessageContext(1, "x"))) })

	want := errors.New("plain")
	h = RecoverMiddleware(func(tele.Context) error { return want })
	assert.ErrorIs(t, h(newMessageContext(1, "x")), want)
}

func TestMessageMetricsMiddleware(t *testing.T) {
	c := newMessageContext(1, "/help")
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		_ = c.Send("one")
		return c.Send("two", &tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}})
	})
	require.NoError(t, h(c))

	msgs, kb := GetCounters(c)
	assert.Equal(t, 2, msgs)
	assert.True(t, kb)
	assert.Len(t, c.sent, 2)
}

func TestLoggerMiddlewareStoresRID(t *testing.T) {
	c := newCallbackContext(7, "\fpick|python")
	var rid string
	h := LoggerMiddleware(func(c tele.Context) error {
		rid, _ = c.Get("rid").(string)
		return nil
	})
	require.NoError(t, h(c))
	assert.Equal(t, "2:7:7", rid)
}
