// Package bot drives the vacancy dialog: it turns inbound commands and
// button taps into conversation transitions, store queries and replies.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/m3rciful/vacancybot/core/logger"
	"github.com/m3rciful/vacancybot/core/telegram/state"
	"github.com/m3rciful/vacancybot/vacancy/catalog"
	"github.com/m3rciful/vacancybot/vacancy/conversation"
	"github.com/m3rciful/vacancybot/vacancy/listing"
	"github.com/m3rciful/vacancybot/vacancy/search"
)

// choicesPerRow matches the width of every choice keyboard.
const choicesPerRow = 3

// User identifies the sender of an inbound event.
type User struct {
	ID       int64
	FullName string
}

// Counter reports the number of stored postings.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Options wires the controller.
type Options struct {
	Catalog  *catalog.Catalog
	Sessions *conversation.Store
	Finder   search.Finder
	// Locks serializes events per user; nil allocates a private one.
	Locks *state.KeyedMutex
	// Counter backs /stats; nil reports zero postings.
	Counter Counter
	// SessionCount backs /stats; nil reports the count as unavailable.
	SessionCount func() int
}

// Controller handles one event at a time per user.
type Controller struct {
	cat          *catalog.Catalog
	sessions     *conversation.Store
	finder       search.Finder
	locks        *state.KeyedMutex
	counter      Counter
	sessionCount func() int
}

// NewController validates opts and builds a Controller.
func NewController(opts Options) (*Controller, error) {
	if opts.Catalog == nil {
		return nil, errors.New("bot: catalog is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("bot: session store is required")
	}
	if opts.Finder == nil {
		return nil, errors.New("bot: finder is required")
	}
	locks := opts.Locks
	if locks == nil {
		locks = state.NewKeyedMutex()
	}
	return &Controller{
		cat:          opts.Catalog,
		sessions:     opts.Sessions,
		finder:       opts.Finder,
		locks:        locks,
		counter:      opts.Counter,
		sessionCount: opts.SessionCount,
	}, nil
}

// Start greets the user.
func (c *Controller) Start(_ context.Context, u User, m Messenger) error {
	return m.Text(startText(u.FullName))
}

// Help lists the public commands.
func (c *Controller) Help(_ context.Context, _ User, m Messenger) error {
	return m.Text(textHelp)
}

// BeginSearch shows the language keyboard. The dialog itself starts on the
// first language tap, so an open dialog is left untouched here.
func (c *Controller) BeginSearch(_ context.Context, _ User, m Messenger) error {
	choices := make([]Choice, len(c.cat.Languages))
	for i, lang := range c.cat.Languages {
		choices[i] = Choice{Label: strings.ToUpper(lang), Value: lang}
	}
	return m.Prompt(textChooseLanguage, choices, choicesPerRow)
}

// Select handles a choice button. The callback is acknowledged exactly
// once, before anything else, whatever the payload turns out to be.
func (c *Controller) Select(ctx context.Context, u User, payload string, m Messenger) error {
	if err := m.Ack(); err != nil {
		logger.LogEvent(ctx, logger.SVCBot, slog.LevelWarn, "select.ack_failed",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}

	kind := c.cat.Classify(payload)
	if kind == catalog.KindUnknown {
		logger.LogEvent(ctx, logger.SVCBot, slog.LevelDebug, "select.unknown",
			slog.String("status", "skip"),
			slog.String("outcome", "ignored"),
		)
		return nil
	}

	unlock := c.locks.Lock(u.ID)
	defer unlock()

	sess, err := c.sessions.Load(ctx, u.ID)
	if err != nil {
		return c.fail(ctx, m, "select.load", err)
	}

	var out conversation.Outcome
	switch kind {
	case catalog.KindLanguage:
		sess, out = conversation.ChooseLanguage(sess, payload)
	case catalog.KindSalary:
		sess, out = conversation.ChooseSalary(sess, c.cat, payload)
	case catalog.KindRegion:
		sess, out = conversation.ChooseRegion(sess, payload)
	}

	logger.LogEvent(ctx, logger.SVCBot, slog.LevelDebug, "select.transition",
		slog.String("kind", kind.String()),
		slog.String("transition", out.String()),
		slog.String("step", string(sess.Step)),
	)

	switch out {
	case conversation.Advanced:
		if err := c.sessions.Save(ctx, u.ID, sess); err != nil {
			return c.fail(ctx, m, "select.save", err)
		}
		return c.promptNext(sess, m)
	case conversation.Completed:
		if err := c.sessions.Clear(ctx, u.ID); err != nil {
			return c.fail(ctx, m, "select.clear", err)
		}
		return c.runSearch(ctx, sess.Selection, m)
	default:
		return nil
	}
}

func (c *Controller) promptNext(sess conversation.Session, m Messenger) error {
	switch sess.Step {
	case conversation.StepAwaitingSalary:
		labels := c.cat.BandLabels()
		choices := make([]Choice, len(labels))
		for i, l := range labels {
			choices[i] = Choice{Label: l, Value: l}
		}
		return m.Prompt(textChooseSalary, choices, choicesPerRow)
	case conversation.StepAwaitingRegion:
		choices := make([]Choice, len(c.cat.Regions))
		for i, r := range c.cat.Regions {
			choices[i] = Choice{Label: r, Value: r}
		}
		return m.Prompt(textChooseRegion, choices, choicesPerRow)
	}
	return nil
}

func (c *Controller) runSearch(ctx context.Context, sel conversation.Selection, m Messenger) error {
	if err := m.Markdown(summaryText(sel, c.cat.IsRemote(sel.Region))); err != nil {
		return err
	}
	rows, err := c.finder.Search(ctx, sel)
	if err != nil {
		return c.fail(ctx, m, "search", err)
	}
	return c.sendListings(rows, m)
}

// Cancel drops an open dialog. Nothing is sent when there is none.
func (c *Controller) Cancel(ctx context.Context, u User, m Messenger) error {
	unlock := c.locks.Lock(u.ID)
	defer unlock()

	sess, err := c.sessions.Load(ctx, u.ID)
	if err != nil {
		return c.fail(ctx, m, "cancel.load", err)
	}
	if _, out := conversation.Cancel(sess); out != conversation.Cancelled {
		return nil
	}
	if err := c.sessions.Clear(ctx, u.ID); err != nil {
		return c.fail(ctx, m, "cancel.clear", err)
	}
	return m.Text(textCancelled)
}

// Top sends the best paid postings. It neither reads nor changes sessions.
func (c *Controller) Top(ctx context.Context, _ User, m Messenger) error {
	rows, err := c.finder.Top(ctx)
	if err != nil {
		return c.fail(ctx, m, "top", err)
	}
	return c.sendListings(rows, m)
}

// Stats reports store and session counters.
func (c *Controller) Stats(ctx context.Context, _ User, m Messenger) error {
	s := Stats{Sessions: -1}
	if c.counter != nil {
		n, err := c.counter.Count(ctx)
		if err != nil {
			return c.fail(ctx, m, "stats", err)
		}
		s.Postings = n
	}
	if c.sessionCount != nil {
		s.Sessions = c.sessionCount()
	}
	return m.Text(statsText(s))
}

func (c *Controller) sendListings(rows []search.Posting, m Messenger) error {
	if len(rows) == 0 {
		return m.Text(textNotFound)
	}
	for _, l := range listing.FormatAll(rows) {
		if err := m.Listing(l); err != nil {
			return err
		}
	}
	return nil
}

// fail logs err and tells the user. The event is considered handled.
func (c *Controller) fail(ctx context.Context, m Messenger, op string, err error) error {
	attrs := []slog.Attr{
		slog.String("status", "fail"),
		slog.String("err", err.Error()),
	}
	var qe *search.QueryError
	if errors.As(err, &qe) {
		attrs = append(attrs, slog.String("err_code", qe.Code()))
	}
	logger.LogEvent(ctx, logger.SVCBot, slog.LevelError, op+".failed", attrs...)
	return m.Text(textFailed)
}
