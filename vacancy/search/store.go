package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"

	"github.com/m3rciful/vacancybot/core/logger"
	"github.com/m3rciful/vacancybot/vacancy/catalog"
	"github.com/m3rciful/vacancybot/vacancy/conversation"
)

const defaultQueryTimeout = 5 * time.Second

// Finder is the read side used by the bot.
type Finder interface {
	Search(ctx context.Context, sel conversation.Selection) ([]Posting, error)
	Top(ctx context.Context) ([]Posting, error)
}

// Options tune the store.
type Options struct {
	// QueryTimeout bounds every database round trip; 0 selects the default.
	QueryTimeout time.Duration
}

// Store runs vacancy queries over a pooled sqlx handle.
type Store struct {
	db      *sqlx.DB
	cat     *catalog.Catalog
	timeout time.Duration
	top     singleflight.Group
}

// NewStore builds a Store. db ownership stays with the caller.
func NewStore(db *sqlx.DB, cat *catalog.Catalog, opts Options) *Store {
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = defaultQueryTimeout
	}
	return &Store{db: db, cat: cat, timeout: opts.QueryTimeout}
}

// Search returns up to FilterLimit postings matching sel.
func (s *Store) Search(ctx context.Context, sel conversation.Selection) ([]Posting, error) {
	q, err := BuildFilterQuery(s.cat, sel)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, "search", q,
		slog.String("language", sel.Language),
		slog.String("salary_band", sel.SalaryBand),
		slog.String("region", sel.Region),
	)
}

// Top returns the TopLimit best paid postings. Concurrent callers share
// one round trip.
func (s *Store) Top(ctx context.Context) ([]Posting, error) {
	v, err, shared := s.top.Do("top", func() (any, error) {
		// Detached so one caller giving up does not fail the others.
		return s.run(context.WithoutCancel(ctx), "top", TopQuery())
	})
	if err != nil {
		return nil, err
	}
	rows := v.([]Posting)
	if shared {
		rows = append([]Posting(nil), rows...)
	}
	return rows, nil
}

// Count returns the number of stored postings.
func (s *Store) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM jobs`); err != nil {
		return 0, wrapStoreError("count", err)
	}
	return n, nil
}

func (s *Store) run(ctx context.Context, op string, q Query, attrs ...slog.Attr) ([]Posting, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	rows := make([]Posting, 0, q.Limit)
	err := s.db.SelectContext(ctx, &rows, q.SQL, q.Args...)

	attrs = append(attrs,
		slog.String("shape", string(q.Shape)),
		slog.Int("limit", q.Limit),
		slog.Duration("duration", logger.Took(start)),
	)
	if err != nil {
		err = wrapStoreError(op, err)
		attrs = append(attrs,
			slog.String("status", logger.Status(err)),
			slog.String("err", err.Error()),
			slog.String("err_code", err.(*QueryError).Code()),
		)
		logger.LogEvent(ctx, logger.SVCSearch, slog.LevelError, op+".failed", attrs...)
		return nil, err
	}

	if len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	status := logger.Status(nil)
	if len(rows) == 0 {
		status = "empty"
	}
	attrs = append(attrs, slog.String("status", status), slog.Int("rows", len(rows)))
	logger.LogEvent(ctx, logger.SVCSearch, slog.LevelInfo, op+".done", attrs...)
	return rows, nil
}
