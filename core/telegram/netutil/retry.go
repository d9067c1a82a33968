package netutil

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"syscall"
	"time"
)

// ShouldRetry reports whether a network error is worth retrying.
// It covers transient dial, timeout and connection reset failures produced
// by net/http while contacting the Telegram API. API-level errors (4xx/5xx
// replies) are never retried here.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && (opErr.Timeout() || opErr.Op == "dial") {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
		return ShouldRetry(urlErr.Err)
	}

	return false
}

// Do calls fn until it succeeds, returns an error ShouldRetry rejects, or
// attempts run out. Attempt n is followed by a pause of backoff*n; a done
// ctx ends the loop with ctx's error. It returns the attempts made.
func Do(ctx context.Context, attempts int, backoff time.Duration, fn func(attempt int) error) (int, error) {
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil || attempt >= attempts || !ShouldRetry(err) || ctx.Err() != nil {
			return attempt, err
		}

		delay := backoff * time.Duration(attempt)
		if delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, ctx.Err()
		case <-timer.C:
		}
	}
}
