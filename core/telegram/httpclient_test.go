package telegram

import (
	"errors"
	"net/http"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedTransport struct {
	errs  []error
	calls int
}

func (s *scriptedTransport) RoundTrip(*http.Request) (*http.Response, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

func TestBuildHTTPClientExtendsDeadlinesForLongPolling(t *testing.T) {
	c := BuildHTTPClient(10 * time.Second)
	assert.Equal(t, 10*time.Second+defaultClientTimeout, c.Timeout)

	rt, ok := c.Transport.(*retryTransport)
	require.True(t, ok)
	base, ok := rt.base.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 10*time.Second+defaultResponseTimeout, base.ResponseHeaderTimeout)

	assert.Equal(t, defaultClientTimeout, BuildHTTPClient(-time.Second).Timeout)
}

func TestRetryTransportRetriesResets(t *testing.T) {
	base := &scriptedTransport{errs: []error{syscall.ECONNRESET, nil}}
	rt := &retryTransport{base: base, maxRetries: 2, backoff: time.Millisecond}

	req, err := http.NewRequest(http.MethodPost, "https://api.telegram.org/botX/sendMessage", strings.NewReader("{}"))
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, base.calls)
}

func TestRetryTransportStopsOnPermanentError(t *testing.T) {
	boom := errors.New("tls: bad certificate")
	base := &scriptedTransport{errs: []error{boom, nil}}
	rt := &retryTransport{base: base, maxRetries: 3, backoff: time.Millisecond}

	req, err := http.NewRequest(http.MethodGet, "https://api.telegram.org/botX/getMe", nil)
	require.NoError(t, err)

	_, err = rt.RoundTrip(req)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, base.calls)
}
