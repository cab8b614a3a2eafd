package client

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rsclarke/citybus/internal/archive"
	"github.com/rsclarke/citybus/internal/auth"
	"github.com/rsclarke/citybus/internal/config"
)

var fixedNow = time.UnixMilli(1700000000000)

// fakeExtractor records jobs and finishes tasks with err.
type fakeExtractor struct {
	mu   sync.Mutex
	jobs []archive.Job
	err  error
}

func (f *fakeExtractor) Extract(_ context.Context, job archive.Job) *archive.Task {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()

	task := archive.NewTask(job)
	task.Finish(f.err)
	return task
}

// captured is the request seen by the test server.
type captured struct {
	method   string
	path     string
	rawQuery string
	header   http.Header
	bodyLen  int64
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *fakeExtractor, *captured) {
	t.Helper()

	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = captured{
			method:   r.Method,
			path:     r.URL.Path,
			rawQuery: r.URL.RawQuery,
			header:   r.Header.Clone(),
			bodyLen:  r.ContentLength,
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.DBBaseURL = srv.URL + "/api/v1/"
	cfg.LiveBaseURL = srv.URL + "/live/api/v1/"
	cfg.OutputDir = t.TempDir()

	c := NewClient(cfg, zaptest.NewLogger(t))
	c.HTTPClient = srv.Client()
	c.Signer.Now = func() time.Time { return fixedNow }

	x := &fakeExtractor{}
	c.Extractor = x
	return c, x, got
}

func TestDoSetsSignatureHeaders(t *testing.T) {
	c, _, got := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	query := "v=3700"
	resp, err := c.Do(context.Background(), http.MethodGet, c.DBBaseURL+"lviv/db?"+query, query)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "ukraine", got.header.Get("App"))

	wantTS := auth.Timestamp(query, fixedNow)
	assert.Equal(t, strconv.FormatInt(wantTS, 10), got.header.Get("Timestamp"))
	assert.Equal(t, auth.Hash(auth.DefaultSalt, query, wantTS), got.header.Get("Hash"))
	assert.Len(t, got.header.Get("Hash"), 128)
	assert.LessOrEqual(t, got.bodyLen, int64(0))
}

func TestDoTransportError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	c := NewClient(config.Default(), nil)
	_, err = c.Do(context.Background(), http.MethodGet, "http://"+addr+"/api/v1/lviv/db?v=3700", "v=3700")
	require.Error(t, err)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.MethodGet, transportErr.Method)

	var opErr *net.OpError
	assert.True(t, errors.As(err, &opErr))
}

func TestProtocolErrorMessage(t *testing.T) {
	err := &ProtocolError{StatusCode: 404, URL: "http://x/api/v1/lviv/db?v=1"}
	assert.Contains(t, err.Error(), "404")

	err = &ProtocolError{StatusCode: 200, URL: "http://x", Reason: "missing current-version header"}
	assert.Contains(t, err.Error(), "200")
	assert.Contains(t, err.Error(), "current-version")
}
