package httpapi

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leapstack-labs/leapquery/internal/config"
	"github.com/leapstack-labs/leapquery/internal/testutil"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, d *dialect.Dialect, maxLen int) *Server {
	t.Helper()
	s, err := NewServer(Config{
		Server:  config.ServerConfig{MaxFacetLength: maxLen},
		Dialect: d,
		Logger:  testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	return s
}

func get(t *testing.T, h http.Handler, path string, params url.Values) *httptest.ResponseRecorder {
	t.Helper()
	target := path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorObject {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Error
}

func TestQueryObject(t *testing.T) {
	h := newTestServer(t, dialect.LegacyDialect, 0).Handler()

	tests := []struct {
		name   string
		path   string
		params url.Values
		want   string
	}{
		{
			name: "no facets",
			path: "/query-object",
			want: `{"dialect":"legacy","query_object":null}`,
		},
		{
			name:   "empty facet is absent",
			path:   "/query-object",
			params: url.Values{"select": {""}},
			want:   `{"dialect":"legacy","query_object":null}`,
		},
		{
			name: "all facets converted to legacy",
			path: "/query-object",
			params: url.Values{
				"select": {"[id, {tenant: {select: [name]}}]"},
				"filter": {"{age: {$gt: 18}}"},
				"sort":   {"[ctime-]"},
				"skip":   {"10"},
				"limit":  {"20"},
			},
			want: `{"dialect":"legacy","query_object":{"project":{"id":1,"tenant":{"project":["name"]}},"filter":{"age":{"$gt":18}},"sort":["ctime-"],"skip":10,"limit":20}}`,
		},
		{
			name:   "dialect in route",
			path:   "/query-object/modern",
			params: url.Values{"select": {"[a, {b: 1}]"}},
			want:   `{"dialect":"modern","query_object":{"select":["a",{"b":1}]}}`,
		},
		{
			name:   "repeated facet uses first value",
			path:   "/query-object",
			params: url.Values{"limit": {"1", "2"}},
			want:   `{"dialect":"legacy","query_object":{"limit":1}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.path, tt.params)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.want, strings.TrimSpace(rec.Body.String()))
		})
	}
}

func TestQueryObject_ArgumentErrors(t *testing.T) {
	h := newTestServer(t, dialect.LegacyDialect, 32).Handler()

	tests := []struct {
		name      string
		params    url.Values
		wantArg   string
		wantPath  string
		errSubstr string
	}{
		{"broken filter", url.Values{"filter": {"{unterminated"}}, "filter", "", "invalid filter"},
		{"word limit", url.Values{"limit": {"many"}}, "limit", "", "expected an integer"},
		{"negative skip", url.Values{"skip": {"-3"}}, "skip", "", "non-negative"},
		{"malformed projection", url.Values{"select": {`{a: "oops"}`}}, "select", "a", "malformed projection"},
		{"too long", url.Values{"sort": {"[" + strings.Repeat("a,", 20) + "b]"}}, "sort", "", "longer than the allowed 32 bytes"},
		{"first failing facet wins", url.Values{"filter": {"{x"}, "limit": {"x"}}, "filter", "", "invalid filter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, "/query-object", tt.params)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			obj := decodeError(t, rec)
			assert.Equal(t, ErrNameArgument, obj.Name)
			assert.Equal(t, "Invalid argument", obj.Title)
			assert.Equal(t, http.StatusBadRequest, obj.HTTPCode)
			assert.Contains(t, obj.Error, tt.errSubstr)
			assert.Contains(t, obj.Fixit, tt.wantArg)
			assert.Equal(t, tt.wantArg, obj.Info["name"])
			assert.Equal(t, rec.Header().Get(RequestIDHeader), obj.Info["request_id"])
			if tt.wantPath != "" {
				assert.Equal(t, tt.wantPath, obj.Info["path"])
			} else {
				assert.NotContains(t, obj.Info, "path")
			}
		})
	}
}

func TestQueryObject_ModernTargetSkipsProjectionCheck(t *testing.T) {
	h := newTestServer(t, dialect.ModernDialect, 0).Handler()

	rec := get(t, h, "/query-object", url.Values{"select": {`{a: "oops"}`}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"dialect":"modern","query_object":{"select":{"a":"oops"}}}`, strings.TrimSpace(rec.Body.String()))
}

func TestQueryObject_UnknownDialectRoute(t *testing.T) {
	h := newTestServer(t, dialect.LegacyDialect, 0).Handler()

	rec := get(t, h, "/query-object/mongo", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	obj := decodeError(t, rec)
	assert.Equal(t, ErrNameNotFound, obj.Name)
	assert.Equal(t, "mongo", obj.Info["dialect"])
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, dialect.LegacyDialect, 0).Handler()

	rec := get(t, h, "/healthz", nil)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36, "generated ids are UUIDs")

	req := httptest.NewRequest(http.MethodGet, "/query-object?limit=x", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-42", decodeError(t, rec).Info["request_id"])
}

func TestDialects(t *testing.T) {
	h := newTestServer(t, dialect.LegacyDialect, 0).Handler()

	rec := get(t, h, "/dialects", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []DialectInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	require.Len(t, infos, 2)

	assert.Equal(t, "legacy", infos[0].Name)
	assert.Equal(t, "project", infos[0].ProjectionKey)
	assert.True(t, infos[0].Default)
	assert.False(t, infos[0].MixedProjections)

	assert.Equal(t, "modern", infos[1].Name)
	assert.Equal(t, "select", infos[1].ProjectionKey)
	assert.Equal(t, []string{"select", "filter", "sort", "skip", "limit"}, infos[1].Keys)
	assert.False(t, infos[1].Default)
}

func TestHealthzAndNotFound(t *testing.T) {
	h := newTestServer(t, dialect.LegacyDialect, 0).Handler()

	rec := get(t, h, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = get(t, h, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrNameNotFound, decodeError(t, rec).Name)
}

func TestQueryObjectMiddleware(t *testing.T) {
	logger, logs := testutil.NewCapturingLogger()

	var called bool
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		called = true
		q, ok := QueryObjectFrom(r.Context())
		require.True(t, ok)
		require.NotNil(t, q)
		assert.Equal(t, `{"project":["a"]}`, q.String())
	})
	h := QueryObjectMiddleware(Static(dialect.LegacyDialect), 0, logger)(next)

	rec := get(t, h, "/", url.Values{"select": {"[a]"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)

	called = false
	rec = get(t, h, "/", url.Values{"skip": {"1.5"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called, "handler must not run on invalid input")
	assert.True(t, logs.Contains("rejected query object"))
}

func TestQueryObjectFrom_WithoutMiddleware(t *testing.T) {
	q, ok := QueryObjectFrom(context.Background())
	assert.False(t, ok)
	assert.Nil(t, q)
}

func TestRawFacetsFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?select=%5Ba%5D&limit=&other=1", nil)
	raw, err := RawFacetsFromRequest(req, 0)
	require.NoError(t, err)

	require.NotNil(t, raw.Select)
	assert.Equal(t, "[a]", *raw.Select)
	require.NotNil(t, raw.Limit, "present but empty parameters are kept for the parser")
	assert.Empty(t, *raw.Limit)
	assert.Nil(t, raw.Filter)
	assert.Nil(t, raw.Sort)
	assert.Nil(t, raw.Skip)
}

func TestNewServer_Errors(t *testing.T) {
	_, err := NewServer(Config{})
	assert.ErrorIs(t, err, dialect.ErrDialectRequired)

	_, err = NewServer(Config{Dialect: dialect.LegacyDialect, Server: config.ServerConfig{MaxFacetLength: -1}})
	assert.Error(t, err)

	_, err = NewServer(Config{Dialect: dialect.LegacyDialect, WatchFile: "leapquery.yaml"})
	assert.Error(t, err)
}

func TestServeListener(t *testing.T) {
	s := newTestServer(t, dialect.LegacyDialect, 0)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ServeListener(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/query-object?limit=3")
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "legacy", body["dialect"])
	assert.Equal(t, map[string]any{"limit": float64(3)}, body["query_object"])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestReloadTarget(t *testing.T) {
	next := dialect.ModernDialect
	var fail error
	s, err := NewServer(Config{
		Dialect:   dialect.LegacyDialect,
		Logger:    testutil.NewTestLogger(t),
		WatchFile: "leapquery.yaml",
		Reload: func() (*dialect.Dialect, error) {
			return next, fail
		},
	})
	require.NoError(t, err)

	s.reloadTarget()
	assert.Same(t, dialect.ModernDialect, s.Target())

	next, fail = dialect.LegacyDialect, assert.AnError
	s.reloadTarget()
	assert.Same(t, dialect.ModernDialect, s.Target(), "failed reload keeps the current dialect")
}

func TestReloadTarget_Serialized(t *testing.T) {
	var inFlight, overlaps, calls atomic.Int32
	s, err := NewServer(Config{
		Dialect:   dialect.LegacyDialect,
		Logger:    testutil.NewTestLogger(t),
		WatchFile: "leapquery.yaml",
		Reload: func() (*dialect.Dialect, error) {
			if inFlight.Add(1) > 1 {
				overlaps.Add(1)
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			calls.Add(1)
			return dialect.ModernDialect, nil
		},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.reloadTarget()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(8), calls.Load())
	assert.Zero(t, overlaps.Load(), "reloads must not run concurrently")
	assert.Same(t, dialect.ModernDialect, s.Target())
}

func TestWatchConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leapquery.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dialect: legacy\n"), 0o600))

	s, err := NewServer(Config{
		Dialect:   dialect.LegacyDialect,
		Logger:    testutil.NewTestLogger(t),
		WatchFile: path,
		Reload: func() (*dialect.Dialect, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			name := strings.TrimSpace(strings.TrimPrefix(string(data), "dialect:"))
			return dialect.Lookup(name)
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.watchConfig(ctx) }()

	// The watcher registers asynchronously; keep rewriting until it notices.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("dialect: modern\n"), 0o600)
		return s.Target() == dialect.ModernDialect
	}, 5*time.Second, 200*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
