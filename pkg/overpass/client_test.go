package overpass

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(endpoints ...string) *Client {
	return NewClient(Options{
		Endpoints:  endpoints,
		Timeout:    5 * time.Second,
		MaxRetries: 2,
		Backoff:    time.Millisecond,
	})
}

func TestQuery_ParsesElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Contains(t, r.Form.Get("data"), "out center;")

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"elements": [
				{"type": "node", "id": 10, "lat": 51.5, "lon": -0.1, "tags": {"name": "Tesco Express"}},
				{"type": "way", "id": 22, "center": {"lat": 53.4, "lon": -2.2}}
			]
		}`)
	}))
	defer srv.Close()

	elements, err := newTestClient(srv.URL).Query(context.Background(), Build(QuerySpec{Brand: "Tesco"}))
	require.NoError(t, err)
	require.Len(t, elements, 2)

	assert.Equal(t, "node", elements[0].Type)
	assert.Equal(t, int64(10), elements[0].ID)
	assert.Equal(t, "Tesco Express", elements[0].Tags["name"])

	require.NotNil(t, elements[1].Center)
	assert.Equal(t, 53.4, elements[1].Center.Lat)
}

func TestQuery_FailsOverToSecondEndpoint(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer bad.Close()

	var goodCalls atomic.Int32
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		goodCalls.Add(1)
		_, _ = io.WriteString(w, `{"elements": [{"type": "node", "id": 1, "lat": 1, "lon": 1}]}`)
	}))
	defer good.Close()

	c := NewClient(Options{
		Endpoints:  []string{bad.URL, good.URL},
		Timeout:    5 * time.Second,
		MaxRetries: 1,
		Backoff:    time.Millisecond,
	})
	elements, err := c.Query(context.Background(), "query")
	require.NoError(t, err)
	assert.Len(t, elements, 1)
	assert.Equal(t, int32(1), goodCalls.Load())
}

func TestQuery_RuntimeErrorRemarkRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			_, _ = io.WriteString(w, `{"remark": "runtime error: query timed out", "elements": []}`)
			return
		}
		_, _ = io.WriteString(w, `{"elements": [{"type": "node", "id": 5, "lat": 2, "lon": 3}]}`)
	}))
	defer srv.Close()

	elements, err := newTestClient(srv.URL).Query(context.Background(), "query")
	require.NoError(t, err)
	assert.Len(t, elements, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestQuery_MalformedJSONNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `not json`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Query(context.Background(), "query")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestQuery_LimiterHonoursContext(t *testing.T) {
	c := NewClient(Options{
		Endpoints:  []string{"http://127.0.0.1:0"},
		MaxRetries: 1,
		Backoff:    time.Millisecond,
		Limiter:    rate.NewLimiter(rate.Every(time.Hour), 1),
	})

	ctx := context.Background()
	// First call consumes the burst token (and then fails to connect).
	_, _ = c.Query(ctx, "query")

	timed, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err := c.Query(timed, "query")
	require.Error(t, err)
}
