package sheets

import (
	"context"
	"go/parser"
	"go/token"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, url, token string, retries int) (*Client, *[]time.Duration) {
	t.Helper()
	c := New(context.Background(), url, token, 5*time.Second, retries)
	var waits []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return c, &waits
}

func TestFetchReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("Date,Total\n06-Jan-2025,1000\n"))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL, "", 0)
	body, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Date,Total\n06-Jan-2025,1000\n", body)
}

func TestFetchSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL, "s3cret", 0)
	_, err := c.Fetch(context.Background())
	require.NoError(t, err)
}

func TestFetchRetriesHonouringRetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusBadGateway)
		default:
			_, _ = w.Write([]byte("rows"))
		}
	}))
	defer srv.Close()

	c, waits := newTestClient(t, srv.URL, "", 3)
	body, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rows", body)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{3 * time.Second, 4 * time.Second}, *waits)
}

func TestFetchGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL, "", 2)
	_, err := c.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrStatus)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL, "", 5)
	_, err := c.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrStatus)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchStopsOnCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(context.Background(), srv.URL, "", time.Second, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 7*time.Second, retryAfter("7", 0))
	assert.Equal(t, maxRetryWait, retryAfter("3600", 0))
	assert.Equal(t, 2*time.Second, retryAfter("", 0))
	assert.Equal(t, 8*time.Second, retryAfter("", 2))
}

func TestLoadParsesSheet(t *testing.T) {
	row := []string{"06-Jan-2025", "1000", "600", "400"}
	for i := 0; i < 24; i++ {
		row = append(row, "1")
	}
	row = append(row, "300", "200", "weekly run")
	short := "07-Jan-2025,10,5,5"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("header\n" + strings.Join(row, ",") + "\n" + short + "\n"))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL, "", 0)
	records, err := c.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "06-Jan-2025", records[0].Date)
	assert.Equal(t, 950.0, records[0].DivertedFromLandfill)
	assert.Equal(t, "weekly run", records[0].Remarks)
}

func TestLoadPropagatesFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL, "", 0)
	_, err := c.Load(context.Background())
	assert.ErrorIs(t, err, ErrStatus)
}

func TestPackageDoc(t *testing.T) {
	f, err := parser.ParseFile(token.NewFileSet(), "client.go", nil, parser.PackageClauseOnly|parser.ParseComments)
	require.NoError(t, err)
	require.NotNil(t, f.Doc, "package comment must sit directly above the package clause")
	assert.True(t, strings.HasPrefix(f.Doc.Text(), "Package sheets "))
}
