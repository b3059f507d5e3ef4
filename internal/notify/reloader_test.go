package notify

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock(hour, minute int) func() time.Time {
	return func() time.Time {
		return time.Date(2024, time.March, 15, hour, minute, 0, 0, time.Local)
	}
}

// TestReloader_FiresInsideWindow: all URLs fire when local time is within
// the first ten minutes past hour 4.
func TestReloader_FiresInsideWindow(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewReloader([]string{srv.URL + "/a", srv.URL + "/b"}, 4, 10, testLogger())
	r.now = fixedClock(4, 5)

	fired := r.Trigger(context.Background())
	assert.Equal(t, 2, fired)
	assert.Equal(t, int32(2), hits.Load())
}

// TestReloader_WindowBoundaries sweeps the edges of the daily window.
func TestReloader_WindowBoundaries(t *testing.T) {
	cases := []struct {
		hour, minute int
		want         bool
	}{
		{3, 59, false},
		{4, 0, true},
		{4, 9, true},
		{4, 10, false},
		{5, 0, false},
		{16, 5, false},
	}

	for _, tc := range cases {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
		}))

		r := NewReloader([]string{srv.URL}, 4, 10, testLogger())
		r.now = fixedClock(tc.hour, tc.minute)
		fired := r.Trigger(context.Background())
		srv.Close()

		if tc.want {
			assert.Equal(t, 1, fired, "%02d:%02d should fire", tc.hour, tc.minute)
			assert.Equal(t, int32(1), hits.Load())
		} else {
			assert.Zero(t, fired, "%02d:%02d should not fire", tc.hour, tc.minute)
			assert.Zero(t, hits.Load())
		}
	}
}

// TestReloader_FailuresAreIndependent: one dead URL doesn't stop the rest.
func TestReloader_FailuresAreIndependent(t *testing.T) {
	var hits atomic.Int32
	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer alive.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	r := NewReloader([]string{dead.URL, alive.URL}, 4, 10, testLogger())
	r.now = fixedClock(4, 0)

	fired := r.Trigger(context.Background())
	assert.Equal(t, 2, fired)
	assert.Equal(t, int32(1), hits.Load())
}

func TestReloader_NoURLs(t *testing.T) {
	r := NewReloader(nil, 4, 10, testLogger())
	r.now = fixedClock(4, 0)
	assert.Zero(t, r.Trigger(context.Background()))
}
