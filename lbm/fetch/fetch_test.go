package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload_WritesBody(t *testing.T) {
	body := []byte{0, 1, 1, 0, 1}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "input", "rock.raw")
	require.NoError(t, Download(context.Background(), srv.URL, dest, Options{}))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, got)

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDownload_ExistingFileSkippedUnlessForced(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte("new"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "rock.raw")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

	// WHEN the file exists
	require.NoError(t, Download(context.Background(), srv.URL, dest, Options{}))
	// THEN nothing is fetched
	assert.Equal(t, int32(0), calls.Load())

	// WHEN forced
	require.NoError(t, Download(context.Background(), srv.URL, dest, Options{Force: true}))
	got, _ := os.ReadFile(dest)
	assert.Equal(t, "new", string(got))
	assert.Equal(t, int32(1), calls.Load())
}

func TestDownload_ClientErrorNotRetried_CarriesRemediation(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "rock.raw")
	err := Download(context.Background(), srv.URL, dest, Options{Retries: 5, backOff: &backoff.ZeroBackOff{}})

	require.ErrorIs(t, err, ErrDownload)
	assert.Contains(t, err.Error(), "HTTP 404")
	assert.Contains(t, err.Error(), "wget "+srv.URL+" -O "+dest)
	assert.Equal(t, int32(1), calls.Load())
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownload_ServerErrorRetriedUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "rock.raw")
	require.NoError(t, Download(context.Background(), srv.URL, dest, Options{Retries: 3, backOff: &backoff.ZeroBackOff{}}))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDownload_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := Download(context.Background(), srv.URL, filepath.Join(t.TempDir(), "x.raw"),
		Options{Retries: 2, backOff: &backoff.ZeroBackOff{}})
	require.ErrorIs(t, err, ErrDownload)
	assert.Equal(t, int32(3), calls.Load(), "first attempt plus two retries")
}

func TestDownload_NegativeRetriesMeansSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := Download(context.Background(), srv.URL, filepath.Join(t.TempDir(), "x.raw"),
		Options{Retries: -1, backOff: &backoff.ZeroBackOff{}})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDownload_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Download(ctx, srv.URL, filepath.Join(t.TempDir(), "x.raw"), Options{backOff: &backoff.ZeroBackOff{}})
	assert.ErrorIs(t, err, ErrDownload)
}
