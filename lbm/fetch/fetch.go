// Package fetch downloads rock geometries over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultGeometryURL serves rg_theta30_phi30.raw from the Digital Rocks Portal.
	DefaultGeometryURL = "https://www.digitalrocksportal.org/projects/65/images/71075/download/"
	// DefaultGeometryFile is where the workflow stores DefaultGeometryURL.
	DefaultGeometryFile = "input/rg_theta30_phi30.raw"

	httpTimeout    = 10 * time.Minute
	defaultRetries = 3
)

// ErrDownload wraps every download failure. Its message carries the
// equivalent wget command so the file can be fetched by hand.
var ErrDownload = errors.New("download failed")

// Options tunes Download. The zero value is usable.
type Options struct {
	Retries int          // attempts after the first; 0 means defaultRetries, negative disables retries
	Force   bool         // download even if dest exists
	Client  *http.Client // nil uses a client with httpTimeout

	// backOff overrides the retry schedule in tests.
	backOff backoff.BackOff
}

// statusError is a non-200 response. 4xx responses are not retried.
type statusError struct {
	url  string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected HTTP %d from %s", e.code, e.url)
}

// Download fetches url into dest. An existing dest is kept unless
// opts.Force is set. The body is streamed to a temporary file in dest's
// directory and renamed into place, so dest is never left half written.
func Download(ctx context.Context, url, dest string, opts Options) error {
	if !opts.Force {
		if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
			logrus.Infof("Geometry %s already present, skipping download", dest)
			return nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return remediation(url, dest, err)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: httpTimeout}
	}
	retries := opts.Retries
	if retries == 0 {
		retries = defaultRetries
	}
	if retries < 0 {
		retries = 0
	}
	b := opts.backOff
	if b == nil {
		b = backoff.NewExponentialBackOff()
	}
	b = backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)

	var written int64
	op := func() error {
		n, err := fetchOnce(ctx, client, url, dest)
		if err != nil {
			var se *statusError
			if errors.As(err, &se) && se.code >= 400 && se.code < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		written = n
		return nil
	}
	notify := func(err error, d time.Duration) {
		logrus.Warnf("download %s: %v: retrying in %v", url, err, d)
	}

	logrus.Infof("Downloading %s -> %s", url, dest)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return remediation(url, dest, err)
	}
	logrus.Infof("Downloaded %d bytes to %s", written, dest)
	return nil
}

func fetchOnce(ctx context.Context, client *http.Client, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, &statusError{url: url, code: resp.StatusCode}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".part-*")
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("create temp file: %w", err))
	}
	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("read response body: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, backoff.Permanent(fmt.Errorf("move into place: %w", err))
	}
	return n, nil
}

func remediation(url, dest string, err error) error {
	return fmt.Errorf("%w: %v\nTry running this in the terminal:\n wget %s -O %s", ErrDownload, err, url, dest)
}
