package respira

import (
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Records are a few MB each, the timeout covers a slow mirror
const (
	webTimeout     = 30 * time.Second
	webIdleTimeout = 30 * time.Second
)

// HTTPClient is the part of *http.Client the record fetch uses
type HTTPClient interface {
	Get(string) (*http.Response, error)
}

// sharedHTTPClient is reused by every WebProvider
// so repeated fetches from one mirror keep their connections
var sharedHTTPClient = &http.Client{
	Timeout: webTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     webIdleTimeout,
	},
}

// SingleFetchWithClient GETs url with c and returns the status code and whole body.
// A non-200 status is not an error here, the caller decides.
func SingleFetchWithClient(url string, c HTTPClient) (int, []byte, error) {
	start := time.Now()
	resp, err := c.Get(url)
	if err != nil {
		slog.Error("Fetch Error", slog.String("url", url), slog.Any("Error", err))
		return 0, nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("Close Error", slog.Any("Error", err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("Could not read body", slog.String("url", url), slog.Any("Error", err))
		return 0, nil, err
	}

	slog.Debug("Fetched",
		slog.String("url", url),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)))

	return resp.StatusCode, body, nil
}

// SingleFetch is SingleFetchWithClient on the shared client
func SingleFetch(url string) (int, []byte, error) {
	return SingleFetchWithClient(url, sharedHTTPClient)
}
