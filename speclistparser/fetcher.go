package speclistparser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/giygas/speclist/logging"
	"golang.org/x/text/encoding/charmap"
)

const userAgent = "speclist/1.0 (+https://github.com/giygas/speclist)"

// Fetcher downloads the speclist to a local path
type Fetcher struct {
	url    string
	path   string
	client *http.Client
}

// NewFetcher creates a fetcher for url writing to path
func NewFetcher(url, path string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		url:  url,
		path: filepath.Clean(path),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch downloads the speclist and replaces the local copy.
// Network failures and non-2xx responses are returned as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context) error {
	start := time.Now()
	logging.Info("Downloading speclist", "url", f.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return &FetchError{URL: f.url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	response, err := f.client.Do(req)
	if err != nil {
		return &FetchError{URL: f.url, Err: err}
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return &FetchError{URL: f.url, StatusCode: response.StatusCode}
	}

	bodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return &FetchError{URL: f.url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	// The speclist is ASCII, but mirrors have served it as ISO-8859-1
	var reader io.Reader
	if utf8.Valid(bodyBytes) {
		reader = bytes.NewReader(bodyBytes)
	} else {
		logging.Debug("Speclist is not valid UTF-8, decoding from ISO-8859-1", "url", f.url)
		reader = charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	}

	written, err := f.writeFile(reader)
	if err != nil {
		return err
	}

	logging.Info("Speclist downloaded",
		"path", f.path,
		"bytes", written,
		"duration", time.Since(start).String())
	return nil
}

// writeFile writes to a temporary file next to the target and renames it over the target
func (f *Fetcher) writeFile(reader io.Reader) (int64, error) {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return 0, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	tmpPath := f.path + ".part"
	outFile, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file %s: %w", tmpPath, err)
	}

	written, err := io.Copy(outFile, reader)
	if err != nil {
		_ = outFile.Close()
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to write file %s: %w", tmpPath, err)
	}

	if err := outFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to close file %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to replace %s: %w", f.path, err)
	}

	return written, nil
}
