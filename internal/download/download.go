package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/labstack/gommon/log"
)

const (
	ProcessMsg = "downloading..."
	SuccessMsg = "download complete."
	FailureMsg = "download failed."
)

// Fetcher performs a single GET of the dataset to a local file.
// There is no retry and no checksum.
type Fetcher struct {
	URL    string
	Client *http.Client
}

func NewFetcher(url string) *Fetcher {
	return &Fetcher{URL: url, Client: http.DefaultClient}
}

// Fetch downloads to dest and reports success. Failures are logged, never returned,
// so the caller can fall back to a file from an earlier run.
func (f *Fetcher) Fetch(ctx context.Context, dest string) bool {
	log.Info(ProcessMsg)
	if err := f.fetch(ctx, dest); err != nil {
		log.Errorf("%v %s", err, FailureMsg)
		return false
	}
	log.Infof("%s File name is: %s", SuccessMsg, dest)
	return true
}

func (f *Fetcher) fetch(ctx context.Context, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", f.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch %s: unexpected status %s", f.URL, resp.Status)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Write beside dest and rename, so a failed download never touches an earlier file.
	tmp, err := os.CreateTemp(dir, ".owid-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move download to %s: %w", dest, err)
	}
	return nil
}

// Latest returns the newest data_*.csv in dir, by name (names embed the date).
func Latest(dir string) (string, bool) {
	matches, err := filepath.Glob(filepath.Join(dir, "data_*.csv"))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	return matches[len(matches)-1], true
}

// Ensure downloads dest only when it does not exist yet.
func (f *Fetcher) Ensure(ctx context.Context, dest string) bool {
	if _, err := os.Stat(dest); err == nil {
		log.Infof("Using existing dataset %s", dest)
		return true
	}
	return f.Fetch(ctx, dest)
}
