// Package orangebook downloads and parses the FDA Orange Book and Purple Book
// data publications.
package orangebook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fdatools/openfda-mcp/logging"
)

const (
	// The Orange Book ZIP lives at a fixed media URL. The Purple Book
	// spreadsheet encodes its publication year and month in the path and has
	// to be probed month by month.
	orangeBookURL     = "https://www.fda.gov/media/76860/download"
	purpleBookBaseURL = "https://purplebooksearch.fda.gov/files"

	downloadTimeout = 2 * time.Minute
)

// ErrSourceUnavailable reports that every download candidate failed: the
// Orange Book URL, or all Purple Book month candidates across two years.
var ErrSourceUnavailable = errors.New("data source unavailable")

// spreadsheetMIMEType reports whether a Content-Type belongs to a spreadsheet.
// The Purple Book site answers missing files with an HTML page and status 200,
// so the content type is the only reliable success signal.
func spreadsheetMIMEType(contentType string) bool {
	switch contentType {
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-excel":
		return true
	}
	return false
}

// ProgressFunc receives download progress per file. total is -1 when the
// source does not announce a content length.
type ProgressFunc func(label string, done, total int64)

// BookPaths holds the local paths of a completed download pair.
type BookPaths struct {
	OrangeBook string
	PurpleBook string
}

// Downloader fetches the Orange Book ZIP and the Purple Book workbook over
// plain HTTPS. Fields are exported so tests can point it at a local server.
type Downloader struct {
	Client         *http.Client
	OrangeBookURL  string
	PurpleBookBase string
	Now            func() time.Time
}

// NewDownloader returns a Downloader wired to the FDA endpoints.
func NewDownloader() *Downloader {
	return &Downloader{
		Client:         &http.Client{Timeout: downloadTimeout},
		OrangeBookURL:  orangeBookURL,
		PurpleBookBase: purpleBookBaseURL,
		Now:            time.Now,
	}
}

// FetchOrangeBook downloads the Orange Book ZIP archive to destPath.
func (d *Downloader) FetchOrangeBook(ctx context.Context, destPath string, progress ProgressFunc) error {
	err := d.fetchToFile(ctx, d.OrangeBookURL, destPath, "orange-book", progress, nil)
	if err != nil {
		return fmt.Errorf("%w: orange book: %v", ErrSourceUnavailable, err)
	}
	return nil
}

// FetchPurpleBook downloads the most recent Purple Book workbook to destPath.
// Candidate URLs are tried newest first: the months of the current year from
// the current month backward, then all twelve months of the previous year.
// A candidate failure of any kind just advances to the next candidate.
func (d *Downloader) FetchPurpleBook(ctx context.Context, destPath string, progress ProgressFunc) error {
	candidates := d.purpleBookCandidates(d.Now())

	for _, url := range candidates {
		err := d.fetchToFile(ctx, url, destPath, "purple-book", progress, spreadsheetMIMEType)
		if err == nil {
			logging.Info("Purple book downloaded", "url", url)
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("purple book download cancelled: %w", ctx.Err())
		}
		logging.Debug("Purple book candidate failed", "url", url, "error", err)
	}

	return fmt.Errorf("%w: purple book: exhausted %d candidate urls", ErrSourceUnavailable, len(candidates))
}

// FetchAll downloads both publications into dir. The caller owns dir and its
// cleanup. Downloads run concurrently.
func (d *Downloader) FetchAll(ctx context.Context, dir string, progress ProgressFunc) (BookPaths, error) {
	paths := BookPaths{
		OrangeBook: filepath.Join(dir, "orange-book.zip"),
		PurpleBook: filepath.Join(dir, "purple-book.xlsx"),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error

	downloads := []func() error{
		func() error { return d.FetchOrangeBook(ctx, paths.OrangeBook, progress) },
		func() error { return d.FetchPurpleBook(ctx, paths.PurpleBook, progress) },
	}

	for _, download := range downloads {
		wg.Add(1)
		go func(download func() error) {
			defer wg.Done()
			if err := download(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(download)
	}
	wg.Wait()

	if len(errs) > 0 {
		logging.Error("Download errors occurred", "errors", errs)
		return BookPaths{}, errors.Join(errs...)
	}

	return paths, nil
}

// purpleBookCandidates builds the probe order for the Purple Book download,
// newest publication first.
func (d *Downloader) purpleBookCandidates(now time.Time) []string {
	var urls []string

	year := now.Year()
	for month := int(now.Month()); month >= 1; month-- {
		urls = append(urls, d.purpleBookURL(year, time.Month(month)))
	}
	for month := 12; month >= 1; month-- {
		urls = append(urls, d.purpleBookURL(year-1, time.Month(month)))
	}

	return urls
}

func (d *Downloader) purpleBookURL(year int, month time.Month) string {
	name := strings.ToLower(month.String())
	return fmt.Sprintf("%s/%d/purplebook-search-%s-data-download.xlsx", d.PurpleBookBase, year, name)
}

// fetchToFile streams one URL to disk. acceptContentType, when non-nil, must
// approve the response's media type before any bytes are written.
func (d *Downloader) fetchToFile(ctx context.Context, url, destPath, label string, progress ProgressFunc, acceptContentType func(string) bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if acceptContentType != nil {
		if !acceptContentType(contentType) {
			return fmt.Errorf("unexpected content type %q for %s", contentType, url)
		}
	} else if strings.HasPrefix(contentType, "text/html") {
		// An HTML body on a data URL is an error page served with status 200
		return fmt.Errorf("got HTML instead of data for %s", url)
	}

	outFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}
	defer func() {
		if err := outFile.Close(); err != nil {
			logging.Warn("Failed to close output file", "error", err)
		}
	}()

	counter := &progressWriter{label: label, total: resp.ContentLength, progress: progress}
	written, err := io.Copy(outFile, io.TeeReader(resp.Body, counter))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", destPath, err)
	}

	logging.Debug("Download completed", "label", label, "url", url, "bytes", written)
	return nil
}

// progressWriter reports byte counts to a ProgressFunc as data streams by.
type progressWriter struct {
	label    string
	total    int64
	done     int64
	progress ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.done += int64(len(b))
	if p.progress != nil {
		p.progress(p.label, p.done, p.total)
	}
	return len(b), nil
}
