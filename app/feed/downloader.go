package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lysyi3m/rss-howler/app/fetch"
	"github.com/lysyi3m/rss-howler/app/metrics"
)

const copyBufferSize = 20480

// Enclosure is everything needed to place and fetch one media file.
type Enclosure struct {
	URL         string
	FeedURL     string
	FeedTitle   string
	ItemTitle   string
	PublishedAt *time.Time
}

// Saver applies the download policy to one enclosure. A nil error means the
// item may be recorded as seen.
type Saver interface {
	Save(ctx context.Context, enc Enclosure, flags Flags) error
}

var _ Saver = (*Downloader)(nil)

type Downloader struct {
	client   *fetch.Client
	resolver *Resolver
	metrics  metrics.Recorder
}

func NewDownloader(client *fetch.Client, resolver *Resolver, recorder metrics.Recorder) *Downloader {
	return &Downloader{
		client:   client,
		resolver: resolver,
		metrics:  recorder,
	}
}

func (d *Downloader) Save(ctx context.Context, enc Enclosure, flags Flags) error {
	if flags.CatalogOnly() {
		return nil
	}

	target := d.resolver.Resolve(enc, flags)
	slog.DebugContext(ctx, "Resolved enclosure path", "url", enc.URL, "path", target.Path)

	method := http.MethodGet
	if flags.ProbeOnly() {
		method = http.MethodHead
	} else if err := os.MkdirAll(target.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", target.Dir, err)
	}

	resp, finalURL, err := d.client.Follow(ctx, fetch.Request{Method: method, URL: enc.URL}, fetch.EnclosureRedirectStatuses, 1, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 300 && resp.StatusCode < 400 && fetch.Location(resp) == "" {
			return fmt.Errorf("%w: status %d for %s", fetch.ErrRedirectWithoutLocation, resp.StatusCode, finalURL)
		}
		return &fetch.StatusError{Code: resp.StatusCode, URL: finalURL}
	}

	if flags.ProbeOnly() {
		io.Copy(io.Discard, resp.Body)
		slog.InfoContext(ctx, "Enclosure reachable", "url", finalURL, "path", target.Path)
		return nil
	}

	written, err := writeFile(target.Path, resp.Body)
	if err != nil {
		return err
	}
	d.metrics.RecordBytesDownloaded(written)

	slog.InfoContext(ctx, "Enclosure downloaded", "url", finalURL, "path", target.Path, "bytes", written)
	return nil
}

func writeFile(path string, body io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	written, err := io.CopyBuffer(f, body, make([]byte, copyBufferSize))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return written, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return written, nil
}
