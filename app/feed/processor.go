package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-howler/app/database"
	"github.com/lysyi3m/rss-howler/app/metrics"
)

// Source is the per-feed configuration items are handled under.
type Source struct {
	URL   string
	Flags Flags
	Since *time.Time
}

type Processor struct {
	items   database.ItemRepository
	saver   Saver
	metrics metrics.Recorder
	now     func() time.Time
}

// NewProcessor builds a processor. A nil items repository means no store is
// attached and candidates are only logged.
func NewProcessor(items database.ItemRepository, saver Saver, recorder metrics.Recorder) *Processor {
	return &Processor{
		items:   items,
		saver:   saver,
		metrics: recorder,
		now:     time.Now,
	}
}

// Process hands every item to Handle in document order and returns the
// channel title. An empty feed is fine; a missing title is not.
func (p *Processor) Process(ctx context.Context, doc *Document, src Source) (string, error) {
	if doc.Title == "" {
		return "", ErrMissingTitle
	}

	if !doc.Hints.Empty() {
		slog.DebugContext(ctx, "Channel hints",
			"last_build_date", doc.Hints.LastBuildDate,
			"ttl", doc.Hints.TTL,
			"skip_days", doc.Hints.SkipDays,
			"skip_hours", doc.Hints.SkipHours)
	}

	for _, item := range doc.Items {
		if err := p.Handle(ctx, item, doc.Title, src); err != nil {
			slog.WarnContext(ctx, "Item failed", "guid", item.GUID, "url", item.EnclosureURL, "error", err)
		}
	}

	return doc.Title, nil
}

// Handle applies the catalog policy to one item. Items that are incomplete,
// too old or already seen are skipped without error. The item is recorded as
// seen only after the saver reports success.
func (p *Processor) Handle(ctx context.Context, item Item, feedTitle string, src Source) error {
	if !item.Actionable() {
		slog.DebugContext(ctx, "Skipping incomplete item", "guid", item.GUID, "url", item.EnclosureURL, "title", item.Title)
		p.metrics.RecordItemSkipped(metrics.SkipIncomplete)
		return nil
	}

	if src.Since != nil && item.PublishedAt != nil && !item.PublishedAt.After(*src.Since) {
		p.metrics.RecordItemSkipped(metrics.SkipTooOld)
		return nil
	}

	if !src.Flags.UpdateCatalog() || p.items == nil {
		slog.InfoContext(ctx, "Item candidate",
			"title", item.Title,
			"guid", item.GUID,
			"url", item.EnclosureURL,
			"feed_title", feedTitle)
		p.metrics.RecordItemSkipped(metrics.SkipObserved)
		return nil
	}

	seen, err := p.items.HasSeen(ctx, item.GUID)
	if err != nil {
		return fmt.Errorf("failed to check seen item: %w", err)
	}
	if seen {
		p.metrics.RecordItemSkipped(metrics.SkipSeen)
		return nil
	}

	enc := Enclosure{
		URL:         item.EnclosureURL,
		FeedURL:     src.URL,
		FeedTitle:   feedTitle,
		ItemTitle:   item.Title,
		PublishedAt: item.PublishedAt,
	}
	if err := p.saver.Save(ctx, enc, src.Flags); err != nil {
		p.metrics.RecordItemSkipped(metrics.SkipDownloadFailed)
		return fmt.Errorf("download failed: %w", err)
	}

	err = p.items.RecordSeen(ctx, database.SeenItem{
		GUID:         item.GUID,
		EnclosureURL: item.EnclosureURL,
		Title:        item.Title,
		FeedTitle:    feedTitle,
		DownloadedAt: p.now().UTC(),
	})
	if errors.Is(err, database.ErrConflict) {
		slog.DebugContext(ctx, "Item already recorded", "guid", item.GUID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to record seen item: %w", err)
	}

	p.metrics.RecordItemCataloged()
	slog.InfoContext(ctx, "Item cataloged", "title", item.Title, "guid", item.GUID, "url", item.EnclosureURL, "feed_title", feedTitle)
	return nil
}
