package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/rss-howler/app/database"
	"github.com/lysyi3m/rss-howler/app/feed"
	"github.com/lysyi3m/rss-howler/app/fetch"
	"github.com/lysyi3m/rss-howler/app/metrics"
)

var _ TaskInterface = (*SyncFeedTask)(nil)

// SyncFeedTask performs one conditional fetch of a feed and applies the
// outcome to the store. feedRepo is nil for ad-hoc runs, which never write
// feed state.
type SyncFeedTask struct {
	Task
	Feed      database.Feed
	Outcome   string
	Moves     int
	client    *fetch.Client
	parser    *feed.Parser
	processor *feed.Processor
	feedRepo  database.FeedRepository
	metrics   metrics.Recorder
	now       func() time.Time
}

func NewSyncFeedTask(f database.Feed, client *fetch.Client, parser *feed.Parser, processor *feed.Processor, feedRepo database.FeedRepository, recorder metrics.Recorder) *SyncFeedTask {
	return &SyncFeedTask{
		Task:      NewTask(TaskTypeSyncFeed, f.URL),
		Feed:      f,
		client:    client,
		parser:    parser,
		processor: processor,
		feedRepo:  feedRepo,
		metrics:   recorder,
		now:       time.Now,
	}
}

func (t *SyncFeedTask) Execute(ctx context.Context) error {
	t.Outcome = metrics.OutcomeFailed

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	flags := feed.Flags(t.Feed.Flags)
	if !flags.FetchFeed() {
		slog.DebugContext(ctx, "Fetch bit unset, syncing enabled feed anyway", "flags", flags)
	}
	req := t.buildRequest(flags)

	fetchStart := t.now()
	resp, finalURL, err := t.client.Follow(ctx, req, fetch.FeedMoveStatuses, fetch.MaxRedirectHops, t.moveFeed(ctx))
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	t.metrics.RecordFetchLatency(t.now().Sub(fetchStart))
	slog.DebugContext(ctx, "Feed response",
		"status", resp.StatusCode,
		"last_modified", resp.Header.Get("Last-Modified"),
		"expires", resp.Header.Get("Expires"),
		"etag", resp.Header.Get("ETag"))

	switch resp.StatusCode {
	case http.StatusOK:
		doc, err := t.parser.Run(resp.Body)
		if err != nil {
			return err
		}

		title, err := t.processor.Process(ctx, doc, feed.Source{URL: finalURL, Flags: flags, Since: t.Feed.Since})
		if err != nil {
			return err
		}

		if t.feedRepo != nil {
			if err := t.feedRepo.UpdateFeedState(ctx, finalURL, fetchStart, resp.Header.Get("ETag"), title); err != nil {
				return fmt.Errorf("failed to update feed state: %w", err)
			}
		}

		t.Outcome = metrics.OutcomeSynced
		slog.InfoContext(ctx, "Feed synced", "title", title, "items", len(doc.Items))
		return nil

	case http.StatusNotModified:
		t.Outcome = metrics.OutcomeNotModified
		slog.DebugContext(ctx, "Feed not modified")
		return nil

	case http.StatusNotFound, http.StatusGone:
		if t.feedRepo != nil {
			if err := t.feedRepo.MarkFeedDead(ctx, finalURL); err != nil {
				return fmt.Errorf("failed to disable feed: %w", err)
			}
		}
		t.Outcome = metrics.OutcomeGone
		return fmt.Errorf("%w: status %d for %s", feed.ErrFeedGone, resp.StatusCode, finalURL)

	default:
		return &fetch.StatusError{Code: resp.StatusCode, URL: finalURL}
	}
}

// buildRequest applies at most one conditional header. The stored validator
// wins over the last fetch time; neither is sent when always-fetch is set.
func (t *SyncFeedTask) buildRequest(flags feed.Flags) fetch.Request {
	req := fetch.Request{URL: t.Feed.URL}
	if flags.AlwaysFetch() {
		return req
	}

	if t.Feed.ETag != nil && *t.Feed.ETag != "" {
		req.ETag = *t.Feed.ETag
	} else {
		req.IfModifiedSince = t.Feed.LastFetched()
	}
	return req
}

func (t *SyncFeedTask) moveFeed(ctx context.Context) func(from, to string) error {
	return func(from, to string) error {
		if t.feedRepo != nil {
			if err := t.feedRepo.MoveFeed(ctx, from, to); err != nil {
				return fmt.Errorf("failed to move feed %s to %s: %w", from, to, err)
			}
		}

		t.Moves++
		t.metrics.RecordFeedMoved()
		slog.InfoContext(ctx, "Feed moved", "from", from, "to", to)
		return nil
	}
}
