package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rss-howler/app/database"
	"github.com/lysyi3m/rss-howler/app/feed"
)

var _ TaskInterface = (*ImportFeedsTask)(nil)

// ImportFeedsTask upserts the subscriptions of an import file into the store.
type ImportFeedsTask struct {
	Task
	Path     string
	feedRepo database.FeedRepository
}

func NewImportFeedsTask(path string, feedRepo database.FeedRepository) *ImportFeedsTask {
	return &ImportFeedsTask{
		Task:     NewTask(TaskTypeImportFeeds, ""),
		Path:     path,
		feedRepo: feedRepo,
	}
}

func (t *ImportFeedsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	subs, err := feed.LoadSubscriptions(t.Path)
	if err != nil {
		return fmt.Errorf("failed to load subscriptions from %s: %w", t.Path, err)
	}

	inserted := 0
	for _, sub := range subs {
		created, err := t.feedRepo.UpsertFeed(ctx, sub.URL, int(sub.Flags), sub.Since)
		if err != nil {
			return fmt.Errorf("failed to import feed %s: %w", sub.URL, err)
		}
		if created {
			inserted++
		}
		slog.DebugContext(ctx, "Subscription imported", "feed", sub.URL, "flags", sub.Flags, "created", created)
	}

	slog.InfoContext(ctx, "Task completed",
		"type", t.GetType(),
		"file", t.Path,
		"duration", t.GetDuration(),
		"total", len(subs),
		"inserted", inserted,
		"updated", len(subs)-inserted)

	return nil
}
